// Package affiliate reconciles the affiliate feed against the product catalog.
//
// A run loads the feed, the catalog candidates and the review pins, plans one
// action per record and applies the plan once it is confirmed:
//
//   - patch_link writes affiliate_link, affiliate_network and external_id onto
//     the matched product and nothing else.
//   - create_stub inserts a minimal product whose id is derived from the
//     normalized identity, so repeated runs never duplicate it.
//   - review parks an ambiguous record in the review queue.
//   - skip covers unmatchable records and disabled stub creation.
//
// Catalog writes are retried with exponential backoff and can be throttled.
// Run reports are archived to object storage when it is enabled.
//
// # Routes
//
// All routes are mounted on the API key protected admin group:
//
//	GET  /affiliate/match?name=&brand=
//	GET  /affiliate/feed
//	POST /affiliate/reconcile
//	GET  /affiliate/reports
//	GET  /affiliate/reviews?status=pending|resolved|all
//	POST /affiliate/reviews/:id/resolve
package affiliate
