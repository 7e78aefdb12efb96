// Package feedback counts helpful yes/no votes per content item.
//
// Votes are applied with a single upsert statement so concurrent voters never
// lose increments:
//
//	POST /rate               {"documentId": "...", "vote": "yes"|"no"}
//	GET  /rate/:documentId
package feedback
