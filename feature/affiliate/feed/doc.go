// Package feed loads and edits the externally maintained affiliate feed.
//
// The feed is a JSON or YAML document holding affiliate records and optional
// matching rules. It lives in a local file or in an object storage bucket.
// Records are keyed by their normalized (name, brand) identity, so the
// feed never needs stable ids.
//
// Load validates every record and skips invalid ones with a warning. Edits
// made with Put, Add and Delete stay in memory until Commit, which replaces
// the file atomically or uploads the object in one request.
package feed
