// Package review queues ambiguous affiliate records for a human decision.
//
// A record lands here when several catalog entries score within the
// ambiguity epsilon of each other and tie-breaking cannot pick one. The
// reviewer resolves it to a catalog id, or to a new stub, and the decision is
// applied as a pin on every later run.
package review
