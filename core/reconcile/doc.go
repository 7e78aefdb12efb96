// Package reconcile decides how affiliate records map onto catalog entries.
//
// It is storage agnostic. Callers hand it normalized identities and catalog
// candidates, and receive match results and an execution plan back.
//
// # Components
//
// Normalizer folds case and diacritics, strips punctuation, size and pack
// tokens, and removes a brand that is repeated inside the product name.
//
// Scorer combines Jaro-Winkler similarity of name and brand into a single
// weighted score in [0,1]. Only identical identities score exactly 1.
//
// Matcher picks the best candidate above the threshold. Candidates within the
// ambiguity epsilon of the best are broken by exact brand, then by name edit
// distance, then by most recent update and smallest id. Anything left is
// reported as ambiguous and never auto-merged.
//
// # Plans
//
// A run first builds a Plan of actions. ApplyPlan executes it only when the
// caller confirms and is not in dry-run mode:
//
//	plan := engine.Plan(ctx)
//	result, err := reconcile.ApplyPlan(ctx, plan, merger, reconcile.Options{Confirmed: true})
package reconcile
