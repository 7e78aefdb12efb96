package reconcile

import (
	"context"
	"errors"
)

// ActionType identifies what applying an action does to the catalog.
type ActionType string

const (
	// ActionPatchLink writes affiliate link fields onto a matched catalog entry.
	ActionPatchLink ActionType = "patch_link"
	// ActionCreateStub creates a minimal catalog entry for an unmatched record.
	ActionCreateStub ActionType = "create_stub"
	// ActionReview parks an ambiguous record for manual resolution.
	ActionReview ActionType = "review"
	// ActionSkip records a decision not to write anything.
	ActionSkip ActionType = "skip"
)

// Action is a single planned write.
type Action struct {
	// Type is the kind of write.
	Type ActionType `json:"type"`

	// Key is the identity key of the affiliate record.
	Key string `json:"key"`

	// CatalogID is the target catalog entry. For stubs it is the id to create.
	CatalogID string `json:"catalog_id,omitempty"`

	// Reason explains the decision in a human readable form.
	Reason string `json:"reason,omitempty"`

	// Match is the match result that led to this action.
	Match MatchResult `json:"match"`

	// Payload carries the data the mutator needs. Not serialized.
	Payload any `json:"-"`
}

// PlanSummary aggregates counts over a plan.
type PlanSummary struct {
	TotalRecords int `json:"total_records"`
	Patches      int `json:"patches"`
	Stubs        int `json:"stubs"`
	Reviews      int `json:"reviews"`
	Skipped      int `json:"skipped"`
	Unmatchable  int `json:"unmatchable"`
}

// Plan is the ordered list of writes a run intends to perform.
type Plan struct {
	Actions []Action    `json:"actions"`
	Summary PlanSummary `json:"summary"`
}

// Add appends an action and updates the summary.
func (p *Plan) Add(a Action) {
	p.Actions = append(p.Actions, a)
	p.Summary.TotalRecords++
	switch a.Type {
	case ActionPatchLink:
		p.Summary.Patches++
	case ActionCreateStub:
		p.Summary.Stubs++
	case ActionReview:
		p.Summary.Reviews++
	case ActionSkip:
		p.Summary.Skipped++
		if a.Match.Unmatchable {
			p.Summary.Unmatchable++
		}
	}
}

// Writes returns the number of actions that would change state.
func (p *Plan) Writes() int {
	return p.Summary.Patches + p.Summary.Stubs + p.Summary.Reviews
}

// Options gate plan execution.
type Options struct {
	// DryRun plans without executing.
	DryRun bool
	// Confirmed must be set for ApplyPlan to execute anything.
	Confirmed bool
}

// Mutator executes individual actions.
type Mutator interface {
	Apply(ctx context.Context, action Action) error
}

// Failure is an action that could not be applied.
type Failure struct {
	Action Action `json:"action"`
	Error  string `json:"error"`
}

// ApplyResult reports the outcome of ApplyPlan.
type ApplyResult struct {
	Executed int       `json:"executed"`
	Skipped  int       `json:"skipped"`
	Failed   []Failure `json:"failed,omitempty"`
}

// ApplyPlan executes the actions of plan in order.
// Nothing is executed unless opts.Confirmed is set and opts.DryRun is not.
// A failing action is recorded and the remaining actions still run.
// A cancelled context stops execution and is returned with the partial result.
func ApplyPlan(ctx context.Context, plan *Plan, mutator Mutator, opts Options) (*ApplyResult, error) {
	result := &ApplyResult{}
	if !opts.Confirmed || opts.DryRun || plan == nil {
		return result, nil
	}
	if mutator == nil {
		return result, errors.New("apply plan: no mutator")
	}

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if action.Type == ActionSkip {
			result.Skipped++
			continue
		}
		if err := mutator.Apply(ctx, action); err != nil {
			result.Failed = append(result.Failed, Failure{Action: action, Error: err.Error()})
			continue
		}
		result.Executed++
	}

	return result, nil
}
