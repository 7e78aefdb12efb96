package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMutator struct {
	applied []Action
	failOn  map[string]error
}

func (m *recordingMutator) Apply(_ context.Context, a Action) error {
	if err, ok := m.failOn[a.Key]; ok {
		return err
	}
	m.applied = append(m.applied, a)
	return nil
}

func samplePlan() *Plan {
	p := &Plan{}
	p.Add(Action{Type: ActionPatchLink, Key: "voltaren gel|gsk", CatalogID: "product-voltaren"})
	p.Add(Action{Type: ActionCreateStub, Key: "sunscreen lotion|acme", CatalogID: "product-stub"})
	p.Add(Action{Type: ActionReview, Key: "abcdefgh|acme"})
	p.Add(Action{Type: ActionSkip, Key: "|acme", Match: MatchResult{Unmatchable: true}})
	return p
}

func TestPlan_Summary(t *testing.T) {
	p := samplePlan()
	assert.Equal(t, PlanSummary{TotalRecords: 4, Patches: 1, Stubs: 1, Reviews: 1, Skipped: 1, Unmatchable: 1}, p.Summary)
	assert.Equal(t, 3, p.Writes())
}

func TestApplyPlan_Gates(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"not confirmed", Options{}},
		{"dry run", Options{DryRun: true, Confirmed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &recordingMutator{}
			result, err := ApplyPlan(context.Background(), samplePlan(), m, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, 0, result.Executed)
			assert.Empty(t, m.applied)
		})
	}
}

func TestApplyPlan_ExecutesInOrder(t *testing.T) {
	m := &recordingMutator{}
	result, err := ApplyPlan(context.Background(), samplePlan(), m, Options{Confirmed: true})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Executed)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Failed)
	require.Len(t, m.applied, 3)
	assert.Equal(t, ActionPatchLink, m.applied[0].Type)
	assert.Equal(t, ActionCreateStub, m.applied[1].Type)
	assert.Equal(t, ActionReview, m.applied[2].Type)
}

func TestApplyPlan_ContinuesAfterFailure(t *testing.T) {
	m := &recordingMutator{failOn: map[string]error{"voltaren gel|gsk": errors.New("db down")}}
	result, err := ApplyPlan(context.Background(), samplePlan(), m, Options{Confirmed: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Executed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "voltaren gel|gsk", result.Failed[0].Action.Key)
	assert.Equal(t, "db down", result.Failed[0].Error)
}

func TestApplyPlan_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &recordingMutator{}
	result, err := ApplyPlan(ctx, samplePlan(), m, Options{Confirmed: true})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Executed)
	assert.Empty(t, m.applied)
}

func TestApplyPlan_NoMutator(t *testing.T) {
	_, err := ApplyPlan(context.Background(), samplePlan(), nil, Options{Confirmed: true})
	assert.Error(t, err)
}
