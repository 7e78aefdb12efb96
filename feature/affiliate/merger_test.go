package affiliate

import (
	"context"
	"errors"
	"testing"

	"affiliate-sync/core/reconcile"
	"affiliate-sync/feature/affiliate/catalog"
	"affiliate-sync/feature/affiliate/catalog/mocks"
	"affiliate-sync/feature/affiliate/feed"
	"affiliate-sync/feature/affiliate/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type fakeReviews struct {
	enqueued []*review.PendingReview
}

func (f *fakeReviews) Pins(context.Context) (map[string]review.Pin, error) { return nil, nil }
func (f *fakeReviews) Enqueue(_ context.Context, r *review.PendingReview) error {
	f.enqueued = append(f.enqueued, r)
	return nil
}

func testMerger(cat catalog.Catalog, reviews ReviewStore) *Merger {
	cfg := reconcile.DefaultConfig()
	cfg.MaxRetries = 2
	cfg.RetryInitialMS = 1
	return NewMerger(cat, reviews, cfg, zap.NewNop())
}

var sampleRecord = feed.Record{
	ProductName:      "Voltaren Gel",
	Brand:            "GSK",
	AffiliateLink:    "https://amazon.com/dp/B000",
	AffiliateNetwork: "amazon",
	ExternalID:       "B000",
}

func patchAction() reconcile.Action {
	return reconcile.Action{
		Type:      reconcile.ActionPatchLink,
		Key:       "voltaren gel|gsk",
		CatalogID: "product-voltaren",
		Payload:   Payload{Record: sampleRecord},
	}
}

func TestMerger_PatchRetriesTransientErrors(t *testing.T) {
	cat := new(mocks.Catalog)
	want := catalog.LinkPatch{AffiliateLink: "https://amazon.com/dp/B000", AffiliateNetwork: "amazon", ExternalID: "B000"}
	cat.On("Patch", mock.Anything, "product-voltaren", want).Return(errors.New("deadlock")).Once()
	cat.On("Patch", mock.Anything, "product-voltaren", want).Return(nil).Once()

	err := testMerger(cat, &fakeReviews{}).Apply(context.Background(), patchAction())
	assert.NoError(t, err)
	cat.AssertNumberOfCalls(t, "Patch", 2)
}

func TestMerger_PatchGivesUpAfterRetries(t *testing.T) {
	cat := new(mocks.Catalog)
	cat.On("Patch", mock.Anything, "product-voltaren", mock.Anything).Return(errors.New("deadlock"))

	err := testMerger(cat, &fakeReviews{}).Apply(context.Background(), patchAction())
	assert.EqualError(t, err, "deadlock")
	cat.AssertNumberOfCalls(t, "Patch", 3)
}

func TestMerger_PatchMissingIsPermanent(t *testing.T) {
	cat := new(mocks.Catalog)
	cat.On("Patch", mock.Anything, "product-voltaren", mock.Anything).Return(catalog.ErrNotFound)

	err := testMerger(cat, &fakeReviews{}).Apply(context.Background(), patchAction())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	cat.AssertNumberOfCalls(t, "Patch", 1)
}

func TestMerger_CreateStub(t *testing.T) {
	cat := new(mocks.Catalog)
	cat.On("Create", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
		return p.ID == "product-stub" &&
			p.Name == "Voltaren Gel" &&
			p.IdentityKey == "voltaren gel|gsk" &&
			p.Origin == catalog.OriginStub &&
			p.AffiliateLink == "https://amazon.com/dp/B000"
	})).Return(nil)

	a := patchAction()
	a.Type = reconcile.ActionCreateStub
	a.CatalogID = "product-stub"

	assert.NoError(t, testMerger(cat, &fakeReviews{}).Apply(context.Background(), a))
	cat.AssertExpectations(t)
}

func TestMerger_Review(t *testing.T) {
	cat := new(mocks.Catalog)
	reviews := &fakeReviews{}

	a := patchAction()
	a.Type = reconcile.ActionReview
	a.CatalogID = ""
	a.Match = reconcile.MatchResult{Score: 0.96, Ambiguous: true, Contenders: []reconcile.Contender{{ID: "a", Score: 0.96}, {ID: "b", Score: 0.95}}}

	assert.NoError(t, testMerger(cat, reviews).Apply(context.Background(), a))
	cat.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything)
	cat.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	if assert.Len(t, reviews.enqueued, 1) {
		r := reviews.enqueued[0]
		assert.Equal(t, review.ID("voltaren gel|gsk"), r.ID)
		assert.Equal(t, 0.96, r.BestScore)
		assert.Len(t, r.Candidates, 2)
	}
}

func TestMerger_RejectsBadActions(t *testing.T) {
	m := testMerger(new(mocks.Catalog), &fakeReviews{})

	a := patchAction()
	a.Payload = nil
	assert.Error(t, m.Apply(context.Background(), a))

	a = patchAction()
	a.Type = reconcile.ActionSkip
	assert.Error(t, m.Apply(context.Background(), a))
}

func TestMerger_RateLimitHonoursContext(t *testing.T) {
	cfg := reconcile.DefaultConfig()
	cfg.WritesPerSecond = 0.001
	cat := new(mocks.Catalog)
	cat.On("Patch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m := NewMerger(cat, &fakeReviews{}, cfg, zap.NewNop())

	assert.NoError(t, m.Apply(context.Background(), patchAction()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, m.Apply(ctx, patchAction()))
	cat.AssertNumberOfCalls(t, "Patch", 1)
}
