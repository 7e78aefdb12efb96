package affiliate

import (
	"context"
	"fmt"
	"time"

	"affiliate-sync/core/reconcile"
	"affiliate-sync/feature/affiliate/catalog"
	"affiliate-sync/feature/affiliate/feed"
	"affiliate-sync/feature/affiliate/review"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReviewStore is the part of the review queue used during a run.
type ReviewStore interface {
	Pins(ctx context.Context) (map[string]review.Pin, error)
	Enqueue(ctx context.Context, r *review.PendingReview) error
}

// Payload is what a planned action carries to the merger.
type Payload struct {
	Record   feed.Record
	Identity reconcile.Identity
}

// RunPlan is a reconciliation plan together with its inputs.
type RunPlan struct {
	*reconcile.Plan
	Load   *feed.LoadReport
	Config reconcile.Config
}

// Engine turns the affiliate feed into a reconciliation plan.
type Engine struct {
	feed    *feed.Store
	catalog catalog.Catalog
	reviews ReviewStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewEngine creates an engine.
func NewEngine(feedStore *feed.Store, cat catalog.Catalog, reviews ReviewStore, logger *zap.Logger) *Engine {
	return &Engine{feed: feedStore, catalog: cat, reviews: reviews, logger: logger, now: time.Now}
}

// Plan loads the feed, the catalog snapshot and the review pins concurrently,
// then decides one action per feed record in feed order. Planned writes are
// applied to the in-memory snapshot so later records see earlier stubs.
func (e *Engine) Plan(ctx context.Context, createStubs bool) (*RunPlan, error) {
	var (
		load     *feed.LoadReport
		products []catalog.Product
		pins     map[string]review.Pin
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		load, err = e.feed.Load(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = e.catalog.FindCandidates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pins, err = e.reviews.Pins(gctx)
		if err != nil {
			return fmt.Errorf("failed to load review pins: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cfg := e.feed.MatchConfig()
	cfg.CreateStubs = cfg.CreateStubs && createStubs
	normalizer := cfg.Normalizer()
	matcher := reconcile.NewMatcher(cfg)

	snap := newSnapshot(products, normalizer)
	plan := &reconcile.Plan{}

	for _, entry := range e.feed.Entries() {
		payload := Payload{Record: entry.Record, Identity: entry.Identity}
		action := e.decide(entry, payload, pins, snap, matcher, cfg)

		switch action.Type {
		case reconcile.ActionPatchLink:
			snap.touch(action.CatalogID, e.now())
		case reconcile.ActionCreateStub:
			snap.add(reconcile.Candidate{ID: action.CatalogID, Identity: entry.Identity, UpdatedAt: e.now()})
		}
		plan.Add(action)
	}

	e.logger.Info("Reconciliation planned",
		zap.Int("records", plan.Summary.TotalRecords),
		zap.Int("patches", plan.Summary.Patches),
		zap.Int("stubs", plan.Summary.Stubs),
		zap.Int("reviews", plan.Summary.Reviews),
		zap.Int("skipped", plan.Summary.Skipped),
		zap.Int("invalid", len(load.Skipped)),
	)

	return &RunPlan{Plan: plan, Load: load, Config: cfg}, nil
}

func (e *Engine) decide(entry feed.Entry, payload Payload, pins map[string]review.Pin, snap *snapshot, matcher *reconcile.Matcher, cfg reconcile.Config) reconcile.Action {
	action := reconcile.Action{Key: entry.Key, Payload: payload}

	if entry.Identity.Empty() {
		action.Type = reconcile.ActionSkip
		action.Reason = "product name normalizes to nothing"
		action.Match = reconcile.MatchResult{Unmatchable: true}
		return action
	}

	if pin, ok := pins[entry.Key]; ok {
		return e.pinned(action, entry.Identity, pin, snap, cfg)
	}

	result := matcher.Match(entry.Identity, snap.candidates)
	action.Match = result

	switch {
	case result.Matched():
		action.Type = reconcile.ActionPatchLink
		action.CatalogID = result.CatalogID
		action.Reason = fmt.Sprintf("matched with score %.3f", result.Score)
	case result.Ambiguous:
		action.Type = reconcile.ActionReview
		action.Reason = fmt.Sprintf("%d candidates within epsilon", len(result.Contenders))
	default:
		stubID := catalog.StubID(entry.Key)
		if snap.has(stubID) {
			// A stub from an earlier run no longer matches, e.g. after a rule change.
			action.Type = reconcile.ActionPatchLink
			action.CatalogID = stubID
			action.Reason = "existing stub for identity"
			return action
		}
		if !cfg.CreateStubs {
			action.Type = reconcile.ActionSkip
			action.Reason = "no match and stub creation disabled"
			return action
		}
		action.Type = reconcile.ActionCreateStub
		action.CatalogID = stubID
		action.Reason = fmt.Sprintf("no match, best score %.3f", result.Score)
	}
	return action
}

func (e *Engine) pinned(action reconcile.Action, id reconcile.Identity, pin review.Pin, snap *snapshot, cfg reconcile.Config) reconcile.Action {
	switch {
	case pin.CatalogID != "" && snap.has(pin.CatalogID):
		action.Type = reconcile.ActionPatchLink
		action.CatalogID = pin.CatalogID
		action.Match = reconcile.MatchResult{CatalogID: pin.CatalogID, Score: snap.score(pin.CatalogID, id, cfg.Scorer())}
		action.Reason = "resolved by review"
	case pin.CatalogID != "":
		action.Type = reconcile.ActionSkip
		action.Reason = fmt.Sprintf("review resolved to %s which is not in the catalog", pin.CatalogID)
	case snap.has(catalog.StubID(action.Key)):
		action.Type = reconcile.ActionPatchLink
		action.CatalogID = catalog.StubID(action.Key)
		action.Reason = "resolved by review to existing stub"
	case !cfg.CreateStubs:
		action.Type = reconcile.ActionSkip
		action.Reason = "review requested a stub but stub creation is disabled"
	default:
		action.Type = reconcile.ActionCreateStub
		action.CatalogID = catalog.StubID(action.Key)
		action.Reason = "resolved by review to a new stub"
	}
	return action
}

// snapshot is the in-memory candidate list a run matches against.
type snapshot struct {
	candidates []reconcile.Candidate
	index      map[string]int
}

func newSnapshot(products []catalog.Product, n reconcile.Normalizer) *snapshot {
	s := &snapshot{
		candidates: make([]reconcile.Candidate, 0, len(products)),
		index:      make(map[string]int, len(products)),
	}
	for _, p := range products {
		s.add(candidateFor(p, n))
	}
	return s
}

func candidateFor(p catalog.Product, n reconcile.Normalizer) reconcile.Candidate {
	return reconcile.Candidate{ID: p.ID, Identity: n.Identity(p.Name, p.Brand), UpdatedAt: p.UpdatedAt}
}

func (s *snapshot) add(c reconcile.Candidate) {
	s.index[c.ID] = len(s.candidates)
	s.candidates = append(s.candidates, c)
}

func (s *snapshot) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *snapshot) touch(id string, at time.Time) {
	if i, ok := s.index[id]; ok {
		s.candidates[i].UpdatedAt = at
	}
}

func (s *snapshot) score(id string, q reconcile.Identity, scorer reconcile.Scorer) float64 {
	i, ok := s.index[id]
	if !ok {
		return 0
	}
	return scorer.Compare(q, s.candidates[i].Identity).Value
}
