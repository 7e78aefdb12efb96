package affiliate

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"affiliate-sync/core/reconcile"
	"affiliate-sync/feature/affiliate/catalog"
	"affiliate-sync/feature/affiliate/feed"
	"affiliate-sync/feature/affiliate/review"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrRunInProgress is returned when a reconciliation is started while another one runs.
	ErrRunInProgress = errors.New("reconciliation already running")
	// ErrStorageDisabled is returned by report operations without object storage.
	ErrStorageDisabled = errors.New("object storage is disabled")
)

// RunOptions control a reconciliation run.
type RunOptions struct {
	// DryRun plans without writing.
	DryRun bool
	// Confirmed must be set for writes to happen.
	Confirmed bool
	// NoStubs disables stub creation for this run.
	NoStubs bool
}

func (o RunOptions) apply() reconcile.Options {
	return reconcile.Options{DryRun: o.DryRun, Confirmed: o.Confirmed}
}

// MatchResponse is the answer to a catalog lookup.
type MatchResponse struct {
	Query   reconcile.Identity    `json:"query"`
	Result  reconcile.MatchResult `json:"result"`
	Product *catalog.Product      `json:"product,omitempty"`
}

// Service coordinates reconciliation runs, lookups and reviews.
type Service struct {
	feed    *feed.Store
	catalog catalog.Catalog
	reviews *review.Queue
	engine  *Engine
	merger  *Merger
	sink    ReportSink
	cache   *reconcile.SnapshotCache
	logger  *zap.Logger
	running atomic.Bool
}

// NewService creates a new affiliate service. sink may be nil.
func NewService(feedStore *feed.Store, cat catalog.Catalog, reviews *review.Queue, cfg reconcile.Config, sink ReportSink, logger *zap.Logger) *Service {
	return &Service{
		feed:    feedStore,
		catalog: cat,
		reviews: reviews,
		engine:  NewEngine(feedStore, cat, reviews, logger),
		merger:  NewMerger(cat, reviews, cfg, logger),
		sink:    sink,
		cache:   reconcile.NewSnapshotCache(cfg.LookupCacheTTL()),
		logger:  logger,
	}
}

// Plan builds a reconciliation plan without writing anything.
func (s *Service) Plan(ctx context.Context, opts RunOptions) (*RunPlan, error) {
	return s.engine.Plan(ctx, !opts.NoStubs)
}

// Apply executes plan when opts allow it and archives the run report.
func (s *Service) Apply(ctx context.Context, plan *RunPlan, opts RunOptions, startedAt time.Time) (*Report, error) {
	result, err := reconcile.ApplyPlan(ctx, plan.Plan, s.merger, opts.apply())
	report := &Report{
		ID:         uuid.NewString(),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		DryRun:     opts.DryRun,
		Confirmed:  opts.Confirmed,
		Feed:       plan.Load,
		Summary:    plan.Summary,
		Actions:    plan.Actions,
		Result:     result,
	}
	if result != nil && result.Executed > 0 {
		s.cache.Invalidate()
	}

	s.logger.Info("Reconciliation finished",
		zap.String("report_id", report.ID),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("confirmed", opts.Confirmed),
		zap.Int("executed", result.Executed),
		zap.Int("failed", len(result.Failed)),
	)

	if s.sink != nil {
		location, saveErr := s.sink.Save(ctx, report)
		if saveErr != nil {
			s.logger.Warn("Failed to archive run report", zap.Error(saveErr))
		} else {
			report.Location = location
		}
	}
	return report, err
}

// Reconcile plans and applies in one step. Only one run executes at a time.
func (s *Service) Reconcile(ctx context.Context, opts RunOptions) (*Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	startedAt := time.Now()
	plan, err := s.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, plan, opts, startedAt)
}

// Match looks a product up in the catalog using the cached candidate snapshot.
func (s *Service) Match(ctx context.Context, name, brand string) (*MatchResponse, error) {
	cfg := s.feed.MatchConfig()
	normalizer := cfg.Normalizer()

	candidates, err := s.cache.Get(ctx, func(ctx context.Context) ([]reconcile.Candidate, error) {
		products, err := s.catalog.FindCandidates(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]reconcile.Candidate, len(products))
		for i, p := range products {
			out[i] = candidateFor(p, normalizer)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	query := normalizer.Identity(name, brand)
	resp := &MatchResponse{Query: query, Result: reconcile.NewMatcher(cfg).Match(query, candidates)}
	if resp.Result.Matched() {
		product, err := s.catalog.Get(ctx, resp.Result.CatalogID)
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			return nil, err
		}
		resp.Product = product
	}
	return resp, nil
}

// Feed loads the feed and returns its valid records with the load report.
func (s *Service) Feed(ctx context.Context) ([]feed.Record, *feed.LoadReport, error) {
	report, err := s.feed.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.feed.Records(), report, nil
}

// Reviews lists reviews by status.
func (s *Service) Reviews(ctx context.Context, status review.Status) ([]review.PendingReview, error) {
	return s.reviews.List(ctx, status)
}

// ResolveReview pins a review to catalogID, or to a new stub when catalogID is empty.
func (s *Service) ResolveReview(ctx context.Context, id, catalogID string) (*review.PendingReview, error) {
	if catalogID != "" {
		if _, err := s.catalog.Get(ctx, catalogID); err != nil {
			return nil, err
		}
	}
	return s.reviews.Resolve(ctx, id, catalogID)
}

// Reports lists archived run reports.
func (s *Service) Reports(ctx context.Context) ([]string, error) {
	if s.sink == nil {
		return nil, ErrStorageDisabled
	}
	return s.sink.List(ctx)
}
