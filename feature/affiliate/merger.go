package affiliate

import (
	"context"
	"errors"
	"fmt"

	"affiliate-sync/core/reconcile"
	"affiliate-sync/feature/affiliate/catalog"
	"affiliate-sync/feature/affiliate/feed"
	"affiliate-sync/feature/affiliate/review"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Merger applies planned actions to the catalog and the review queue.
type Merger struct {
	catalog catalog.Catalog
	reviews ReviewStore
	retry   reconcile.RetryPolicy
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewMerger creates a merger. Catalog writes are throttled to
// cfg.WritesPerSecond when it is positive.
func NewMerger(cat catalog.Catalog, reviews ReviewStore, cfg reconcile.Config, logger *zap.Logger) *Merger {
	m := &Merger{
		catalog: cat,
		reviews: reviews,
		retry:   cfg.RetryPolicy(),
		logger:  logger,
	}
	if cfg.WritesPerSecond > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(cfg.WritesPerSecond), 1)
	}
	return m
}

// Apply performs exactly one write for the action.
func (m *Merger) Apply(ctx context.Context, a reconcile.Action) error {
	p, ok := a.Payload.(Payload)
	if !ok {
		return fmt.Errorf("action %s for %s has no record payload", a.Type, a.Key)
	}

	var op func(ctx context.Context) error
	switch a.Type {
	case reconcile.ActionPatchLink:
		patch := LinkPatchFor(p.Record)
		op = func(ctx context.Context) error {
			err := m.catalog.Patch(ctx, a.CatalogID, patch)
			if errors.Is(err, catalog.ErrNotFound) {
				return reconcile.Permanent(err)
			}
			return err
		}
	case reconcile.ActionCreateStub:
		op = func(ctx context.Context) error {
			return m.catalog.Create(ctx, StubFor(a.CatalogID, a.Key, p.Record))
		}
	case reconcile.ActionReview:
		op = func(ctx context.Context) error {
			return m.reviews.Enqueue(ctx, ReviewFor(a, p.Record))
		}
	default:
		return fmt.Errorf("unsupported action type %s", a.Type)
	}

	if m.limiter != nil && a.Type != reconcile.ActionReview {
		if err := m.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	l := m.logger.With(zap.String("action", string(a.Type)), zap.String("key", a.Key), zap.String("catalog_id", a.CatalogID))
	if err := m.retry.Do(ctx, op); err != nil {
		l.Error("Affiliate write failed", zap.Error(err))
		return err
	}
	l.Debug("Affiliate write applied")
	return nil
}

// LinkPatchFor extracts the link fields of a record.
func LinkPatchFor(r feed.Record) catalog.LinkPatch {
	return catalog.LinkPatch{
		AffiliateLink:    r.AffiliateLink,
		AffiliateNetwork: r.AffiliateNetwork,
		ExternalID:       r.ExternalID,
	}
}

// StubFor builds the minimal catalog entry created for an unmatched record.
func StubFor(id, identityKey string, r feed.Record) *catalog.Product {
	return &catalog.Product{
		ID:               id,
		Name:             r.ProductName,
		Brand:            r.Brand,
		AffiliateLink:    r.AffiliateLink,
		AffiliateNetwork: r.AffiliateNetwork,
		ExternalID:       r.ExternalID,
		IdentityKey:      identityKey,
		Origin:           catalog.OriginStub,
	}
}

// ReviewFor builds the pending review for an ambiguous record.
func ReviewFor(a reconcile.Action, r feed.Record) *review.PendingReview {
	return &review.PendingReview{
		ID:               review.ID(a.Key),
		IdentityKey:      a.Key,
		ProductName:      r.ProductName,
		Brand:            r.Brand,
		AffiliateLink:    r.AffiliateLink,
		AffiliateNetwork: r.AffiliateNetwork,
		ExternalID:       r.ExternalID,
		Candidates:       a.Match.Contenders,
		BestScore:        a.Match.Score,
	}
}
