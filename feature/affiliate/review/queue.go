package review

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a review id does not exist.
	ErrNotFound = errors.New("review not found")
	// ErrAlreadyResolved is returned when resolving a review twice.
	ErrAlreadyResolved = errors.New("review already resolved")
)

// Queue persists reviews in the pending_reviews table.
type Queue struct {
	db *gorm.DB
}

// NewQueue creates a review queue.
func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// Prepare migrates the pending_reviews table.
func (q *Queue) Prepare() error {
	return q.db.AutoMigrate(&PendingReview{})
}

// Enqueue stores a review, refreshing the record data of an existing one.
// Status and resolution of an existing review are left untouched.
func (q *Queue) Enqueue(ctx context.Context, r *PendingReview) error {
	if r.ID == "" {
		r.ID = ID(r.IdentityKey)
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	return q.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_name", "brand", "affiliate_link", "affiliate_network",
			"external_id", "candidates", "best_score", "updated_at",
		}),
	}).Create(r).Error
}

// List returns reviews with the given status, or all of them when status is empty.
func (q *Queue) List(ctx context.Context, status Status) ([]PendingReview, error) {
	var reviews []PendingReview
	db := q.db.WithContext(ctx).Order("created_at, id")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// Get returns one review.
func (q *Queue) Get(ctx context.Context, id string) (*PendingReview, error) {
	var r PendingReview
	if err := q.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Resolve records a reviewer decision. An empty catalogID resolves to a new stub.
func (q *Queue) Resolve(ctx context.Context, id, catalogID string) (*PendingReview, error) {
	r, err := q.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == StatusResolved {
		return nil, ErrAlreadyResolved
	}

	now := time.Now()
	updates := map[string]any{
		"status":              StatusResolved,
		"resolved_catalog_id": catalogID,
		"create_stub":         catalogID == "",
		"resolved_at":         &now,
		"updated_at":          now,
	}
	if err := q.db.WithContext(ctx).Model(&PendingReview{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return q.Get(ctx, id)
}

// Pins returns the resolved decisions keyed by identity key.
func (q *Queue) Pins(ctx context.Context) (map[string]Pin, error) {
	resolved, err := q.List(ctx, StatusResolved)
	if err != nil {
		return nil, err
	}
	pins := make(map[string]Pin, len(resolved))
	for _, r := range resolved {
		pins[r.IdentityKey] = Pin{CatalogID: r.ResolvedCatalogID, CreateStub: r.CreateStub}
	}
	return pins, nil
}
