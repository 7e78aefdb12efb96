package review

import (
	"time"

	"affiliate-sync/core/reconcile"

	"github.com/google/uuid"
)

// Status is the state of a pending review.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// PendingReview is an affiliate record that matched several catalog entries too closely to merge.
type PendingReview struct {
	ID                string                `gorm:"primaryKey;size:64" json:"id"`
	IdentityKey       string                `gorm:"size:512;not null;index:idx_reviews_identity" json:"identity_key"`
	ProductName       string                `gorm:"size:255;not null" json:"product_name"`
	Brand             string                `gorm:"size:255" json:"brand,omitempty"`
	AffiliateLink     string                `gorm:"size:2048" json:"affiliate_link"`
	AffiliateNetwork  string                `gorm:"size:64" json:"affiliate_network,omitempty"`
	ExternalID        string                `gorm:"size:128" json:"external_id,omitempty"`
	Candidates        []reconcile.Contender `gorm:"serializer:json;type:text" json:"candidates"`
	BestScore         float64               `json:"best_score"`
	Status            Status                `gorm:"size:16;not null;default:pending;index:idx_reviews_status" json:"status"`
	ResolvedCatalogID string                `gorm:"size:64" json:"resolved_catalog_id,omitempty"`
	CreateStub        bool                  `gorm:"default:false" json:"create_stub"`
	ResolvedAt        *time.Time            `json:"resolved_at,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// TableName specifies the table name
func (PendingReview) TableName() string {
	return "pending_reviews"
}

// Pin is a reviewer decision applied before matching on later runs.
type Pin struct {
	// CatalogID is the entry the record must be merged into.
	CatalogID string
	// CreateStub requests a new stub instead of merging.
	CreateStub bool
}

var reviewNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:affiliate-sync:pending-review"))

// ID derives the review id from a normalized identity key.
func ID(identityKey string) string {
	return uuid.NewSHA1(reviewNamespace, []byte(identityKey)).String()
}
