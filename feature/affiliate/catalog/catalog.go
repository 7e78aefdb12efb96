package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"affiliate-sync/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a product id does not exist.
var ErrNotFound = errors.New("catalog product not found")

// Catalog is the boundary between reconciliation and the product store.
type Catalog interface {
	// FindCandidates returns every product that may be matched against.
	FindCandidates(ctx context.Context) ([]Product, error)
	// Get returns a single product.
	Get(ctx context.Context, id string) (*Product, error)
	// Create inserts a product, or refreshes its link columns if the id already exists.
	Create(ctx context.Context, p *Product) error
	// Patch writes link fields onto an existing product.
	Patch(ctx context.Context, id string, patch LinkPatch) error
}

// Store is the gorm implementation of Catalog.
type Store struct {
	db *gorm.DB
}

// NewStore creates a catalog store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Prepare migrates the schema, or verifies it when the catalog is owned elsewhere.
func (s *Store) Prepare(autoMigrate bool) error {
	if autoMigrate {
		return s.db.AutoMigrate(&Product{})
	}
	missing, err := database.MissingColumns(s.db, Product{}.TableName(), RequiredColumns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", Product{}.TableName(), strings.Join(missing, ", "))
	}
	return nil
}

// FindCandidates loads the columns needed for matching, ordered by id.
func (s *Store) FindCandidates(ctx context.Context) ([]Product, error) {
	var products []Product
	err := s.db.WithContext(ctx).
		Select("id", "name", "brand", "identity_key", "updated_at").
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog candidates: %w", err)
	}
	return products, nil
}

// Get returns the product with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create upserts on the primary key so repeating a stub insert adds no row.
func (s *Store) Create(ctx context.Context, p *Product) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"affiliate_link", "affiliate_network", "external_id", "updated_at"}),
	}).Create(p).Error
}

// Patch updates only the non-empty link fields of a product. updated_at
// moves only when at least one of those fields actually changes.
func (s *Store) Patch(ctx context.Context, id string, patch LinkPatch) error {
	updates := map[string]any{}
	var differs []string
	var args []any
	for column, value := range map[string]string{
		"affiliate_link":    patch.AffiliateLink,
		"affiliate_network": patch.AffiliateNetwork,
		"external_id":       patch.ExternalID,
	} {
		if value == "" {
			continue
		}
		updates[column] = value
		differs = append(differs, "COALESCE("+column+", '') <> ?")
		args = append(args, value)
	}

	db := s.db.WithContext(ctx)
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		res := db.Model(&Product{}).
			Where("id = ?", id).
			Where("("+strings.Join(differs, " OR ")+")", args...).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
	}

	// Nothing changed: either the values already match or the row is missing.
	var count int64
	if err := db.Model(&Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
