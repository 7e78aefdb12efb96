package catalog

import (
	"time"

	"github.com/google/uuid"
)

// OriginStub marks catalog rows created by affiliate reconciliation.
const OriginStub = "affiliate_stub"

// Product is a canonical catalog entry.
// Reconciliation only creates stubs and patches the affiliate link columns;
// every other column belongs to the content pipeline.
type Product struct {
	ID               string    `gorm:"primaryKey;size:64" json:"id"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	Brand            string    `gorm:"size:255" json:"brand,omitempty"`
	Price            *float64  `json:"price,omitempty"`
	Size             string    `gorm:"size:64" json:"size,omitempty"`
	AffiliateLink    string    `gorm:"size:2048" json:"affiliate_link,omitempty"`
	AffiliateNetwork string    `gorm:"size:64" json:"affiliate_network,omitempty"`
	ExternalID       string    `gorm:"size:128" json:"external_id,omitempty"`
	Ingredients      []string  `gorm:"serializer:json;type:text" json:"ingredients,omitempty"`
	IdentityKey      string    `gorm:"size:512;index:idx_catalog_identity" json:"identity_key,omitempty"`
	Origin           string    `gorm:"size:32" json:"origin,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "catalog_products"
}

// RequiredColumns are the columns reconciliation reads or writes.
var RequiredColumns = []string{
	"id", "name", "brand", "affiliate_link", "affiliate_network",
	"external_id", "identity_key", "origin", "created_at", "updated_at",
}

// LinkPatch holds the affiliate link fields written onto a matched product.
// Empty fields leave the stored value untouched.
type LinkPatch struct {
	AffiliateLink    string `json:"affiliate_link,omitempty"`
	AffiliateNetwork string `json:"affiliate_network,omitempty"`
	ExternalID       string `json:"external_id,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p LinkPatch) Empty() bool {
	return p.AffiliateLink == "" && p.AffiliateNetwork == "" && p.ExternalID == ""
}

var stubNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:affiliate-sync:catalog-stub"))

// StubID derives the catalog id of a stub from a normalized identity key.
// The same identity always yields the same id.
func StubID(identityKey string) string {
	return "product-" + uuid.NewSHA1(stubNamespace, []byte(identityKey)).String()
}
