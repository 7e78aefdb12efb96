package catalog

import (
	"context"
	"testing"
	"time"

	"affiliate-sync/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	store := NewStore(db)
	require.NoError(t, store.Prepare(true))
	return store, db
}

func TestStore_PrepareVerify(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	store := NewStore(db)

	err = store.Prepare(false)
	assert.ErrorContains(t, err, "missing columns")

	require.NoError(t, store.Prepare(true))
	assert.NoError(t, store.Prepare(false))
}

func TestStore_CreateIsIdempotent(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	id := StubID("sunscreen lotion|acme")
	for i := 0; i < 2; i++ {
		err := store.Create(ctx, &Product{
			ID:            id,
			Name:          "Sunscreen Lotion",
			Brand:         "Acme",
			AffiliateLink: "https://example.com/sunscreen",
			IdentityKey:   "sunscreen lotion|acme",
			Origin:        OriginStub,
		})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_PatchOnlyTouchesLinkFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	price := 12.99
	require.NoError(t, store.Create(ctx, &Product{
		ID:          "product-voltaren",
		Name:        "Voltaren Arthritis Pain Gel",
		Brand:       "GSK",
		Price:       &price,
		Size:        "100g",
		Ingredients: []string{"ingredient-diclofenac"},
		ExternalID:  "OLD",
	}))

	require.NoError(t, store.Patch(ctx, "product-voltaren", LinkPatch{
		AffiliateLink:    "https://amazon.com/dp/B000",
		AffiliateNetwork: "amazon",
	}))
	require.NoError(t, store.Patch(ctx, "product-voltaren", LinkPatch{
		AffiliateLink:    "https://amazon.com/dp/B000",
		AffiliateNetwork: "amazon",
	}))

	got, err := store.Get(ctx, "product-voltaren")
	require.NoError(t, err)
	assert.Equal(t, "Voltaren Arthritis Pain Gel", got.Name)
	assert.Equal(t, "GSK", got.Brand)
	require.NotNil(t, got.Price)
	assert.Equal(t, 12.99, *got.Price)
	assert.Equal(t, "100g", got.Size)
	assert.Equal(t, []string{"ingredient-diclofenac"}, got.Ingredients)
	assert.Equal(t, "https://amazon.com/dp/B000", got.AffiliateLink)
	assert.Equal(t, "amazon", got.AffiliateNetwork)
	assert.Equal(t, "OLD", got.ExternalID)
}

func TestStore_PatchUnchangedKeepsUpdatedAt(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Product{ID: "product-ice", Name: "Ice Pack", Brand: "Acme"}))
	patch := LinkPatch{AffiliateLink: "https://example.com/ice", AffiliateNetwork: "amazon"}
	require.NoError(t, store.Patch(ctx, "product-ice", patch))
	first, err := store.Get(ctx, "product-ice")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.Patch(ctx, "product-ice", patch))
	require.NoError(t, store.Patch(ctx, "product-ice", LinkPatch{}))
	again, err := store.Get(ctx, "product-ice")
	require.NoError(t, err)
	assert.True(t, first.UpdatedAt.Equal(again.UpdatedAt), "unchanged patch moved updated_at")

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.Patch(ctx, "product-ice", LinkPatch{AffiliateNetwork: "impact"}))
	changed, err := store.Get(ctx, "product-ice")
	require.NoError(t, err)
	assert.Equal(t, "impact", changed.AffiliateNetwork)
	assert.Equal(t, "https://example.com/ice", changed.AffiliateLink)
	assert.True(t, changed.UpdatedAt.After(first.UpdatedAt))
}

func TestStore_PatchEmptyMissing(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.Patch(context.Background(), "product-missing", LinkPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PatchMissing(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.Patch(context.Background(), "product-missing", LinkPatch{AffiliateLink: "https://example.com"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(context.Background(), "product-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_FindCandidates(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &Product{ID: "b", Name: "Lip Balm", Brand: "Nivea"}))
	require.NoError(t, store.Create(ctx, &Product{ID: "a", Name: "Aspirin", Brand: "Bayer"}))

	products, err := store.FindCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "a", products[0].ID)
	assert.Equal(t, "Aspirin", products[0].Name)
	assert.False(t, products[0].UpdatedAt.IsZero())
}

func TestStubID(t *testing.T) {
	a := StubID("sunscreen lotion|acme")
	assert.Equal(t, a, StubID("sunscreen lotion|acme"))
	assert.NotEqual(t, a, StubID("sunscreen lotion|"))
	assert.Len(t, a, len("product-")+36)
}
