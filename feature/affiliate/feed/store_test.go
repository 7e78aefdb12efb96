package feed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"affiliate-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleFeed = `{
  "products": [
    {"product_name": "Voltaren Gel", "brand": "GSK", "affiliate_link": "https://amazon.com/dp/B000", "affiliate_network": "amazon", "external_id": "B000"},
    {"product_name": "Broken", "affiliate_link": "not-a-url"},
    {"product_name": "Sunscreen Lotion SPF 50", "brand": "Acme", "affiliate_link": "https://acme.example/sunscreen"},
    {"product_name": "GSK Voltaren Gel 100g", "brand": "GSK", "affiliate_link": "https://amazon.com/dp/B001"}
  ],
  "default_affiliate_network": "shareasale"
}`

func loadSample(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "affiliate_products.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0o644))

	store := NewStore(FileBackend{Path: path}, reconcile.DefaultConfig(), zap.NewNop())
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	return store, path
}

func TestStore_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affiliate_products.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0o644))
	store := NewStore(FileBackend{Path: path}, reconcile.DefaultConfig(), zap.NewNop())

	report, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 1, report.Duplicates)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Index)
	assert.Equal(t, "Broken", report.Skipped[0].ProductName)

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "voltaren gel|gsk", entries[0].Key)
	assert.Equal(t, "https://amazon.com/dp/B001", entries[0].Record.AffiliateLink, "last duplicate wins")
	assert.Equal(t, "shareasale", entries[0].Record.AffiliateNetwork)
	assert.Equal(t, "sunscreen lotion spf 50|acme", entries[1].Key)
}

func TestStore_LoadKeepsPackWordProductsApart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affiliate_products.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products": [
    {"product_name": "Ice Pack", "brand": "Acme", "affiliate_link": "https://acme.example/ice-pack"},
    {"product_name": "Ice", "brand": "Acme", "affiliate_link": "https://acme.example/ice"}
  ]}`), 0o644))
	store := NewStore(FileBackend{Path: path}, reconcile.DefaultConfig(), zap.NewNop())

	report, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Zero(t, report.Duplicates)

	r, err := store.Get("Ice Pack", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example/ice-pack", r.AffiliateLink)
}

func TestStore_LoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affiliate_products.json")
	store := NewStore(FileBackend{Path: path}, reconcile.DefaultConfig(), zap.NewNop())

	report, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Missing)
	assert.Equal(t, path, store.Source())
	assert.Empty(t, store.Records())
	assert.Equal(t, reconcile.DefaultConfig(), store.MatchConfig())

	require.NoError(t, store.Commit(context.Background()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, DefaultNetwork, doc.DefaultNetwork)
	assert.Equal(t, []string{"product_name", "brand"}, doc.Rules().MatchBy)
}

func TestStore_LoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affiliate_products.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := NewStore(FileBackend{Path: path}, reconcile.DefaultConfig(), zap.NewNop()).Load(context.Background())
	assert.ErrorContains(t, err, "failed to parse feed")
}

func TestStore_MatchingRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.json")
	feed := `{"products": [], "matching_rules": {"match_by": ["product_name"], "fuzzy_match": false}}`
	require.NoError(t, os.WriteFile(path, []byte(feed), 0o644))

	store := NewStore(FileBackend{Path: path}, reconcile.DefaultConfig(), zap.NewNop())
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	cfg := store.MatchConfig()
	assert.False(t, cfg.FuzzyMatch)
	assert.Equal(t, 0.0, cfg.BrandWeight)
}

func TestStore_CRUD(t *testing.T) {
	store, path := loadSample(t)

	got, err := store.Get("Voltaren Gel", "GSK")
	require.NoError(t, err)
	assert.Equal(t, "https://amazon.com/dp/B001", got.AffiliateLink)

	_, err = store.Get("Unknown", "")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(Record{ProductName: "Lip Balm", Brand: "Nivea", AffiliateLink: "https://example.com/balm"}))
	got, err = store.Get("lip balm", "nivea")
	require.NoError(t, err)
	assert.Equal(t, "shareasale", got.AffiliateNetwork)

	assert.ErrorIs(t, store.Put(Record{ProductName: "Bad"}), ErrInvalidRecord)

	require.NoError(t, store.Delete("Sunscreen Lotion SPF 50", "Acme"))
	assert.ErrorIs(t, store.Delete("Sunscreen Lotion SPF 50", "Acme"), ErrNotFound)

	require.NoError(t, store.Commit(context.Background()))

	reloaded := NewStore(FileBackend{Path: path}, reconcile.DefaultConfig(), zap.NewNop())
	report, err := reloaded.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Empty(t, report.Skipped)
	names := []string{}
	for _, r := range reloaded.Records() {
		names = append(names, r.ProductName)
	}
	assert.Equal(t, []string{"GSK Voltaren Gel 100g", "Lip Balm"}, names)
}

func TestStore_AddRefusesNearDuplicate(t *testing.T) {
	store, _ := loadSample(t)

	err := store.Add(Record{ProductName: "Voltaren Gel 50ml", Brand: "GSK", AffiliateLink: "https://example.com/v"})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = store.Add(Record{ProductName: "Bayer Aspirin", Brand: "Bayer", AffiliateLink: "https://example.com/a"})
	assert.NoError(t, err)
	assert.Len(t, store.Records(), 3)
}

func TestStore_Find(t *testing.T) {
	store, _ := loadSample(t)

	r, result, ok := store.Find("Voltaren Arthritis Pain Gel", "GSK", 0)
	require.True(t, ok)
	assert.Equal(t, "https://amazon.com/dp/B001", r.AffiliateLink)
	assert.GreaterOrEqual(t, result.Score, 0.8)

	_, _, ok = store.Find("Moisturizer", "CeraVe", 0)
	assert.False(t, ok)
}

func TestStore_NotLoaded(t *testing.T) {
	store := NewStore(FileBackend{Path: "unused.json"}, reconcile.DefaultConfig(), zap.NewNop())
	assert.ErrorIs(t, store.Put(Record{}), ErrNotLoaded)
	assert.ErrorIs(t, store.Commit(context.Background()), ErrNotLoaded)
	_, _, ok := store.Find("x", "", 0)
	assert.False(t, ok)
}
