package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"affiliate-sync/core/reconcile"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no record has the requested identity.
	ErrNotFound = errors.New("affiliate record not found")
	// ErrDuplicate is returned by Add when a near-identical record already exists.
	ErrDuplicate = errors.New("affiliate record already exists")
	// ErrNotLoaded is returned when the store is used before Load.
	ErrNotLoaded = errors.New("feed not loaded")
)

// DuplicateThreshold is the score at which Add treats a record as already present.
const DuplicateThreshold = 0.95

// Entry is a record with its normalized identity.
type Entry struct {
	Key      string
	Identity reconcile.Identity
	Record   Record
}

// Invalid describes a record skipped during Load.
type Invalid struct {
	Index       int    `json:"index"`
	ProductName string `json:"product_name,omitempty"`
	Reason      string `json:"reason"`
}

// LoadReport summarizes a Load.
type LoadReport struct {
	Source     string    `json:"source"`
	Missing    bool      `json:"missing,omitempty"`
	Loaded     int       `json:"loaded"`
	Duplicates int       `json:"duplicates,omitempty"`
	Skipped    []Invalid `json:"skipped,omitempty"`
}

// Store is the keyed, in-memory view of an affiliate feed.
// Changes stay in memory until Commit.
type Store struct {
	backend Backend
	codec   Codec
	base    reconcile.Config
	logger  *zap.Logger

	mu      sync.RWMutex
	loaded  bool
	doc     *Document
	cfg     reconcile.Config
	records map[string]Entry
	order   []string
}

// NewStore creates a store over backend. base is combined with the feed's matching rules.
func NewStore(backend Backend, base reconcile.Config, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		codec:   CodecFor(backend.Name()),
		base:    base,
		logger:  logger,
	}
}

// Load reads, parses and validates the feed, replacing any in-memory state.
// Invalid records are skipped and reported. A missing feed loads as empty.
func (s *Store) Load(ctx context.Context) (*LoadReport, error) {
	report := &LoadReport{Source: s.backend.Name()}

	data, err := s.backend.Read(ctx)
	var doc *Document
	switch {
	case errors.Is(err, ErrNotExist):
		report.Missing = true
		doc = NewDocument()
	case err != nil:
		return nil, err
	default:
		if doc, err = s.codec.Decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse feed %s: %w", s.backend.Name(), err)
		}
	}

	cfg := s.base.WithRules(doc.Rules())
	normalizer := cfg.Normalizer()

	records := make(map[string]Entry, len(doc.Products))
	order := make([]string, 0, len(doc.Products))
	for i, r := range doc.Products {
		r = withNetwork(r, doc.DefaultNetwork)
		if err := r.Validate(); err != nil {
			s.logger.Warn("Skipping invalid affiliate record",
				zap.Int("index", i),
				zap.String("product_name", r.ProductName),
				zap.Error(err),
			)
			report.Skipped = append(report.Skipped, Invalid{Index: i, ProductName: r.ProductName, Reason: err.Error()})
			continue
		}

		id := normalizer.Identity(r.ProductName, r.Brand)
		key := id.Key()
		if _, exists := records[key]; exists {
			report.Duplicates++
			s.logger.Warn("Duplicate affiliate record, keeping the last one",
				zap.Int("index", i),
				zap.String("key", key),
			)
		} else {
			order = append(order, key)
		}
		records[key] = Entry{Key: key, Identity: id, Record: r}
	}
	report.Loaded = len(order)

	s.mu.Lock()
	s.loaded = true
	s.doc = doc
	s.cfg = cfg
	s.records = records
	s.order = order
	s.mu.Unlock()

	return report, nil
}

// Source names the feed location.
func (s *Store) Source() string {
	return s.backend.Name()
}

// MatchConfig returns the base configuration with the feed's matching rules applied.
func (s *Store) MatchConfig() reconcile.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return s.base
	}
	return s.cfg
}

// Entries returns the records in feed order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.records[key])
	}
	return out
}

// Records returns the records in feed order.
func (s *Store) Records() []Record {
	entries := s.Entries()
	out := make([]Record, len(entries))
	for i, e := range entries {
		out[i] = e.Record
	}
	return out
}

// Get returns the record whose normalized identity equals that of name and brand.
func (s *Store) Get(name, brand string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Record{}, ErrNotLoaded
	}
	e, ok := s.records[s.cfg.Normalizer().Identity(name, brand).Key()]
	if !ok {
		return Record{}, ErrNotFound
	}
	return e.Record, nil
}

// Put inserts or replaces the record with the same normalized identity.
func (s *Store) Put(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	return s.putLocked(r)
}

func (s *Store) putLocked(r Record) error {
	r = withNetwork(r, s.doc.DefaultNetwork)
	if err := r.Validate(); err != nil {
		return err
	}
	id := s.cfg.Normalizer().Identity(r.ProductName, r.Brand)
	key := id.Key()
	if _, exists := s.records[key]; !exists {
		s.order = append(s.order, key)
	}
	s.records[key] = Entry{Key: key, Identity: id, Record: r}
	return nil
}

// Add inserts a new record, refusing one that scores at least DuplicateThreshold
// against an existing record.
func (s *Store) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if existing, result, ok := s.findLocked(r.ProductName, r.Brand, DuplicateThreshold); ok {
		return fmt.Errorf("%w: %q matches %q with score %.2f", ErrDuplicate, r.ProductName, existing.ProductName, result.Score)
	}
	return s.putLocked(r)
}

// Delete removes the record with the normalized identity of name and brand.
func (s *Store) Delete(name, brand string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	key := s.cfg.Normalizer().Identity(name, brand).Key()
	if _, ok := s.records[key]; !ok {
		return ErrNotFound
	}
	delete(s.records, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Find returns the best record for a free-text product name and optional brand.
// A threshold of zero uses the configured one. When the best records are in
// contention the top contender is returned with result.Ambiguous set.
func (s *Store) Find(name, brand string, threshold float64) (Record, reconcile.MatchResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Record{}, reconcile.MatchResult{}, false
	}
	return s.findLocked(name, brand, threshold)
}

func (s *Store) findLocked(name, brand string, threshold float64) (Record, reconcile.MatchResult, bool) {
	cfg := s.cfg
	if threshold > 0 {
		cfg.Threshold = threshold
	}

	candidates := make([]reconcile.Candidate, 0, len(s.order))
	for _, key := range s.order {
		candidates = append(candidates, reconcile.Candidate{ID: key, Identity: s.records[key].Identity})
	}

	result := reconcile.NewMatcher(cfg).Match(cfg.Normalizer().Identity(name, brand), candidates)
	switch {
	case result.Matched():
		return s.records[result.CatalogID].Record, result, true
	case result.Ambiguous && len(result.Contenders) > 0:
		return s.records[result.Contenders[0].ID].Record, result, true
	}
	return Record{}, result, false
}

// Commit writes the current records back to the backend.
func (s *Store) Commit(ctx context.Context) error {
	s.mu.RLock()
	if !s.loaded {
		s.mu.RUnlock()
		return ErrNotLoaded
	}
	doc := *s.doc
	doc.Products = make([]Record, 0, len(s.order))
	for _, key := range s.order {
		doc.Products = append(doc.Products, s.records[key].Record)
	}
	s.mu.RUnlock()

	data, err := s.codec.Encode(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode feed: %w", err)
	}
	return s.backend.Write(ctx, data)
}

func withNetwork(r Record, fallback string) Record {
	if r.AffiliateNetwork != "" {
		return r
	}
	if fallback == "" {
		fallback = DefaultNetwork
	}
	r.AffiliateNetwork = fallback
	return r
}
