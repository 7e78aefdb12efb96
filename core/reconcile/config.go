package reconcile

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the matching policy and the write behavior of a reconciliation run.
type Config struct {
	// Threshold is the minimum combined score for a match to be accepted.
	Threshold float64 `mapstructure:"threshold" default:"0.8"`
	// NameWeight is the weight of the name similarity.
	NameWeight float64 `mapstructure:"name_weight" default:"0.7"`
	// BrandWeight is the weight of the brand similarity.
	BrandWeight float64 `mapstructure:"brand_weight" default:"0.3"`
	// AmbiguityEpsilon is the score distance under which two accepted candidates
	// are considered in contention.
	AmbiguityEpsilon float64 `mapstructure:"ambiguity_epsilon" default:"0.02"`
	// FuzzyMatch enables edit-distance similarity. When false only exact
	// normalized equality matches.
	FuzzyMatch bool `mapstructure:"fuzzy_match" default:"true"`
	// CaseSensitive keeps letter case during normalization.
	CaseSensitive bool `mapstructure:"case_sensitive" default:"false"`

	// CreateStubs enables creation of catalog stubs for unmatched records.
	CreateStubs bool `mapstructure:"create_stubs" default:"true"`
	// MaxRetries bounds retries of a failed catalog write.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// RetryInitialMS is the first retry delay in milliseconds.
	RetryInitialMS int `mapstructure:"retry_initial_ms" default:"200"`
	// WritesPerSecond throttles catalog writes. Zero disables throttling.
	WritesPerSecond float64 `mapstructure:"writes_per_second" default:"0"`

	// FeedPath is the local affiliate feed file.
	FeedPath string `mapstructure:"feed_path" default:"data/affiliate_products.json"`
	// FeedObject, when set, reads the feed from object storage instead of FeedPath.
	FeedObject string `mapstructure:"feed_object" default:""`
	// ReportPrefix is the object storage prefix for archived run reports.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports/affiliate"`
	// LookupCacheSeconds is the TTL of the catalog snapshot used by match lookups.
	LookupCacheSeconds int `mapstructure:"lookup_cache_seconds" default:"60"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Threshold:          0.8,
		NameWeight:         0.7,
		BrandWeight:        0.3,
		AmbiguityEpsilon:   0.02,
		FuzzyMatch:         true,
		CreateStubs:        true,
		MaxRetries:         3,
		RetryInitialMS:     200,
		FeedPath:           "data/affiliate_products.json",
		ReportPrefix:       "reports/affiliate",
		LookupCacheSeconds: 60,
	}
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid reconcile config")

// Validate checks that the matching policy is usable.
func (c Config) Validate() error {
	switch {
	case c.Threshold <= 0 || c.Threshold > 1:
		return fmt.Errorf("%w: threshold %v must be in (0,1]", ErrInvalidConfig, c.Threshold)
	case c.NameWeight <= 0:
		return fmt.Errorf("%w: name_weight %v must be positive", ErrInvalidConfig, c.NameWeight)
	case c.BrandWeight < 0:
		return fmt.Errorf("%w: brand_weight %v must not be negative", ErrInvalidConfig, c.BrandWeight)
	case c.AmbiguityEpsilon < 0 || c.AmbiguityEpsilon >= 1:
		return fmt.Errorf("%w: ambiguity_epsilon %v must be in [0,1)", ErrInvalidConfig, c.AmbiguityEpsilon)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: max_retries %d must not be negative", ErrInvalidConfig, c.MaxRetries)
	case c.WritesPerSecond < 0:
		return fmt.Errorf("%w: writes_per_second %v must not be negative", ErrInvalidConfig, c.WritesPerSecond)
	}
	return nil
}

// Rules are the matching rules carried by an affiliate feed document.
// Unset fields leave the deployment configuration untouched.
type Rules struct {
	MatchBy       []string `json:"match_by,omitempty" yaml:"match_by,omitempty"`
	FuzzyMatch    *bool    `json:"fuzzy_match,omitempty" yaml:"fuzzy_match,omitempty"`
	CaseSensitive *bool    `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
}

// Match-by field names understood in Rules.MatchBy.
const (
	MatchByProductName = "product_name"
	MatchByBrand       = "brand"
)

// DefaultRules returns the rules written into a freshly created feed.
func DefaultRules() Rules {
	fuzzy, caseSensitive := true, false
	return Rules{
		MatchBy:       []string{MatchByProductName, MatchByBrand},
		FuzzyMatch:    &fuzzy,
		CaseSensitive: &caseSensitive,
	}
}

// WithRules applies feed matching rules on top of the configuration.
func (c Config) WithRules(r Rules) Config {
	if len(r.MatchBy) > 0 {
		byBrand := false
		for _, field := range r.MatchBy {
			if field == MatchByBrand {
				byBrand = true
			}
		}
		if !byBrand {
			c.BrandWeight = 0
		}
	}
	if r.FuzzyMatch != nil {
		c.FuzzyMatch = *r.FuzzyMatch
	}
	if r.CaseSensitive != nil {
		c.CaseSensitive = *r.CaseSensitive
	}
	return c
}

// Normalizer returns the normalizer configured for this policy.
func (c Config) Normalizer() Normalizer {
	return Normalizer{CaseSensitive: c.CaseSensitive}
}

// Scorer returns the similarity scorer configured for this policy.
func (c Config) Scorer() Scorer {
	return Scorer{NameWeight: c.NameWeight, BrandWeight: c.BrandWeight, Fuzzy: c.FuzzyMatch, BrandFloor: c.Threshold}
}

// RetryPolicy returns the catalog write retry policy.
func (c Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      uint64(c.MaxRetries),
		InitialInterval: time.Duration(c.RetryInitialMS) * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// LookupCacheTTL returns the TTL for the lookup snapshot cache.
func (c Config) LookupCacheTTL() time.Duration {
	return time.Duration(c.LookupCacheSeconds) * time.Second
}
