package reconcile

import (
	"math"

	"github.com/hbollon/go-edlib"
)

// belowOne is the largest score a non-identical pair may receive.
var belowOne = math.Nextafter(1, 0)

// Scorer computes similarity between normalized identities.
type Scorer struct {
	NameWeight  float64
	BrandWeight float64
	Fuzzy       bool
	// BrandFloor is the brand similarity below which brands count as
	// different and contribute nothing to the combined score.
	BrandFloor float64
}

// Breakdown is the per-field result of comparing two identities.
type Breakdown struct {
	// Value is the combined score in [0,1].
	Value float64
	// Name is the name similarity.
	Name float64
	// Brand is the brand similarity. Zero when brands were not compared or
	// scored below the brand floor.
	Brand float64
	// BrandCompared is set when both sides carried a brand and brand weight is positive.
	BrandCompared bool
	// BrandExact is set when both brands are present and equal.
	BrandExact bool
	// NameDistance is the Levenshtein distance between the names.
	NameDistance int
}

// Field returns the similarity of two normalized strings in [0,1].
// Equal non-empty strings score 1, and only equal strings do.
func (s Scorer) Field(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if !s.Fuzzy {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return bound(float64(edlib.JaroWinklerSimilarity(a, b)), false)
}

// Compare scores query against candidate. The result is symmetric.
func (s Scorer) Compare(a, b Identity) Breakdown {
	bd := Breakdown{
		NameDistance: edlib.LevenshteinDistance(a.Name, b.Name),
		BrandExact:   a.Brand != "" && a.Brand == b.Brand,
	}
	if a.Name == "" || b.Name == "" {
		return bd
	}
	bd.Name = s.Field(a.Name, b.Name)

	nw, bw := s.NameWeight, s.BrandWeight
	if a.Brand == "" || b.Brand == "" || bw <= 0 || nw+bw <= 0 {
		bd.Value = bd.Name
	} else {
		bd.BrandCompared = true
		if brand := s.Field(a.Brand, b.Brand); brand >= s.BrandFloor {
			bd.Brand = brand
		}
		bd.Value = (nw*bd.Name + bw*bd.Brand) / (nw + bw)
	}
	bd.Value = bound(bd.Value, a == b)
	return bd
}

func bound(v float64, identical bool) float64 {
	switch {
	case identical:
		return 1
	case math.IsNaN(v) || v < 0:
		return 0
	case v >= 1:
		return belowOne
	}
	return v
}
