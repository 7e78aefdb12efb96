package reconcile

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var samplePairs = [][2]Identity{
	{{Name: "voltaren gel", Brand: "gsk"}, {Name: "voltaren arthritis pain gel", Brand: "gsk"}},
	{{Name: "sunscreen lotion", Brand: "acme"}, {Name: "bayer aspirin", Brand: "bayer"}},
	{{Name: "voltaren gel"}, {Name: "voltaren gel", Brand: "gsk"}},
	{{Name: "a"}, {Name: "b"}},
	{{Name: "lip balm", Brand: "nivea"}, {Name: "lip balm", Brand: "nivea"}},
	{{Name: ""}, {Name: "lip balm"}},
}

func TestScorer_Bounds(t *testing.T) {
	s := DefaultConfig().Scorer()
	for _, p := range samplePairs {
		v := s.Compare(p[0], p[1]).Value
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestScorer_OnlyIdenticalScoresOne(t *testing.T) {
	s := DefaultConfig().Scorer()
	for _, p := range samplePairs {
		v := s.Compare(p[0], p[1]).Value
		if p[0] == p[1] {
			assert.Equal(t, 1.0, v)
		} else {
			assert.Less(t, v, 1.0, "%v vs %v", p[0], p[1])
		}
	}
}

func TestScorer_SymmetricAndDeterministic(t *testing.T) {
	s := DefaultConfig().Scorer()
	for _, p := range samplePairs {
		ab := s.Compare(p[0], p[1]).Value
		ba := s.Compare(p[1], p[0]).Value
		assert.Equal(t, ab, ba)
		assert.Equal(t, ab, s.Compare(p[0], p[1]).Value)
	}
}

func TestScorer_MonotonicInEdits(t *testing.T) {
	s := DefaultConfig().Scorer()
	one := s.Field("voltaren", "voltarex")
	two := s.Field("voltaren", "voltarxx")
	three := s.Field("voltaren", "voltaxxx")
	assert.Greater(t, one, two)
	assert.Greater(t, two, three)
}

func TestScorer_EmptyName(t *testing.T) {
	s := DefaultConfig().Scorer()
	assert.Equal(t, 0.0, s.Compare(Identity{}, Identity{Name: "gel"}).Value)
	assert.Equal(t, 0.0, s.Field("", ""))
}

func TestScorer_NameOnlyWhenBrandMissing(t *testing.T) {
	s := DefaultConfig().Scorer()
	bd := s.Compare(Identity{Name: "voltaren gel"}, Identity{Name: "voltaren gels", Brand: "gsk"})
	assert.False(t, bd.BrandCompared)
	assert.Equal(t, bd.Name, bd.Value)
}

func TestScorer_Weighted(t *testing.T) {
	s := Scorer{NameWeight: 0.7, BrandWeight: 0.3, Fuzzy: true}
	bd := s.Compare(
		Identity{Name: "voltaren gel", Brand: "gsk"},
		Identity{Name: "voltaren arthritis pain gel", Brand: "gsk"},
	)
	assert.True(t, bd.BrandCompared)
	assert.True(t, bd.BrandExact)
	assert.Equal(t, 1.0, bd.Brand)
	assert.InDelta(t, 0.7*bd.Name+0.3, bd.Value, 1e-9)
	assert.Greater(t, bd.Value, 0.8)
}

func TestScorer_ExactOnly(t *testing.T) {
	s := Scorer{NameWeight: 0.7, BrandWeight: 0.3, Fuzzy: false}
	assert.Equal(t, 0.0, s.Field("voltaren gel", "voltaren gels"))
	assert.Equal(t, 1.0, s.Field("voltaren gel", "voltaren gel"))
}

func TestScorer_BrandBelowFloorCountsAsZero(t *testing.T) {
	s := DefaultConfig().Scorer()
	bd := s.Compare(Identity{Name: "voltaren gel", Brand: "acme"}, Identity{Name: "voltaren gel", Brand: "bayer"})
	assert.True(t, bd.BrandCompared)
	assert.Equal(t, 0.0, bd.Brand)
	assert.Equal(t, 1.0, bd.Name)
	assert.InDelta(t, 0.7, bd.Value, 1e-9)

	bd = s.Compare(Identity{Name: "voltaren gel", Brand: "gsk"}, Identity{Name: "voltaren gel", Brand: "gska"})
	assert.Greater(t, bd.Brand, 0.8)
	assert.Greater(t, bd.Value, 0.8)
}

func randomText(r *rand.Rand, allowEmpty bool) string {
	alphabet := []string{"a", "b", "c", "o", "l", "é", "ß", " ", "1", "\xff"}
	n := r.Intn(8)
	if !allowEmpty {
		n++
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(alphabet[r.Intn(len(alphabet))])
	}
	return b.String()
}

func TestScorer_RandomPairs(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	scorers := []Scorer{
		DefaultConfig().Scorer(),
		{NameWeight: 0.7, BrandWeight: 0.3, Fuzzy: true},
		{NameWeight: 1, Fuzzy: true},
		{NameWeight: 0.7, BrandWeight: 0.3},
	}

	for i := 0; i < 20000; i++ {
		a := Identity{Name: randomText(r, false), Brand: randomText(r, true)}
		b := Identity{Name: randomText(r, false), Brand: randomText(r, true)}
		if i%10 == 0 {
			b = a
		}
		s := scorers[i%len(scorers)]

		ab := s.Compare(a, b).Value
		ba := s.Compare(b, a).Value
		if ab != ba || ab < 0 || ab > 1 || (ab == 1) != (a == b) {
			t.Fatalf("%+v: %q vs %q scored %v / %v", s, a, b, ab, ba)
		}
	}
}
