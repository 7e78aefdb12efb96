package reconcile

import (
	"math"
	"sort"
)

// scoreTolerance is the distance under which two scores are treated as equal.
const scoreTolerance = 1e-9

// Matcher resolves a normalized identity against catalog candidates.
type Matcher struct {
	cfg    Config
	scorer Scorer
}

// NewMatcher creates a matcher for the given policy.
func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg, scorer: cfg.Scorer()}
}

// Config returns the policy the matcher was built with.
func (m *Matcher) Config() Config {
	return m.cfg
}

type scored struct {
	Candidate
	Breakdown
}

// Match returns the best catalog candidate for query.
//
// Candidates scoring at least the threshold and within the ambiguity epsilon
// of the best score are in contention. Contention is broken by exact brand
// equality, then by the smallest name edit distance. Contenders left with
// equal scores are resolved by the most recent UpdatedAt and then by the
// smallest ID. Anything still unresolved is reported as ambiguous.
func (m *Matcher) Match(query Identity, candidates []Candidate) MatchResult {
	if query.Empty() {
		return MatchResult{Unmatchable: true}
	}

	all := make([]scored, 0, len(candidates))
	best := 0.0
	for _, c := range candidates {
		bd := m.scorer.Compare(query, c.Identity)
		all = append(all, scored{Candidate: c, Breakdown: bd})
		if bd.Value > best {
			best = bd.Value
		}
	}

	result := MatchResult{Score: best}
	if best < m.cfg.Threshold {
		return result
	}

	var contenders []scored
	for _, s := range all {
		if s.Value >= m.cfg.Threshold && best-s.Value <= m.cfg.AmbiguityEpsilon+scoreTolerance {
			contenders = append(contenders, s)
		}
	}
	sortContenders(contenders)

	if len(contenders) > 1 {
		result.Contenders = toContenders(contenders)
	}

	winner, ok := breakTies(contenders)
	if !ok {
		result.Ambiguous = true
		return result
	}

	result.CatalogID = winner.ID
	result.Score = winner.Value
	result.MatchedFields = m.matchedFields(winner.Breakdown)
	return result
}

func (m *Matcher) matchedFields(bd Breakdown) []MatchedField {
	var fields []MatchedField
	if bd.Name >= m.cfg.Threshold {
		fields = append(fields, FieldName)
	}
	if bd.BrandCompared && bd.Brand >= m.cfg.Threshold {
		fields = append(fields, FieldBrand)
	}
	return fields
}

func breakTies(cs []scored) (scored, bool) {
	if len(cs) == 1 {
		return cs[0], true
	}

	cs = filter(cs, func(s scored) bool { return s.BrandExact })
	if len(cs) == 1 {
		return cs[0], true
	}

	minDistance := math.MaxInt
	for _, s := range cs {
		minDistance = min(minDistance, s.NameDistance)
	}
	cs = filter(cs, func(s scored) bool { return s.NameDistance == minDistance })
	if len(cs) == 1 {
		return cs[0], true
	}

	for _, s := range cs[1:] {
		if math.Abs(s.Value-cs[0].Value) > scoreTolerance {
			return scored{}, false
		}
	}

	latest := cs[0].UpdatedAt
	for _, s := range cs[1:] {
		if s.UpdatedAt.After(latest) {
			latest = s.UpdatedAt
		}
	}
	cs = filter(cs, func(s scored) bool { return s.UpdatedAt.Equal(latest) })

	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
	return cs[0], true
}

// filter keeps the matching entries, or all of them when none match.
func filter(cs []scored, keep func(scored) bool) []scored {
	out := make([]scored, 0, len(cs))
	for _, s := range cs {
		if keep(s) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return cs
	}
	return out
}

func sortContenders(cs []scored) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Value != cs[j].Value {
			return cs[i].Value > cs[j].Value
		}
		return cs[i].ID < cs[j].ID
	})
}

func toContenders(cs []scored) []Contender {
	out := make([]Contender, len(cs))
	for i, s := range cs {
		out[i] = Contender{ID: s.ID, Score: s.Value}
	}
	return out
}
