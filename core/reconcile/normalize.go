package reconcile

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	packOfPattern  = regexp.MustCompile(`(?i)\b(?:pack|box|case|set)\s+of\s+\d+\b`)
	quantityToken  = regexp.MustCompile(`^\d+(?:\.\d+)?(?:ml|l|oz|floz|mg|mcg|g|kg|lb|lbs|ct|pk|pack|packs|count|pcs|x)$`)
	numericToken   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	standaloneUnit = map[string]bool{
		"ml": true, "oz": true, "fl": true, "floz": true, "mg": true, "mcg": true,
		"kg": true, "lb": true, "lbs": true, "%": true,
	}
	// Units only treated as such after a number: "vitamin c 1000 g" but
	// "formula x", "12 ct" but "ice pack".
	trailingUnit = map[string]bool{
		"g": true, "l": true, "x": true,
		"ct": true, "pk": true, "pcs": true, "pack": true, "packs": true, "count": true,
	}
)

// Normalizer turns raw product names and brands into comparable identity strings.
// The zero value folds case.
type Normalizer struct {
	CaseSensitive bool
}

// Text normalizes a single free-text field.
func (n Normalizer) Text(s string) string {
	s = foldDiacritics(s)
	if !n.CaseSensitive {
		s = strings.ToLower(s)
	}
	s = packOfPattern.ReplaceAllString(s, " ")
	s = clean(s)

	tokens := strings.Fields(s)
	kept := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		t := strings.ToLower(tokens[i])
		switch {
		case standaloneUnit[t], quantityToken.MatchString(t):
			continue
		case numericToken.MatchString(t) && i+1 < len(tokens) && isUnit(strings.ToLower(tokens[i+1])):
			i++
			continue
		}
		kept = append(kept, tokens[i])
	}
	return strings.Join(kept, " ")
}

// Identity normalizes a (name, brand) pair. Brand tokens that prefix or
// suffix the name are removed from it unless that would empty the name.
func (n Normalizer) Identity(name, brand string) Identity {
	b := n.Text(brand)
	return Identity{Name: stripBrand(n.Text(name), b), Brand: b}
}

func isUnit(t string) bool {
	return standaloneUnit[t] || trailingUnit[t]
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// clean keeps letters and digits, keeps decimal separators between digits,
// isolates percent signs and turns everything else into whitespace.
func clean(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '%':
			b.WriteString(" % ")
		case (r == '.' || r == ',') && i > 0 && i+1 < len(rs) && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]):
			b.WriteRune('.')
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func stripBrand(name, brand string) string {
	if brand == "" {
		return name
	}
	nt, bt := strings.Fields(name), strings.Fields(brand)
	if len(nt) <= len(bt) {
		return name
	}
	if tokensEqual(nt[:len(bt)], bt) {
		return strings.Join(nt[len(bt):], " ")
	}
	if tokensEqual(nt[len(nt)-len(bt):], bt) {
		return strings.Join(nt[:len(nt)-len(bt)], " ")
	}
	return name
}

func tokensEqual(a, b []string) bool {
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
