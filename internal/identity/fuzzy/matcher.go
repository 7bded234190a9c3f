// Package fuzzy decides whether identity values held on a record plausibly
// appear in noisy OCR output of a passport scan.
//
// A reference value is turned into a masked pattern: every character that
// normalization would change (accented letters, stroked letters) becomes a
// wildcard, because scans routinely lose diacritics. The pattern is then
// widened once per adjacent character pair, each variant replacing that pair
// with wildcards, which absorbs a single OCR misread. The value matches when
// any variant occurs in the folded OCR text.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"onboard/internal/identity/textnorm"
)

// token is one pattern position: a literal rune or a wildcard.
type token struct {
	r    rune
	wild bool
}

// Pattern is a masked reference value.
type Pattern []token

// String renders the pattern with '*' for wildcards, for diagnostics.
func (p Pattern) String() string {
	var b strings.Builder
	for _, t := range p {
		if t.wild {
			b.WriteByte('*')
			continue
		}
		b.WriteRune(t.r)
	}
	return b.String()
}

// Variants returns the pattern itself followed by one variant per adjacent
// pair with both positions turned into wildcards.
func (p Pattern) Variants() []Pattern {
	out := make([]Pattern, 0, len(p))
	out = append(out, p)
	for i := 0; i+1 < len(p); i++ {
		v := make(Pattern, len(p))
		copy(v, p)
		v[i].wild = true
		v[i+1].wild = true
		out = append(out, v)
	}
	return out
}

// Regexp compiles the pattern for an unanchored search. Literals are escaped
// and each run of wildcards becomes ".*".
func (p Pattern) Regexp() (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?s)")
	prevWild := false
	for _, t := range p {
		if t.wild {
			if !prevWild {
				b.WriteString(".*")
			}
			prevWild = true
			continue
		}
		prevWild = false
		b.WriteString(regexp.QuoteMeta(string(t.r)))
	}
	return regexp.Compile(b.String())
}

// Matcher performs the tolerant substring check.
type Matcher struct {
	normalizer *textnorm.Normalizer
}

// NewMatcher builds a Matcher around a normalizer; nil selects the default
// override table.
func NewMatcher(n *textnorm.Normalizer) *Matcher {
	if n == nil {
		n = textnorm.New(textnorm.DefaultOverrides)
	}
	return &Matcher{normalizer: n}
}

// Mask builds the masked pattern for reference. Literals are lower-cased to
// line up with folded OCR text.
func (m *Matcher) Mask(reference string) Pattern {
	p := make(Pattern, 0, len(reference))
	for _, r := range reference {
		if m.normalizer.Normalize(string(r)) != string(r) {
			p = append(p, token{wild: true})
			continue
		}
		p = append(p, token{r: unicode.ToLower(r)})
	}
	return p
}

// PrepareText folds OCR output for matching: normalized, lower-cased, with
// line breaks turned into spaces.
func (m *Matcher) PrepareText(ocr string) string {
	folded := m.normalizer.Fold(ocr)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(folded)
}

// Matches reports whether reference plausibly appears in ocr. An empty
// reference has nothing to verify and matches vacuously.
func (m *Matcher) Matches(reference, ocr string) bool {
	return m.matchPrepared(reference, m.PrepareText(ocr))
}

func (m *Matcher) matchPrepared(reference, text string) bool {
	if strings.TrimSpace(reference) == "" {
		return true
	}
	for _, v := range m.Mask(reference).Variants() {
		re, err := v.Regexp()
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
