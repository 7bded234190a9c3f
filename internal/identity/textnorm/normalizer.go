// Package textnorm canonicalizes identity text for comparison. Decorated Latin
// letters fold to their base form and combining marks are dropped, so values
// typed on a form compare equal to the same values read back by OCR.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultOverrides folds letters that carry no decomposable diacritic. NFD
// leaves these untouched, so they need an explicit single-letter mapping.
var DefaultOverrides = map[rune]string{
	'ł': "l",
	'Ł': "L",
	'đ': "d",
	'Đ': "D",
	'ø': "o",
	'Ø': "O",
	'ħ': "h",
	'Ħ': "H",
}

// Normalizer applies the override table and then strips combining marks.
// It is safe for concurrent use.
type Normalizer struct {
	overrides map[rune]string
}

// New builds a Normalizer with the given per-letter overrides. Override
// outputs are normalized themselves, which keeps Normalize idempotent.
func New(overrides map[rune]string) *Normalizer {
	table := make(map[rune]string, len(overrides))
	for r, repl := range overrides {
		table[r] = stripMarks(repl)
	}
	return &Normalizer{overrides: table}
}

var defaultNormalizer = New(DefaultOverrides)

// Normalize folds text with the default override table. Case is preserved.
func Normalize(s string) string {
	return defaultNormalizer.Normalize(s)
}

// Fold normalizes text with the default table and lower-cases it.
func Fold(s string) string {
	return defaultNormalizer.Fold(s)
}

// Normalize returns s with overrides applied and combining marks removed.
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}
	return stripMarks(n.applyOverrides(s))
}

// Fold is Normalize followed by lower-casing.
func (n *Normalizer) Fold(s string) string {
	return strings.ToLower(n.Normalize(s))
}

func (n *Normalizer) applyOverrides(s string) string {
	if len(n.overrides) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := n.overrides[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripMarks decomposes, drops nonspacing marks and recomposes. A fresh chain
// per call because transform.Chain values carry state.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
