package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		expected string
	}{
		{name: "nil fields", fields: nil, expected: ""},
		{name: "single flag", fields: map[string]string{"eur": "/Yes"}, expected: "EUR"},
		{name: "first selected flag wins", fields: map[string]string{"usd": "On", "chf": "true"}, expected: "CHF"},
		{name: "unselected flags ignored", fields: map[string]string{"chf": "Off", "eur": "", "usd": "X"}, expected: "USD"},
		{name: "falls back to other currency", fields: map[string]string{"chf": "Off", "other_ccy": " gbp "}, expected: "GBP"},
		{name: "flag beats other currency", fields: map[string]string{"eur": "1", "other_ccy": "JPY"}, expected: "EUR"},
		{name: "nothing selected", fields: map[string]string{"chf": "no", "other_ccy": "  "}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultResolver.Resolve(tt.fields))
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	fields := map[string]string{"usd": "yes", "eur": "yes", "chf": "yes"}
	for range 20 {
		assert.Equal(t, "CHF", DefaultResolver.Resolve(fields))
	}
}

func TestResolverWithoutOtherField(t *testing.T) {
	r := Resolver{Flags: []Flag{{Field: "gbp", Code: "GBP"}}}
	assert.Equal(t, "", r.Resolve(map[string]string{"other_ccy": "JPY"}))
	assert.Equal(t, "GBP", r.Resolve(map[string]string{"gbp": "checked"}))
}
