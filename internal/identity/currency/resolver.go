// Package currency resolves the account currency from an account-opening
// form's checkbox fields.
package currency

import "strings"

// Flag is a checkbox field on the form and the currency code it selects.
type Flag struct {
	Field string
	Code  string
}

// Resolver picks the first selected flag in order, falling back to a free-text
// "other currency" field.
type Resolver struct {
	Flags      []Flag
	OtherField string
}

// DefaultResolver matches the account-opening form layout.
var DefaultResolver = Resolver{
	Flags: []Flag{
		{Field: "chf", Code: "CHF"},
		{Field: "eur", Code: "EUR"},
		{Field: "usd", Code: "USD"},
	},
	OtherField: "other_ccy",
}

var selectedValues = map[string]struct{}{
	"yes":     {},
	"/yes":    {},
	"on":      {},
	"/on":     {},
	"true":    {},
	"1":       {},
	"x":       {},
	"checked": {},
}

// Selected reports whether a checkbox value means the box is ticked.
func Selected(value string) bool {
	_, ok := selectedValues[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// Resolve returns the selected currency code, or "" when none is indicated.
func (r Resolver) Resolve(fields map[string]string) string {
	for _, f := range r.Flags {
		if Selected(fields[f.Field]) {
			return f.Code
		}
	}
	if r.OtherField == "" {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(fields[r.OtherField]))
}
