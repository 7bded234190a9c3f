// Package profile reads the client profile document.
package profile

import (
	"bytes"
	"context"
	"maps"

	"github.com/PuerkitoBio/goquery"

	"onboard/internal/evidence/extract"
)

// DefaultLabelAliases maps label spellings seen in rendered profiles onto the
// profile's field keys.
var DefaultLabelAliases = map[string]string{
	"first_middle_name_s":    "first_middle_names",
	"first_and_middle_names": "first_middle_names",
	"first_names":            "first_middle_names",
	"given_names":            "first_middle_names",
	"surname":                "last_name",
	"family_name":            "last_name",
	"passport_number":        "id_passport_number",
	"passport_no":            "id_passport_number",
	"id_passport_no":         "id_passport_number",
	"phone":                  "telephone",
	"phone_number":           "telephone",
	"telephone_number":       "telephone",
	"e_mail":                 "email",
	"email_address":          "email",
	"country":                "country_of_domicile",
	"domicile":               "country_of_domicile",
}

// HTMLExtractor reads a profile rendered as HTML. Key/value pairs come from
// two-cell table rows and from definition lists; the first occurrence of a
// key wins.
type HTMLExtractor struct {
	aliases map[string]string
}

// HTMLOption configures the HTMLExtractor.
type HTMLOption func(*HTMLExtractor)

// WithLabelAliases adds label aliases on top of the defaults.
func WithLabelAliases(aliases map[string]string) HTMLOption {
	return func(x *HTMLExtractor) {
		maps.Copy(x.aliases, aliases)
	}
}

func NewHTMLExtractor(opts ...HTMLOption) *HTMLExtractor {
	x := &HTMLExtractor{aliases: maps.Clone(DefaultLabelAliases)}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ExtractProfile implements ports.ProfileExtractor.
func (x *HTMLExtractor) ExtractProfile(ctx context.Context, path string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, extract.NewError(extract.SourceProfile, path, extract.CategoryUnreadable, "extraction cancelled", err)
	}
	data, err := extract.ReadFile(extract.SourceProfile, path)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, extract.NewError(extract.SourceProfile, path, extract.CategoryMalformed, "parse HTML", err)
	}

	fields := make(map[string]string)
	add := func(label, value string) {
		key := x.key(label)
		if key == "" {
			return
		}
		if _, dup := fields[key]; dup {
			return
		}
		fields[key] = extract.CleanText(value)
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Children().Filter("td, th")
		if cells.Length() < 2 {
			return
		}
		add(cells.Eq(0).Text(), cells.Eq(1).Text())
	})
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		add(dt.Text(), dt.NextFiltered("dd").Text())
	})

	if len(fields) == 0 {
		return nil, extract.NewError(extract.SourceProfile, path, extract.CategoryStructure, "no key/value rows found", nil)
	}

	fields["gender"] = resolveGender(doc.Text(), fields["gender"])
	return fields, nil
}

func (x *HTMLExtractor) key(label string) string {
	key := extract.FieldKey(label)
	if alias, ok := x.aliases[key]; ok {
		return alias
	}
	return key
}

// resolveGender prefers a ticked checkbox anywhere in the document, then a
// plain gender value.
func resolveGender(text, value string) string {
	if g := GenderFromCheckboxes(text); g != "" {
		return g
	}
	return NormalizeGender(value)
}
