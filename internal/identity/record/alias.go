package record

import (
	"errors"
	"fmt"
	"strings"

	"onboard/internal/identity/address"
	"onboard/internal/identity/currency"
)

// Rename copies a source field onto a canonical field.
type Rename struct {
	From string
	To   Field
}

// Composite joins several source fields with single spaces. It only applies
// when every part is present and the target was not supplied by a Rename.
type Composite struct {
	To   Field
	From []string
}

// AddressComponents names the source fields holding a structured address.
type AddressComponents struct {
	BuildingNumber string
	StreetName     string
	PostalCode     string
	City           string
	Country        string
}

// AddressRule tells the merge how a source expresses the address: either as
// structured components or as free text with a separate country field.
// The country is also compared on its own through a Rename to FieldCountry,
// so a source carrying only a country is still checked.
type AddressRule struct {
	Components *AddressComponents
	FreeText   string
	Country    string
}

// AliasTable maps one source's vocabulary onto the record's canonical fields.
type AliasTable struct {
	Source     string
	Renames    []Rename
	Composites []Composite
	Address    *AddressRule
	Currency   *currency.Resolver
}

// FormAliases maps the account-opening form.
var FormAliases = AliasTable{
	Source: "form",
	Renames: []Rename{
		{From: "account_name", To: FieldAccountName},
		{From: "account_holder_name", To: FieldName},
		{From: "account_holder_surname", To: FieldSurname},
		{From: "passport_number", To: FieldPassport},
		{From: "phone_number", To: FieldPhone},
		{From: "email", To: FieldEmail},
		{From: "country", To: FieldCountry},
	},
	Composites: []Composite{
		{To: FieldAccountName, From: []string{"account_holder_name", "account_holder_surname"}},
	},
	Address: &AddressRule{
		Components: &AddressComponents{
			BuildingNumber: "building_number",
			StreetName:     "street_name",
			PostalCode:     "postal_code",
			City:           "city",
			Country:        "country",
		},
	},
	Currency: &currency.DefaultResolver,
}

// ProfileAliases maps the client profile document.
var ProfileAliases = AliasTable{
	Source: "profile",
	Renames: []Rename{
		{From: "first_middle_names", To: FieldName},
		{From: "last_name", To: FieldSurname},
		{From: "id_passport_number", To: FieldPassport},
		{From: "email", To: FieldEmail},
		{From: "telephone", To: FieldPhone},
		{From: "nationality", To: FieldNationality},
		{From: "gender", To: FieldGender},
		{From: "country_of_domicile", To: FieldCountry},
	},
	Composites: []Composite{
		{To: FieldAccountName, From: []string{"first_middle_names", "last_name"}},
	},
	Address: &AddressRule{
		FreeText: "address",
		Country:  "country_of_domicile",
	},
}

// Validate checks that every target is a canonical field and that the address
// rule is unambiguous.
func (t AliasTable) Validate() error {
	var errs []error
	if t.Source == "" {
		errs = append(errs, errors.New("alias table source is required"))
	}
	for _, r := range t.Renames {
		if !r.To.Known() {
			errs = append(errs, fmt.Errorf("rename %s -> %s: unknown field", r.From, r.To))
		}
	}
	for _, c := range t.Composites {
		if !c.To.Known() {
			errs = append(errs, fmt.Errorf("composite -> %s: unknown field", c.To))
		}
		if len(c.From) == 0 {
			errs = append(errs, fmt.Errorf("composite -> %s: no source fields", c.To))
		}
	}
	if t.Address != nil && t.Address.Components != nil && t.Address.FreeText != "" {
		errs = append(errs, errors.New("address rule must use components or free text, not both"))
	}
	return errors.Join(errs...)
}

// Result is the outcome of folding one source into the record.
type Result struct {
	Source     string
	Applied    []Field
	Mismatches []Mismatch
	// DroppedAddressParts lists free-text address parts the parser ignored.
	DroppedAddressParts []string
}

// OK reports whether every write was accepted.
func (r Result) OK() bool {
	return len(r.Mismatches) == 0
}

// Err returns a *MergeError when the merge failed.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &MergeError{Source: r.Source, Mismatches: r.Mismatches}
}

// Merge folds a source's raw field map into the record through table. Empty
// values count as absent and are not written. Every mapping is attempted so
// the result lists all mismatches, but the merge succeeds only if there are
// none.
func (r *Record) Merge(fields map[string]string, table AliasTable) Result {
	res := Result{Source: table.Source}
	apply := func(f Field, v Value) {
		ok, m := r.compareOrSet(table.Source, f, v)
		if ok {
			res.Applied = append(res.Applied, f)
			return
		}
		res.Mismatches = append(res.Mismatches, *m)
	}

	renamed := make(map[Field]bool, len(table.Renames))
	for _, rn := range table.Renames {
		if v := clean(fields[rn.From]); v != "" {
			apply(rn.To, Text(v))
			renamed[rn.To] = true
		}
	}

	for _, c := range table.Composites {
		if renamed[c.To] {
			continue
		}
		if v, ok := join(fields, c.From); ok {
			apply(c.To, Text(v))
		}
	}

	if table.Address != nil {
		if a, dropped, ok := table.Address.build(fields); ok {
			apply(FieldAddress, AddressValue{Address: a})
			res.DroppedAddressParts = dropped
		}
	}

	if table.Currency != nil {
		if code := table.Currency.Resolve(fields); code != "" {
			apply(FieldCurrency, Text(code))
		}
	}

	return res
}

func (rule *AddressRule) build(fields map[string]string) (address.Address, []string, bool) {
	if c := rule.Components; c != nil {
		building := clean(fields[c.BuildingNumber])
		street := clean(fields[c.StreetName])
		postal := clean(fields[c.PostalCode])
		city := clean(fields[c.City])
		if building == "" && street == "" && postal == "" && city == "" {
			return address.Address{}, nil, false
		}
		return address.New(building, street, postal, city, clean(fields[c.Country])), nil, true
	}

	raw := clean(fields[rule.FreeText])
	if raw == "" {
		return address.Address{}, nil, false
	}
	parsed := address.ParseDetailed(raw, clean(fields[rule.Country]))
	return parsed.Address, parsed.DroppedParts, true
}

func join(fields map[string]string, from []string) (string, bool) {
	parts := make([]string, 0, len(from))
	for _, name := range from {
		v := clean(fields[name])
		if v == "" {
			return "", false
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, " "), true
}

// clean trims extractor whitespace noise; it does not otherwise alter values.
func clean(s string) string {
	return strings.TrimSpace(s)
}
