// Package record holds the per-evaluation identity record that every document
// source is merged into. The first source to supply a field is authoritative;
// later sources must agree with it exactly.
package record

import (
	"fmt"
	"sort"
	"strings"

	"onboard/internal/identity/address"
)

// Field is a canonical identity field name.
type Field string

const (
	FieldAccountName Field = "account_name"
	FieldName        Field = "name"
	FieldSurname     Field = "surname"
	FieldPassport    Field = "passport"
	FieldPhone       Field = "phone"
	FieldEmail       Field = "email"
	FieldCurrency    Field = "currency"
	FieldAddress     Field = "address"
	FieldCountry     Field = "country"
	FieldNationality Field = "nationality"
	FieldGender      Field = "gender"
)

var knownFields = map[Field]struct{}{
	FieldAccountName: {},
	FieldName:        {},
	FieldSurname:     {},
	FieldPassport:    {},
	FieldPhone:       {},
	FieldEmail:       {},
	FieldCurrency:    {},
	FieldAddress:     {},
	FieldCountry:     {},
	FieldNationality: {},
	FieldGender:      {},
}

// Known reports whether f is one of the record's canonical fields.
func (f Field) Known() bool {
	_, ok := knownFields[f]
	return ok
}

// Value is a field value held on the record.
type Value interface {
	Equal(other Value) bool
	String() string
	isValue()
}

// Text is a literal string value.
type Text string

func (t Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && o == t
}

func (t Text) String() string { return string(t) }
func (Text) isValue()         {}

// AddressValue holds a structured address; equality is structural.
type AddressValue struct {
	address.Address
}

func (a AddressValue) Equal(other Value) bool {
	o, ok := other.(AddressValue)
	return ok && a.Address.Equal(o.Address)
}

func (AddressValue) isValue() {}

type entry struct {
	value  Value
	source string
}

// Record accumulates identity fields for a single client evaluation. It is not
// safe for concurrent use; each evaluation owns its own Record.
type Record struct {
	entries map[Field]entry
}

// New returns an empty record.
func New() *Record {
	return &Record{entries: make(map[Field]entry)}
}

// CompareOrSet stores v when field is unset and returns true. When field is
// already set it returns whether v equals the held value, leaving the record
// unchanged either way.
func (r *Record) CompareOrSet(field Field, v Value) bool {
	ok, _ := r.compareOrSet("", field, v)
	return ok
}

func (r *Record) compareOrSet(source string, field Field, v Value) (bool, *Mismatch) {
	if !field.Known() || v == nil {
		return false, &Mismatch{Source: source, Field: field, Offered: v, Kind: MismatchUnknownField}
	}
	held, ok := r.entries[field]
	if !ok {
		r.entries[field] = entry{value: v, source: source}
		return true, nil
	}
	if held.value.Equal(v) {
		return true, nil
	}
	return false, &Mismatch{
		Source:  source,
		Field:   field,
		Held:    held.value,
		HeldBy:  held.source,
		Offered: v,
		Kind:    MismatchConflict,
	}
}

// Get returns the value held for field.
func (r *Record) Get(field Field) (Value, bool) {
	e, ok := r.entries[field]
	return e.value, ok
}

// Text returns the string form of field, or "" when unset.
func (r *Record) Text(field Field) string {
	if e, ok := r.entries[field]; ok {
		return e.value.String()
	}
	return ""
}

// Address returns the held address, if any.
func (r *Record) Address() (address.Address, bool) {
	e, ok := r.entries[FieldAddress]
	if !ok {
		return address.Address{}, false
	}
	av, ok := e.value.(AddressValue)
	return av.Address, ok
}

// SetBy returns the source that first wrote field.
func (r *Record) SetBy(field Field) string {
	return r.entries[field].source
}

// Fields lists the populated fields in lexical order.
func (r *Record) Fields() []Field {
	out := make([]Field, 0, len(r.entries))
	for f := range r.entries {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of populated fields.
func (r *Record) Len() int {
	return len(r.entries)
}

// MismatchKind distinguishes a cross-source conflict from a write to a field
// the record does not recognise.
type MismatchKind string

const (
	MismatchConflict     MismatchKind = "conflict"
	MismatchUnknownField MismatchKind = "unknown_field"
)

// Mismatch describes one rejected write.
type Mismatch struct {
	Source  string
	Field   Field
	Held    Value
	HeldBy  string
	Offered Value
	Kind    MismatchKind
}

func (m Mismatch) String() string {
	if m.Kind == MismatchUnknownField {
		return fmt.Sprintf("%s: unknown field %q", m.Source, m.Field)
	}
	return fmt.Sprintf("%s: %s %q (from %s) != %q", m.Source, m.Field, valueString(m.Held), m.HeldBy, valueString(m.Offered))
}

func valueString(v Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// MergeError reports that a source disagreed with the record.
type MergeError struct {
	Source     string
	Mismatches []Mismatch
}

func (e *MergeError) Error() string {
	fields := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		fields = append(fields, string(m.Field))
	}
	return fmt.Sprintf("merge %s: %d mismatched field(s): %s", e.Source, len(e.Mismatches), strings.Join(fields, ", "))
}
