package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"onboard/internal/identity/textnorm"
)

// DecodeFields parses a flat JSON object dump into string fields. Booleans
// become "yes"/"off" so checkbox exports resolve like form flags; nulls are
// dropped. Nested values are a structure error.
func DecodeFields(source Source, path string, data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, NewError(source, path, CategoryStructure, "expected a JSON object of fields", err)
		}
		return nil, NewError(source, path, CategoryMalformed, "decode JSON", err)
	}
	if raw == nil {
		return nil, NewError(source, path, CategoryStructure, "expected a JSON object of fields", nil)
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			fields[k] = val
		case bool:
			if val {
				fields[k] = "yes"
			} else {
				fields[k] = "off"
			}
		case json.Number:
			fields[k] = val.String()
		default:
			return nil, NewError(source, path, CategoryStructure, fmt.Sprintf("field %q: nested values are not supported", k), nil)
		}
	}
	return fields, nil
}

// FieldKey turns a human label ("Account Holder Name:") into a field key
// ("account_holder_name"). Diacritics are folded; every run of other
// characters becomes one underscore.
func FieldKey(label string) string {
	folded := textnorm.Fold(label)
	var b strings.Builder
	pending := false
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// CleanText collapses whitespace runs, as left behind by document renderers.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
