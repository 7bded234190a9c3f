// Package form reads the account-opening form. The PDF form itself is
// exported upstream; these adapters read that export.
package form

import (
	"context"

	"onboard/internal/evidence/extract"
)

// JSONExtractor reads a flat {"field": "value"} dump of the form's fields.
type JSONExtractor struct{}

func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

// ExtractForm implements ports.FormExtractor.
func (x *JSONExtractor) ExtractForm(ctx context.Context, path string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, extract.NewError(extract.SourceForm, path, extract.CategoryUnreadable, "extraction cancelled", err)
	}
	data, err := extract.ReadFile(extract.SourceForm, path)
	if err != nil {
		return nil, err
	}
	return extract.DecodeFields(extract.SourceForm, path, data)
}
