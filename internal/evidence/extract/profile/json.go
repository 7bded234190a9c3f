package profile

import (
	"context"

	"onboard/internal/evidence/extract"
)

// JSONExtractor reads a flat {"field": "value"} dump of the profile.
type JSONExtractor struct{}

func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

// ExtractProfile implements ports.ProfileExtractor.
func (x *JSONExtractor) ExtractProfile(ctx context.Context, path string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, extract.NewError(extract.SourceProfile, path, extract.CategoryUnreadable, "extraction cancelled", err)
	}
	data, err := extract.ReadFile(extract.SourceProfile, path)
	if err != nil {
		return nil, err
	}
	fields, err := extract.DecodeFields(extract.SourceProfile, path, data)
	if err != nil {
		return nil, err
	}
	fields["gender"] = NormalizeGender(fields["gender"])
	return fields, nil
}
