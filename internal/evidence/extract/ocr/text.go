package ocr

import (
	"context"

	"onboard/internal/evidence/extract"
)

// TextExtractor reads OCR output that was computed ahead of time and saved
// next to the scan.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ExtractText implements ports.ImageExtractor.
func (x *TextExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", extract.NewError(extract.SourceImage, path, extract.CategoryUnreadable, "extraction cancelled", err)
	}
	data, err := extract.ReadFile(extract.SourceImage, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
