package ports

//go:generate mockgen -source=extract.go -destination=../mocks/extract_mocks.go -package=mocks

import "context"

// FormExtractor reads the account-opening form into raw field/value pairs.
type FormExtractor interface {
	ExtractForm(ctx context.Context, path string) (map[string]string, error)
}

// ProfileExtractor reads the client profile document into raw field/value
// pairs. Implementations expose "gender" as male, female or unknown.
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, path string) (map[string]string, error)
}

// ImageExtractor returns the OCR text of a passport scan.
type ImageExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
