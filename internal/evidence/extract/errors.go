package extract

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Category is the normalized extraction failure taxonomy.
type Category string

const (
	// CategoryMissing indicates the document does not exist
	CategoryMissing Category = "missing"

	// CategoryMalformed indicates the document could not be parsed at all
	CategoryMalformed Category = "malformed"

	// CategoryStructure indicates the document parsed but lacks the expected layout
	CategoryStructure Category = "structure"

	// CategoryUnreadable indicates an I/O or tool failure while reading
	CategoryUnreadable Category = "unreadable"
)

// Source names which document an extractor reads.
type Source string

const (
	SourceForm    Source = "form"
	SourceProfile Source = "profile"
	SourceImage   Source = "image"
)

// ExtractionError wraps adapter failures with a normalized category.
type ExtractionError struct {
	Source     Source
	Path       string
	Category   Category
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("extract %s %s [%s]: %s: %v", e.Source, e.Path, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("extract %s %s [%s]: %s", e.Source, e.Path, e.Category, e.Message)
}

// Unwrap supports error unwrapping
func (e *ExtractionError) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized extraction error.
func NewError(source Source, path string, category Category, message string, underlying error) *ExtractionError {
	return &ExtractionError{
		Source:     source,
		Path:       path,
		Category:   category,
		Message:    message,
		Underlying: underlying,
	}
}

// CategoryOf extracts the category from an error chain. Errors that are not
// extraction errors report CategoryUnreadable.
func CategoryOf(err error) Category {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return CategoryUnreadable
}

// ReadFile reads a whole document, classifying a missing file separately
// from other I/O failures.
func ReadFile(source Source, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NewError(source, path, CategoryMissing, "document not found", err)
	}
	return nil, NewError(source, path, CategoryUnreadable, "read document", err)
}

// Stat checks that a document exists and is a regular file.
func Stat(source Source, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewError(source, path, CategoryMissing, "document not found", err)
		}
		return NewError(source, path, CategoryUnreadable, "stat document", err)
	}
	if info.IsDir() {
		return NewError(source, path, CategoryStructure, "path is a directory", nil)
	}
	return nil
}

var (
	ErrNoAdapter        = errors.New("no adapter registered for document type")
	ErrAdapterDuplicate = errors.New("adapter already registered")
)
