// Package extract turns onboarding documents into raw field maps. Concrete
// adapters live in the form, profile and ocr subpackages; Registry dispatches
// to them by file extension so the reconciliation engine sees one extractor
// per source.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"onboard/internal/reconciliation/ports"
)

// Registry maintains the adapters for each source, keyed by extension.
type Registry struct {
	forms    map[string]ports.FormExtractor
	profiles map[string]ports.ProfileExtractor
	images   map[string]ports.ImageExtractor
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		forms:    make(map[string]ports.FormExtractor),
		profiles: make(map[string]ports.ProfileExtractor),
		images:   make(map[string]ports.ImageExtractor),
	}
}

// RegisterForm adds a form adapter for the given extensions.
func (r *Registry) RegisterForm(x ports.FormExtractor, exts ...string) error {
	return register(r.forms, SourceForm, x, exts)
}

// RegisterProfile adds a profile adapter for the given extensions.
func (r *Registry) RegisterProfile(x ports.ProfileExtractor, exts ...string) error {
	return register(r.profiles, SourceProfile, x, exts)
}

// RegisterImage adds an OCR adapter for the given extensions.
func (r *Registry) RegisterImage(x ports.ImageExtractor, exts ...string) error {
	return register(r.images, SourceImage, x, exts)
}

func register[T any](m map[string]T, source Source, x T, exts []string) error {
	for _, ext := range exts {
		key := normalizeExt(ext)
		if _, exists := m[key]; exists {
			return fmt.Errorf("%s adapter for %s: %w", source, key, ErrAdapterDuplicate)
		}
		m[key] = x
	}
	return nil
}

// Extensions lists the registered extensions for a source, sorted.
func (r *Registry) Extensions(source Source) []string {
	var keys []string
	switch source {
	case SourceForm:
		keys = mapKeys(r.forms)
	case SourceProfile:
		keys = mapKeys(r.profiles)
	case SourceImage:
		keys = mapKeys(r.images)
	}
	slices.Sort(keys)
	return keys
}

// Supports reports whether a document at path has a registered adapter.
func (r *Registry) Supports(source Source, path string) bool {
	return slices.Contains(r.Extensions(source), normalizeExt(filepath.Ext(path)))
}

// ExtractForm implements ports.FormExtractor.
func (r *Registry) ExtractForm(ctx context.Context, path string) (map[string]string, error) {
	x, err := lookup(r.forms, SourceForm, path)
	if err != nil {
		return nil, err
	}
	return x.ExtractForm(ctx, path)
}

// ExtractProfile implements ports.ProfileExtractor.
func (r *Registry) ExtractProfile(ctx context.Context, path string) (map[string]string, error) {
	x, err := lookup(r.profiles, SourceProfile, path)
	if err != nil {
		return nil, err
	}
	return x.ExtractProfile(ctx, path)
}

// ExtractText implements ports.ImageExtractor.
func (r *Registry) ExtractText(ctx context.Context, path string) (string, error) {
	x, err := lookup(r.images, SourceImage, path)
	if err != nil {
		return "", err
	}
	return x.ExtractText(ctx, path)
}

func lookup[T any](m map[string]T, source Source, path string) (T, error) {
	ext := normalizeExt(filepath.Ext(path))
	x, ok := m[ext]
	if !ok {
		var zero T
		return zero, NewError(source, path, CategoryMalformed, fmt.Sprintf("unsupported document type %q", ext), ErrNoAdapter)
	}
	return x, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func mapKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
