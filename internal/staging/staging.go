// Package staging writes uploaded documents into a private temp directory
// for the duration of one evaluation.
package staging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMaxDocumentBytes bounds a single staged document.
const DefaultMaxDocumentBytes = 20 << 20

var (
	ErrDocumentTooLarge = errors.New("document exceeds size limit")
	ErrDuplicateKind    = errors.New("document kind staged twice")
	ErrInvalidKind      = errors.New("invalid document kind")
)

var validKind = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Document is one upload to stage. Name only contributes its extension.
type Document struct {
	Kind string
	Name string
	Body io.Reader
}

// Area creates workspaces under a root directory.
type Area struct {
	root     string
	maxBytes int64
	logger   *slog.Logger
}

// Option configures an Area.
type Option func(*Area)

// WithMaxDocumentBytes overrides the per-document size limit.
func WithMaxDocumentBytes(n int64) Option {
	return func(a *Area) {
		if n > 0 {
			a.maxBytes = n
		}
	}
}

// WithLogger sets the logger used to report cleanup failures.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Area) {
		a.logger = logger
	}
}

// New returns an Area rooted at root; "" uses the system temp directory.
func New(root string, opts ...Option) *Area {
	a := &Area{root: root, maxBytes: DefaultMaxDocumentBytes}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Workspace is one evaluation's staged documents.
type Workspace struct {
	dir    string
	paths  map[string]string
	logger *slog.Logger
}

// Stage copies docs into a fresh workspace. On error nothing is left behind.
func (a *Area) Stage(docs ...Document) (*Workspace, error) {
	dir, err := os.MkdirTemp(a.root, "evaluation-*")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	ws := &Workspace{dir: dir, paths: make(map[string]string, len(docs)), logger: a.logger}

	for _, doc := range docs {
		if err := ws.write(doc, a.maxBytes); err != nil {
			_ = ws.Cleanup()
			return nil, err
		}
	}
	return ws, nil
}

func (w *Workspace) write(doc Document, maxBytes int64) error {
	if !validKind.MatchString(doc.Kind) {
		return fmt.Errorf("%w: %q", ErrInvalidKind, doc.Kind)
	}
	if _, dup := w.paths[doc.Kind]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, doc.Kind)
	}

	path := filepath.Join(w.dir, doc.Kind+extension(doc.Name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", doc.Kind, err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(doc.Body, maxBytes+1))
	closeErr := f.Close()
	if copyErr != nil {
		return fmt.Errorf("write %s: %w", doc.Kind, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", doc.Kind, closeErr)
	}
	if n > maxBytes {
		return fmt.Errorf("%s: %w (%d bytes)", doc.Kind, ErrDocumentTooLarge, maxBytes)
	}

	w.paths[doc.Kind] = path
	return nil
}

// extension keeps a short alphanumeric extension from an uploaded file name
// and drops anything else.
func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// Dir is the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns where the document of kind was staged, or "" if none was.
func (w *Workspace) Path(kind string) string {
	return w.paths[kind]
}

// Cleanup removes the workspace and everything in it. It is safe to call
// more than once.
func (w *Workspace) Cleanup() error {
	if err := os.RemoveAll(w.dir); err != nil {
		if w.logger != nil {
			w.logger.Error("failed to remove staging directory", "dir", w.dir, "error", err)
		}
		return fmt.Errorf("remove staging directory: %w", err)
	}
	return nil
}
