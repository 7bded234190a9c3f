// Package ocr turns a passport scan into text.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"onboard/internal/evidence/extract"
)

const defaultTimeout = 30 * time.Second

// TesseractExtractor runs the tesseract CLI on an image and returns its
// stdout.
type TesseractExtractor struct {
	binary  string
	lang    string
	timeout time.Duration
}

// Option configures the TesseractExtractor.
type Option func(*TesseractExtractor)

// WithLanguage selects tesseract language data, e.g. "eng+pol".
func WithLanguage(lang string) Option {
	return func(x *TesseractExtractor) {
		x.lang = lang
	}
}

// WithTimeout bounds a single OCR run.
func WithTimeout(d time.Duration) Option {
	return func(x *TesseractExtractor) {
		if d > 0 {
			x.timeout = d
		}
	}
}

// NewTesseractExtractor builds an extractor around the tesseract binary at
// binary (a name looked up on PATH or an absolute path).
func NewTesseractExtractor(binary string, opts ...Option) *TesseractExtractor {
	if binary == "" {
		binary = "tesseract"
	}
	x := &TesseractExtractor{binary: binary, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ExtractText implements ports.ImageExtractor.
func (x *TesseractExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", extract.NewError(extract.SourceImage, path, extract.CategoryUnreadable, "extraction cancelled", err)
	}
	if err := extract.Stat(extract.SourceImage, path); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	args := []string{path, "stdout"}
	if x.lang != "" {
		args = append(args, "-l", x.lang)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, x.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", extract.NewError(extract.SourceImage, path, extract.CategoryUnreadable, "tesseract timed out", ctxErr)
		}
		msg := "tesseract failed"
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			msg = fmt.Sprintf("tesseract failed: %s", detail)
		}
		return "", extract.NewError(extract.SourceImage, path, extract.CategoryUnreadable, msg, err)
	}
	return stdout.String(), nil
}
