// Package builtin wires the shipped adapters into an extract.Registry.
package builtin

import (
	"errors"
	"time"

	"onboard/internal/evidence/extract"
	"onboard/internal/evidence/extract/form"
	"onboard/internal/evidence/extract/ocr"
	"onboard/internal/evidence/extract/profile"
)

// Config selects the optional adapters.
type Config struct {
	// TesseractPath enables OCR of image files when set.
	TesseractPath string
	TesseractLang string
	OCRTimeout    time.Duration
	// XLSXSheet overrides the first-sheet default of the workbook adapter.
	XLSXSheet string
}

// NewRegistry returns a registry with every shipped adapter registered:
// .json and .xlsx forms, .html, .htm and .json profiles, .txt OCR sidecars
// and, with tesseract configured, .png, .jpg, .jpeg, .tif and .tiff scans.
func NewRegistry(cfg Config) (*extract.Registry, error) {
	r := extract.NewRegistry()

	var xlsxOpts []form.XLSXOption
	if cfg.XLSXSheet != "" {
		xlsxOpts = append(xlsxOpts, form.WithSheet(cfg.XLSXSheet))
	}

	errs := []error{
		r.RegisterForm(form.NewJSONExtractor(), ".json"),
		r.RegisterForm(form.NewXLSXExtractor(xlsxOpts...), ".xlsx"),
		r.RegisterProfile(profile.NewHTMLExtractor(), ".html", ".htm"),
		r.RegisterProfile(profile.NewJSONExtractor(), ".json"),
		r.RegisterImage(ocr.NewTextExtractor(), ".txt"),
	}
	if cfg.TesseractPath != "" {
		tess := ocr.NewTesseractExtractor(cfg.TesseractPath,
			ocr.WithLanguage(cfg.TesseractLang),
			ocr.WithTimeout(cfg.OCRTimeout),
		)
		errs = append(errs, r.RegisterImage(tess, ".png", ".jpg", ".jpeg", ".tif", ".tiff"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}
