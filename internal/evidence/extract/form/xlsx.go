package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"onboard/internal/evidence/extract"
)

// XLSXExtractor reads a two-column sheet of label/value rows. Labels are
// turned into field keys, so "Account Holder Name" reads as
// account_holder_name.
type XLSXExtractor struct {
	sheet string
}

// XLSXOption configures the XLSXExtractor.
type XLSXOption func(*XLSXExtractor)

// WithSheet reads the named sheet instead of the first one.
func WithSheet(name string) XLSXOption {
	return func(x *XLSXExtractor) {
		x.sheet = name
	}
}

func NewXLSXExtractor(opts ...XLSXOption) *XLSXExtractor {
	x := &XLSXExtractor{}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// ExtractForm implements ports.FormExtractor.
func (x *XLSXExtractor) ExtractForm(ctx context.Context, path string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, extract.NewError(extract.SourceForm, path, extract.CategoryUnreadable, "extraction cancelled", err)
	}
	if err := extract.Stat(extract.SourceForm, path); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, extract.NewError(extract.SourceForm, path, extract.CategoryMalformed, "open workbook", err)
	}
	defer f.Close()

	sheet := x.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, extract.NewError(extract.SourceForm, path, extract.CategoryStructure, "no sheets found in workbook", nil)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, extract.NewError(extract.SourceForm, path, extract.CategoryStructure, fmt.Sprintf("read sheet %q", sheet), err)
	}

	fields := make(map[string]string, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		key := extract.FieldKey(row[0])
		if key == "" || (i == 0 && isHeader(key)) {
			continue
		}
		if _, dup := fields[key]; dup {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = strings.TrimSpace(row[1])
		}
		fields[key] = value
	}

	if len(fields) == 0 {
		return nil, extract.NewError(extract.SourceForm, path, extract.CategoryStructure, fmt.Sprintf("sheet %q has no field rows", sheet), nil)
	}
	return fields, nil
}

func isHeader(key string) bool {
	return key == "field" || key == "key" || key == "label"
}
