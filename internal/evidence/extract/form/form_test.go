package form

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"onboard/internal/evidence/extract"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestJSONExtractor(t *testing.T) {
	x := NewJSONExtractor()
	ctx := context.Background()

	t.Run("reads a flat field dump", func(t *testing.T) {
		path := writeFile(t, "account.json", `{
			"account_holder_name": "Jane",
			"account_holder_surname": "Doe",
			"building_number": 62,
			"eur": true,
			"chf": false,
			"other_ccy": null
		}`)

		fields, err := x.ExtractForm(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"account_holder_name":    "Jane",
			"account_holder_surname": "Doe",
			"building_number":        "62",
			"eur":                    "yes",
			"chf":                    "off",
		}, fields)
	})

	tests := []struct {
		name     string
		content  string
		category extract.Category
	}{
		{name: "syntax error", content: `{"a": `, category: extract.CategoryMalformed},
		{name: "top-level array", content: `["a"]`, category: extract.CategoryStructure},
		{name: "nested object", content: `{"a": {"b": "c"}}`, category: extract.CategoryStructure},
		{name: "null document", content: `null`, category: extract.CategoryStructure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x.ExtractForm(ctx, writeFile(t, "account.json", tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.category, extract.CategoryOf(err))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := x.ExtractForm(ctx, filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.Equal(t, extract.CategoryMissing, extract.CategoryOf(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := x.ExtractForm(cctx, writeFile(t, "account.json", `{}`))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	path := filepath.Join(t.TempDir(), "account.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXExtractor(t *testing.T) {
	x := NewXLSXExtractor()
	ctx := context.Background()

	t.Run("reads label/value rows", func(t *testing.T) {
		path := writeWorkbook(t, [][]string{
			{"Field", "Value"},
			{"Account Holder Name", "José"},
			{"Account Holder Surname", " García "},
			{"Passport Number", "X123"},
			{"EUR", "/Yes"},
			{"Other CCY"},
			{"", "orphan value"},
			{"Passport Number", "duplicate ignored"},
		})

		fields, err := x.ExtractForm(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"account_holder_name":    "José",
			"account_holder_surname": "García",
			"passport_number":        "X123",
			"eur":                    "/Yes",
			"other_ccy":              "",
		}, fields)
	})

	t.Run("empty sheet is a structure error", func(t *testing.T) {
		path := writeWorkbook(t, nil)
		_, err := x.ExtractForm(ctx, path)
		require.Error(t, err)
		assert.Equal(t, extract.CategoryStructure, extract.CategoryOf(err))
	})

	t.Run("unknown sheet is a structure error", func(t *testing.T) {
		path := writeWorkbook(t, [][]string{{"Email", "jane@example.com"}})
		_, err := NewXLSXExtractor(WithSheet("Missing")).ExtractForm(ctx, path)
		require.Error(t, err)
		assert.Equal(t, extract.CategoryStructure, extract.CategoryOf(err))
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := x.ExtractForm(ctx, writeFile(t, "account.xlsx", "plain text"))
		require.Error(t, err)
		assert.Equal(t, extract.CategoryMalformed, extract.CategoryOf(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := x.ExtractForm(ctx, filepath.Join(t.TempDir(), "account.xlsx"))
		require.Error(t, err)
		assert.Equal(t, extract.CategoryMissing, extract.CategoryOf(err))
	})
}
