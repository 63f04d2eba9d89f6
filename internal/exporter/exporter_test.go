package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/cleemy-report/internal/config"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/reporterror"
	"fjacquet/cleemy-report/internal/table"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() *table.Table {
	t := table.New("overview", "Overview", "Profile", "Nature", "Limit", "Period")
	t.Append("Alice", "Travel", decimal.NewFromInt(100), "Monthly")
	t.Append("Bob", nil, nil, nil)
	t.Append(`Carol "CJ", Jr.`, "Line\nbreak", decimal.RequireFromString("15.25"), "Daily")
	return t
}

func newExporter(t *testing.T, format Format, opts Options) Exporter {
	t.Helper()
	e, err := New(format, opts, logging.NewMockLogger())
	require.NoError(t, err)
	return e
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"csv", CSV, false},
		{"XLSX", XLSX, false},
		{".pdf", PDF, false},
		{"json", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("out/limits.PDF")
	require.NoError(t, err)
	assert.Equal(t, PDF, f)

	_, err = FormatFromPath("out/limits")
	assert.Error(t, err)

	_, err = FormatFromPath("out/limits.txt")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	for _, format := range []Format{CSV, XLSX, PDF} {
		e, err := New(format, DefaultOptions(), nil)
		require.NoError(t, err)
		assert.Equal(t, format, e.Format())
		assert.Equal(t, string(format), e.Extension())
		assert.NotEmpty(t, e.ContentType())
		assert.Equal(t, "limits."+string(format), DefaultFileName("limits", e))
	}

	_, err := New("docx", DefaultOptions(), nil)
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.CSV.Delimiter = ";"
	cfg.PDF.Orientation = "L"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, "L", opts.PDFOrientation)
	assert.Equal(t, ',', OptionsFromConfig(nil).Delimiter)
}

func TestExport_EmptyTable(t *testing.T) {
	empty := table.New("limits", "Limits", "Profile")
	for _, format := range []Format{CSV, XLSX, PDF} {
		t.Run(string(format), func(t *testing.T) {
			_, err := newExporter(t, format, DefaultOptions()).Export(empty)
			require.Error(t, err)
			assert.True(t, errors.Is(err, reporterror.ErrEmptyTable))
			assert.True(t, reporterror.IsEmptyTable(err))

			var exportErr *reporterror.ExportError
			require.True(t, errors.As(err, &exportErr))
			assert.Equal(t, string(format), exportErr.Format)
		})
	}
}

func TestCSVExport_RoundTrip(t *testing.T) {
	for _, delim := range []rune{',', ';'} {
		t.Run(string(delim), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Delimiter = delim
			src := sampleTable()

			data, err := newExporter(t, CSV, opts).Export(src)
			require.NoError(t, err)

			r := csv.NewReader(bytes.NewReader(data))
			r.Comma = delim
			records, err := r.ReadAll()
			require.NoError(t, err)

			require.Len(t, records, src.Len()+1)
			assert.Equal(t, src.Columns, records[0])
			assert.Equal(t, src.Records(), records[1:])
		})
	}
}

func TestCSVExport_Quoting(t *testing.T) {
	data, err := newExporter(t, CSV, DefaultOptions()).Export(sampleTable())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Carol ""CJ"", Jr."`)
	assert.True(t, strings.HasPrefix(string(data), "Profile,Nature,Limit,Period\n"))
	assert.Contains(t, string(data), "Bob,,,\n")
}

func TestXLSXValue(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected any
	}{
		{"nil", nil, nil},
		{"int", int64(7), int64(7)},
		{"integer amount", decimal.NewFromInt(100), 100.0},
		{"cents", decimal.RequireFromString("1500.50"), 1500.5},
		{"beyond float64", decimal.RequireFromString("12345678901234567890.12"), "12345678901234567890.12"},
		{"bool", true, "yes"},
		{"string", "Travel", "Travel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, xlsxValue(tt.in))
		})
	}
}

func TestXLSXExport_PreciseAmountAsText(t *testing.T) {
	src := table.New("limits", "Limits", "Profile", "Amount")
	src.Append("Alice", decimal.RequireFromString("98765432109876543210.99"))

	data, err := newExporter(t, XLSX, DefaultOptions()).Export(src)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	cellType, err := f.GetCellType("Limits", "B2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeSharedString, cellType)
	value, err := f.GetCellValue("Limits", "B2")
	require.NoError(t, err)
	assert.Equal(t, "98765432109876543210.99", value)
}

func TestXLSXExport(t *testing.T) {
	opts := DefaultOptions()
	opts.XLSXMaxColumnWidth = 12
	src := sampleTable()
	src.Rows[0]["Nature"] = strings.Repeat("x", 40)

	data, err := newExporter(t, XLSX, opts).Export(src)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	require.Equal(t, []string{"Overview"}, f.GetSheetList())

	rows, err := f.GetRows("Overview")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, src.Columns, rows[0])
	assert.Equal(t, "Alice", rows[1][0])
	assert.Equal(t, "100", rows[1][2])

	styleID, err := f.GetCellStyle("Overview", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	width, err := f.GetColWidth("Overview", "B")
	require.NoError(t, err)
	assert.Equal(t, 12.0, width, "capped at the configured maximum")

	width, err = f.GetColWidth("Overview", "D")
	require.NoError(t, err)
	assert.Equal(t, 9.0, width, "\"Monthly\" plus padding")

	panes, err := f.GetPanes("Overview")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		expected   string
	}{
		{"plain", []string{"Limits & Allowances"}, "Limits & Allowances"},
		{"forbidden characters", []string{"Profils/Natures: [FR]?"}, "ProfilsNatures FR"},
		{"truncated", []string{"Rapport Complet - Profils & Natures"}, "Rapport Complet - Profils & Nat"},
		{"fallback to name", []string{"", "limits"}, "limits"},
		{"fallback", []string{"***"}, "Report"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SheetName(tt.candidates...)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len([]rune(got)), 31)
		})
	}
}

func TestPDFExport_UnsupportedGlyphs(t *testing.T) {
	opts := DefaultOptions()
	opts.PDFCompress = false
	src := table.New("natures", "Natures", "Nature", "Profile")
	src.Append("Café", "Tokyo 東京")
	src.Append("Repas ★", "Zoë")

	data, err := newExporter(t, PDF, opts).Export(src)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "(Tokyo ??)")
	assert.Contains(t, string(data), "(Repas ?)")
	assert.Contains(t, string(data), "Caf\xe9")
	assert.Contains(t, string(data), "(Page 1/1)")
}

func TestPDFExport_PaginatesAndRepeatsHeader(t *testing.T) {
	opts := DefaultOptions()
	opts.PDFCompress = false
	src := table.New("limits", "Limits", "Profile", "Amount")
	for i := 0; i < 200; i++ {
		src.Append("Profile", decimal.NewFromInt(int64(i)))
	}

	data, err := newExporter(t, PDF, opts).Export(src)
	require.NoError(t, err)

	assert.Contains(t, string(data), "(Page 2/")
	assert.GreaterOrEqual(t, strings.Count(string(data), "(Amount)"), 2)
}

func TestPDFLayout(t *testing.T) {
	narrow := newPDFExporter(DefaultOptions(), logging.NewDiscardLogger())
	orientation, widths := narrow.layout([]string{"A", "B"}, [][]string{{"x", "y"}})
	assert.Equal(t, "P", orientation)
	for _, w := range widths {
		assert.Equal(t, pdfMinColumnWidth, w)
	}

	header := make([]string, 6)
	row := make([]string, 6)
	for i := range header {
		header[i] = "Column"
		row[i] = strings.Repeat("w", 60)
	}
	orientation, widths = narrow.layout(header, [][]string{row})
	assert.Equal(t, "L", orientation)
	total := 0.0
	for _, w := range widths {
		assert.LessOrEqual(t, w, narrow.maxColumnWidth)
		total += w
	}
	assert.InDelta(t, a4Long-2*pdfMargin, total, 0.001)

	opts := DefaultOptions()
	opts.PDFOrientation = "portrait"
	forced := newPDFExporter(opts, logging.NewDiscardLogger())
	orientation, _ = forced.layout(header, [][]string{row})
	assert.Equal(t, "P", orientation)
}

func TestEncodeWindows1252(t *testing.T) {
	assert.Equal(t, "Caf\xe9", EncodeWindows1252("Café"))
	assert.Equal(t, "\x80 5", EncodeWindows1252("€ 5"))
	assert.Equal(t, "??", EncodeWindows1252("東京"))
	assert.Equal(t, "plain", EncodeWindows1252("plain"))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	e := newExporter(t, CSV, DefaultOptions())

	path := filepath.Join(dir, "nested", "overview.csv")
	require.NoError(t, WriteFile(e, sampleTable(), path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Profile,"))

	err = WriteFile(e, table.New("x", "", "A"), filepath.Join(dir, "empty.csv"))
	var exportErr *reporterror.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, filepath.Join(dir, "empty.csv"), exportErr.Path)
	assert.ErrorIs(t, err, reporterror.ErrEmptyTable)
	assert.NoFileExists(t, filepath.Join(dir, "empty.csv"))

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
	err = WriteFile(e, sampleTable(), filepath.Join(blocker, "overview.csv"))
	require.True(t, errors.As(err, &exportErr))
	assert.Contains(t, exportErr.Path, "overview.csv")
	assert.False(t, reporterror.IsEmptyTable(err))
}
