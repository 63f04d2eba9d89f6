package exporter

import (
	"fmt"
	"strings"

	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/reporterror"
	"fjacquet/cleemy-report/internal/table"

	"github.com/charmbracelet/x/ansi"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxMinColumnWidth = 8.0
	xlsxHeaderFill     = "305496"
	xlsxFallbackSheet  = "Report"
	xlsxMaxSheetName   = 31
)

type xlsxExporter struct {
	maxColumnWidth float64
	logger         logging.Logger
}

func newXLSXExporter(opts Options, logger logging.Logger) *xlsxExporter {
	maxWidth := opts.XLSXMaxColumnWidth
	if maxWidth < xlsxMinColumnWidth {
		maxWidth = 60
	}
	return &xlsxExporter{maxColumnWidth: maxWidth, logger: logger}
}

func (e *xlsxExporter) Format() Format    { return XLSX }
func (e *xlsxExporter) Extension() string { return "xlsx" }
func (e *xlsxExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export writes a single worksheet named after the table title with a
// styled, frozen header row.
func (e *xlsxExporter) Export(t *table.Table) ([]byte, error) {
	if err := checkExportable(XLSX, t); err != nil {
		return nil, err
	}
	fail := func(step string, err error) error {
		return &reporterror.ExportError{Format: string(XLSX), Err: fmt.Errorf("%s: %w", step, err)}
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	sheet := SheetName(t.Title, t.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fail("error naming sheet", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fail("error writing header", err)
	}

	for i, row := range t.Rows {
		values := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			values[j] = xlsxValue(row[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fail("error addressing row", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fail(fmt.Sprintf("error writing row %d", i), err)
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
	if err != nil {
		return nil, fail("error addressing header", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{xlsxHeaderFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return nil, fail("error creating header style", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return nil, fail("error styling header", err)
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fail("error freezing header", err)
	}

	lastCell, err := excelize.CoordinatesToCellName(len(t.Columns), t.Len()+1)
	if err != nil {
		return nil, fail("error addressing range", err)
	}
	if err := f.AutoFilter(sheet, "A1:"+lastCell, nil); err != nil {
		return nil, fail("error adding auto filter", err)
	}

	for i, width := range e.columnWidths(t) {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fail("error addressing column", err)
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return nil, fail("error sizing column", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fail("error serializing workbook", err)
	}

	logExport(e.logger, XLSX, t, buf.Len())
	return buf.Bytes(), nil
}

// columnWidths sizes each column to its widest display value plus padding.
func (e *xlsxExporter) columnWidths(t *table.Table) []float64 {
	widths := make([]float64, len(t.Columns))
	for i, col := range t.Columns {
		widest := ansi.StringWidth(col)
		for _, row := range t.Rows {
			if w := ansi.StringWidth(table.Format(row[col])); w > widest {
				widest = w
			}
		}
		widths[i] = clamp(float64(widest+2), xlsxMinColumnWidth, e.maxColumnWidth)
	}
	return widths
}

// xlsxValue keeps numbers numeric so that spreadsheet formulas work.
// Amounts a float64 cannot hold exactly are written as text.
func xlsxValue(v any) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case int64, int:
		return val
	case decimal.Decimal:
		f := val.InexactFloat64()
		if !decimal.NewFromFloat(f).Equal(val) {
			return val.String()
		}
		return f
	default:
		return table.Format(val)
	}
}

// SheetName derives a valid worksheet name from a title: forbidden
// characters removed and at most 31 characters.
func SheetName(candidates ...string) string {
	for _, c := range candidates {
		name := strings.Map(func(r rune) rune {
			switch r {
			case '[', ']', ':', '*', '?', '/', '\\':
				return -1
			}
			return r
		}, c)
		name = strings.TrimSpace(strings.Trim(name, "'"))
		if runes := []rune(name); len(runes) > xlsxMaxSheetName {
			name = strings.TrimSpace(string(runes[:xlsxMaxSheetName]))
		}
		if name != "" {
			return name
		}
	}
	return xlsxFallbackSheet
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
