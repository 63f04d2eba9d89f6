package exporter

import (
	"bytes"
	"fmt"
	"strings"

	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/reporterror"
	"fjacquet/cleemy-report/internal/table"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

const (
	pdfFont           = "Helvetica"
	pdfMargin         = 10.0
	pdfCellPadding    = 1.5
	pdfMinColumnWidth = 12.0
	pdfEllipsis       = "..."
	ptToMM            = 0.3528
)

// A4 in millimetres.
const (
	a4Short = 210.0
	a4Long  = 297.0
)

type pdfExporter struct {
	orientation    string
	fontSize       float64
	maxColumnWidth float64
	compress       bool
	logger         logging.Logger
}

func newPDFExporter(opts Options, logger logging.Logger) *pdfExporter {
	e := &pdfExporter{
		orientation:    pdfOrientation(opts.PDFOrientation),
		fontSize:       opts.PDFFontSize,
		maxColumnWidth: opts.PDFMaxColumnWidth,
		compress:       opts.PDFCompress,
		logger:         logger,
	}
	if e.fontSize <= 0 {
		e.fontSize = 8
	}
	if e.maxColumnWidth < pdfMinColumnWidth {
		e.maxColumnWidth = 80
	}
	return e
}

func (e *pdfExporter) Format() Format      { return PDF }
func (e *pdfExporter) Extension() string   { return "pdf" }
func (e *pdfExporter) ContentType() string { return "application/pdf" }

// Export renders the table as a paginated A4 document. Characters the
// core fonts cannot display are printed as '?' instead of failing.
func (e *pdfExporter) Export(t *table.Table) ([]byte, error) {
	if err := checkExportable(PDF, t); err != nil {
		return nil, err
	}

	header := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = EncodeWindows1252(col)
	}
	rows := make([][]string, t.Len())
	for i := range t.Rows {
		cells := t.Strings(i)
		for j := range cells {
			cells[j] = EncodeWindows1252(cells[j])
		}
		rows[i] = cells
	}

	orientation, widths := e.layout(header, rows)
	lineHeight := e.fontSize * ptToMM * 1.7

	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	pdf.SetTitle(t.Title, true)
	pdf.SetCreator("cleemy-report", true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont(pdfFont, "I", e.fontSize-1)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	drawHeader := func() {
		pdf.SetFont(pdfFont, "B", e.fontSize)
		pdf.SetFillColor(48, 84, 150)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range header {
			pdf.CellFormat(widths[i], lineHeight, fit(pdf, h, widths[i]), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", e.fontSize)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	title := t.Title
	if title == "" {
		title = t.Name
	}
	pdf.SetFont(pdfFont, "B", e.fontSize+4)
	pdf.CellFormat(0, lineHeight*1.8, EncodeWindows1252(title), "", 1, "L", false, 0, "")
	drawHeader()

	_, pageHeight := pdf.GetPageSize()
	bottom := pageHeight - pdfMargin - lineHeight
	for i, cells := range rows {
		if pdf.GetY()+lineHeight > bottom {
			pdf.AddPage()
			drawHeader()
		}
		pdf.SetFillColor(242, 242, 242)
		shade := i%2 == 1
		for j, cell := range cells {
			align := "L"
			if isNumeric(t.Rows[i][t.Columns[j]]) {
				align = "R"
			}
			pdf.CellFormat(widths[j], lineHeight, fit(pdf, cell, widths[j]), "1", 0, align, shade, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &reporterror.ExportError{Format: string(PDF), Err: fmt.Errorf("error rendering PDF: %w", err)}
	}

	logExport(e.logger.WithField("orientation", orientation), PDF, t, buf.Len())
	return buf.Bytes(), nil
}

// layout measures every column and picks the page orientation. Column
// widths are capped individually, then scaled down together when they
// still exceed the usable page width.
func (e *pdfExporter) layout(header []string, rows [][]string) (string, []float64) {
	measure := fpdf.New("P", "mm", "A4", "")
	widths := make([]float64, len(header))

	measure.SetFont(pdfFont, "B", e.fontSize)
	for i, h := range header {
		widths[i] = measure.GetStringWidth(h)
	}
	measure.SetFont(pdfFont, "", e.fontSize)
	for _, cells := range rows {
		for i, c := range cells {
			if w := measure.GetStringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	total := 0.0
	for i := range widths {
		widths[i] = clamp(widths[i]+2*pdfCellPadding, pdfMinColumnWidth, e.maxColumnWidth)
		total += widths[i]
	}

	orientation := e.orientation
	if orientation != "P" && orientation != "L" {
		orientation = "P"
		if total > a4Short-2*pdfMargin {
			orientation = "L"
		}
	}
	usable := a4Short - 2*pdfMargin
	if orientation == "L" {
		usable = a4Long - 2*pdfMargin
	}
	if total > usable {
		scale := usable / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return orientation, widths
}

// fit truncates s with an ellipsis so that it fits in a cell of width w.
// s is already single-byte encoded.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	room := w - 2*pdfCellPadding
	if pdf.GetStringWidth(s) <= room {
		return s
	}
	for n := len(s) - 1; n > 0; n-- {
		candidate := strings.TrimRight(s[:n], " ") + pdfEllipsis
		if pdf.GetStringWidth(candidate) <= room {
			return candidate
		}
	}
	return ""
}

// EncodeWindows1252 converts s to the Windows-1252 code page used by the
// PDF core fonts. Unsupported runes become '?'.
func EncodeWindows1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// pdfOrientation maps the configured orientation to fpdf's "P" or "L";
// "" means chosen from the content.
func pdfOrientation(name string) string {
	switch strings.ToLower(name) {
	case "p", "portrait":
		return "P"
	case "l", "landscape":
		return "L"
	}
	return ""
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int64, int, decimal.Decimal:
		return true
	}
	return false
}
