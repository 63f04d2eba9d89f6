package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/reporterror"
	"fjacquet/cleemy-report/internal/table"

	"github.com/gocarina/gocsv"
)

type csvExporter struct {
	delimiter rune
	logger    logging.Logger
}

func newCSVExporter(opts Options, logger logging.Logger) *csvExporter {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}
	return &csvExporter{delimiter: delim, logger: logger}
}

func (e *csvExporter) Format() Format      { return CSV }
func (e *csvExporter) Extension() string   { return "csv" }
func (e *csvExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Export writes the header followed by one record per row. Quoting
// follows RFC 4180.
func (e *csvExporter) Export(t *table.Table) ([]byte, error) {
	if err := checkExportable(CSV, t); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	csvWriter := csv.NewWriter(&buf)
	csvWriter.Comma = e.delimiter
	w := gocsv.NewSafeCSVWriter(csvWriter)

	if err := w.Write(t.Columns); err != nil {
		return nil, &reporterror.ExportError{Format: string(CSV), Err: fmt.Errorf("error writing CSV header: %w", err)}
	}
	for i := range t.Rows {
		if err := w.Write(t.Strings(i)); err != nil {
			return nil, &reporterror.ExportError{Format: string(CSV), Err: fmt.Errorf("error writing CSV row %d: %w", i, err)}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &reporterror.ExportError{Format: string(CSV), Err: fmt.Errorf("error writing CSV data: %w", err)}
	}

	logExport(e.logger, CSV, t, buf.Len())
	return buf.Bytes(), nil
}
