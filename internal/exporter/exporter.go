// Package exporter renders tables into the downloadable report formats.
package exporter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/cleemy-report/internal/config"
	"fjacquet/cleemy-report/internal/fileutils"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/models"
	"fjacquet/cleemy-report/internal/reporterror"
	"fjacquet/cleemy-report/internal/table"
	"fjacquet/cleemy-report/internal/validation"
)

// Format identifies an export format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

// Exporter serializes a table into the bytes of one report file.
type Exporter interface {
	Export(t *table.Table) ([]byte, error)
	Format() Format
	Extension() string
	ContentType() string
}

// Options tunes the exporters. The zero value is not usable, start from
// DefaultOptions or OptionsFromConfig.
type Options struct {
	Delimiter          rune
	PDFOrientation     string
	PDFFontSize        float64
	PDFMaxColumnWidth  float64
	PDFCompress        bool
	XLSXMaxColumnWidth float64
}

// DefaultOptions returns the options matching the configuration defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig extracts the export settings from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		cfg = config.Default()
	}
	return Options{
		Delimiter:          cfg.Delimiter(),
		PDFOrientation:     cfg.PDF.Orientation,
		PDFFontSize:        cfg.PDF.FontSize,
		PDFMaxColumnWidth:  cfg.PDF.MaxColumnWidth,
		PDFCompress:        cfg.PDF.Compress,
		XLSXMaxColumnWidth: cfg.XLSX.MaxColumnWidth,
	}
}

// ParseFormat converts a user-supplied format name such as "PDF" or ".xlsx".
func ParseFormat(name string) (Format, error) {
	if err := validation.IsValidOutputFormat(name); err != nil {
		return "", err
	}
	return Format(strings.ToLower(strings.TrimPrefix(name, "."))), nil
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("cannot infer export format from %q: no file extension", path)
	}
	return ParseFormat(ext)
}

// New returns the exporter for format.
func New(format Format, opts Options, logger logging.Logger) (Exporter, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	switch format {
	case CSV:
		return newCSVExporter(opts, logger), nil
	case XLSX:
		return newXLSXExporter(opts, logger), nil
	case PDF:
		return newPDFExporter(opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}

// DefaultFileName returns the file name used when only an output
// directory is given, e.g. "limits.pdf".
func DefaultFileName(name string, e Exporter) string {
	if name == "" {
		name = "report"
	}
	return name + "." + e.Extension()
}

// WriteFile exports t and writes the result to path, creating parent
// directories as needed.
func WriteFile(e Exporter, t *table.Table, path string) error {
	data, err := e.Export(t)
	if err != nil {
		var exportErr *reporterror.ExportError
		if errors.As(err, &exportErr) {
			exportErr.Path = path
			return exportErr
		}
		return &reporterror.ExportError{Format: string(e.Format()), Path: path, Err: err}
	}
	if err := fileutils.WriteFile(path, data, models.PermissionReportFile); err != nil {
		return &reporterror.ExportError{Format: string(e.Format()), Path: path, Err: err}
	}
	return nil
}

func checkExportable(format Format, t *table.Table) error {
	if t.Len() == 0 {
		return &reporterror.ExportError{Format: string(format), Err: reporterror.ErrEmptyTable}
	}
	return nil
}

func logExport(logger logging.Logger, format Format, t *table.Table, size int) {
	logger.Debug("Exported table",
		logging.F(logging.FieldTable, t.Name),
		logging.F(logging.FieldFormat, string(format)),
		logging.F(logging.FieldRows, t.Len()),
		logging.F("bytes", size))
}
