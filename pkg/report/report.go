// Package report is the programmatic entry point of cleemy-report: load a
// Cleemy export, build views, filter them and export the result.
//
//	r, err := report.New(nil)
//	if err != nil { ... }
//	if err := r.LoadFile("Full.json"); err != nil { ... }
//	t, err := r.Filter(report.ViewOverview, report.Predicate{Field: "Profile", Values: []string{"Alice"}})
//	data, err := r.Export(t, "xlsx")
package report

import (
	"fjacquet/cleemy-report/internal/config"
	"fjacquet/cleemy-report/internal/container"
	"fjacquet/cleemy-report/internal/exporter"
	"fjacquet/cleemy-report/internal/filter"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/reporterror"
	"fjacquet/cleemy-report/internal/session"
	"fjacquet/cleemy-report/internal/table"
	"fjacquet/cleemy-report/internal/views"
)

type (
	// Config is the application configuration.
	Config = config.Config
	// Table is a flat table of scalar cells.
	Table = table.Table
	// View is a table with its summary and index.
	View = views.View
	// Predicate restricts a column to a set of display values.
	Predicate = filter.Predicate
	// Inconsistency is a reference to an entity missing from the export.
	Inconsistency = reporterror.ReferentialInconsistency
)

// View names.
const (
	ViewOverview = views.Overview
	ViewProfiles = views.Profiles
	ViewLimits   = views.Limits
	ViewAccounts = views.Accounts
	ViewNatures  = views.Natures
)

// Errors callers can test with errors.Is.
var (
	ErrNoData        = session.ErrNoData
	ErrUnknownView   = views.ErrUnknownView
	ErrUnknownColumn = filter.ErrUnknownColumn
	ErrEmptyTable    = reporterror.ErrEmptyTable
)

// Reporter loads one export at a time and serves its views.
type Reporter struct {
	c *container.Container
}

// New creates a Reporter. A nil cfg means the defaults; logs are discarded.
func New(cfg *Config) (*Reporter, error) {
	return NewWithLogger(cfg, logging.NewDiscardLogger())
}

// NewWithLogger creates a Reporter logging to logger.
func NewWithLogger(cfg *Config, logger logging.Logger) (*Reporter, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	c, err := container.NewContainerWithLogger(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Reporter{c: c}, nil
}

// LoadFile loads the export at path, replacing the previous one. On
// error the previous export stays loaded.
func (r *Reporter) LoadFile(path string) error {
	_, err := r.c.GetSession().LoadFile(path)
	return err
}

// Load loads an export from memory; source names it in errors.
func (r *Reporter) Load(data []byte, source string) error {
	_, err := r.c.GetSession().Load(data, source)
	return err
}

// Reload reads the loaded file again, picking up changes made since. It
// fails with ErrNoData when nothing was loaded from a file.
func (r *Reporter) Reload() error {
	_, err := r.c.GetSession().Reload()
	return err
}

// Views lists the view names.
func (r *Reporter) Views() []string {
	return views.Names()
}

// View builds the named view of the loaded export.
func (r *Reporter) View(name string) (*View, error) {
	return r.c.GetSession().View(name)
}

// Filter builds the named view and keeps the rows matching every predicate.
func (r *Reporter) Filter(name string, preds ...Predicate) (*Table, error) {
	return r.c.GetSession().Filter(name, preds)
}

// Issues returns the unknown natures and accounts referenced by the
// loaded export.
func (r *Reporter) Issues() []*Inconsistency {
	state := r.c.GetSession().Current()
	if state == nil {
		return nil
	}
	return state.Tables.Issues
}

// Export serializes t as csv, xlsx or pdf.
func (r *Reporter) Export(t *Table, format string) ([]byte, error) {
	e, err := r.exporter(format)
	if err != nil {
		return nil, err
	}
	return e.Export(t)
}

// ExportFile writes t to path, the format following the extension.
func (r *Reporter) ExportFile(t *Table, path string) error {
	f, err := exporter.FormatFromPath(path)
	if err != nil {
		return err
	}
	e, err := r.c.GetExporter(f)
	if err != nil {
		return err
	}
	return exporter.WriteFile(e, t, path)
}

func (r *Reporter) exporter(format string) (exporter.Exporter, error) {
	f, err := exporter.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return r.c.GetExporter(f)
}
