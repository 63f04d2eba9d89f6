// Package container provides dependency injection for the cleemy-report
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/cleemy-report/internal/config"
	"fjacquet/cleemy-report/internal/exporter"
	"fjacquet/cleemy-report/internal/labels"
	"fjacquet/cleemy-report/internal/loader"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/normalizer"
	"fjacquet/cleemy-report/internal/session"
	"fjacquet/cleemy-report/internal/store"
)

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	catalogs   store.CatalogLoader
	catalog    *labels.Catalog
	loader     *loader.Loader
	normalizer *normalizer.Normalizer
	session    *session.Session

	exporters map[exporter.Format]exporter.Exporter
}

// NewContainer creates and wires all application dependencies with a
// logger built from the configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return NewContainerWithCatalogLoader(cfg, logger, store.NewLabelStore(cfg.Labels.File, logger))
}

// NewContainerWithCatalogLoader wires the dependencies around a logger and
// a label catalog source other than the configured file.
func NewContainerWithCatalogLoader(cfg *config.Config, logger logging.Logger, catalogs store.CatalogLoader) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if catalogs == nil {
		return nil, fmt.Errorf("label catalog loader cannot be nil")
	}

	// Label catalog first: the normalizer needs it
	catalog, err := catalogs.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load label catalog: %w", err)
	}

	l := loader.New(loader.Options{
		PrimaryLocale:  cfg.Locale.Primary,
		FallbackLocale: cfg.Locale.Fallback,
	}, logger)
	n := normalizer.New(catalog, cfg.Locale.Primary, logger)

	opts := exporter.OptionsFromConfig(cfg)
	exporters := make(map[exporter.Format]exporter.Exporter)
	for _, format := range []exporter.Format{exporter.CSV, exporter.XLSX, exporter.PDF} {
		e, err := exporter.New(format, opts, logger)
		if err != nil {
			return nil, err
		}
		exporters[format] = e
	}

	logger.Debug("Container initialized successfully",
		logging.F("exporters_count", len(exporters)),
		logging.F("locale", cfg.Locale.Primary),
		logging.F("labels_preset", catalog.Preset))

	return &Container{
		logger:     logger,
		config:     cfg,
		catalogs:   catalogs,
		catalog:    catalog,
		loader:     l,
		normalizer: n,
		session:    session.New(l, n, logger),
		exporters:  exporters,
	}, nil
}

// GetExporter returns the exporter for a format.
func (c *Container) GetExporter(format exporter.Format) (exporter.Exporter, error) {
	e, ok := c.exporters[format]
	if !ok {
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
	return e, nil
}

// GetExporters returns a copy of the exporter registry.
func (c *Container) GetExporters() map[exporter.Format]exporter.Exporter {
	result := make(map[exporter.Format]exporter.Exporter, len(c.exporters))
	for k, v := range c.exporters {
		result[k] = v
	}
	return result
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the source the label catalog was loaded from.
func (c *Container) GetStore() store.CatalogLoader {
	return c.catalogs
}

// GetCatalog returns the label catalog loaded at startup.
func (c *Container) GetCatalog() *labels.Catalog {
	return c.catalog
}

func (c *Container) GetLoader() *loader.Loader {
	return c.loader
}

func (c *Container) GetNormalizer() *normalizer.Normalizer {
	return c.normalizer
}

// GetSession returns the session holding the loaded export.
func (c *Container) GetSession() *session.Session {
	return c.session
}

// Close releases the loaded export.
func (c *Container) Close() error {
	c.session.Clear()
	c.logger.Debug("Container closed")
	return nil
}
