// Package store loads and saves the YAML label catalog.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/cleemy-report/internal/fileutils"
	"fjacquet/cleemy-report/internal/labels"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/models"

	"gopkg.in/yaml.v3"
)

// CatalogLoader provides the label catalog used by the normalizer.
type CatalogLoader interface {
	LoadCatalog() (*labels.Catalog, error)
}

// LabelStore manages the label catalog file.
type LabelStore struct {
	File   string
	logger logging.Logger
}

// NewLabelStore creates a store for the given catalog file. An empty file
// name means the built-in English catalog.
func NewLabelStore(file string, logger logging.Logger) *LabelStore {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &LabelStore{File: file, logger: logger}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *LabelStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "cleemy-report", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadCatalog reads the catalog file and overlays it on its preset. A
// missing file logs a warning and yields the English catalog; a file that
// exists but cannot be parsed is an error.
func (s *LabelStore) LoadCatalog() (*labels.Catalog, error) {
	if s.File == "" {
		return labels.Default(), nil
	}

	path, err := s.FindConfigFile(s.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Label catalog not found, using built-in labels",
				logging.F(logging.FieldFile, s.File))
			return labels.Default(), nil
		}
		return nil, fmt.Errorf("error resolving label catalog: %w", err)
	}

	data, err := fileutils.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading label catalog: %w", err)
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing label catalog %s: %w", path, err)
	}

	s.logger.Debug("Loaded label catalog",
		logging.F(logging.FieldFile, path),
		logging.F("preset", catalog.Preset))
	return catalog, nil
}

// ParseCatalog decodes a YAML overlay and merges it onto the preset it
// names. Unknown keys are rejected so typos do not go unnoticed.
func ParseCatalog(data []byte) (*labels.Catalog, error) {
	var overlay labels.Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&overlay); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	base := labels.ForPreset(overlay.Preset)
	return base.Merge(&overlay), nil
}

// SaveCatalog writes a complete catalog to the store's file, so that it
// can serve as a starting point for customization.
func (s *LabelStore) SaveCatalog(catalog *labels.Catalog) error {
	if s.File == "" {
		return fmt.Errorf("no label catalog file configured")
	}

	data, err := MarshalCatalog(catalog)
	if err != nil {
		return err
	}

	if err := fileutils.WriteFile(s.File, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing label catalog: %w", err)
	}

	s.logger.Info("Saved label catalog", logging.F(logging.FieldFile, s.File))
	return nil
}

// MarshalCatalog encodes a catalog in the YAML format read by LoadCatalog.
func MarshalCatalog(catalog *labels.Catalog) ([]byte, error) {
	data, err := yaml.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("error marshaling label catalog: %w", err)
	}
	return data, nil
}
