package store

import (
	"fjacquet/cleemy-report/internal/labels"
)

// MockLabelStore is a CatalogLoader for tests.
type MockLabelStore struct {
	Catalog   *labels.Catalog
	LoadError error
	Calls     int
}

// LoadCatalog returns the mock catalog, or the English one when unset.
func (m *MockLabelStore) LoadCatalog() (*labels.Catalog, error) {
	m.Calls++
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	if m.Catalog == nil {
		return labels.Default(), nil
	}
	return m.Catalog, nil
}
