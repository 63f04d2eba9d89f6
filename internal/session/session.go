// Package session holds the export currently loaded by the user and
// serves views over it.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"fjacquet/cleemy-report/internal/filter"
	"fjacquet/cleemy-report/internal/loader"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/models"
	"fjacquet/cleemy-report/internal/normalizer"
	"fjacquet/cleemy-report/internal/table"
	"fjacquet/cleemy-report/internal/views"

	"github.com/google/uuid"
)

// ErrNoData is returned when a view is requested before any export loaded.
var ErrNoData = errors.New("no export loaded")

// State is one loaded export. It is never modified after creation.
type State struct {
	ID       string
	Source   string
	Path     string
	LoadedAt time.Time
	Dataset  *models.Dataset
	Tables   *normalizer.Tables
}

// Session owns the current State. A load either replaces the whole state
// or leaves the previous one untouched.
type Session struct {
	loader     *loader.Loader
	normalizer *normalizer.Normalizer
	logger     logging.Logger
	state      atomic.Pointer[State]
}

// New creates an empty session.
func New(l *loader.Loader, n *normalizer.Normalizer, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if l == nil {
		l = loader.New(loader.DefaultOptions(), logger)
	}
	if n == nil {
		n = normalizer.New(nil, "", logger)
	}
	return &Session{loader: l, normalizer: n, logger: logger}
}

// LoadFile loads the export at path.
func (s *Session) LoadFile(path string) (*State, error) {
	ds, err := s.loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return s.install(ds, path)
}

// Load loads an export held in memory; source names it in errors.
func (s *Session) Load(data []byte, source string) (*State, error) {
	ds, err := s.loader.WithSource(source).Load(data)
	if err != nil {
		return nil, err
	}
	return s.install(ds, "")
}

// LoadReader loads an export read from r; source names it in errors.
func (s *Session) LoadReader(r io.Reader, source string) (*State, error) {
	ds, err := s.loader.WithSource(source).LoadReader(r)
	if err != nil {
		return nil, err
	}
	return s.install(ds, "")
}

// Reload reads the current file again.
func (s *Session) Reload() (*State, error) {
	current := s.state.Load()
	if current == nil || current.Path == "" {
		return nil, fmt.Errorf("reload: %w from a file", ErrNoData)
	}
	return s.LoadFile(current.Path)
}

// Current returns the loaded state or nil.
func (s *Session) Current() *State {
	return s.state.Load()
}

// Clear forgets the loaded export.
func (s *Session) Clear() {
	s.state.Store(nil)
}

// View builds the named view over the current state.
func (s *Session) View(name string) (*views.View, error) {
	current := s.state.Load()
	if current == nil {
		return nil, ErrNoData
	}
	return views.Build(name, current.Tables)
}

// Filter builds the named view and applies preds to its table.
func (s *Session) Filter(name string, preds []filter.Predicate) (*table.Table, error) {
	v, err := s.View(name)
	if err != nil {
		return nil, err
	}
	return filter.Apply(v.Table, preds)
}

func (s *Session) install(ds *models.Dataset, path string) (*State, error) {
	tables, err := s.normalizer.Normalize(ds)
	if err != nil {
		return nil, err
	}
	next := &State{
		ID:       uuid.NewString(),
		Source:   ds.Source,
		Path:     path,
		LoadedAt: time.Now(),
		Dataset:  ds,
		Tables:   tables,
	}
	previous := s.state.Swap(next)

	stats := ds.Stats()
	logger := s.logger.WithFields(
		logging.F(logging.FieldSession, next.ID),
		logging.F(logging.FieldFile, ds.Source))
	if previous != nil {
		logger = logger.WithField("replaces", previous.ID)
	}
	logger.Info("Session loaded",
		logging.F("profiles", stats.Profiles),
		logging.F("natures", stats.Natures),
		logging.F("inconsistencies", len(tables.Issues)))
	return next, nil
}
