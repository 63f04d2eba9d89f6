// Package loader turns the bytes of a Cleemy export into a validated
// models.Dataset. Either the whole document is accepted or the load fails
// with a *reporterror.ParseError or *reporterror.MalformedInputError.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"fjacquet/cleemy-report/internal/currencyutils"
	"fjacquet/cleemy-report/internal/fileutils"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/models"
	"fjacquet/cleemy-report/internal/reporterror"

	"github.com/shopspring/decimal"
)

const snippetRadius = 20

// Options controls name resolution and error reporting.
type Options struct {
	// Source names the document in error messages, usually its path.
	Source string
	// PrimaryLocale and FallbackLocale select the multilingualName entry
	// used as display name.
	PrimaryLocale  string
	FallbackLocale string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Source:         "input",
		PrimaryLocale:  "fr-FR",
		FallbackLocale: "en-US",
	}
}

// Loader validates and decodes exports.
type Loader struct {
	opts   Options
	logger logging.Logger
}

// New creates a Loader. Empty option fields take their default value.
func New(opts Options, logger logging.Logger) *Loader {
	defaults := DefaultOptions()
	if opts.Source == "" {
		opts.Source = defaults.Source
	}
	if opts.PrimaryLocale == "" {
		opts.PrimaryLocale = defaults.PrimaryLocale
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Loader{opts: opts, logger: logger}
}

// Load decodes data with the given options.
func Load(data []byte, opts Options) (*models.Dataset, error) {
	return New(opts, nil).Load(data)
}

// LoadFile reads and decodes the export at path. The path becomes the
// error source.
func (l *Loader) LoadFile(path string) (*models.Dataset, error) {
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.WithSource(path).Load(data)
}

// WithSource returns a copy of l that names source in errors and logs.
func (l *Loader) WithSource(source string) *Loader {
	named := *l
	named.opts.Source = source
	return &named
}

// LoadReader reads r to the end and decodes it.
func (l *Loader) LoadReader(r io.Reader) (*models.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.opts.Source, err)
	}
	return l.Load(data)
}

// Load decodes one export document.
func (l *Loader) Load(data []byte) (*models.Dataset, error) {
	start := time.Now()
	logger := l.logger.WithField(logging.FieldFile, l.opts.Source)

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		loadErr := l.decodeError(data, "$", err)
		logger.WithError(loadErr).Error("Rejected export")
		return nil, loadErr
	}

	sections, err := l.sections(root)
	if err != nil {
		logger.WithError(err).Error("Rejected export")
		return nil, err
	}

	ds, err := l.decode(sections)
	if err != nil {
		logger.WithError(err).Error("Rejected export")
		return nil, err
	}

	stats := ds.Stats()
	logger.Info("Loaded export",
		logging.F("profiles", stats.Profiles),
		logging.F("natures", stats.Natures),
		logging.F("charts", stats.Charts),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return ds, nil
}

func (l *Loader) decode(sections map[string]json.RawMessage) (*models.Dataset, error) {
	d := &decoder{opts: l.opts}

	natures, err := d.natures(sections[SectionNatures])
	if err != nil {
		return nil, err
	}
	profiles, err := d.profiles(sections[SectionProfiles])
	if err != nil {
		return nil, err
	}
	charts, err := d.charts(sections[SectionCharts])
	if err != nil {
		return nil, err
	}
	return models.NewDataset(l.opts.Source, natures, profiles, charts), nil
}

// sections extracts the required sections, reporting every missing one at
// once. A null section counts as missing.
func (l *Loader) sections(root map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(RequiredSections))
	var missing []string
	for _, key := range RequiredSections {
		raw, ok := present(root, key)
		if !ok && key == SectionCharts {
			raw, ok = present(root, SectionChartsAlias)
		}
		if !ok {
			missing = append(missing, key)
			continue
		}
		out[key] = raw
	}
	if len(missing) > 0 {
		return nil, &reporterror.MalformedInputError{
			Source:      l.opts.Source,
			Path:        "$",
			MissingKeys: missing,
		}
	}
	return out, nil
}

func present(root map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := root[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

// decodeError converts a json error into the report taxonomy.
func (l *Loader) decodeError(data []byte, path string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, column := position(data, syntaxErr.Offset)
		return &reporterror.ParseError{
			Source:  l.opts.Source,
			Line:    line,
			Column:  column,
			Offset:  syntaxErr.Offset,
			Snippet: snippet(data, syntaxErr.Offset),
			Err:     err,
		}
	}
	return malformed(l.opts.Source, path, err)
}

// position returns the 1-based line and column of the byte preceding
// offset, which is where encoding/json stopped.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line := 1 + bytes.Count(prefix, []byte("\n"))
	lineStart := bytes.LastIndexByte(prefix, '\n') + 1
	column := int(offset) - lineStart
	if column < 1 {
		column = 1
	}
	return line, column
}

func snippet(data []byte, offset int64) string {
	from := int(offset) - snippetRadius
	if from < 0 {
		from = 0
	}
	to := int(offset) + snippetRadius
	if to > len(data) {
		to = len(data)
	}
	if from >= to {
		return ""
	}
	return strings.Join(strings.Fields(string(data[from:to])), " ")
}

func malformed(source, path string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			path = path + "." + typeErr.Field
		}
		return &reporterror.MalformedInputError{
			Source: source,
			Path:   path,
			Msg:    fmt.Sprintf("expected %s, got %s", describe(typeErr.Type), typeErr.Value),
		}
	}
	return &reporterror.MalformedInputError{Source: source, Path: path, Msg: err.Error()}
}

func describe(t reflect.Type) string {
	if t == nil {
		return "a value"
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Pointer:
		return describe(t.Elem())
	default:
		return t.String()
	}
}

// decoder turns raw sections into models.
type decoder struct {
	opts Options
}

// elements splits a section into its array elements.
func (d *decoder) elements(section string, raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, malformed(d.opts.Source, section, err)
	}
	return items, nil
}

func (d *decoder) element(raw json.RawMessage, path string, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return malformed(d.opts.Source, path, err)
	}
	return nil
}

func (d *decoder) requireID(id *int64, path string) (int64, error) {
	if id == nil {
		return 0, &reporterror.MalformedInputError{Source: d.opts.Source, Path: path, Msg: "missing id"}
	}
	return *id, nil
}

func (d *decoder) natures(raw json.RawMessage) ([]models.Nature, error) {
	items, err := d.elements(SectionNatures, raw)
	if err != nil {
		return nil, err
	}

	natures := make([]models.Nature, 0, len(items))
	seen := make(map[int64]int, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", SectionNatures, i)
		var rn rawNature
		if err := d.element(item, path, &rn); err != nil {
			return nil, err
		}
		id, err := d.requireID(rn.ID, path+".id")
		if err != nil {
			return nil, err
		}
		if first, dup := seen[id]; dup {
			return nil, d.duplicate(path+".id", "nature", id, fmt.Sprintf("%s[%d]", SectionNatures, first))
		}
		seen[id] = i

		natures = append(natures, models.Nature{
			ID:     id,
			Name:   d.name(rn.MultilingualName, rn.Name, id),
			Status: models.StatusOf(boolOr(rn.IsValid, true), boolOr(rn.IsEnabled, true)),
		})
	}
	return natures, nil
}

func (d *decoder) profiles(raw json.RawMessage) ([]models.Profile, error) {
	items, err := d.elements(SectionProfiles, raw)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(items))
	seen := make(map[int64]int, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", SectionProfiles, i)
		var rp rawProfile
		if err := d.element(item, path, &rp); err != nil {
			return nil, err
		}
		id, err := d.requireID(rp.ID, path+".id")
		if err != nil {
			return nil, err
		}
		if first, dup := seen[id]; dup {
			return nil, d.duplicate(path+".id", "profile", id, fmt.Sprintf("%s[%d]", SectionProfiles, first))
		}
		seen[id] = i

		limits, err := d.thresholds(rp.Limits, models.KindLimit, path+".limits")
		if err != nil {
			return nil, err
		}
		allowances, err := d.thresholds(rp.Allowances, models.KindAllowance, path+".allowances")
		if err != nil {
			return nil, err
		}

		profiles = append(profiles, models.Profile{
			ID:         id,
			Name:       d.name(rp.MultilingualName, rp.Name, id),
			NatureIDs:  nonNil(rp.IDNatures),
			Limits:     limits,
			Allowances: allowances,
		})
	}
	return profiles, nil
}

func (d *decoder) thresholds(raw []rawThreshold, kind, path string) ([]models.Threshold, error) {
	out := make([]models.Threshold, 0, len(raw))
	for i, rt := range raw {
		money := models.NoAmount(strings.TrimSpace(rt.CurrencyCode))
		if len(rt.Thresholds) > 0 {
			amountPath := fmt.Sprintf("%s[%d].thresholds[0].amount", path, i)
			amount, err := d.amount(rt.Thresholds[0].Amount, amountPath)
			if err != nil {
				return nil, err
			}
			money.Amount = amount
		}
		out = append(out, models.Threshold{
			Kind:      kind,
			Type:      strings.TrimSpace(rt.Type),
			Period:    strings.TrimSpace(rt.Period),
			NatureIDs: nonNil(rt.IDNatures),
			Money:     money,
		})
	}
	return out, nil
}

// amount accepts a JSON number, a formatted string or null.
func (d *decoder) amount(raw json.RawMessage, path string) (decimal.NullDecimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.NullDecimal{}, nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.NullDecimal{}, malformed(d.opts.Source, path, err)
		}
		if strings.TrimSpace(str) == "" {
			return decimal.NullDecimal{}, nil
		}
		value, err := currencyutils.ParseAmount(str)
		if err != nil {
			return decimal.NullDecimal{}, &reporterror.MalformedInputError{Source: d.opts.Source, Path: path, Msg: err.Error()}
		}
		return decimal.NewNullDecimal(value), nil
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, &reporterror.MalformedInputError{
			Source: d.opts.Source,
			Path:   path,
			Msg:    fmt.Sprintf("expected a number or a string, got %s", s),
		}
	}
	return decimal.NewNullDecimal(value), nil
}

func (d *decoder) charts(raw json.RawMessage) ([]models.ChartOfAccounts, error) {
	items, err := d.elements(SectionCharts, raw)
	if err != nil {
		return nil, err
	}

	charts := make([]models.ChartOfAccounts, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", SectionCharts, i)
		var rc rawChart
		if err := d.element(item, path, &rc); err != nil {
			return nil, err
		}
		id, err := d.requireID(rc.ID, path+".id")
		if err != nil {
			return nil, err
		}

		chart := models.ChartOfAccounts{
			ID:       id,
			Name:     d.name(rc.MultilingualName, rc.Name, id),
			Accounts: make([]models.CostsAccount, 0, len(rc.CostsAccounts)),
			Mappings: make([]models.NatureAccountMapping, 0, len(rc.NatureAccountMappings)),
		}

		for j, ra := range rc.CostsAccounts {
			accID, err := d.requireID(ra.ID, fmt.Sprintf("%s.costsAccounts[%d].id", path, j))
			if err != nil {
				return nil, err
			}
			code := ""
			if len(ra.Format) > 0 {
				code = strings.TrimSpace(string(ra.Format[0].Value))
			}
			chart.Accounts = append(chart.Accounts, models.CostsAccount{
				ID:    accID,
				Code:  code,
				Label: strings.TrimSpace(ra.Name),
			})
		}

		for j, rm := range rc.NatureAccountMappings {
			natureID, err := d.requireID(rm.IDNature, fmt.Sprintf("%s.natureAccountMappings[%d].idNature", path, j))
			if err != nil {
				return nil, err
			}
			mapping := models.NatureAccountMapping{NatureID: natureID, VATIDs: []int64{}}
			if rm.IDCostsAccount != nil {
				mapping.CostsAccountID = *rm.IDCostsAccount
			} else {
				mapping.NoCostsAccount = true
			}
			if rm.VATOptions != nil {
				mapping.VATIDs = nonNil(rm.VATOptions.IDCountryVats)
			}
			chart.Mappings = append(chart.Mappings, mapping)
		}

		charts = append(charts, chart)
	}
	return charts, nil
}

func (d *decoder) duplicate(path, entity string, id int64, first string) error {
	return &reporterror.MalformedInputError{
		Source: d.opts.Source,
		Path:   path,
		Msg:    fmt.Sprintf("duplicate %s id %d (first defined at %s)", entity, id, first),
	}
}

// name resolves a display name: primary locale, fallback locale, plain
// name, then "ID <id>".
func (d *decoder) name(ml multilingual, plain string, id int64) string {
	for _, locale := range []string{d.opts.PrimaryLocale, d.opts.FallbackLocale} {
		if locale == "" {
			continue
		}
		if v := strings.TrimSpace(ml.get(locale)); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(plain); v != "" {
		return v
	}
	return "ID " + strconv.FormatInt(id, 10)
}

// get looks a locale up exactly, then ignoring case ("fr-fr", "fr_FR").
// Several loose matches resolve to the smallest key.
func (m multilingual) get(locale string) string {
	if v, ok := m[locale]; ok {
		return v
	}
	want := strings.ReplaceAll(locale, "_", "-")
	var keys []string
	for k := range m {
		if strings.EqualFold(strings.ReplaceAll(k, "_", "-"), want) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	slices.Sort(keys)
	return m[keys[0]]
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
