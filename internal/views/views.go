// Package views builds the five report views from normalized tables. Every
// builder is a pure function: it copies what it needs and never modifies
// the tables it is given.
package views

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"fjacquet/cleemy-report/internal/labels"
	"fjacquet/cleemy-report/internal/models"
	"fjacquet/cleemy-report/internal/normalizer"
	"fjacquet/cleemy-report/internal/table"
)

// View names.
const (
	Overview = "overview"
	Profiles = "profiles"
	Limits   = "limits"
	Accounts = "accounts"
	Natures  = "natures"
)

// Summary keys.
const (
	CountProfiles        = "profiles"
	CountNatures         = "natures"
	CountLinks           = "links"
	CountInconsistencies = "inconsistencies"
	CountAudit           = "audit"
	CountBlocking        = "blocking"
	CountWarning         = "warning"
	CountAllowance       = "allowance"
	CountCharts          = "charts"
	CountMappings        = "mappings"
	CountUnmapped        = "unmapped"

	// DistinctUnmapped lists the natures mapped in no chart of accounts.
	DistinctUnmapped = "Unmapped"
)

// ErrUnknownView is returned by Build for a name not in Names.
var ErrUnknownView = errors.New("unknown view")

// Summary holds the aggregates shown next to a view.
type Summary struct {
	Rows     int
	Counts   map[string]int
	Distinct map[string][]string
}

// View is a display-ready table with its summary.
type View struct {
	Name    string
	Title   string
	Table   *table.Table
	Summary Summary

	// Index maps a key of IndexColumn to the positions of its rows. Each
	// row appears under exactly one key. Keys are IDs, so entities sharing
	// a name stay apart; LabelColumn names them. Nil for views without
	// index.
	Index       map[string][]int
	IndexColumn string
	LabelColumn string
}

// Builder builds one view.
type Builder func(*normalizer.Tables) *View

var registry = []struct {
	name  string
	build Builder
}{
	{Overview, BuildOverview},
	{Profiles, BuildPerProfile},
	{Limits, BuildLimits},
	{Accounts, BuildChartOfAccounts},
	{Natures, BuildPerNature},
}

// Names returns the view names in menu order.
func Names() []string {
	names := make([]string, len(registry))
	for i, entry := range registry {
		names[i] = entry.name
	}
	return names
}

// Build builds the named view.
func Build(name string, tables *normalizer.Tables) (*View, error) {
	for _, entry := range registry {
		if entry.name == strings.ToLower(name) {
			return entry.build(tables), nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownView, name, strings.Join(Names(), ", "))
}

// BuildAll builds every view in menu order.
func BuildAll(tables *normalizer.Tables) []*View {
	out := make([]*View, len(registry))
	for i, entry := range registry {
		out[i] = entry.build(tables)
	}
	return out
}

// BuildOverview projects profile/nature links onto Profile, Nature, Limit
// and Period.
func BuildOverview(t *normalizer.Tables) *View {
	tbl := project(t.ProfileNatures, Overview, normalizer.ColProfile, normalizer.ColNature, normalizer.ColLimit, normalizer.ColPeriod)

	v := newView(t, Overview, "Overview", tbl)
	v.Summary.Counts[CountProfiles] = distinctCount(t.ProfileNatures, normalizer.ColProfileID)
	v.Summary.Counts[CountNatures] = t.Natures.Len()
	v.Summary.Counts[CountLinks] = countNonNil(t.ProfileNatures, normalizer.ColNatureID)
	v.Summary.Counts[CountInconsistencies] = t.Inconsistencies.Len()
	v.Summary.Distinct[normalizer.ColProfile] = distinct(tbl, normalizer.ColProfile, t.Locale)
	v.Summary.Distinct[normalizer.ColNature] = distinct(tbl, normalizer.ColNature, t.Locale)
	v.Summary.Distinct[normalizer.ColPeriod] = distinct(tbl, normalizer.ColPeriod, t.Locale)
	return v
}

// BuildPerProfile shows every profile/nature link grouped by profile.
func BuildPerProfile(t *normalizer.Tables) *View {
	tbl := retitle(t.ProfileNatures.Clone(), Profiles)

	v := newView(t, Profiles, "Profiles & Natures", tbl)
	v.Index, v.IndexColumn, v.LabelColumn = index(tbl, normalizer.ColProfileID), normalizer.ColProfileID, normalizer.ColProfile
	v.Summary.Counts[CountProfiles] = distinctCount(tbl, normalizer.ColProfileID)
	v.Summary.Counts[CountLinks] = countNonNil(tbl, normalizer.ColNatureID)
	v.Summary.Counts[CountAudit] = countNonNil(tbl, normalizer.ColAudit)
	for _, col := range []string{normalizer.ColProfile, normalizer.ColNature, normalizer.ColStatus, normalizer.ColPeriod} {
		v.Summary.Distinct[col] = distinct(tbl, col, t.Locale)
	}
	return v
}

// BuildLimits lists limits and allowances per covered nature.
func BuildLimits(t *normalizer.Tables) *View {
	tbl := retitle(t.Limits.Clone(), Limits)

	v := newView(t, Limits, "Limits & Allowances", tbl)
	limitLabel := catalogOf(t).Kind(models.KindLimit)
	allowanceLabel := catalogOf(t).Kind(models.KindAllowance)
	for _, row := range tbl.Rows {
		switch {
		case row[normalizer.ColBlocking] == true:
			v.Summary.Counts[CountBlocking]++
		case row[normalizer.ColKind] == limitLabel:
			v.Summary.Counts[CountWarning]++
		}
		if row[normalizer.ColKind] == allowanceLabel {
			v.Summary.Counts[CountAllowance]++
		}
	}
	v.Summary.Counts[CountAudit] = countNonNil(tbl, normalizer.ColAudit)
	for _, col := range []string{normalizer.ColProfile, normalizer.ColKind, normalizer.ColPeriod, normalizer.ColCurrency} {
		v.Summary.Distinct[col] = distinct(tbl, col, t.Locale)
	}
	return v
}

// BuildChartOfAccounts lists nature mappings per chart and reports the
// natures no chart maps.
func BuildChartOfAccounts(t *normalizer.Tables) *View {
	tbl := retitle(t.Accounts.Clone(), Accounts)

	v := newView(t, Accounts, "Chart of Accounts", tbl)
	v.Summary.Counts[CountCharts] = distinctCount(tbl, normalizer.ColChart)
	v.Summary.Counts[CountMappings] = tbl.Len()
	v.Summary.Counts[CountAudit] = countNonNil(tbl, normalizer.ColAudit)
	v.Summary.Distinct[normalizer.ColChart] = distinct(tbl, normalizer.ColChart, t.Locale)

	mapped := make(map[any]bool, tbl.Len())
	for _, row := range tbl.Rows {
		mapped[row[normalizer.ColNatureID]] = true
	}
	unmapped := []string{}
	for _, row := range t.Natures.Rows {
		if !mapped[row[normalizer.ColNatureID]] {
			unmapped = append(unmapped, table.Format(row[normalizer.ColNature]))
		}
	}
	v.Summary.Counts[CountUnmapped] = len(unmapped)
	v.Summary.Distinct[DistinctUnmapped] = unmapped
	return v
}

// BuildPerNature shows every profile/nature link grouped by nature.
func BuildPerNature(t *normalizer.Tables) *View {
	tbl := retitle(t.ProfileNatures.Clone(), Natures)
	tbl.SortBy(t.Locale, normalizer.ColNature, normalizer.ColProfile)

	v := newView(t, Natures, "Natures & Profiles", tbl)
	v.Index, v.IndexColumn, v.LabelColumn = index(tbl, normalizer.ColNatureID), normalizer.ColNatureID, normalizer.ColNature
	v.Summary.Counts[CountNatures] = distinctCount(tbl, normalizer.ColNatureID)
	v.Summary.Counts[CountProfiles] = distinctCount(tbl, normalizer.ColProfileID)
	v.Summary.Counts[CountAudit] = countNonNil(tbl, normalizer.ColAudit)
	for _, col := range []string{normalizer.ColNature, normalizer.ColProfile, normalizer.ColStatus} {
		v.Summary.Distinct[col] = distinct(tbl, col, t.Locale)
	}
	return v
}

// Rows returns the rows indexed under key, in table order.
func (v *View) Rows(key string) []table.Row {
	positions := v.Index[key]
	rows := make([]table.Row, len(positions))
	for i, pos := range positions {
		rows[i] = v.Table.Rows[pos]
	}
	return rows
}

// Related returns the distinct non-empty values of column among the rows
// indexed under key, in table order. On the per-profile view,
// Related("10", "Nature") lists the natures of profile 10; on the
// per-nature view, Related("1", "Profile ID") lists the IDs of the
// profiles using nature 1.
func (v *View) Related(key, column string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, row := range v.Rows(key) {
		value := table.Format(row[column])
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

// NaturesOf lists the natures linked to the profile with the given ID.
// Use it on the per-profile view.
func (v *View) NaturesOf(profileID string) []string {
	return v.Related(profileID, normalizer.ColNature)
}

// ProfilesOf lists the profiles using the nature with the given ID. Use
// it on the per-nature view.
func (v *View) ProfilesOf(natureID string) []string {
	return v.Related(natureID, normalizer.ColProfile)
}

// Label returns the display name of key, or "" for an unknown key.
func (v *View) Label(key string) string {
	positions := v.Index[key]
	if len(positions) == 0 || v.LabelColumn == "" {
		return ""
	}
	return table.Format(v.Table.Rows[positions[0]][v.LabelColumn])
}

// KeysFor returns the keys whose display name is label, in table order.
// More than one key means several entities share the name.
func (v *View) KeysFor(label string) []string {
	var keys []string
	for _, key := range v.Keys() {
		if v.Label(key) == label {
			keys = append(keys, key)
		}
	}
	return keys
}

// Keys returns the index keys in table order.
func (v *View) Keys() []string {
	keys := make([]string, 0, len(v.Index))
	for key := range v.Index {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return v.Index[keys[i]][0] < v.Index[keys[j]][0]
	})
	return keys
}

func newView(t *normalizer.Tables, name, fallbackTitle string, tbl *table.Table) *View {
	title := catalogOf(t).Title(name, fallbackTitle)
	tbl.Title = title
	return &View{
		Name:  name,
		Title: title,
		Table: tbl,
		Summary: Summary{
			Rows:     tbl.Len(),
			Counts:   map[string]int{},
			Distinct: map[string][]string{},
		},
	}
}

func catalogOf(t *normalizer.Tables) *labels.Catalog {
	if t.Catalog == nil {
		return labels.Default()
	}
	return t.Catalog
}

func retitle(t *table.Table, name string) *table.Table {
	t.Name = name
	return t
}

// project selects columns the normalizer always provides.
func project(t *table.Table, name string, columns ...string) *table.Table {
	out, err := t.Select(name, t.Title, columns...)
	if err != nil {
		panic(fmt.Sprintf("views: %v", err))
	}
	return out
}

func index(t *table.Table, column string) map[string][]int {
	idx := make(map[string][]int)
	for i, row := range t.Rows {
		key := table.Format(row[column])
		idx[key] = append(idx[key], i)
	}
	return idx
}

func distinct(t *table.Table, column, locale string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, row := range t.Rows {
		value := table.Format(row[column])
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	collator := table.NewCollator(locale)
	sort.SliceStable(out, func(i, j int) bool {
		return collator.CompareString(out[i], out[j]) < 0
	})
	return out
}

func distinctCount(t *table.Table, column string) int {
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		if value := table.Format(row[column]); value != "" {
			seen[value] = true
		}
	}
	return len(seen)
}

func countNonNil(t *table.Table, column string) int {
	n := 0
	for _, row := range t.Rows {
		if row[column] != nil {
			n++
		}
	}
	return n
}
