// Package normalizer flattens a models.Dataset into the five tables every
// view is built from. The output is deterministic: identical datasets give
// identical tables, row for row.
package normalizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fjacquet/cleemy-report/internal/labels"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/models"
	"fjacquet/cleemy-report/internal/reporterror"
	"fjacquet/cleemy-report/internal/table"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tables holds the normalized form of one dataset.
type Tables struct {
	ProfileNatures  *table.Table
	Limits          *table.Table
	Accounts        *table.Table
	Natures         *table.Table
	Inconsistencies *table.Table

	// Issues are the referential inconsistencies behind the audit rows.
	Issues []*reporterror.ReferentialInconsistency
	// Locale is the collation locale the rows were sorted with.
	Locale string
	// Catalog holds the labels used for the cells.
	Catalog *labels.Catalog
}

// All returns the tables in a fixed order.
func (t *Tables) All() []*table.Table {
	return []*table.Table{t.ProfileNatures, t.Limits, t.Accounts, t.Natures, t.Inconsistencies}
}

// ByName returns a table by its name.
func (t *Tables) ByName(name string) (*table.Table, bool) {
	for _, tbl := range t.All() {
		if tbl.Name == name {
			return tbl, true
		}
	}
	return nil, false
}

// Normalizer builds Tables from datasets.
type Normalizer struct {
	catalog *labels.Catalog
	locale  string
	logger  logging.Logger
}

// New creates a Normalizer. A nil catalog means the English labels; locale
// drives name collation and may be empty for the root collation.
func New(catalog *labels.Catalog, locale string, logger logging.Logger) *Normalizer {
	if catalog == nil {
		catalog = labels.Default()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Normalizer{catalog: catalog, locale: locale, logger: logger}
}

// Normalize flattens ds with the given catalog and the root collation.
func Normalize(ds *models.Dataset, catalog *labels.Catalog) (*Tables, error) {
	return New(catalog, "", nil).Normalize(ds)
}

// Normalize flattens ds.
func (n *Normalizer) Normalize(ds *models.Dataset) (*Tables, error) {
	if ds == nil {
		return nil, errors.New("normalize: no dataset loaded")
	}

	b := &builder{
		ds:      ds,
		catalog: n.catalog,
		title:   cases.Title(language.Und),
	}
	out := &Tables{
		ProfileNatures: b.profileNatures(),
		Limits:         b.limits(),
		Accounts:       b.accounts(),
		Natures:        b.natures(),
		Locale:         n.locale,
		Catalog:        n.catalog,
	}
	out.Inconsistencies = b.inconsistencies()
	out.Issues = b.issues

	out.ProfileNatures.SortBy(n.locale, ColProfile, ColNature)
	out.Limits.SortBy(n.locale, ColProfile)
	out.Accounts.SortBy(n.locale, ColChart, ColAccountCode)
	out.Natures.SortBy(n.locale, ColNature)

	for _, tbl := range out.All() {
		if err := tbl.Validate(); err != nil {
			return nil, fmt.Errorf("normalize: %w", err)
		}
		n.logger.Debug("Normalized table",
			logging.F(logging.FieldTable, tbl.Name),
			logging.F(logging.FieldRows, tbl.Len()))
	}

	if len(out.Issues) > 0 {
		n.logger.Warn("Export references unknown entities",
			logging.F(logging.FieldFile, ds.Source),
			logging.F(logging.FieldCount, len(out.Issues)))
	}

	return out, nil
}

type builder struct {
	ds      *models.Dataset
	catalog *labels.Catalog
	title   cases.Caser
	issues  []*reporterror.ReferentialInconsistency
}

func (b *builder) report(kind, source, reference, msg string) {
	b.issues = append(b.issues, &reporterror.ReferentialInconsistency{
		Kind:      kind,
		Source:    source,
		Reference: reference,
		Msg:       msg,
	})
}

// nature resolves a nature reference. Unknown IDs are reported and shown
// as "ID <n>" with the unknown-nature audit label.
func (b *builder) nature(id int64, source string) (name string, status, audit any) {
	if nature, ok := b.ds.Nature(id); ok {
		return nature.Name, b.catalog.Status(nature.Status), nil
	}
	b.report(reporterror.KindUnknownNature, source, "nature "+strconv.FormatInt(id, 10),
		"nature is not in the catalog")
	return "ID " + strconv.FormatInt(id, 10), nil, b.catalog.UnknownNature
}

// profileNatures emits one row per (profile, nature link), and one
// placeholder row for a profile without links.
func (b *builder) profileNatures() *table.Table {
	t := table.New(TableProfileNatures, "Profiles & Natures", profileNatureColumns...)

	for _, p := range b.ds.Profiles {
		if len(p.NatureIDs) == 0 {
			t.Append(p.ID, p.Name, nil, nil, nil, nil, nil, nil, nil, nil, b.catalog.NoNatures)
			continue
		}

		source := profileSource(p)
		for _, natureID := range p.NatureIDs {
			name, status, audit := b.nature(natureID, source)
			rule := p.RuleFor(natureID)

			var limit, allowance, blocking any
			if rule.Limit != nil {
				limit = rule.Limit.Value()
				blocking = rule.Blocking()
			}
			if rule.Allowance != nil {
				allowance = rule.Allowance.Value()
			}

			t.Append(p.ID, p.Name, natureID, name, status,
				limit, allowance, nullable(rule.Currency()), b.period(rule.Period()), blocking, audit)
		}
	}
	return t
}

// limits emits one row per (profile, threshold, covered nature).
func (b *builder) limits() *table.Table {
	t := table.New(TableLimits, "Limits & Allowances", limitColumns...)

	for _, p := range b.ds.Profiles {
		thresholds := make([]models.Threshold, 0, len(p.Limits)+len(p.Allowances))
		thresholds = append(thresholds, p.Limits...)
		thresholds = append(thresholds, p.Allowances...)

		for i, th := range thresholds {
			kind := b.catalog.Kind(th.Kind)
			typ := nullable(b.title.String(th.Type))
			period := b.period(th.Period)

			if len(th.NatureIDs) == 0 {
				t.Append(p.Name, kind, typ, th.Blocking(), th.Value(), th.CurrencyValue(), period, nil, nil, nil)
				continue
			}

			source := fmt.Sprintf("%s %s #%d", profileSource(p), th.Kind, thresholdIndex(p, i)+1)
			for _, natureID := range th.NatureIDs {
				name, _, audit := b.nature(natureID, source)
				t.Append(p.Name, kind, typ, th.Blocking(), th.Value(), th.CurrencyValue(), period, natureID, name, audit)
			}
		}
	}
	return t
}

// accounts emits one row per (chart, nature mapping).
func (b *builder) accounts() *table.Table {
	t := table.New(TableAccounts, "Chart of Accounts", accountColumns...)

	for _, chart := range b.ds.Charts {
		source := fmt.Sprintf("chart %q (id %d)", chart.Name, chart.ID)
		for _, m := range chart.Mappings {
			var audits []string
			var code, label any

			switch account, ok := chart.AccountFor(m); {
			case ok:
				code = nullable(account.Code)
				label = nullable(account.Label)
			case m.NoCostsAccount:
				b.report(reporterror.KindUnknownAccount, source,
					"nature "+strconv.FormatInt(m.NatureID, 10),
					"mapping has no costs account")
				audits = append(audits, b.catalog.UnknownAccount)
			default:
				b.report(reporterror.KindUnknownAccount, source,
					"costs account "+strconv.FormatInt(m.CostsAccountID, 10),
					"costs account is not defined in the chart")
				audits = append(audits, b.catalog.UnknownAccount)
			}

			name, _, natureAudit := b.nature(m.NatureID, source)
			if natureAudit != nil {
				audits = append(audits, natureAudit.(string))
			}

			var audit any
			if len(audits) > 0 {
				audit = strings.Join(audits, "; ")
			}

			t.Append(chart.Name, code, label, m.NatureID, name, joinIDs(m.VATIDs), audit)
		}
	}
	return t
}

func (b *builder) natures() *table.Table {
	t := table.New(TableNatures, "Natures", natureColumns...)
	for _, n := range b.ds.Natures {
		t.Append(n.ID, n.Name, b.catalog.Status(n.Status))
	}
	return t
}

func (b *builder) inconsistencies() *table.Table {
	t := table.New(TableInconsistencies, "Inconsistencies", inconsistencyColumns...)
	for _, issue := range b.issues {
		t.Append(issue.Kind, issue.Source, issue.Reference, issue.Msg)
	}
	return t
}

func (b *builder) period(code string) any {
	return nullable(b.catalog.Period(code))
}

func profileSource(p models.Profile) string {
	return fmt.Sprintf("profile %q (id %d)", p.Name, p.ID)
}

// thresholdIndex converts a position in limits+allowances into the
// position inside its own list.
func thresholdIndex(p models.Profile, i int) int {
	if i < len(p.Limits) {
		return i
	}
	return i - len(p.Limits)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func joinIDs(ids []int64) any {
	if len(ids) == 0 {
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
