// Package labels holds the display labels used when turning export codes
// into table cells: period names, nature statuses, threshold kinds, audit
// messages and view titles. Catalogs are plain data so they can be loaded
// from YAML and passed to the normalizer and the view builders.
package labels

import (
	"sort"
	"strings"

	"fjacquet/cleemy-report/internal/models"
)

// Preset names.
const (
	PresetEnglish = "en"
	PresetFrench  = "fr"
)

// Catalog maps codes to display labels.
type Catalog struct {
	Preset         string            `yaml:"preset"`
	Periods        map[string]string `yaml:"periods"`
	Statuses       map[string]string `yaml:"statuses"`
	Kinds          map[string]string `yaml:"kinds"`
	Titles         map[string]string `yaml:"titles"`
	UnknownNature  string            `yaml:"unknown_nature"`
	UnknownAccount string            `yaml:"unknown_account"`
	NoNatures      string            `yaml:"no_natures"`
}

// Default returns the English catalog.
func Default() *Catalog {
	return &Catalog{
		Preset: PresetEnglish,
		Periods: map[string]string{
			models.PeriodDay:   "Daily",
			models.PeriodWeek:  "Weekly",
			models.PeriodMonth: "Monthly",
			models.PeriodYear:  "Yearly",
			models.PeriodNone:  "Per expense",
		},
		Statuses: map[string]string{
			string(models.StatusValid):    "Valid",
			string(models.StatusDisabled): "Disabled",
			string(models.StatusInvalid):  "Invalid",
		},
		Kinds: map[string]string{
			models.KindLimit:     "Limit",
			models.KindAllowance: "Allowance",
		},
		Titles: map[string]string{
			"overview": "Overview",
			"profiles": "Profiles & Natures",
			"limits":   "Limits & Allowances",
			"accounts": "Chart of Accounts",
			"natures":  "Natures & Profiles",
		},
		UnknownNature:  "Unknown nature",
		UnknownAccount: "Unknown account",
		NoNatures:      "No nature linked",
	}
}

// French returns the French catalog, matching the wording of the Cleemy
// back office.
func French() *Catalog {
	return &Catalog{
		Preset: PresetFrench,
		Periods: map[string]string{
			models.PeriodDay:   "par Jour",
			models.PeriodWeek:  "par Semaine",
			models.PeriodMonth: "par Mois",
			models.PeriodYear:  "par An",
			models.PeriodNone:  "par Dépense",
		},
		Statuses: map[string]string{
			string(models.StatusValid):    "Valide",
			string(models.StatusDisabled): "Désactivée",
			string(models.StatusInvalid):  "Invalide",
		},
		Kinds: map[string]string{
			models.KindLimit:     "Plafond",
			models.KindAllowance: "Forfait",
		},
		Titles: map[string]string{
			"overview": "Vue d'ensemble",
			"profiles": "Rapport Complet - Profils & Natures",
			"limits":   "Limites & Indemnités",
			"accounts": "Plan Comptable",
			"natures":  "Natures & Profils",
		},
		UnknownNature:  "Nature inconnue",
		UnknownAccount: "Compte non trouvé",
		NoNatures:      "Aucune nature associée",
	}
}

// ForPreset returns the catalog of a preset name or BCP 47 tag
// ("fr", "fr-CH"); anything else yields the English catalog.
func ForPreset(name string) *Catalog {
	base, _, _ := strings.Cut(strings.ToLower(name), "-")
	if base == PresetFrench {
		return French()
	}
	return Default()
}

// Period translates a period code. Lookup ignores case; unknown codes are
// returned unchanged and the empty code stays empty.
func (c *Catalog) Period(code string) string {
	if code == "" {
		return ""
	}
	return lookup(c.Periods, code)
}

// Status translates a nature status.
func (c *Catalog) Status(s models.NatureStatus) string {
	return lookup(c.Statuses, string(s))
}

// Kind translates a threshold kind.
func (c *Catalog) Kind(kind string) string {
	return lookup(c.Kinds, kind)
}

// Title returns the title of a view, or fallback.
func (c *Catalog) Title(view, fallback string) string {
	if title, ok := c.Titles[view]; ok && title != "" {
		return title
	}
	return fallback
}

// Merge overlays the non-empty entries of other onto a copy of c.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := c.Clone()
	if other == nil {
		return out
	}
	mergeMap(out.Periods, other.Periods)
	mergeMap(out.Statuses, other.Statuses)
	mergeMap(out.Kinds, other.Kinds)
	mergeMap(out.Titles, other.Titles)
	if other.UnknownNature != "" {
		out.UnknownNature = other.UnknownNature
	}
	if other.UnknownAccount != "" {
		out.UnknownAccount = other.UnknownAccount
	}
	if other.NoNatures != "" {
		out.NoNatures = other.NoNatures
	}
	return out
}

// Clone returns a deep copy.
func (c *Catalog) Clone() *Catalog {
	out := *c
	out.Periods = cloneMap(c.Periods)
	out.Statuses = cloneMap(c.Statuses)
	out.Kinds = cloneMap(c.Kinds)
	out.Titles = cloneMap(c.Titles)
	return &out
}

// lookup matches the code exactly, then ignoring case, then against the
// labels themselves so that already translated values ("monthly") are
// normalized too.
func lookup(m map[string]string, code string) string {
	if label, ok := m[code]; ok {
		return label
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, code) {
			return m[k]
		}
	}
	for _, k := range keys {
		if strings.EqualFold(m[k], code) {
			return m[k]
		}
	}
	return code
}

func mergeMap(dst, src map[string]string) {
	for k, v := range src {
		if v == "" {
			continue
		}
		// replace keys that differ only in case so lookups stay unambiguous
		for existing := range dst {
			if strings.EqualFold(existing, k) && existing != k {
				delete(dst, existing)
			}
		}
		dst[k] = v
	}
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
