// Package models defines the typed shape of a Cleemy export once it has
// passed the loader's validation.
package models

import (
	"strings"
)

// NatureStatus is the lifecycle state of an expense nature.
type NatureStatus string

const (
	StatusValid    NatureStatus = "valid"
	StatusDisabled NatureStatus = "disabled"
	StatusInvalid  NatureStatus = "invalid"
)

// StatusOf derives the status from the export's isValid and isEnabled
// flags. Invalid wins over disabled.
func StatusOf(isValid, isEnabled bool) NatureStatus {
	switch {
	case !isValid:
		return StatusInvalid
	case !isEnabled:
		return StatusDisabled
	default:
		return StatusValid
	}
}

// Nature is an expense category.
type Nature struct {
	ID     int64
	Name   string
	Status NatureStatus
}

// Threshold is a limit or an allowance attached to a profile.
type Threshold struct {
	Kind      string
	Type      string
	Period    string
	NatureIDs []int64
	Money
}

// Covers reports whether the threshold applies to a nature.
func (t Threshold) Covers(natureID int64) bool {
	for _, id := range t.NatureIDs {
		if id == natureID {
			return true
		}
	}
	return false
}

// Blocking reports whether the threshold rejects expenses above it.
func (t Threshold) Blocking() bool {
	return t.Kind == KindLimit && strings.EqualFold(t.Type, LimitTypeAbsolute)
}

// Profile is an expense policy role.
type Profile struct {
	ID         int64
	Name       string
	NatureIDs  []int64
	Limits     []Threshold
	Allowances []Threshold
}

// Rule is the configuration binding one profile to one nature, derived
// from the first limit and first allowance covering the nature.
type Rule struct {
	ProfileID int64
	NatureID  int64
	Limit     *Threshold
	Allowance *Threshold
}

// RuleFor builds the rule of a profile for one nature.
func (p Profile) RuleFor(natureID int64) Rule {
	rule := Rule{ProfileID: p.ID, NatureID: natureID}
	for i := range p.Limits {
		if p.Limits[i].Covers(natureID) {
			rule.Limit = &p.Limits[i]
			break
		}
	}
	for i := range p.Allowances {
		if p.Allowances[i].Covers(natureID) {
			rule.Allowance = &p.Allowances[i]
			break
		}
	}
	return rule
}

// Period returns the period code of the limit, else of the allowance.
func (r Rule) Period() string {
	if r.Limit != nil && r.Limit.Period != "" {
		return r.Limit.Period
	}
	if r.Allowance != nil {
		return r.Allowance.Period
	}
	return ""
}

// Currency returns the currency of the limit, else of the allowance.
func (r Rule) Currency() string {
	if r.Limit != nil && r.Limit.Currency != "" {
		return r.Limit.Currency
	}
	if r.Allowance != nil {
		return r.Allowance.Currency
	}
	return ""
}

// Blocking reports whether the rule carries a blocking limit.
func (r Rule) Blocking() bool {
	return r.Limit != nil && r.Limit.Blocking()
}

// CostsAccount is an accounting account of a chart.
type CostsAccount struct {
	ID    int64
	Code  string
	Label string
}

// NatureAccountMapping maps a nature to a costs account of the same chart.
type NatureAccountMapping struct {
	NatureID       int64
	CostsAccountID int64
	// NoCostsAccount is set when the export omits idCostsAccount;
	// CostsAccountID is then meaningless.
	NoCostsAccount bool
	VATIDs         []int64
}

// ChartOfAccounts groups costs accounts and their nature mappings.
type ChartOfAccounts struct {
	ID       int64
	Name     string
	Accounts []CostsAccount
	Mappings []NatureAccountMapping
}

// Account looks up a costs account by ID.
func (c ChartOfAccounts) Account(id int64) (CostsAccount, bool) {
	for _, acc := range c.Accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return CostsAccount{}, false
}

// AccountFor resolves the costs account of m. A mapping without
// idCostsAccount never resolves.
func (c ChartOfAccounts) AccountFor(m NatureAccountMapping) (CostsAccount, bool) {
	if m.NoCostsAccount {
		return CostsAccount{}, false
	}
	return c.Account(m.CostsAccountID)
}

// Dataset is the validated content of one export. It is built once per
// load and never modified afterwards.
type Dataset struct {
	Source   string
	Natures  []Nature
	Profiles []Profile
	Charts   []ChartOfAccounts

	natureIndex  map[int64]int
	profileIndex map[int64]int
}

// NewDataset indexes the entities by ID. IDs are expected to be unique;
// the loader rejects duplicates before calling it.
func NewDataset(source string, natures []Nature, profiles []Profile, charts []ChartOfAccounts) *Dataset {
	ds := &Dataset{
		Source:       source,
		Natures:      natures,
		Profiles:     profiles,
		Charts:       charts,
		natureIndex:  make(map[int64]int, len(natures)),
		profileIndex: make(map[int64]int, len(profiles)),
	}
	for i, n := range natures {
		if _, dup := ds.natureIndex[n.ID]; !dup {
			ds.natureIndex[n.ID] = i
		}
	}
	for i, p := range profiles {
		if _, dup := ds.profileIndex[p.ID]; !dup {
			ds.profileIndex[p.ID] = i
		}
	}
	return ds
}

// Nature returns the catalog nature with the given ID.
func (d *Dataset) Nature(id int64) (Nature, bool) {
	i, ok := d.natureIndex[id]
	if !ok {
		return Nature{}, false
	}
	return d.Natures[i], true
}

// Profile returns the profile with the given ID.
func (d *Dataset) Profile(id int64) (Profile, bool) {
	i, ok := d.profileIndex[id]
	if !ok {
		return Profile{}, false
	}
	return d.Profiles[i], true
}

// Stats counts the entities of a dataset.
type Stats struct {
	Profiles   int
	Natures    int
	Links      int
	Limits     int
	Allowances int
	Charts     int
	Accounts   int
	Mappings   int
}

// Stats returns entity counts, used by diagnostics and logs.
func (d *Dataset) Stats() Stats {
	s := Stats{
		Profiles: len(d.Profiles),
		Natures:  len(d.Natures),
		Charts:   len(d.Charts),
	}
	for _, p := range d.Profiles {
		s.Links += len(p.NatureIDs)
		s.Limits += len(p.Limits)
		s.Allowances += len(p.Allowances)
	}
	for _, c := range d.Charts {
		s.Accounts += len(c.Accounts)
		s.Mappings += len(c.Mappings)
	}
	return s
}
