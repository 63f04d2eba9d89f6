package loader

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Top-level sections of a Cleemy export.
const (
	SectionProfiles = "profiles"
	SectionNatures  = "natures"
	SectionCharts   = "chartsOfAccounts"
	// SectionChartsAlias is accepted when SectionCharts is absent.
	SectionChartsAlias = "accounts"
)

// RequiredSections lists the sections every export must carry, in the
// order they are reported when missing.
var RequiredSections = []string{SectionProfiles, SectionNatures, SectionCharts}

type multilingual map[string]string

type rawNature struct {
	ID               *int64       `json:"id"`
	Name             string       `json:"name"`
	MultilingualName multilingual `json:"multilingualName"`
	IsValid          *bool        `json:"isValid"`
	IsEnabled        *bool        `json:"isEnabled"`
}

type rawAmount struct {
	Amount json.RawMessage `json:"amount"`
}

type rawThreshold struct {
	Type         string      `json:"type"`
	CurrencyCode string      `json:"currencyCode"`
	Period       string      `json:"period"`
	IDNatures    []int64     `json:"idNatures"`
	Thresholds   []rawAmount `json:"thresholds"`
}

type rawProfile struct {
	ID               *int64         `json:"id"`
	Name             string         `json:"name"`
	MultilingualName multilingual   `json:"multilingualName"`
	IDNatures        []int64        `json:"idNatures"`
	Limits           []rawThreshold `json:"limits"`
	Allowances       []rawThreshold `json:"allowances"`
}

type rawFormat struct {
	Value flexString `json:"value"`
}

type rawCostsAccount struct {
	ID     *int64      `json:"id"`
	Name   string      `json:"name"`
	Format []rawFormat `json:"format"`
}

type rawVATOptions struct {
	IDCountryVats []int64 `json:"idCountryVats"`
}

type rawMapping struct {
	IDNature       *int64         `json:"idNature"`
	IDCostsAccount *int64         `json:"idCostsAccount"`
	VATOptions     *rawVATOptions `json:"vatOptions"`
}

type rawChart struct {
	ID                    *int64            `json:"id"`
	Name                  string            `json:"name"`
	MultilingualName      multilingual      `json:"multilingualName"`
	CostsAccounts         []rawCostsAccount `json:"costsAccounts"`
	NatureAccountMappings []rawMapping      `json:"natureAccountMappings"`
}

// flexString accepts a JSON string or number. Account codes are exported
// as either depending on the chart.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = flexString(str)
	case s != "" && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9')):
		*f = flexString(s)
	default:
		return fmt.Errorf("expected a string or a number, got %s", s)
	}
	return nil
}
