package labels

import (
	"testing"

	"fjacquet/cleemy-report/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_Period(t *testing.T) {
	cat := Default()

	tests := []struct {
		code     string
		expected string
	}{
		{"Day", "Daily"},
		{"Week", "Weekly"},
		{"Month", "Monthly"},
		{"monthly", "Monthly"},
		{"month", "Monthly"},
		{"YEAR", "Yearly"},
		{"None", "Per expense"},
		{"Fortnight", "Fortnight"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, cat.Period(tt.code))
		})
	}
}

func TestFrench(t *testing.T) {
	cat := French()
	assert.Equal(t, "par Jour", cat.Period("Day"))
	assert.Equal(t, "par Dépense", cat.Period("None"))
	assert.Equal(t, "Désactivée", cat.Status(models.StatusDisabled))
	assert.Equal(t, "Forfait", cat.Kind(models.KindAllowance))
	assert.Equal(t, "Rapport Complet - Profils & Natures", cat.Title("profiles", "x"))
}

func TestForPreset(t *testing.T) {
	assert.Equal(t, PresetFrench, ForPreset("fr").Preset)
	assert.Equal(t, PresetFrench, ForPreset("fr-CH").Preset)
	assert.Equal(t, PresetEnglish, ForPreset("en-US").Preset)
	assert.Equal(t, PresetEnglish, ForPreset("").Preset)
	assert.Equal(t, PresetEnglish, ForPreset("de").Preset)
}

func TestCatalog_StatusKindTitle(t *testing.T) {
	cat := Default()
	assert.Equal(t, "Valid", cat.Status(models.StatusValid))
	assert.Equal(t, "Invalid", cat.Status(models.StatusInvalid))
	assert.Equal(t, "Limit", cat.Kind(models.KindLimit))
	assert.Equal(t, "mystery", cat.Kind("mystery"))
	assert.Equal(t, "Overview", cat.Title("overview", "fallback"))
	assert.Equal(t, "fallback", cat.Title("unknown", "fallback"))
}

func TestCatalog_Merge(t *testing.T) {
	base := Default()
	overlay := &Catalog{
		Periods:       map[string]string{"day": "Per day", "Quarter": "Quarterly", "None": ""},
		Titles:        map[string]string{"overview": "Summary"},
		UnknownNature: "???",
	}

	merged := base.Merge(overlay)

	assert.Equal(t, "Per day", merged.Period("Day"))
	assert.Equal(t, "Per day", merged.Period("DAY"))
	assert.Equal(t, "Quarterly", merged.Period("quarter"))
	assert.Equal(t, "Per expense", merged.Period("None"), "empty overlay values are ignored")
	assert.Equal(t, "Summary", merged.Title("overview", ""))
	assert.Equal(t, "???", merged.UnknownNature)
	assert.Equal(t, "Unknown account", merged.UnknownAccount)

	// the base catalog is untouched
	assert.Equal(t, "Daily", base.Period("Day"))
	assert.Equal(t, "Unknown nature", base.UnknownNature)

	assert.Equal(t, base.Periods, base.Merge(nil).Periods)
}
