package config

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/cleemy-report/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnvVars = []string{
	"CLEEMY_LOG_LEVEL",
	"CLEEMY_LOG_FORMAT",
	"CLEEMY_CSV_DELIMITER",
	"CLEEMY_LOCALE_PRIMARY",
	"CLEEMY_LOCALE_FALLBACK",
	"CLEEMY_LABELS_FILE",
	"CLEEMY_PDF_ORIENTATION",
	"CLEEMY_PDF_FONT_SIZE",
	"CLEEMY_PDF_MAX_COLUMN_WIDTH",
	"CLEEMY_PDF_COMPRESS",
	"CLEEMY_XLSX_MAX_COLUMN_WIDTH",
	"CLEEMY_OUTPUT_DIRECTORY",
	"CLEEMY_TERMINAL_MAX_CELL_WIDTH",
	"CLEEMY_CONFIG",
}

// clearTestEnvVars unsets every CLEEMY_* variable for the duration of a test.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range testEnvVars {
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, old) })
		}
	}
}

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())

	cfg, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, ',', cfg.Delimiter())
	assert.Equal(t, "fr-FR", cfg.Locale.Primary)
	assert.Equal(t, "en-US", cfg.Locale.Fallback)
	assert.Equal(t, "", cfg.Labels.File)
	assert.Equal(t, "auto", cfg.PDF.Orientation)
	assert.Equal(t, 8.0, cfg.PDF.FontSize)
	assert.Equal(t, 80.0, cfg.PDF.MaxColumnWidth)
	assert.True(t, cfg.PDF.Compress)
	assert.Equal(t, 60.0, cfg.XLSX.MaxColumnWidth)
	assert.Equal(t, 40, cfg.Terminal.MaxCellWidth)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())

	t.Setenv("CLEEMY_LOG_LEVEL", "debug")
	t.Setenv("CLEEMY_LOG_FORMAT", "json")
	t.Setenv("CLEEMY_CSV_DELIMITER", ";")
	t.Setenv("CLEEMY_LOCALE_PRIMARY", "en-US")
	t.Setenv("CLEEMY_PDF_FONT_SIZE", "10")
	t.Setenv("CLEEMY_PDF_COMPRESS", "false")

	cfg, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ';', cfg.Delimiter())
	assert.Equal(t, "en-US", cfg.Locale.Primary)
	assert.Equal(t, 10.0, cfg.PDF.FontSize)
	assert.False(t, cfg.PDF.Compress)
}

func TestInitializeConfig_ConfigFileFromEnvironment(t *testing.T) {
	clearTestEnvVars(t)
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "team.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locale:\n  primary: en-US\n"), 0600))
	t.Setenv(EnvConfigFile, path)

	cfg, err := InitializeConfig("")
	require.NoError(t, err)
	assert.Equal(t, "en-US", cfg.Locale.Primary)

	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = InitializeConfig("")
	assert.Error(t, err, "a file named by the environment must exist")
}

func TestInitializeConfig_ConfigFileAndPrecedence(t *testing.T) {
	clearTestEnvVars(t)
	dir := t.TempDir()
	chdir(t, dir)

	content := `
log:
  level: "warn"
csv:
  delimiter: "|"
pdf:
  orientation: "landscape"
  max_column_width: 50
labels:
  file: "labels.yaml"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))
	t.Setenv("CLEEMY_LOG_LEVEL", "error")

	cfg, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level, "environment wins over file")
	assert.Equal(t, "|", cfg.CSV.Delimiter)
	assert.Equal(t, "landscape", cfg.PDF.Orientation)
	assert.Equal(t, 50.0, cfg.PDF.MaxColumnWidth)
	assert.Equal(t, "labels.yaml", cfg.Labels.File)
}

func TestInitializeConfig_ExplicitFile(t *testing.T) {
	clearTestEnvVars(t)
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locale:\n  primary: en-GB\n"), 0600))

	cfg, err := InitializeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "en-GB", cfg.Locale.Primary)

	_, err = InitializeConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{"invalid log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"multi-char delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }, "CSV delimiter must be a single character"},
		{"quote delimiter", func(c *Config) { c.CSV.Delimiter = `"` }, "cannot be a quote or newline"},
		{"invalid locale", func(c *Config) { c.Locale.Primary = "not a locale!" }, "invalid locale.primary"},
		{"invalid orientation", func(c *Config) { c.PDF.Orientation = "diagonal" }, "invalid pdf.orientation"},
		{"font too small", func(c *Config) { c.PDF.FontSize = 1 }, "pdf.font_size must be between 4 and 24"},
		{"column too narrow", func(c *Config) { c.PDF.MaxColumnWidth = 2 }, "pdf.max_column_width must be at least 10mm"},
		{"xlsx width out of range", func(c *Config) { c.XLSX.MaxColumnWidth = 500 }, "xlsx.max_column_width must be between 8 and 255"},
		{"terminal width", func(c *Config) { c.Terminal.MaxCellWidth = 1 }, "terminal.max_cell_width must be at least 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, validateConfig(cfg))

			tt.modifyConfig(cfg)
			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	logger := NewLogger(cfg)
	_, ok := logger.(*logging.LogrusAdapter)
	require.True(t, ok)

	assert.NotNil(t, NewLogger(nil))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CLEEMY_TEST_GETENV", "value")
	assert.Equal(t, "value", GetEnv("CLEEMY_TEST_GETENV", "fallback"))
	assert.Equal(t, "fallback", GetEnv("CLEEMY_TEST_GETENV_UNSET", "fallback"))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
