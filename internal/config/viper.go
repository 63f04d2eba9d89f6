package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// EnvPrefix is prepended to every environment override, e.g. CLEEMY_LOG_LEVEL.
const EnvPrefix = "CLEEMY"

// EnvConfigFile names the config file when --config is not given.
const EnvConfigFile = EnvPrefix + "_CONFIG"

// Config represents the complete application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	CSV      CSVConfig      `mapstructure:"csv" yaml:"csv"`
	Locale   LocaleConfig   `mapstructure:"locale" yaml:"locale"`
	Labels   LabelsConfig   `mapstructure:"labels" yaml:"labels"`
	PDF      PDFConfig      `mapstructure:"pdf" yaml:"pdf"`
	XLSX     XLSXConfig     `mapstructure:"xlsx" yaml:"xlsx"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Terminal TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// LocaleConfig selects which translation of multilingual names is shown.
type LocaleConfig struct {
	Primary  string `mapstructure:"primary" yaml:"primary"`
	Fallback string `mapstructure:"fallback" yaml:"fallback"`
}

// LabelsConfig points to an optional YAML label catalog overriding the
// built-in period and status labels.
type LabelsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

type PDFConfig struct {
	Orientation    string  `mapstructure:"orientation" yaml:"orientation"`
	FontSize       float64 `mapstructure:"font_size" yaml:"font_size"`
	MaxColumnWidth float64 `mapstructure:"max_column_width" yaml:"max_column_width"`
	Compress       bool    `mapstructure:"compress" yaml:"compress"`
}

type XLSXConfig struct {
	MaxColumnWidth float64 `mapstructure:"max_column_width" yaml:"max_column_width"`
}

type OutputConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

type TerminalConfig struct {
	MaxCellWidth int `mapstructure:"max_cell_width" yaml:"max_cell_width"`
}

// InitializeConfig loads configuration with the following precedence:
// environment variables, then the config file, then defaults. An empty
// configFile falls back to $CLEEMY_CONFIG; when both are empty,
// config.yaml is searched in $HOME/.cleemy-report,
// ./.cleemy-report and the working directory; a missing file is not an
// error. An explicit configFile must exist.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile == "" {
		configFile = GetEnv(EnvConfigFile, "")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.cleemy-report")
		v.AddConfigPath(".cleemy-report")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration made of defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("locale.primary", "fr-FR")
	v.SetDefault("locale.fallback", "en-US")

	v.SetDefault("labels.file", "")

	v.SetDefault("pdf.orientation", "auto")
	v.SetDefault("pdf.font_size", 8.0)
	v.SetDefault("pdf.max_column_width", 80.0)
	v.SetDefault("pdf.compress", true)

	v.SetDefault("xlsx.max_column_width", 60.0)

	v.SetDefault("output.directory", "")

	v.SetDefault("terminal.max_cell_width", 40)
}

func validateConfig(cfg *Config) error {
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}

	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", cfg.Log.Format)
	}

	if utf8.RuneCountInString(cfg.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %q", cfg.CSV.Delimiter)
	}
	if d := []rune(cfg.CSV.Delimiter)[0]; d == '"' || d == '\n' || d == '\r' {
		return fmt.Errorf("CSV delimiter cannot be a quote or newline, got: %q", cfg.CSV.Delimiter)
	}

	if _, err := language.Parse(cfg.Locale.Primary); err != nil {
		return fmt.Errorf("invalid locale.primary: %s", cfg.Locale.Primary)
	}
	if cfg.Locale.Fallback != "" {
		if _, err := language.Parse(cfg.Locale.Fallback); err != nil {
			return fmt.Errorf("invalid locale.fallback: %s", cfg.Locale.Fallback)
		}
	}

	switch strings.ToLower(cfg.PDF.Orientation) {
	case "auto", "p", "portrait", "l", "landscape":
	default:
		return fmt.Errorf("invalid pdf.orientation: %s (must be auto, portrait or landscape)", cfg.PDF.Orientation)
	}

	if cfg.PDF.FontSize < 4 || cfg.PDF.FontSize > 24 {
		return fmt.Errorf("pdf.font_size must be between 4 and 24, got: %g", cfg.PDF.FontSize)
	}

	if cfg.PDF.MaxColumnWidth < 10 {
		return fmt.Errorf("pdf.max_column_width must be at least 10mm, got: %g", cfg.PDF.MaxColumnWidth)
	}

	if cfg.XLSX.MaxColumnWidth < 8 || cfg.XLSX.MaxColumnWidth > 255 {
		return fmt.Errorf("xlsx.max_column_width must be between 8 and 255, got: %g", cfg.XLSX.MaxColumnWidth)
	}

	if cfg.Terminal.MaxCellWidth < 4 {
		return fmt.Errorf("terminal.max_cell_width must be at least 4, got: %d", cfg.Terminal.MaxCellWidth)
	}

	return nil
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSV.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}
