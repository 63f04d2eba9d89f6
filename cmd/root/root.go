// Package root contains the root command for the application
package root

import (
	"fmt"
	"strings"
	"sync"

	"fjacquet/cleemy-report/internal/config"
	"fjacquet/cleemy-report/internal/container"
	"fjacquet/cleemy-report/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input   string
	Output  string
	Format  string
	Filters []string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppConfig and AppContainer are set by the persistent pre-run hook.
	AppConfig    *config.Config
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "cleemy-report",
		Short: "Report on Cleemy expense policy exports",
		Long: `cleemy-report loads a Cleemy JSON export (Full.json) and reports on its
expense policy: which profiles may use which expense natures, the limits and
allowances that apply, and how natures map to the chart of accounts.

Each view is printed as a table or exported to CSV, XLSX or PDF.`,
		Example: `  cleemy-report overview -i Full.json
  cleemy-report limits -i Full.json --filter "Profile=Cadres" -o limits.xlsx
  cleemy-report report -i Full.json -o reports/ -f pdf`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: persistentPreRun,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				if err := AppContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}

	configFile string
	logLevel   string
	locale     string

	initOnce sync.Once
)

// Init initializes the root command and all flags. It is safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		flags := Cmd.PersistentFlags()
		flags.StringVarP(&SharedFlags.Input, "input", "i", "", "Cleemy JSON export (a directory for validate and report)")
		flags.StringVarP(&SharedFlags.Output, "output", "o", "", "Output file or directory; prints to the terminal when empty")
		flags.StringVarP(&SharedFlags.Format, "format", "f", "", "Export format: csv, xlsx or pdf (default: from the output extension)")
		flags.StringArrayVar(&SharedFlags.Filters, "filter", nil, `Row filter "Column=value1,value2"; repeat to combine`)
		flags.StringVar(&configFile, "config", "", "Config file (default: config.yaml in $HOME/.cleemy-report, .cleemy-report or .)")
		flags.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
		flags.StringVar(&locale, "locale", "", "Locale of displayed names, e.g. fr-FR or en-US")
	})
}

func persistentPreRun(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		if _, err := logrus.ParseLevel(logLevel); err != nil {
			return fmt.Errorf("invalid --log-level: %s", logLevel)
		}
		cfg.Log.Level = strings.ToLower(logLevel)
	}
	if locale != "" {
		cfg.Locale.Primary = locale
	}

	Log = config.NewLogger(cfg)
	c, err := container.NewContainerWithLogger(cfg, Log)
	if err != nil {
		return err
	}

	AppConfig = cfg
	AppContainer = c
	Log.Debug("Command initialized", logging.F(logging.FieldOperation, cmd.Name()))
	return nil
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return AppContainer
}

// GetConfig returns the effective configuration, defaults before the
// command starts.
func GetConfig() *config.Config {
	if AppConfig == nil {
		return config.Default()
	}
	return AppConfig
}

// GetLogger returns the shared logger.
func GetLogger() logging.Logger {
	return Log
}
