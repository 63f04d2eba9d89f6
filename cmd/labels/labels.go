// Package labels prints or saves the label catalog.
package labels

import (
	"fmt"
	"io"

	"fjacquet/cleemy-report/cmd/root"
	catalogs "fjacquet/cleemy-report/internal/labels"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/store"

	"github.com/spf13/cobra"
)

var preset string

// Cmd represents the labels command
var Cmd = &cobra.Command{
	Use:   "labels",
	Short: "Print or save the label catalog",
	Long: `Print the label catalog in effect (period, status and kind labels, view
titles) as YAML. With --output the catalog is written to that file, ready to
be customized and referenced from labels.file in config.yaml.

--preset selects a built-in catalog (en or fr) instead of the effective one.`,
	Example: `  cleemy-report labels
  cleemy-report labels --preset fr -o labels.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := catalogs.Default()
		if c := root.GetContainer(); c != nil {
			catalog = c.GetCatalog()
		}
		if preset != "" {
			catalog = catalogs.ForPreset(preset)
		}
		return Run(catalog, root.SharedFlags.Output, root.GetLogger(), cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&preset, "preset", "", "Built-in catalog to print: en or fr")
}

// Run writes catalog to output, or to out when output is empty.
func Run(catalog *catalogs.Catalog, output string, logger logging.Logger, out io.Writer) error {
	if output != "" {
		if err := store.NewLabelStore(output, logger).SaveCatalog(catalog); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "Wrote label catalog to %s\n", output)
		return err
	}
	data, err := store.MarshalCatalog(catalog)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
