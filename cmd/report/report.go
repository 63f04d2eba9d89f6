// Package report exports every view of one or more exports in one go.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fjacquet/cleemy-report/cmd/common"
	"fjacquet/cleemy-report/cmd/root"
	"fjacquet/cleemy-report/internal/container"
	"fjacquet/cleemy-report/internal/exporter"
	"fjacquet/cleemy-report/internal/filter"
	"fjacquet/cleemy-report/internal/fileutils"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/reporterror"
	"fjacquet/cleemy-report/internal/views"

	"github.com/spf13/cobra"
)

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Export every view to a directory",
	Long: `Export all five views of an export to the output directory, one file per
view named after it (overview.pdf, profiles.pdf, ...). When --input is a
directory, every .json file in it is processed and its reports are written to
a subdirectory named after the file.

Views without rows are skipped. Filters apply to the views that have the
filtered columns; the other views are skipped.`,
	Example: `  cleemy-report report -i Full.json -o reports/ -f xlsx
  cleemy-report report -i exports/ -o reports/ -f pdf --filter "Profile=Cadres"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}
		files, err := common.InputFiles(root.SharedFlags.Input)
		if err != nil {
			return err
		}
		if root.SharedFlags.Format == "" {
			return common.ErrFormatRequired
		}
		format, err := exporter.ParseFormat(root.SharedFlags.Format)
		if err != nil {
			return err
		}
		preds, err := filter.ParsePredicates(root.SharedFlags.Filters)
		if err != nil {
			return err
		}
		outputDir := root.SharedFlags.Output
		if outputDir == "" {
			outputDir = c.GetConfig().Output.Directory
		}
		if outputDir == "" {
			outputDir = "."
		}

		results, err := Run(c, files, outputDir, format, preds)
		printResults(cmd.OutOrStdout(), results)
		return err
	},
}

// Result describes the outcome for one view of one input.
type Result struct {
	Input   string
	View    string
	Path    string
	Rows    int
	Skipped string
}

// Run exports every view of every file. A file that cannot be loaded is
// reported and the others are still processed.
func Run(c *container.Container, files []string, outputDir string, format exporter.Format, preds []filter.Predicate) ([]Result, error) {
	e, err := c.GetExporter(format)
	if err != nil {
		return nil, err
	}
	if err := fileutils.EnsureDirectoryExists(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	logger := c.GetLogger()

	var results []Result
	var failures []error
	for _, input := range files {
		dir := outputDir
		if len(files) > 1 {
			dir = filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)))
		}

		state, err := c.GetSession().LoadFile(input)
		if err != nil {
			logger.WithError(err).Error("Failed to load export", logging.F(logging.FieldFile, input))
			failures = append(failures, err)
			continue
		}

		for _, v := range views.BuildAll(state.Tables) {
			result := Result{Input: input, View: v.Name}
			tbl, err := filter.Apply(v.Table, preds)
			if errors.Is(err, filter.ErrUnknownColumn) {
				result.Skipped = "filtered column not in view"
				results = append(results, result)
				continue
			}
			if err != nil {
				return results, err
			}

			path := filepath.Join(dir, exporter.DefaultFileName(v.Name, e))
			err = exporter.WriteFile(e, tbl, path)
			switch {
			case reporterror.IsEmptyTable(err):
				result.Skipped = "no rows"
			case err != nil:
				logger.WithError(err).Error("Failed to export view", logging.F(logging.FieldView, v.Name))
				failures = append(failures, err)
				continue
			default:
				result.Path = path
				result.Rows = tbl.Len()
			}
			results = append(results, result)
		}
	}

	written := 0
	for _, r := range results {
		if r.Path != "" {
			written++
		}
	}
	logger.Info("Report completed",
		logging.F(logging.FieldCount, written),
		logging.F(logging.FieldFormat, string(format)),
		logging.F("failed", len(failures)))

	if len(failures) > 0 {
		return results, fmt.Errorf("%d report(s) failed: %w", len(failures), errors.Join(failures...))
	}
	return results, nil
}

func printResults(out io.Writer, results []Result) {
	for _, r := range results {
		if r.Skipped != "" {
			fmt.Fprintf(out, "skipped %-9s %s (%s)\n", r.View, r.Input, r.Skipped)
			continue
		}
		fmt.Fprintf(out, "wrote   %-9s %s (%d rows)\n", r.View, r.Path, r.Rows)
	}
}
