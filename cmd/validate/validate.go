// Package validate checks Cleemy exports without producing reports.
package validate

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/cleemy-report/cmd/common"
	"fjacquet/cleemy-report/cmd/root"
	"fjacquet/cleemy-report/internal/container"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/reporterror"
	"fjacquet/cleemy-report/internal/session"

	"github.com/spf13/cobra"
)

// Cmd represents the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that exports can be loaded",
	Long: `Load one export, or every .json file of a directory, and print a diagnostic:
entity counts, missing sections, JSON syntax errors with their position, and
references to natures or accounts that do not exist.

Use "-i -" to read one export from standard input.

The command fails when at least one file cannot be loaded. Unknown
references are reported but do not fail validation.`,
	Example: `  cleemy-report validate -i Full.json
  cleemy-report validate -i exports/
  curl -s https://example.invalid/Full.json | cleemy-report validate -i -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if root.SharedFlags.Input == StdinInput {
			return RunReader(root.GetContainer(), cmd.InOrStdin(), cmd.OutOrStdout())
		}
		files, err := common.InputFiles(root.SharedFlags.Input)
		if err != nil {
			return err
		}
		return Run(root.GetContainer(), files, cmd.OutOrStdout())
	},
}

// ErrInvalid is returned when at least one file failed to load.
var ErrInvalid = errors.New("validation failed")

// StdinInput is the --input value that reads the export from stdin.
const StdinInput = "-"

// Run validates each file and writes one diagnostic block per file.
func Run(c *container.Container, files []string, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	failed := 0
	for _, path := range files {
		state, err := c.GetSession().LoadFile(path)
		if err != nil {
			failed++
		}
		if err := writeDiagnostic(out, path, state, err); err != nil {
			return err
		}
	}
	return finish(c, len(files), failed)
}

// RunReader validates the single export read from r.
func RunReader(c *container.Container, r io.Reader, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	failed := 0
	state, err := c.GetSession().LoadReader(r, "stdin")
	if err != nil {
		failed++
	}
	if err := writeDiagnostic(out, "stdin", state, err); err != nil {
		return err
	}
	return finish(c, 1, failed)
}

func writeDiagnostic(out io.Writer, name string, state *session.State, loadErr error) error {
	var b strings.Builder
	if loadErr != nil {
		fmt.Fprintf(&b, "FAIL %s\n", name)
		describeError(&b, loadErr)
	} else {
		s := state.Dataset.Stats()
		fmt.Fprintf(&b, "OK   %s\n", name)
		fmt.Fprintf(&b, "  profiles: %d, natures: %d, links: %d\n", s.Profiles, s.Natures, s.Links)
		fmt.Fprintf(&b, "  limits: %d, allowances: %d\n", s.Limits, s.Allowances)
		fmt.Fprintf(&b, "  charts: %d, accounts: %d, mappings: %d\n", s.Charts, s.Accounts, s.Mappings)
		issues := state.Tables.Issues
		fmt.Fprintf(&b, "  inconsistencies: %d\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(&b, "    - %s\n", issue.Error())
		}
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func finish(c *container.Container, total, failed int) error {
	c.GetLogger().Info("Validation finished",
		logging.F(logging.FieldCount, total),
		logging.F("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s) could not be loaded", ErrInvalid, failed, total)
	}
	return nil
}

func describeError(b *strings.Builder, err error) {
	var parseErr *reporterror.ParseError
	var malformed *reporterror.MalformedInputError
	switch {
	case errors.As(err, &parseErr):
		fmt.Fprintf(b, "  invalid JSON at line %d, column %d (byte %d)\n", parseErr.Line, parseErr.Column, parseErr.Offset)
		if parseErr.Snippet != "" {
			fmt.Fprintf(b, "  near: %s\n", parseErr.Snippet)
		}
	case errors.As(err, &malformed) && len(malformed.MissingKeys) > 0:
		fmt.Fprintf(b, "  missing sections: %s\n", strings.Join(malformed.MissingKeys, ", "))
	case errors.As(err, &malformed):
		fmt.Fprintf(b, "  at %s: %s\n", malformed.Path, malformed.Msg)
	default:
		fmt.Fprintf(b, "  %v\n", err)
	}
}
