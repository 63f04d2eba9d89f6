// Package common contains shared functionality for command handlers
package common

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/cleemy-report/internal/container"
	"fjacquet/cleemy-report/internal/exporter"
	"fjacquet/cleemy-report/internal/filter"
	"fjacquet/cleemy-report/internal/fileutils"
	"fjacquet/cleemy-report/internal/logging"
	"fjacquet/cleemy-report/internal/terminal"
	"fjacquet/cleemy-report/internal/validation"
)

// Request describes one view command invocation.
type Request struct {
	Input   string
	Output  string
	Format  string
	Filters []string
}

// ErrFormatRequired is returned when the output is a directory and no
// format was given.
var ErrFormatRequired = errors.New("an export format is required when writing to a directory")

// RunView loads the input, builds the view, applies the filters and
// either prints the result to out or exports it.
func RunView(c *container.Container, viewName string, req Request, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	logger := c.GetLogger().WithField(logging.FieldView, viewName)

	if err := validation.ValidateInputFile(req.Input); err != nil {
		return err
	}
	preds, err := filter.ParsePredicates(req.Filters)
	if err != nil {
		return err
	}

	sess := c.GetSession()
	if _, err := sess.LoadFile(req.Input); err != nil {
		return err
	}
	v, err := sess.View(viewName)
	if err != nil {
		return err
	}
	filtered, err := filter.Apply(v.Table, preds)
	if err != nil {
		return err
	}
	if len(preds) > 0 {
		logger.Debug("Applied filters",
			logging.F(logging.FieldFilters, filter.Describe(preds)),
			logging.F(logging.FieldRows, filtered.Len()))
	}

	output := req.Output
	if output == "" && req.Format != "" {
		output = c.GetConfig().Output.Directory
		if output == "" {
			output = "."
		}
	}
	if output == "" {
		return terminal.New(out, c.GetConfig().Terminal.MaxCellWidth).RenderView(v, filtered)
	}

	path, format, err := ResolveOutput(output, req.Format, viewName)
	if err != nil {
		return err
	}
	e, err := c.GetExporter(format)
	if err != nil {
		return err
	}
	if err := exporter.WriteFile(e, filtered, path); err != nil {
		return err
	}

	logger.Info("Exported view",
		logging.F(logging.FieldOutput, path),
		logging.F(logging.FieldFormat, string(format)),
		logging.F(logging.FieldRows, filtered.Len()))
	_, err = fmt.Fprintf(out, "Wrote %d rows to %s\n", filtered.Len(), path)
	return err
}

// ResolveOutput turns the --output and --format flags into a file path
// and a format. An existing directory, a path ending with a separator or
// an extension-less path with an explicit format receives the default file
// name of the view, e.g. "limits.pdf".
func ResolveOutput(output, format, viewName string) (string, exporter.Format, error) {
	var f exporter.Format
	if format != "" {
		parsed, err := exporter.ParseFormat(format)
		if err != nil {
			return "", "", err
		}
		f = parsed
	}

	isDir := fileutils.DirectoryExists(output) ||
		strings.HasSuffix(output, string(os.PathSeparator)) ||
		strings.HasSuffix(output, "/") ||
		(filepath.Ext(output) == "" && f != "")
	if isDir {
		if f == "" {
			return "", "", ErrFormatRequired
		}
		if err := validation.ValidateOutputDirectory(output); err != nil {
			return "", "", err
		}
		return filepath.Join(output, viewName+"."+string(f)), f, nil
	}

	if f == "" {
		inferred, err := exporter.FormatFromPath(output)
		if err != nil {
			return "", "", err
		}
		f = inferred
	}
	return output, f, nil
}

// InputFiles expands --input: a directory yields its .json files, a file
// yields itself.
func InputFiles(input string) ([]string, error) {
	if input != "" && fileutils.DirectoryExists(input) {
		files, err := fileutils.ListFilesWithExtension(input, ".json")
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no .json files found in %s", input)
		}
		return files, nil
	}
	if err := validation.ValidateInputFile(input); err != nil {
		return nil, err
	}
	return []string{input}, nil
}
