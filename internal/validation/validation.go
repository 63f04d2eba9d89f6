// Package validation checks user-supplied paths and options before any
// work is done.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SupportedOutputFormats lists the export formats in display order.
var SupportedOutputFormats = []string{"csv", "xlsx", "pdf"}

// ValidateInputFile checks that path names a readable, non-empty regular file.
func ValidateInputFile(path string) error {
	if path == "" {
		return fmt.Errorf("no input file given")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking input file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path is a directory: %s", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("input path %s is not a regular file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input file is empty: %s", path)
	}
	return nil
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	normalized := strings.ToLower(strings.TrimPrefix(format, "."))
	for _, f := range SupportedOutputFormats {
		if normalized == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are %s",
		format, strings.Join(SupportedOutputFormats, ", "))
}

// ValidateOutputDirectory checks that dir is either missing (it will be
// created) or an existing directory.
func ValidateOutputDirectory(dir string) error {
	info, err := os.Stat(filepath.Clean(dir))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path %s exists and is not a directory", dir)
	}
	return nil
}
