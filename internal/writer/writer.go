// Package writer renders parse results for the command line.
package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Writer renders a parse result.
type Writer interface {
	Write(out io.Writer, result *models.ParseResult) error
}

// Output formats accepted by New.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// New returns the writer for format and the file extension it produces.
func New(format string) (Writer, string, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return &JSONWriter{Indent: true}, ".json", nil
	case FormatCSV:
		return &CSVWriter{IncludeHeader: true}, ".csv", nil
	case FormatXLSX:
		return &XLSXWriter{}, ".xlsx", nil
	default:
		return nil, "", fmt.Errorf("unknown output format %q; supported: json, csv, xlsx", format)
	}
}

// JSONWriter writes the result in the same shape as the HTTP response.
type JSONWriter struct {
	Indent bool
}

func (w *JSONWriter) Write(out io.Writer, result *models.ParseResult) error {
	enc := json.NewEncoder(out)
	if w.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WriteFile renders result with w into a new file at path.
func WriteFile(path string, w Writer, result *models.ParseResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	if err := w.Write(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
