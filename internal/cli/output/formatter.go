package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/authclient/internal/core/domain"
)

// Format represents the output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name. Empty selects table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// PrintError writes "error: <message>" followed by one indented line per
// field, sorted by field name.
func PrintError(w io.Writer, fe domain.FormError) {
	fmt.Fprintf(w, "error: %s\n", fe.Message)
	for _, name := range fe.FieldNames() {
		fmt.Fprintf(w, "  %s: %s\n", name, fe.Fields[name])
	}
}
