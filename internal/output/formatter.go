package output

import (
	"fmt"
	"io"

	"github.com/harrylevesque/idqr/internal/models"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q: must be 'table', 'json' or 'yaml'", s)
}

// Options tune how records are presented.
type Options struct {
	// ShowRaw expands the raw payload section of table output.
	ShowRaw bool
}

// BatchItem is one named payload result.
type BatchItem struct {
	Name   string               `json:"name"`
	Record models.IdentityRecord `json:"record"`
}

// Formatter is the interface for output formatting.
type Formatter interface {
	WriteRecord(w io.Writer, rec models.IdentityRecord) error
	WriteBatch(w io.Writer, items []BatchItem) error
}

// NewFormatter creates a new formatter for the given format. Unknown formats
// fall back to the table.
func NewFormatter(format Format, opts Options) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{opts: opts}
	}
}
