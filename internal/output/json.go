package output

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/harrylevesque/idqr/internal/models"
)

// JSONFormatter outputs records in JSON format.
type JSONFormatter struct{}

// WriteRecord writes a single record as JSON.
func (f *JSONFormatter) WriteRecord(w io.Writer, rec models.IdentityRecord) error {
	return writeJSON(w, rec)
}

// WriteBatch writes the named records as a JSON array.
func (f *JSONFormatter) WriteBatch(w io.Writer, items []BatchItem) error {
	if items == nil {
		items = []BatchItem{}
	}
	return writeJSON(w, items)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
