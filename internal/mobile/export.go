package mobile

import (
	"github.com/goccy/go-json"

	"github.com/harrylevesque/idqr/internal/payload"
)

// ParseJSON interprets a payload and returns the record as JSON. It is the
// entry point exported to the mobile apps through gomobile, which cannot
// pass Go structs across the bridge. It is safe for concurrent calls.
func ParseJSON(raw string) string {
	b, err := json.MarshalWithOption(payload.Parse(raw), json.DisableHTMLEscape())
	if err != nil {
		return `{"parseError":"failed to encode record"}`
	}
	return string(b)
}
