package payload

import "strings"

// Format is the encoding a payload was detected as.
type Format int

const (
	FormatDelimited Format = iota
	FormatMarkup
)

const markupPrefix = "<?xml"

func (f Format) String() string {
	switch f {
	case FormatMarkup:
		return "markup"
	case FormatDelimited:
		return "delimited"
	}
	return "unknown"
}

// Detect picks the encoding by the payload prefix. The check is exact: no
// whitespace or byte order mark is skipped.
func Detect(raw string) Format {
	if strings.HasPrefix(raw, markupPrefix) {
		return FormatMarkup
	}
	return FormatDelimited
}
