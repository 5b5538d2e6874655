package payload

import (
	"strings"

	"github.com/harrylevesque/idqr/internal/models"
)

// positional fields, in payload order
const (
	idxReferenceID = iota
	idxName
	idxDateOfBirth
	idxGender
	idxAddress
	positionalFields
)

// selectDelimiter applies a strict priority: '|' beats ',' beats newline,
// whatever field counts they would produce.
func selectDelimiter(raw string) string {
	switch {
	case strings.Contains(raw, "|"):
		return "|"
	case strings.Contains(raw, ","):
		return ","
	default:
		return "\n"
	}
}

func (p *Parser) extractDelimited(raw string) models.IdentityRecord {
	delim := selectDelimiter(raw)
	fields := strings.Split(raw, delim)

	at := func(i int) string {
		if i >= len(fields) {
			return models.NotAvailable
		}
		return orDefault(fields[i], models.NotAvailable)
	}

	rec := models.IdentityRecord{
		Shape:       models.ShapeDelimited,
		ReferenceID: at(idxReferenceID),
		Name:        at(idxName),
		DateOfBirth: at(idxDateOfBirth),
		Gender:      at(idxGender),
		Address:     at(idxAddress),
		RawData:     raw,
	}

	if p.keepExtra && len(fields) > positionalFields {
		extra := strings.Join(fields[positionalFields:], delim)
		if strings.Trim(extra, delim) != "" {
			rec.AdditionalInfo = extra
		}
	}
	return rec
}
