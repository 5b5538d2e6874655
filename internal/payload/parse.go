package payload

import (
	"fmt"

	"github.com/harrylevesque/idqr/internal/models"
)

// Option configures a Parser.
type Option func(*Parser)

// WithExtraFields keeps delimited fields past the fifth position in
// AdditionalInfo instead of dropping them.
func WithExtraFields(keep bool) Option {
	return func(p *Parser) {
		p.keepExtra = keep
	}
}

// Parser interprets payloads. It is immutable and safe for concurrent use.
type Parser struct {
	keepExtra bool
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse interprets raw with the default configuration.
func Parse(raw string) models.IdentityRecord {
	return defaultParser.Parse(raw)
}

// Interpret is Parse with the fault also returned as an error.
func Interpret(raw string) (models.IdentityRecord, error) {
	return defaultParser.Interpret(raw)
}

// Parse never fails: a fault yields a record holding only RawData and
// ParseError.
func (p *Parser) Parse(raw string) models.IdentityRecord {
	rec, _ := p.Interpret(raw)
	return rec
}

// Interpret returns the record together with the fault, if any. On fault the
// record is the same one Parse returns.
func (p *Parser) Interpret(raw string) (rec models.IdentityRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindInternal, Message: fmt.Sprintf("unexpected fault: %v", r)}
			rec = faultRecord(raw, err)
		}
	}()

	switch Detect(raw) {
	case FormatMarkup:
		rec, err = extractMarkup(raw)
		if err != nil {
			return faultRecord(raw, err), err
		}
		return rec, nil
	default:
		return p.extractDelimited(raw), nil
	}
}

func faultRecord(raw string, err error) models.IdentityRecord {
	return models.IdentityRecord{
		Shape:      models.ShapeRaw,
		RawData:    raw,
		ParseError: err.Error(),
	}
}
