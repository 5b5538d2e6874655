package payload

import "errors"

// Kind categorises interpretation faults.
type Kind string

const (
	KindMarkup   Kind = "Markup"
	KindInternal Kind = "Internal"
)

// Error is a fault raised while interpreting a payload. Message is meant for
// humans and ends up in IdentityRecord.ParseError.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
