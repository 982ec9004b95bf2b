package ir

import "fmt"

// FormatError reports that a literal's text does not match the lexical
// grammar of its declared primitive type. It is always surfaced to the
// caller; nothing in this package recovers from it.
type FormatError struct {
	Text   string        // the offending literal
	Type   PrimitiveType // the type the literal was declared as
	Detail string
	Err    error // underlying lexical error, if any
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s literal %q: %v", e.Type, e.Text, e.Err)
	}
	return fmt.Sprintf("malformed %s literal %q: %s", e.Type, e.Text, e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// RepresentationError reports that a representation-specific accessor was
// applied to a value holding a different representation. It indicates a
// caller logic error, not bad schema data.
type RepresentationError struct {
	Requested string // representation the caller asked for
	Actual    string // representation the value holds
}

func (e *RepresentationError) Error() string {
	return fmt.Sprintf("value is %s, not %s", e.Actual, e.Requested)
}
