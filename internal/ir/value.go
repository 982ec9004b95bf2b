package ir

import (
	"bytes"
	"math"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// PrimitiveValue is a sealed sum over the three representations a schema
// constant, default, or sentinel can take: Integral, Floating, or
// RawBytes. Only those types implement it. Values are immutable once
// constructed and carry their serialization width independently of the
// storage form (a char constant is an Integral of size 1).
type PrimitiveValue interface {
	primitiveValue() // sealed

	// Size returns the serialization width in bytes.
	Size() int

	// String renders the value: integrals in decimal, floats per
	// strconv, raw bytes decoded with their recorded encoding.
	String() string
}

// Integral holds a fixed-point value. char constants and every integer
// sentinel are Integrals; uint64 values use the int64 bit pattern, so
// values above 2^63-1 appear negative through Value.
type Integral struct {
	value int64
	size  int
}

// Floating holds a float or double value as a float64.
type Floating struct {
	value float64
	size  int
}

// RawBytes holds an encoded character-array constant: the bytes, the
// name of the character encoding they were produced with (may be empty),
// and the declared fixed length.
type RawBytes struct {
	data     []byte
	encoding string
	size     int
}

func (Integral) primitiveValue() {}
func (Floating) primitiveValue() {}
func (RawBytes) primitiveValue() {}

// NewIntegral constructs an Integral of the given serialization width.
func NewIntegral(value int64, size int) Integral {
	return Integral{value: value, size: size}
}

// NewFloating constructs a Floating of the given serialization width.
func NewFloating(value float64, size int) Floating {
	return Floating{value: value, size: size}
}

// NewRawBytes constructs a RawBytes value. The byte slice is not copied;
// callers hand over ownership.
func NewRawBytes(data []byte, encodingName string, size int) RawBytes {
	return RawBytes{data: data, encoding: encodingName, size: size}
}

func (v Integral) Size() int { return v.size }
func (v Floating) Size() int { return v.size }
func (v RawBytes) Size() int { return v.size }

// Value returns the stored fixed-point value.
func (v Integral) Value() int64 { return v.value }

// Value returns the stored floating-point value.
func (v Floating) Value() float64 { return v.value }

// Bytes returns the stored byte sequence. Callers must not mutate it.
func (v RawBytes) Bytes() []byte { return v.data }

// Encoding returns the recorded character encoding name, or "" if none
// was recorded.
func (v RawBytes) Encoding() string { return v.encoding }

func (v Integral) String() string {
	return strconv.FormatInt(v.value, 10)
}

func (v Floating) String() string {
	return strconv.FormatFloat(v.value, 'g', -1, 64)
}

func (v RawBytes) String() string {
	if v.encoding != "" {
		if enc, err := lookupEncoding(v.encoding); err == nil && enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(v.data); err == nil {
				return string(decoded)
			}
		}
	}
	return string(v.data)
}

func representationName(v PrimitiveValue) string {
	switch v.(type) {
	case Integral:
		return "integral"
	case Floating:
		return "floating"
	case RawBytes:
		return "raw bytes"
	default:
		return "unknown"
	}
}

// AsIntegral returns the fixed-point value, or a RepresentationError if v
// is not an Integral.
func AsIntegral(v PrimitiveValue) (int64, error) {
	iv, ok := v.(Integral)
	if !ok {
		return 0, &RepresentationError{Requested: "integral", Actual: representationName(v)}
	}
	return iv.value, nil
}

// AsFloating returns the floating-point value, or a RepresentationError
// if v is not a Floating.
func AsFloating(v PrimitiveValue) (float64, error) {
	fv, ok := v.(Floating)
	if !ok {
		return 0, &RepresentationError{Requested: "floating", Actual: representationName(v)}
	}
	return fv.value, nil
}

// AsRawBytes returns the byte sequence, or a RepresentationError if v is
// not a RawBytes value.
func AsRawBytes(v PrimitiveValue) ([]byte, error) {
	rv, ok := v.(RawBytes)
	if !ok {
		return nil, &RepresentationError{Requested: "raw bytes", Actual: representationName(v)}
	}
	return rv.data, nil
}

// AsRawBytesOf is AsRawBytes with one coercion: an Integral of size 1
// declared as char converts to a one-byte sequence holding the value.
// Consumers can thereby treat single-character constants as byte
// payloads without special-casing the representation.
func AsRawBytesOf(v PrimitiveValue, t PrimitiveType) ([]byte, error) {
	switch val := v.(type) {
	case RawBytes:
		return val.data, nil
	case Integral:
		if val.size == 1 && t == Char {
			return []byte{byte(val.value)}, nil
		}
	}
	return nil, &RepresentationError{Requested: "raw bytes", Actual: representationName(v)}
}

// TextEncoding returns the recorded character encoding name of a
// RawBytes value. The second result is false for other representations
// or when no encoding was recorded.
func TextEncoding(v PrimitiveValue) (string, bool) {
	rv, ok := v.(RawBytes)
	if !ok || rv.encoding == "" {
		return "", false
	}
	return rv.encoding, true
}

// Equal reports value equality. Values of differing representation are
// never equal. Floating values compare by bit pattern, not IEEE
// numeric equality: the float/double null sentinel is NaN, and a total,
// reflexive equality is required for deduplication and map-key use.
func Equal(a, b PrimitiveValue) bool {
	switch av := a.(type) {
	case Integral:
		bv, ok := b.(Integral)
		return ok && av.value == bv.value
	case Floating:
		bv, ok := b.(Floating)
		return ok && math.Float64bits(av.value) == math.Float64bits(bv.value)
	case RawBytes:
		bv, ok := b.(RawBytes)
		return ok && bytes.Equal(av.data, bv.data)
	}
	return false
}

// ValueKey is a comparable projection of a PrimitiveValue, usable as a
// map key. Keys of two values are equal exactly when Equal reports the
// values equal, floats hashing by bit pattern.
type ValueKey struct {
	rep  string
	bits uint64
	raw  string
}

// KeyOf returns the comparable key for v.
func KeyOf(v PrimitiveValue) ValueKey {
	switch val := v.(type) {
	case Integral:
		return ValueKey{rep: "i", bits: uint64(val.value)}
	case Floating:
		return ValueKey{rep: "f", bits: math.Float64bits(val.value)}
	case RawBytes:
		return ValueKey{rep: "b", raw: string(val.data)}
	}
	return ValueKey{}
}

// Parse builds a PrimitiveValue from a literal as written in a schema
// document, per the declared primitive type.
//
// char requires exactly one byte of text. Integer literals are parsed as
// decimal with only 64-bit representability checked: a literal may
// exceed its own type's [min, max] range and still parse (out-of-range
// constants are a validation concern, not a lexical one). Unsigned
// literals above 2^63-1 are stored as int64 bit patterns.
func Parse(text string, t PrimitiveType) (PrimitiveValue, error) {
	switch t {
	case Char:
		if len(text) != 1 {
			return nil, &FormatError{Text: text, Type: t, Detail: "char literal must be exactly one character"}
		}
		return NewIntegral(int64(text[0]), 1), nil

	case Int8, Int16, Int32, Int64:
		value, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &FormatError{Text: text, Type: t, Err: err}
		}
		return NewIntegral(value, t.Size()), nil

	case Uint8, Uint16, Uint32, Uint64:
		value, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, &FormatError{Text: text, Type: t, Err: err}
		}
		return NewIntegral(int64(value), t.Size()), nil

	case Float, Double:
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &FormatError{Text: text, Type: t, Err: err}
		}
		return NewFloating(value, t.Size()), nil

	default:
		return nil, &FormatError{Text: text, Type: t, Detail: "unknown primitive type"}
	}
}

// ParseRaw builds a RawBytes value for a fixed-length character-array
// constant or default: text is encoded with the named character encoding
// and tagged with the declared length.
func ParseRaw(text string, t PrimitiveType, length int, encodingName string) (PrimitiveValue, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return nil, &FormatError{Text: text, Type: t, Detail: "unknown character encoding " + strconv.Quote(encodingName), Err: err}
	}

	data := []byte(text)
	if enc != nil {
		data, err = enc.NewEncoder().Bytes(data)
		if err != nil {
			return nil, &FormatError{Text: text, Type: t, Detail: "text not representable in " + encodingName, Err: err}
		}
	}
	return NewRawBytes(data, encodingName, length), nil
}

// lookupEncoding resolves an IANA character-set name. A nil Encoding with
// a nil error means the name is known but needs no transformation
// (ASCII-compatible identity).
func lookupEncoding(name string) (encoding.Encoding, error) {
	return ianaindex.IANA.Encoding(name)
}
