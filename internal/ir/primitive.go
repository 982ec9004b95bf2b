package ir

import "math"

// PrimitiveType identifies one of the fixed-width wire types a schema may
// declare. Each type carries a serialization width and three sentinel
// values (null, min, max) reserved by the encoding specification. The
// null sentinel always lies outside the closed [min, max] operating
// range, so absence is representable without a presence bit.
type PrimitiveType int

const (
	// NoPrimitive is the zero value; it names no wire type.
	NoPrimitive PrimitiveType = iota
	Char
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float
	Double
)

// primitiveInfo is the process-wide sentinel table. It is initialized at
// load time and never mutated; every null/min/max used anywhere in the
// module resolves through it.
type primitiveInfo struct {
	name string
	size int
	null PrimitiveValue
	min  PrimitiveValue
	max  PrimitiveValue
}

var primitiveCatalog = map[PrimitiveType]primitiveInfo{
	Char:  {"char", 1, NewIntegral(0, 1), NewIntegral(0x20, 1), NewIntegral(0x7E, 1)},
	Int8:  {"int8", 1, NewIntegral(math.MinInt8, 1), NewIntegral(math.MinInt8+1, 1), NewIntegral(math.MaxInt8, 1)},
	Int16: {"int16", 2, NewIntegral(math.MinInt16, 2), NewIntegral(math.MinInt16+1, 2), NewIntegral(math.MaxInt16, 2)},
	Int32: {"int32", 4, NewIntegral(math.MinInt32, 4), NewIntegral(math.MinInt32+1, 4), NewIntegral(math.MaxInt32, 4)},
	Int64: {"int64", 8, NewIntegral(math.MinInt64, 8), NewIntegral(math.MinInt64+1, 8), NewIntegral(math.MaxInt64, 8)},

	Uint8:  {"uint8", 1, NewIntegral(math.MaxUint8, 1), NewIntegral(0, 1), NewIntegral(math.MaxUint8-1, 1)},
	Uint16: {"uint16", 2, NewIntegral(math.MaxUint16, 2), NewIntegral(0, 2), NewIntegral(math.MaxUint16-1, 2)},
	Uint32: {"uint32", 4, NewIntegral(math.MaxUint32, 4), NewIntegral(0, 4), NewIntegral(math.MaxUint32-1, 4)},

	// uint64 sentinels are stored as int64 bit patterns: -1 is 2^64-1
	// (null) and -2 is 2^64-2 (max). Values above 2^63-1 read back
	// negative through the signed accessor.
	Uint64: {"uint64", 8, NewIntegral(-1, 8), NewIntegral(0, 8), NewIntegral(-2, 8)},

	Float:  {"float", 4, NewFloating(math.NaN(), 4), NewFloating(math.SmallestNonzeroFloat32, 4), NewFloating(math.MaxFloat32, 4)},
	Double: {"double", 8, NewFloating(math.NaN(), 8), NewFloating(math.SmallestNonzeroFloat64, 8), NewFloating(math.MaxFloat64, 8)},
}

var primitiveByName = func() map[string]PrimitiveType {
	m := make(map[string]PrimitiveType, len(primitiveCatalog))
	for t, info := range primitiveCatalog {
		m[info.name] = t
	}
	return m
}()

// PrimitiveTypeByName resolves a wire-type name as written in a schema
// document ("uint32", "char", ...). The second result is false for
// unknown names.
func PrimitiveTypeByName(name string) (PrimitiveType, bool) {
	t, ok := primitiveByName[name]
	return t, ok
}

// Valid reports whether t names a wire type from the catalog.
func (t PrimitiveType) Valid() bool {
	_, ok := primitiveCatalog[t]
	return ok
}

// Size returns the serialization width in bytes. Size of NoPrimitive is 0.
func (t PrimitiveType) Size() int {
	return primitiveCatalog[t].size
}

// String returns the wire-type name used in schema documents.
func (t PrimitiveType) String() string {
	if info, ok := primitiveCatalog[t]; ok {
		return info.name
	}
	return "none"
}

// Null returns the type's reserved null sentinel.
func (t PrimitiveType) Null() PrimitiveValue { return primitiveCatalog[t].null }

// Min returns the smallest value of the type's operating range.
func (t PrimitiveType) Min() PrimitiveValue { return primitiveCatalog[t].min }

// Max returns the largest value of the type's operating range.
func (t PrimitiveType) Max() PrimitiveValue { return primitiveCatalog[t].max }

// IsInteger reports whether t is one of the fixed-point types, char
// included.
func (t PrimitiveType) IsInteger() bool {
	switch t {
	case Char, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsUnsigned reports whether t is one of the unsigned fixed-point types.
func (t PrimitiveType) IsUnsigned() bool {
	switch t {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsFloatingPoint reports whether t is float or double.
func (t PrimitiveType) IsFloatingPoint() bool {
	return t == Float || t == Double
}
