package ir

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntegralRoundTrip(t *testing.T) {
	tests := []struct {
		typ    PrimitiveType
		values []int64
	}{
		{Int8, []int64{math.MinInt8, -1, 0, 1, math.MaxInt8}},
		{Int16, []int64{math.MinInt16, 0, math.MaxInt16}},
		{Int32, []int64{math.MinInt32, 0, math.MaxInt32}},
		{Int64, []int64{math.MinInt64, 0, math.MaxInt64}},
		{Uint8, []int64{0, 1, math.MaxUint8}},
		{Uint16, []int64{0, math.MaxUint16}},
		{Uint32, []int64{0, math.MaxUint32}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			for _, want := range tt.values {
				v, err := Parse(strconv.FormatInt(want, 10), tt.typ)
				require.NoError(t, err)

				got, err := AsIntegral(v)
				require.NoError(t, err)
				assert.Equal(t, want, got)
				assert.Equal(t, tt.typ.Size(), v.Size())
			}
		})
	}
}

func TestParseUint64BitPattern(t *testing.T) {
	v, err := Parse("18446744073709551615", Uint64)
	require.NoError(t, err)

	got, err := AsIntegral(v)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), uint64(got))
}

// Integer parsing checks only 64-bit representability, never the
// primitive's own [min, max] range.
func TestParseDoesNotEnforceTypeRange(t *testing.T) {
	v, err := Parse("200", Int8)
	require.NoError(t, err)

	got, err := AsIntegral(v)
	require.NoError(t, err)
	assert.Equal(t, int64(200), got)
	assert.Equal(t, 1, v.Size())
}

func TestParseChar(t *testing.T) {
	v, err := Parse("A", Char)
	require.NoError(t, err)

	got, err := AsIntegral(v)
	require.NoError(t, err)
	assert.Equal(t, int64(65), got)
	assert.Equal(t, 1, v.Size())

	var formatErr *FormatError
	_, err = Parse("AB", Char)
	require.ErrorAs(t, err, &formatErr)
	_, err = Parse("", Char)
	require.ErrorAs(t, err, &formatErr)
}

func TestParseFloating(t *testing.T) {
	tests := []struct {
		typ  PrimitiveType
		text string
		want float64
		size int
	}{
		{Float, "1.5", 1.5, 4},
		{Float, "-0.25", -0.25, 4},
		{Double, "2.718281828", 2.718281828, 8},
		{Double, "1e300", 1e300, 8},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String()+"/"+tt.text, func(t *testing.T) {
			v, err := Parse(tt.text, tt.typ)
			require.NoError(t, err)

			got, err := AsFloating(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.size, v.Size())
		})
	}
}

func TestParseLexicalFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
		typ  PrimitiveType
	}{
		{"non_numeric_int", "twelve", Int32},
		{"trailing_garbage", "12x", Uint16},
		{"negative_unsigned", "-1", Uint8},
		{"non_numeric_float", "fast", Double},
		{"no_primitive", "1", NoPrimitive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var formatErr *FormatError
			_, err := Parse(tt.text, tt.typ)
			require.ErrorAs(t, err, &formatErr)
		})
	}
}

func TestAccessorRepresentationMismatch(t *testing.T) {
	var repErr *RepresentationError

	_, err := AsIntegral(NewFloating(math.NaN(), 8))
	require.ErrorAs(t, err, &repErr)

	_, err = AsFloating(NewIntegral(5, 4))
	require.ErrorAs(t, err, &repErr)

	_, err = AsRawBytes(NewIntegral(65, 1))
	require.ErrorAs(t, err, &repErr)
}

func TestAsRawBytesOfCharCoercion(t *testing.T) {
	got, err := AsRawBytesOf(NewIntegral(65, 1), Char)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41}, got)

	// Only size-1 char integrals coerce.
	var repErr *RepresentationError
	_, err = AsRawBytesOf(NewIntegral(65, 2), Char)
	require.ErrorAs(t, err, &repErr)
	_, err = AsRawBytesOf(NewIntegral(65, 1), Uint8)
	require.ErrorAs(t, err, &repErr)
	_, err = AsRawBytesOf(NewFloating(65, 8), Char)
	require.ErrorAs(t, err, &repErr)

	raw, err := AsRawBytesOf(NewRawBytes([]byte("hi"), "US-ASCII", 2), Char)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), raw)
}

func TestEqualSameRepresentationAndBits(t *testing.T) {
	tests := []struct {
		name string
		a, b PrimitiveValue
		want bool
	}{
		{"integral_equal", NewIntegral(5, 4), NewIntegral(5, 4), true},
		{"integral_diff", NewIntegral(5, 4), NewIntegral(6, 4), false},
		{"floating_equal", NewFloating(1.5, 8), NewFloating(1.5, 8), true},
		{"nan_equal_by_bits", NewFloating(math.NaN(), 8), NewFloating(math.NaN(), 8), true},
		{"raw_equal", NewRawBytes([]byte("abc"), "", 3), NewRawBytes([]byte("abc"), "", 3), true},
		{"raw_diff", NewRawBytes([]byte("abc"), "", 3), NewRawBytes([]byte("abd"), "", 3), false},
		{"cross_representation", NewIntegral(5, 4), NewFloating(5.0, 4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
			assert.Equal(t, tt.want, KeyOf(tt.a) == KeyOf(tt.b))
		})
	}
}

func TestKeyOfUsableAsMapKey(t *testing.T) {
	seen := make(map[ValueKey]string)
	seen[KeyOf(NewIntegral(7, 4))] = "int"
	seen[KeyOf(NewFloating(math.NaN(), 8))] = "nan"
	seen[KeyOf(NewRawBytes([]byte("k"), "", 1))] = "raw"
	assert.Equal(t, "int", seen[KeyOf(NewIntegral(7, 8))])
	assert.Equal(t, "nan", seen[KeyOf(NewFloating(math.NaN(), 8))])
	assert.Equal(t, "raw", seen[KeyOf(NewRawBytes([]byte("k"), "US-ASCII", 1))])
}

func TestTextEncoding(t *testing.T) {
	enc, ok := TextEncoding(NewRawBytes([]byte("abc"), "ISO-8859-1", 3))
	require.True(t, ok)
	assert.Equal(t, "ISO-8859-1", enc)

	_, ok = TextEncoding(NewRawBytes([]byte("abc"), "", 3))
	assert.False(t, ok)
	_, ok = TextEncoding(NewIntegral(1, 1))
	assert.False(t, ok)
}

func TestParseRaw(t *testing.T) {
	v, err := ParseRaw("EURUSD", Char, 6, "US-ASCII")
	require.NoError(t, err)

	got, err := AsRawBytes(v)
	require.NoError(t, err)
	assert.Equal(t, []byte("EURUSD"), got)
	assert.Equal(t, 6, v.Size())
	assert.Equal(t, "EURUSD", v.String())

	enc, ok := TextEncoding(v)
	require.True(t, ok)
	assert.Equal(t, "US-ASCII", enc)

	var formatErr *FormatError
	_, err = ParseRaw("x", Char, 1, "no-such-charset")
	require.ErrorAs(t, err, &formatErr)
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "-42", NewIntegral(-42, 4).String())
	assert.Equal(t, "1.5", NewFloating(1.5, 8).String())
	assert.Equal(t, "NaN", NewFloating(math.NaN(), 8).String())
	assert.Equal(t, "raw", NewRawBytes([]byte("raw"), "", 3).String())
}
