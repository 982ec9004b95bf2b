package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveTypeSizes(t *testing.T) {
	tests := []struct {
		typ  PrimitiveType
		size int
	}{
		{Char, 1},
		{Int8, 1},
		{Uint8, 1},
		{Int16, 2},
		{Uint16, 2},
		{Int32, 4},
		{Uint32, 4},
		{Float, 4},
		{Int64, 8},
		{Uint64, 8},
		{Double, 8},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.size, tt.typ.Size())
		})
	}
}

func TestPrimitiveTypeByName(t *testing.T) {
	for _, name := range []string{
		"char", "int8", "int16", "int32", "int64",
		"uint8", "uint16", "uint32", "uint64", "float", "double",
	} {
		typ, ok := PrimitiveTypeByName(name)
		require.True(t, ok, "name %q should resolve", name)
		assert.Equal(t, name, typ.String())
	}

	_, ok := PrimitiveTypeByName("varchar")
	assert.False(t, ok)
}

// Every integer type reserves its null sentinel strictly outside the
// closed [min, max] operating range.
func TestIntegerNullOutsideOperatingRange(t *testing.T) {
	tests := []struct {
		typ            PrimitiveType
		null, min, max int64
	}{
		{Char, 0, 0x20, 0x7E},
		{Int8, math.MinInt8, math.MinInt8 + 1, math.MaxInt8},
		{Uint8, math.MaxUint8, 0, math.MaxUint8 - 1},
		{Int16, math.MinInt16, math.MinInt16 + 1, math.MaxInt16},
		{Uint16, math.MaxUint16, 0, math.MaxUint16 - 1},
		{Int32, math.MinInt32, math.MinInt32 + 1, math.MaxInt32},
		{Uint32, math.MaxUint32, 0, math.MaxUint32 - 1},
		{Int64, math.MinInt64, math.MinInt64 + 1, math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			null, err := AsIntegral(tt.typ.Null())
			require.NoError(t, err)
			min, err := AsIntegral(tt.typ.Min())
			require.NoError(t, err)
			max, err := AsIntegral(tt.typ.Max())
			require.NoError(t, err)

			assert.Equal(t, tt.null, null)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
			assert.LessOrEqual(t, min, max)
			assert.True(t, null < min || null > max, "null must lie outside [min, max]")
		})
	}
}

// uint64 sentinels use int64 bit patterns: -1 is 2^64-1 and -2 is
// 2^64-2 when read back unsigned.
func TestUint64SentinelBitPatterns(t *testing.T) {
	null, err := AsIntegral(Uint64.Null())
	require.NoError(t, err)
	max, err := AsIntegral(Uint64.Max())
	require.NoError(t, err)
	min, err := AsIntegral(Uint64.Min())
	require.NoError(t, err)

	assert.Equal(t, uint64(math.MaxUint64), uint64(null))
	assert.Equal(t, uint64(math.MaxUint64-1), uint64(max))
	assert.Equal(t, int64(0), min)
}

func TestFloatingSentinels(t *testing.T) {
	for _, typ := range []PrimitiveType{Float, Double} {
		t.Run(typ.String(), func(t *testing.T) {
			null, err := AsFloating(typ.Null())
			require.NoError(t, err)
			assert.True(t, math.IsNaN(null), "floating null must be NaN")

			min, err := AsFloating(typ.Min())
			require.NoError(t, err)
			max, err := AsFloating(typ.Max())
			require.NoError(t, err)
			assert.Greater(t, min, 0.0)
			assert.False(t, math.IsInf(max, 1))
		})
	}
	minF, _ := AsFloating(Float.Min())
	maxF, _ := AsFloating(Float.Max())
	assert.Equal(t, math.SmallestNonzeroFloat32, minF)
	assert.Equal(t, math.MaxFloat32, maxF)
	minD, _ := AsFloating(Double.Min())
	maxD, _ := AsFloating(Double.Max())
	assert.Equal(t, math.SmallestNonzeroFloat64, minD)
	assert.Equal(t, math.MaxFloat64, maxD)
}

func TestPrimitiveTypeClassification(t *testing.T) {
	assert.True(t, Char.IsInteger())
	assert.True(t, Uint64.IsInteger())
	assert.False(t, Float.IsInteger())
	assert.True(t, Uint16.IsUnsigned())
	assert.False(t, Int16.IsUnsigned())
	assert.True(t, Double.IsFloatingPoint())
	assert.False(t, Char.IsFloatingPoint())
	assert.False(t, NoPrimitive.Valid())
	assert.True(t, Int32.Valid())
}
