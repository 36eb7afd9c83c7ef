// Package ieee754 decodes and encodes the little-endian IEEE-754 binary32
// and binary64 literals used by the WebAssembly binary format's f32.const
// and f64.const instructions, and defines the canonical NaN bit patterns
// this implementation emits wherever the specification permits an
// arbitrary NaN payload.
package ieee754

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTruncated is returned when fewer bytes remain than the literal width.
var ErrTruncated = errors.New("ieee754: truncated")

// CanonicalNaNBits32 is the fixed f32 NaN bit pattern this implementation
// emits for results whose NaN payload is unspecified by the standard.
const CanonicalNaNBits32 uint32 = 0x7fc00000

// CanonicalNaNBits64 is the fixed f64 NaN bit pattern this implementation
// emits for results whose NaN payload is unspecified by the standard.
const CanonicalNaNBits64 uint64 = 0x7ff8000000000000

// CanonicalNaN32 is the float32 canonical NaN value.
var CanonicalNaN32 = math.Float32frombits(CanonicalNaNBits32)

// CanonicalNaN64 is the float64 canonical NaN value.
var CanonicalNaN64 = math.Float64frombits(CanonicalNaNBits64)

// DecodeFloat32 reads a little-endian binary32 literal at b[off:off+4].
func DecodeFloat32(b []byte, off int) (float32, error) {
	if off+4 > len(b) {
		return 0, ErrTruncated
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4])), nil
}

// DecodeFloat64 reads a little-endian binary64 literal at b[off:off+8].
func DecodeFloat64(b []byte, off int) (float64, error) {
	if off+8 > len(b) {
		return 0, ErrTruncated
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8])), nil
}

// EncodeFloat32 returns the little-endian binary32 encoding of v.
func EncodeFloat32(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

// EncodeFloat64 returns the little-endian binary64 encoding of v.
func EncodeFloat64(v float64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return b
}

// IsArithmeticNaN32 reports whether bits represent an arithmetic NaN: the
// most significant bit of the payload (bit 22) is set. A binary operation
// that consumes an arithmetic NaN operand and has no other NaN input may
// propagate it verbatim rather than canonicalizing it.
func IsArithmeticNaN32(bits uint32) bool {
	return math.IsNaN(float64(math.Float32frombits(bits))) && bits&(1<<22) != 0
}

// IsArithmeticNaN64 is the float64 analog of IsArithmeticNaN32.
func IsArithmeticNaN64(bits uint64) bool {
	return math.IsNaN(math.Float64frombits(bits)) && bits&(1<<51) != 0
}

// PropagateNaN32 implements the WebAssembly NaN propagation rule for a
// unary or binary float32 operation: if any input is an arithmetic NaN,
// the result re-uses that NaN's payload (the first one found); otherwise
// the canonical NaN is produced. ok reports whether any input was NaN at
// all, letting the caller fall back to its normal (non-NaN) result path.
func PropagateNaN32(inputs ...float32) (float32, bool) {
	for _, in := range inputs {
		if math.IsNaN(float64(in)) {
			bits := math.Float32bits(in)
			if IsArithmeticNaN32(bits) {
				return in, true
			}
		}
	}
	for _, in := range inputs {
		if math.IsNaN(float64(in)) {
			return CanonicalNaN32, true
		}
	}
	return 0, false
}

// PropagateNaN64 is the float64 analog of PropagateNaN32.
func PropagateNaN64(inputs ...float64) (float64, bool) {
	for _, in := range inputs {
		if math.IsNaN(in) {
			bits := math.Float64bits(in)
			if IsArithmeticNaN64(bits) {
				return in, true
			}
		}
	}
	for _, in := range inputs {
		if math.IsNaN(in) {
			return CanonicalNaN64, true
		}
	}
	return 0, false
}
