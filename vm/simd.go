package vm

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/tinywasm/tinywasm/wasm"
)

// v128 is the in-engine working representation of a 128-bit vector
// value: the interpreter converts to and from the stack's (lo, hi)
// uint64 pair only at the instruction boundary, doing all lane
// arithmetic against this byte array the way the specification itself
// defines lanes (byte-addressed, little-endian within each lane).
type v128 [16]byte

func v128FromSlots(lo, hi uint64) v128 {
	var b v128
	binary.LittleEndian.PutUint64(b[0:8], lo)
	binary.LittleEndian.PutUint64(b[8:16], hi)
	return b
}

func (v v128) slots() (lo, hi uint64) {
	return binary.LittleEndian.Uint64(v[0:8]), binary.LittleEndian.Uint64(v[8:16])
}

func popV128(st *operandStack) v128 {
	lo, hi := st.popV128()
	return v128FromSlots(lo, hi)
}

func pushV128(st *operandStack, v v128) {
	lo, hi := v.slots()
	st.pushV128(lo, hi)
}

func (v v128) i8(i int) int8    { return int8(v[i]) }
func (v v128) u8(i int) uint8   { return v[i] }
func (v v128) i16(i int) int16  { return int16(binary.LittleEndian.Uint16(v[i*2:])) }
func (v v128) u16(i int) uint16 { return binary.LittleEndian.Uint16(v[i*2:]) }
func (v v128) i32(i int) int32  { return int32(binary.LittleEndian.Uint32(v[i*4:])) }
func (v v128) u32(i int) uint32 { return binary.LittleEndian.Uint32(v[i*4:]) }
func (v v128) i64(i int) int64  { return int64(binary.LittleEndian.Uint64(v[i*8:])) }
func (v v128) u64(i int) uint64 { return binary.LittleEndian.Uint64(v[i*8:]) }
func (v v128) f32(i int) float32 { return math.Float32frombits(v.u32(i)) }
func (v v128) f64(i int) float64 { return math.Float64frombits(v.u64(i)) }

func newI8x16(lanes [16]int8) v128 {
	var v v128
	for i, l := range lanes {
		v[i] = byte(l)
	}
	return v
}
func newI16x8(lanes [8]int16) v128 {
	var v v128
	for i, l := range lanes {
		binary.LittleEndian.PutUint16(v[i*2:], uint16(l))
	}
	return v
}
func newI32x4(lanes [4]int32) v128 {
	var v v128
	for i, l := range lanes {
		binary.LittleEndian.PutUint32(v[i*4:], uint32(l))
	}
	return v
}
func newI64x2(lanes [2]int64) v128 {
	var v v128
	for i, l := range lanes {
		binary.LittleEndian.PutUint64(v[i*8:], uint64(l))
	}
	return v
}
func newF32x4(lanes [4]float32) v128 {
	var v v128
	for i, l := range lanes {
		binary.LittleEndian.PutUint32(v[i*4:], math.Float32bits(l))
	}
	return v
}
func newF64x2(lanes [2]float64) v128 {
	var v v128
	for i, l := range lanes {
		binary.LittleEndian.PutUint64(v[i*8:], math.Float64bits(l))
	}
	return v
}

func satS8(v int16) int8 {
	if v < math.MinInt8 {
		return math.MinInt8
	}
	if v > math.MaxInt8 {
		return math.MaxInt8
	}
	return int8(v)
}
func satU8(v int16) uint8 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(v)
}
func satS16(v int32) int16 {
	if v < math.MinInt16 {
		return math.MinInt16
	}
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(v)
}
func satU16(v int32) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// execSIMD evaluates every 0xFD-prefixed v128 instruction: lane-wise
// integer/float arithmetic, saturating and averaging arithmetic,
// extend/extadd-pairwise, extmul, narrow, swizzle/shuffle, splat,
// lane extract/replace, bitmask, any/all_true, and lane-wise rounding.
// Loads/stores and the v128.const literal are handled by
// execSIMDMemory in memory.go.
func (e *Engine) execSIMD(instr wasm.Instruction, st *operandStack) (bool, *wasm.Trap) {
	op := instr.Op
	switch op {
	case wasm.OpI8x16Splat:
		b := byte(st.pop())
		var v v128
		for i := range v {
			v[i] = b
		}
		pushV128(st, v)
	case wasm.OpI16x8Splat:
		lane := int16(uint16(st.pop()))
		pushV128(st, newI16x8([8]int16{lane, lane, lane, lane, lane, lane, lane, lane}))
	case wasm.OpI32x4Splat:
		lane := int32(uint32(st.pop()))
		pushV128(st, newI32x4([4]int32{lane, lane, lane, lane}))
	case wasm.OpI64x2Splat:
		lane := int64(st.pop())
		pushV128(st, newI64x2([2]int64{lane, lane}))
	case wasm.OpF32x4Splat:
		lane := popF32(st)
		pushV128(st, newF32x4([4]float32{lane, lane, lane, lane}))
	case wasm.OpF64x2Splat:
		lane := popF64(st)
		pushV128(st, newF64x2([2]float64{lane, lane}))

	case wasm.OpI8x16ExtractLaneS:
		lane := instr.Imm.(wasm.ImmLane).Lane
		v := popV128(st)
		st.push(uint64(uint32(int32(v.i8(int(lane))))))
	case wasm.OpI8x16ExtractLaneU:
		lane := instr.Imm.(wasm.ImmLane).Lane
		v := popV128(st)
		st.push(uint64(v.u8(int(lane))))
	case wasm.OpI16x8ExtractLaneS:
		lane := instr.Imm.(wasm.ImmLane).Lane
		v := popV128(st)
		st.push(uint64(uint32(int32(v.i16(int(lane))))))
	case wasm.OpI16x8ExtractLaneU:
		lane := instr.Imm.(wasm.ImmLane).Lane
		v := popV128(st)
		st.push(uint64(v.u16(int(lane))))
	case wasm.OpI32x4ExtractLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		v := popV128(st)
		st.push(uint64(v.u32(int(lane))))
	case wasm.OpI64x2ExtractLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		v := popV128(st)
		st.push(v.u64(int(lane)))
	case wasm.OpF32x4ExtractLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		v := popV128(st)
		pushF32(st, v.f32(int(lane)))
	case wasm.OpF64x2ExtractLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		v := popV128(st)
		pushF64(st, v.f64(int(lane)))

	case wasm.OpI8x16ReplaceLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		x := byte(st.pop())
		v := popV128(st)
		v[lane] = x
		pushV128(st, v)
	case wasm.OpI16x8ReplaceLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		x := uint16(st.pop())
		v := popV128(st)
		binary.LittleEndian.PutUint16(v[int(lane)*2:], x)
		pushV128(st, v)
	case wasm.OpI32x4ReplaceLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		x := uint32(st.pop())
		v := popV128(st)
		binary.LittleEndian.PutUint32(v[int(lane)*4:], x)
		pushV128(st, v)
	case wasm.OpI64x2ReplaceLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		x := st.pop()
		v := popV128(st)
		binary.LittleEndian.PutUint64(v[int(lane)*8:], x)
		pushV128(st, v)
	case wasm.OpF32x4ReplaceLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		x := popF32(st)
		v := popV128(st)
		binary.LittleEndian.PutUint32(v[int(lane)*4:], math.Float32bits(x))
		pushV128(st, v)
	case wasm.OpF64x2ReplaceLane:
		lane := instr.Imm.(wasm.ImmLane).Lane
		x := popF64(st)
		v := popV128(st)
		binary.LittleEndian.PutUint64(v[int(lane)*8:], math.Float64bits(x))
		pushV128(st, v)

	case wasm.OpI8x16Swizzle:
		idx, a := popV128(st), popV128(st)
		var out v128
		for i := 0; i < 16; i++ {
			s := idx.u8(i)
			if s < 16 {
				out[i] = a[s]
			}
		}
		pushV128(st, out)

	case wasm.OpI8x16Shuffle:
		mask := instr.Imm.(wasm.ImmShuffle).Lanes
		b, a := popV128(st), popV128(st)
		var out v128
		for i, l := range mask {
			if l < 16 {
				out[i] = a[l]
			} else {
				out[i] = b[l-16]
			}
		}
		pushV128(st, out)

	case wasm.OpV128Not:
		v := popV128(st)
		for i := range v {
			v[i] = ^v[i]
		}
		pushV128(st, v)
	case wasm.OpV128And:
		b, a := popV128(st), popV128(st)
		pushV128(st, v128Binary(a, b, func(x, y byte) byte { return x & y }))
	case wasm.OpV128AndNot:
		b, a := popV128(st), popV128(st)
		pushV128(st, v128Binary(a, b, func(x, y byte) byte { return x &^ y }))
	case wasm.OpV128Or:
		b, a := popV128(st), popV128(st)
		pushV128(st, v128Binary(a, b, func(x, y byte) byte { return x | y }))
	case wasm.OpV128Xor:
		b, a := popV128(st), popV128(st)
		pushV128(st, v128Binary(a, b, func(x, y byte) byte { return x ^ y }))
	case wasm.OpV128Bitselect:
		c, b, a := popV128(st), popV128(st), popV128(st)
		var out v128
		for i := range out {
			out[i] = (a[i] & c[i]) | (b[i] &^ c[i])
		}
		pushV128(st, out)
	case wasm.OpV128AnyTrue:
		v := popV128(st)
		any := false
		for _, byt := range v {
			if byt != 0 {
				any = true
				break
			}
		}
		st.push(b2u(any))

	default:
		return e.execSIMDLanewise(op, st)
	}
	return true, nil
}

func v128Binary(a, b v128, f func(x, y byte) byte) v128 {
	var out v128
	for i := range out {
		out[i] = f(a[i], b[i])
	}
	return out
}

// mapI8x16 / mapI16x8 / mapI32x4 / mapI64x2 / mapF32x4 / mapF64x2 apply
// a per-lane unary or binary combinator over a whole vector, collapsing
// what would otherwise be dozens of near-identical opcode cases.
func mapI8x16Unary(v v128, f func(int8) int8) v128 {
	var lanes [16]int8
	for i := 0; i < 16; i++ {
		lanes[i] = f(v.i8(i))
	}
	return newI8x16(lanes)
}
func mapI8x16Binary(a, b v128, f func(x, y int8) int8) v128 {
	var lanes [16]int8
	for i := 0; i < 16; i++ {
		lanes[i] = f(a.i8(i), b.i8(i))
	}
	return newI8x16(lanes)
}
func mapI16x8Unary(v v128, f func(int16) int16) v128 {
	var lanes [8]int16
	for i := 0; i < 8; i++ {
		lanes[i] = f(v.i16(i))
	}
	return newI16x8(lanes)
}
func mapI16x8Binary(a, b v128, f func(x, y int16) int16) v128 {
	var lanes [8]int16
	for i := 0; i < 8; i++ {
		lanes[i] = f(a.i16(i), b.i16(i))
	}
	return newI16x8(lanes)
}
func mapI32x4Unary(v v128, f func(int32) int32) v128 {
	var lanes [4]int32
	for i := 0; i < 4; i++ {
		lanes[i] = f(v.i32(i))
	}
	return newI32x4(lanes)
}
func mapI32x4Binary(a, b v128, f func(x, y int32) int32) v128 {
	var lanes [4]int32
	for i := 0; i < 4; i++ {
		lanes[i] = f(a.i32(i), b.i32(i))
	}
	return newI32x4(lanes)
}
func mapI64x2Unary(v v128, f func(int64) int64) v128 {
	var lanes [2]int64
	for i := 0; i < 2; i++ {
		lanes[i] = f(v.i64(i))
	}
	return newI64x2(lanes)
}
func mapI64x2Binary(a, b v128, f func(x, y int64) int64) v128 {
	var lanes [2]int64
	for i := 0; i < 2; i++ {
		lanes[i] = f(a.i64(i), b.i64(i))
	}
	return newI64x2(lanes)
}
func mapF32x4Unary(v v128, f func(float32) float32) v128 {
	var lanes [4]float32
	for i := 0; i < 4; i++ {
		lanes[i] = f(v.f32(i))
	}
	return newF32x4(lanes)
}
func mapF32x4Binary(a, b v128, f func(x, y float32) float32) v128 {
	var lanes [4]float32
	for i := 0; i < 4; i++ {
		lanes[i] = f(a.f32(i), b.f32(i))
	}
	return newF32x4(lanes)
}
func mapF64x2Unary(v v128, f func(float64) float64) v128 {
	var lanes [2]float64
	for i := 0; i < 2; i++ {
		lanes[i] = f(v.f64(i))
	}
	return newF64x2(lanes)
}
func mapF64x2Binary(a, b v128, f func(x, y float64) float64) v128 {
	var lanes [2]float64
	for i := 0; i < 2; i++ {
		lanes[i] = f(a.f64(i), b.f64(i))
	}
	return newF64x2(lanes)
}

func cmpI8x16(a, b v128, f func(x, y int8) bool) v128 {
	return mapI8x16Binary(a, b, func(x, y int8) int8 {
		if f(x, y) {
			return -1
		}
		return 0
	})
}
func cmpU8x16(a, b v128, f func(x, y uint8) bool) v128 {
	var out v128
	for i := 0; i < 16; i++ {
		if f(a.u8(i), b.u8(i)) {
			out[i] = 0xFF
		}
	}
	return out
}
func cmpI16x8(a, b v128, f func(x, y int16) bool) v128 {
	return mapI16x8Binary(a, b, func(x, y int16) int16 {
		if f(x, y) {
			return -1
		}
		return 0
	})
}
func cmpU16x8(a, b v128, f func(x, y uint16) bool) v128 {
	var lanes [8]int16
	for i := 0; i < 8; i++ {
		if f(a.u16(i), b.u16(i)) {
			lanes[i] = -1
		}
	}
	return newI16x8(lanes)
}
func cmpI32x4(a, b v128, f func(x, y int32) bool) v128 {
	return mapI32x4Binary(a, b, func(x, y int32) int32 {
		if f(x, y) {
			return -1
		}
		return 0
	})
}
func cmpU32x4(a, b v128, f func(x, y uint32) bool) v128 {
	var lanes [4]int32
	for i := 0; i < 4; i++ {
		if f(a.u32(i), b.u32(i)) {
			lanes[i] = -1
		}
	}
	return newI32x4(lanes)
}
func cmpI64x2(a, b v128, f func(x, y int64) bool) v128 {
	return mapI64x2Binary(a, b, func(x, y int64) int64 {
		if f(x, y) {
			return -1
		}
		return 0
	})
}
func cmpF32x4(a, b v128, f func(x, y float32) bool) v128 {
	var lanes [4]int32
	for i := 0; i < 4; i++ {
		if f(a.f32(i), b.f32(i)) {
			lanes[i] = -1
		}
	}
	return newI32x4(lanes)
}
func cmpF64x2(a, b v128, f func(x, y float64) bool) v128 {
	var lanes [2]int64
	for i := 0; i < 2; i++ {
		if f(a.f64(i), b.f64(i)) {
			lanes[i] = -1
		}
	}
	return newI64x2(lanes)
}

func bitmask8x16(v v128) uint32 {
	var m uint32
	for i := 0; i < 16; i++ {
		if v.i8(i) < 0 {
			m |= 1 << i
		}
	}
	return m
}
func bitmask16x8(v v128) uint32 {
	var m uint32
	for i := 0; i < 8; i++ {
		if v.i16(i) < 0 {
			m |= 1 << i
		}
	}
	return m
}
func bitmask32x4(v v128) uint32 {
	var m uint32
	for i := 0; i < 4; i++ {
		if v.i32(i) < 0 {
			m |= 1 << i
		}
	}
	return m
}
func bitmask64x2(v v128) uint32 {
	var m uint32
	for i := 0; i < 2; i++ {
		if v.i64(i) < 0 {
			m |= 1 << i
		}
	}
	return m
}

func allTrue8x16(v v128) bool {
	for i := 0; i < 16; i++ {
		if v.u8(i) == 0 {
			return false
		}
	}
	return true
}
func allTrue16x8(v v128) bool {
	for i := 0; i < 8; i++ {
		if v.u16(i) == 0 {
			return false
		}
	}
	return true
}
func allTrue32x4(v v128) bool {
	for i := 0; i < 4; i++ {
		if v.u32(i) == 0 {
			return false
		}
	}
	return true
}
func allTrue64x2(v v128) bool {
	for i := 0; i < 2; i++ {
		if v.u64(i) == 0 {
			return false
		}
	}
	return true
}

// avgrU8/16 implement the SIMD proposal's rounding-average-unsigned
// with ties broken up (add 1 before halving), per spec.md §4.7.
func avgrU8(a, b uint8) uint8   { return uint8((uint16(a) + uint16(b) + 1) / 2) }
func avgrU16(a, b uint16) uint16 { return uint16((uint32(a) + uint32(b) + 1) / 2) }

// q15mulrSatS implements the SIMD fixed-point Q15 rounding saturating
// multiply: (a*b + 0x4000) >> 15, clamped to int16 range.
func q15mulrSatS(a, b int16) int16 {
	v := (int32(a)*int32(b) + 0x4000) >> 15
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// execSIMDLanewise handles every SIMD opcode not already covered by
// execSIMD's splat/lane/bitwise/shuffle cases: comparisons, saturating
// and rounding arithmetic, extend/extadd-pairwise, extmul, narrow, and
// float lane rounding/conversion.
func (e *Engine) execSIMDLanewise(op wasm.Opcode, st *operandStack) (bool, *wasm.Trap) {
	switch op {
	// i8x16 comparisons
	case wasm.OpI8x16Eq:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI8x16(a, b, func(x, y int8) bool { return x == y }))
	case wasm.OpI8x16Ne:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI8x16(a, b, func(x, y int8) bool { return x != y }))
	case wasm.OpI8x16LtS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI8x16(a, b, func(x, y int8) bool { return x < y }))
	case wasm.OpI8x16LtU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU8x16(a, b, func(x, y uint8) bool { return x < y }))
	case wasm.OpI8x16GtS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI8x16(a, b, func(x, y int8) bool { return x > y }))
	case wasm.OpI8x16GtU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU8x16(a, b, func(x, y uint8) bool { return x > y }))
	case wasm.OpI8x16LeS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI8x16(a, b, func(x, y int8) bool { return x <= y }))
	case wasm.OpI8x16LeU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU8x16(a, b, func(x, y uint8) bool { return x <= y }))
	case wasm.OpI8x16GeS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI8x16(a, b, func(x, y int8) bool { return x >= y }))
	case wasm.OpI8x16GeU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU8x16(a, b, func(x, y uint8) bool { return x >= y }))

	// i16x8 comparisons
	case wasm.OpI16x8Eq:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI16x8(a, b, func(x, y int16) bool { return x == y }))
	case wasm.OpI16x8Ne:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI16x8(a, b, func(x, y int16) bool { return x != y }))
	case wasm.OpI16x8LtS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI16x8(a, b, func(x, y int16) bool { return x < y }))
	case wasm.OpI16x8LtU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU16x8(a, b, func(x, y uint16) bool { return x < y }))
	case wasm.OpI16x8GtS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI16x8(a, b, func(x, y int16) bool { return x > y }))
	case wasm.OpI16x8GtU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU16x8(a, b, func(x, y uint16) bool { return x > y }))
	case wasm.OpI16x8LeS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI16x8(a, b, func(x, y int16) bool { return x <= y }))
	case wasm.OpI16x8LeU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU16x8(a, b, func(x, y uint16) bool { return x <= y }))
	case wasm.OpI16x8GeS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI16x8(a, b, func(x, y int16) bool { return x >= y }))
	case wasm.OpI16x8GeU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU16x8(a, b, func(x, y uint16) bool { return x >= y }))

	// i32x4 comparisons
	case wasm.OpI32x4Eq:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI32x4(a, b, func(x, y int32) bool { return x == y }))
	case wasm.OpI32x4Ne:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI32x4(a, b, func(x, y int32) bool { return x != y }))
	case wasm.OpI32x4LtS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI32x4(a, b, func(x, y int32) bool { return x < y }))
	case wasm.OpI32x4LtU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU32x4(a, b, func(x, y uint32) bool { return x < y }))
	case wasm.OpI32x4GtS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI32x4(a, b, func(x, y int32) bool { return x > y }))
	case wasm.OpI32x4GtU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU32x4(a, b, func(x, y uint32) bool { return x > y }))
	case wasm.OpI32x4LeS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI32x4(a, b, func(x, y int32) bool { return x <= y }))
	case wasm.OpI32x4LeU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU32x4(a, b, func(x, y uint32) bool { return x <= y }))
	case wasm.OpI32x4GeS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI32x4(a, b, func(x, y int32) bool { return x >= y }))
	case wasm.OpI32x4GeU:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpU32x4(a, b, func(x, y uint32) bool { return x >= y }))

	// i64x2 comparisons
	case wasm.OpI64x2Eq:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI64x2(a, b, func(x, y int64) bool { return x == y }))
	case wasm.OpI64x2Ne:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI64x2(a, b, func(x, y int64) bool { return x != y }))
	case wasm.OpI64x2LtS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI64x2(a, b, func(x, y int64) bool { return x < y }))
	case wasm.OpI64x2GtS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI64x2(a, b, func(x, y int64) bool { return x > y }))
	case wasm.OpI64x2LeS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI64x2(a, b, func(x, y int64) bool { return x <= y }))
	case wasm.OpI64x2GeS:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpI64x2(a, b, func(x, y int64) bool { return x >= y }))

	// f32x4 / f64x2 comparisons
	case wasm.OpF32x4Eq:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF32x4(a, b, func(x, y float32) bool { return x == y }))
	case wasm.OpF32x4Ne:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF32x4(a, b, func(x, y float32) bool { return x != y }))
	case wasm.OpF32x4Lt:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF32x4(a, b, func(x, y float32) bool { return x < y }))
	case wasm.OpF32x4Gt:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF32x4(a, b, func(x, y float32) bool { return x > y }))
	case wasm.OpF32x4Le:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF32x4(a, b, func(x, y float32) bool { return x <= y }))
	case wasm.OpF32x4Ge:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF32x4(a, b, func(x, y float32) bool { return x >= y }))
	case wasm.OpF64x2Eq:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF64x2(a, b, func(x, y float64) bool { return x == y }))
	case wasm.OpF64x2Ne:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF64x2(a, b, func(x, y float64) bool { return x != y }))
	case wasm.OpF64x2Lt:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF64x2(a, b, func(x, y float64) bool { return x < y }))
	case wasm.OpF64x2Gt:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF64x2(a, b, func(x, y float64) bool { return x > y }))
	case wasm.OpF64x2Le:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF64x2(a, b, func(x, y float64) bool { return x <= y }))
	case wasm.OpF64x2Ge:
		b, a := popV128(st), popV128(st)
		pushV128(st, cmpF64x2(a, b, func(x, y float64) bool { return x >= y }))

	// i8x16 unary/arithmetic
	case wasm.OpI8x16Abs:
		pushV128(st, mapI8x16Unary(popV128(st), func(x int8) int8 {
			if x < 0 {
				return -x
			}
			return x
		}))
	case wasm.OpI8x16Neg:
		pushV128(st, mapI8x16Unary(popV128(st), func(x int8) int8 { return -x }))
	case wasm.OpI8x16Popcnt:
		v := popV128(st)
		var out v128
		for i := 0; i < 16; i++ {
			out[i] = byte(bits.OnesCount8(v.u8(i)))
		}
		pushV128(st, out)
	case wasm.OpI8x16AllTrue:
		st.push(b2u(allTrue8x16(popV128(st))))
	case wasm.OpI8x16Bitmask:
		st.push(uint64(bitmask8x16(popV128(st))))
	case wasm.OpI8x16NarrowI16x8S:
		b, a := popV128(st), popV128(st)
		var lanes [16]int8
		for i := 0; i < 8; i++ {
			lanes[i] = satS8(a.i16(i))
			lanes[i+8] = satS8(b.i16(i))
		}
		pushV128(st, newI8x16(lanes))
	case wasm.OpI8x16NarrowI16x8U:
		b, a := popV128(st), popV128(st)
		var out v128
		for i := 0; i < 8; i++ {
			out[i] = satU8(a.i16(i))
			out[i+8] = satU8(b.i16(i))
		}
		pushV128(st, out)
	case wasm.OpI8x16Shl:
		n := uint32(st.pop()) & 7
		pushV128(st, mapI8x16Unary(popV128(st), func(x int8) int8 { return int8(uint8(x) << n) }))
	case wasm.OpI8x16ShrS:
		n := uint32(st.pop()) & 7
		pushV128(st, mapI8x16Unary(popV128(st), func(x int8) int8 { return x >> n }))
	case wasm.OpI8x16ShrU:
		n := uint32(st.pop()) & 7
		pushV128(st, mapI8x16Unary(popV128(st), func(x int8) int8 { return int8(uint8(x) >> n) }))
	case wasm.OpI8x16Add:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI8x16Binary(a, b, func(x, y int8) int8 { return x + y }))
	case wasm.OpI8x16AddSatS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI8x16Binary(a, b, func(x, y int8) int8 { return satS8(int16(x) + int16(y)) }))
	case wasm.OpI8x16AddSatU:
		b, a := popV128(st), popV128(st)
		var out v128
		for i := 0; i < 16; i++ {
			out[i] = satU8(int16(a.u8(i)) + int16(b.u8(i)))
		}
		pushV128(st, out)
	case wasm.OpI8x16Sub:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI8x16Binary(a, b, func(x, y int8) int8 { return x - y }))
	case wasm.OpI8x16SubSatS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI8x16Binary(a, b, func(x, y int8) int8 { return satS8(int16(x) - int16(y)) }))
	case wasm.OpI8x16SubSatU:
		b, a := popV128(st), popV128(st)
		var out v128
		for i := 0; i < 16; i++ {
			out[i] = satU8(int16(a.u8(i)) - int16(b.u8(i)))
		}
		pushV128(st, out)
	case wasm.OpI8x16MinS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI8x16Binary(a, b, func(x, y int8) int8 {
			if x < y {
				return x
			}
			return y
		}))
	case wasm.OpI8x16MinU:
		b, a := popV128(st), popV128(st)
		var out v128
		for i := 0; i < 16; i++ {
			if a.u8(i) < b.u8(i) {
				out[i] = a.u8(i)
			} else {
				out[i] = b.u8(i)
			}
		}
		pushV128(st, out)
	case wasm.OpI8x16MaxS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI8x16Binary(a, b, func(x, y int8) int8 {
			if x > y {
				return x
			}
			return y
		}))
	case wasm.OpI8x16MaxU:
		b, a := popV128(st), popV128(st)
		var out v128
		for i := 0; i < 16; i++ {
			if a.u8(i) > b.u8(i) {
				out[i] = a.u8(i)
			} else {
				out[i] = b.u8(i)
			}
		}
		pushV128(st, out)
	case wasm.OpI8x16AvgrU:
		b, a := popV128(st), popV128(st)
		var out v128
		for i := 0; i < 16; i++ {
			out[i] = avgrU8(a.u8(i), b.u8(i))
		}
		pushV128(st, out)

	// i16x8 arithmetic
	case wasm.OpI16x8ExtaddPairwiseI8x16S:
		v := popV128(st)
		var lanes [8]int16
		for i := 0; i < 8; i++ {
			lanes[i] = int16(v.i8(2*i)) + int16(v.i8(2*i+1))
		}
		pushV128(st, newI16x8(lanes))
	case wasm.OpI16x8ExtaddPairwiseI8x16U:
		v := popV128(st)
		var lanes [8]int16
		for i := 0; i < 8; i++ {
			lanes[i] = int16(uint16(v.u8(2*i)) + uint16(v.u8(2*i+1)))
		}
		pushV128(st, newI16x8(lanes))
	case wasm.OpI16x8Abs:
		pushV128(st, mapI16x8Unary(popV128(st), func(x int16) int16 {
			if x < 0 {
				return -x
			}
			return x
		}))
	case wasm.OpI16x8Neg:
		pushV128(st, mapI16x8Unary(popV128(st), func(x int16) int16 { return -x }))
	case wasm.OpI16x8Q15mulrSatS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI16x8Binary(a, b, q15mulrSatS))
	case wasm.OpI16x8AllTrue:
		st.push(b2u(allTrue16x8(popV128(st))))
	case wasm.OpI16x8Bitmask:
		st.push(uint64(bitmask16x8(popV128(st))))
	case wasm.OpI16x8NarrowI32x4S:
		b, a := popV128(st), popV128(st)
		var lanes [8]int16
		for i := 0; i < 4; i++ {
			lanes[i] = satS16(a.i32(i))
			lanes[i+4] = satS16(b.i32(i))
		}
		pushV128(st, newI16x8(lanes))
	case wasm.OpI16x8NarrowI32x4U:
		b, a := popV128(st), popV128(st)
		var v v128
		for i := 0; i < 4; i++ {
			binary.LittleEndian.PutUint16(v[i*2:], satU16(a.i32(i)))
			binary.LittleEndian.PutUint16(v[(i+4)*2:], satU16(b.i32(i)))
		}
		pushV128(st, v)
	case wasm.OpI16x8ExtendLowI8x16S:
		v := popV128(st)
		var lanes [8]int16
		for i := 0; i < 8; i++ {
			lanes[i] = int16(v.i8(i))
		}
		pushV128(st, newI16x8(lanes))
	case wasm.OpI16x8ExtendHighI8x16S:
		v := popV128(st)
		var lanes [8]int16
		for i := 0; i < 8; i++ {
			lanes[i] = int16(v.i8(i + 8))
		}
		pushV128(st, newI16x8(lanes))
	case wasm.OpI16x8ExtendLowI8x16U:
		v := popV128(st)
		var lanes [8]int16
		for i := 0; i < 8; i++ {
			lanes[i] = int16(uint16(v.u8(i)))
		}
		pushV128(st, newI16x8(lanes))
	case wasm.OpI16x8ExtendHighI8x16U:
		v := popV128(st)
		var lanes [8]int16
		for i := 0; i < 8; i++ {
			lanes[i] = int16(uint16(v.u8(i + 8)))
		}
		pushV128(st, newI16x8(lanes))
	case wasm.OpI16x8Shl:
		n := uint32(st.pop()) & 15
		pushV128(st, mapI16x8Unary(popV128(st), func(x int16) int16 { return int16(uint16(x) << n) }))
	case wasm.OpI16x8ShrS:
		n := uint32(st.pop()) & 15
		pushV128(st, mapI16x8Unary(popV128(st), func(x int16) int16 { return x >> n }))
	case wasm.OpI16x8ShrU:
		n := uint32(st.pop()) & 15
		pushV128(st, mapI16x8Unary(popV128(st), func(x int16) int16 { return int16(uint16(x) >> n) }))
	case wasm.OpI16x8Add:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI16x8Binary(a, b, func(x, y int16) int16 { return x + y }))
	case wasm.OpI16x8AddSatS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI16x8Binary(a, b, func(x, y int16) int16 { return satS16(int32(x) + int32(y)) }))
	case wasm.OpI16x8AddSatU:
		b, a := popV128(st), popV128(st)
		var v v128
		for i := 0; i < 8; i++ {
			binary.LittleEndian.PutUint16(v[i*2:], satU16(int32(a.u16(i))+int32(b.u16(i))))
		}
		pushV128(st, v)
	case wasm.OpI16x8Sub:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI16x8Binary(a, b, func(x, y int16) int16 { return x - y }))
	case wasm.OpI16x8SubSatS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI16x8Binary(a, b, func(x, y int16) int16 { return satS16(int32(x) - int32(y)) }))
	case wasm.OpI16x8SubSatU:
		b, a := popV128(st), popV128(st)
		var v v128
		for i := 0; i < 8; i++ {
			binary.LittleEndian.PutUint16(v[i*2:], satU16(int32(a.u16(i))-int32(b.u16(i))))
		}
		pushV128(st, v)
	case wasm.OpI16x8Mul:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI16x8Binary(a, b, func(x, y int16) int16 { return x * y }))
	case wasm.OpI16x8MinS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI16x8Binary(a, b, func(x, y int16) int16 {
			if x < y {
				return x
			}
			return y
		}))
	case wasm.OpI16x8MinU:
		b, a := popV128(st), popV128(st)
		var v v128
		for i := 0; i < 8; i++ {
			m := a.u16(i)
			if b.u16(i) < m {
				m = b.u16(i)
			}
			binary.LittleEndian.PutUint16(v[i*2:], m)
		}
		pushV128(st, v)
	case wasm.OpI16x8MaxS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI16x8Binary(a, b, func(x, y int16) int16 {
			if x > y {
				return x
			}
			return y
		}))
	case wasm.OpI16x8MaxU:
		b, a := popV128(st), popV128(st)
		var v v128
		for i := 0; i < 8; i++ {
			m := a.u16(i)
			if b.u16(i) > m {
				m = b.u16(i)
			}
			binary.LittleEndian.PutUint16(v[i*2:], m)
		}
		pushV128(st, v)
	case wasm.OpI16x8AvgrU:
		b, a := popV128(st), popV128(st)
		var v v128
		for i := 0; i < 8; i++ {
			binary.LittleEndian.PutUint16(v[i*2:], avgrU16(a.u16(i), b.u16(i)))
		}
		pushV128(st, v)
	case wasm.OpI16x8ExtmulLowI8x16S:
		b, a := popV128(st), popV128(st)
		var lanes [8]int16
		for i := 0; i < 8; i++ {
			lanes[i] = int16(a.i8(i)) * int16(b.i8(i))
		}
		pushV128(st, newI16x8(lanes))
	case wasm.OpI16x8ExtmulHighI8x16S:
		b, a := popV128(st), popV128(st)
		var lanes [8]int16
		for i := 0; i < 8; i++ {
			lanes[i] = int16(a.i8(i+8)) * int16(b.i8(i+8))
		}
		pushV128(st, newI16x8(lanes))
	case wasm.OpI16x8ExtmulLowI8x16U:
		b, a := popV128(st), popV128(st)
		var v v128
		for i := 0; i < 8; i++ {
			binary.LittleEndian.PutUint16(v[i*2:], uint16(a.u8(i))*uint16(b.u8(i)))
		}
		pushV128(st, v)
	case wasm.OpI16x8ExtmulHighI8x16U:
		b, a := popV128(st), popV128(st)
		var v v128
		for i := 0; i < 8; i++ {
			binary.LittleEndian.PutUint16(v[i*2:], uint16(a.u8(i+8))*uint16(b.u8(i+8)))
		}
		pushV128(st, v)

	// i32x4 arithmetic
	case wasm.OpI32x4ExtaddPairwiseI16x8S:
		v := popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(v.i16(2*i)) + int32(v.i16(2*i+1))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4ExtaddPairwiseI16x8U:
		v := popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(uint32(v.u16(2*i)) + uint32(v.u16(2*i+1)))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4Abs:
		pushV128(st, mapI32x4Unary(popV128(st), func(x int32) int32 {
			if x < 0 {
				return -x
			}
			return x
		}))
	case wasm.OpI32x4Neg:
		pushV128(st, mapI32x4Unary(popV128(st), func(x int32) int32 { return -x }))
	case wasm.OpI32x4AllTrue:
		st.push(b2u(allTrue32x4(popV128(st))))
	case wasm.OpI32x4Bitmask:
		st.push(uint64(bitmask32x4(popV128(st))))
	case wasm.OpI32x4ExtendLowI16x8S:
		v := popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(v.i16(i))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4ExtendHighI16x8S:
		v := popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(v.i16(i + 4))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4ExtendLowI16x8U:
		v := popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(uint32(v.u16(i)))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4ExtendHighI16x8U:
		v := popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(uint32(v.u16(i + 4)))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4Shl:
		n := uint32(st.pop()) & 31
		pushV128(st, mapI32x4Unary(popV128(st), func(x int32) int32 { return int32(uint32(x) << n) }))
	case wasm.OpI32x4ShrS:
		n := uint32(st.pop()) & 31
		pushV128(st, mapI32x4Unary(popV128(st), func(x int32) int32 { return x >> n }))
	case wasm.OpI32x4ShrU:
		n := uint32(st.pop()) & 31
		pushV128(st, mapI32x4Unary(popV128(st), func(x int32) int32 { return int32(uint32(x) >> n) }))
	case wasm.OpI32x4Add:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI32x4Binary(a, b, func(x, y int32) int32 { return x + y }))
	case wasm.OpI32x4Sub:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI32x4Binary(a, b, func(x, y int32) int32 { return x - y }))
	case wasm.OpI32x4Mul:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI32x4Binary(a, b, func(x, y int32) int32 { return x * y }))
	case wasm.OpI32x4MinS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI32x4Binary(a, b, func(x, y int32) int32 {
			if x < y {
				return x
			}
			return y
		}))
	case wasm.OpI32x4MinU:
		b, a := popV128(st), popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			m := a.u32(i)
			if b.u32(i) < m {
				m = b.u32(i)
			}
			lanes[i] = int32(m)
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4MaxS:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI32x4Binary(a, b, func(x, y int32) int32 {
			if x > y {
				return x
			}
			return y
		}))
	case wasm.OpI32x4MaxU:
		b, a := popV128(st), popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			m := a.u32(i)
			if b.u32(i) > m {
				m = b.u32(i)
			}
			lanes[i] = int32(m)
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4DotI16x8S:
		b, a := popV128(st), popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(a.i16(2*i))*int32(b.i16(2*i)) + int32(a.i16(2*i+1))*int32(b.i16(2*i+1))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4ExtmulLowI16x8S:
		b, a := popV128(st), popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(a.i16(i)) * int32(b.i16(i))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4ExtmulHighI16x8S:
		b, a := popV128(st), popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(a.i16(i+4)) * int32(b.i16(i+4))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4ExtmulLowI16x8U:
		b, a := popV128(st), popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(uint32(a.u16(i)) * uint32(b.u16(i)))
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4ExtmulHighI16x8U:
		b, a := popV128(st), popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = int32(uint32(a.u16(i+4)) * uint32(b.u16(i+4)))
		}
		pushV128(st, newI32x4(lanes))

	// i64x2 arithmetic
	case wasm.OpI64x2Abs:
		pushV128(st, mapI64x2Unary(popV128(st), func(x int64) int64 {
			if x < 0 {
				return -x
			}
			return x
		}))
	case wasm.OpI64x2Neg:
		pushV128(st, mapI64x2Unary(popV128(st), func(x int64) int64 { return -x }))
	case wasm.OpI64x2AllTrue:
		st.push(b2u(allTrue64x2(popV128(st))))
	case wasm.OpI64x2Bitmask:
		st.push(uint64(bitmask64x2(popV128(st))))
	case wasm.OpI64x2ExtendLowI32x4S:
		v := popV128(st)
		var lanes [2]int64
		for i := 0; i < 2; i++ {
			lanes[i] = int64(v.i32(i))
		}
		pushV128(st, newI64x2(lanes))
	case wasm.OpI64x2ExtendHighI32x4S:
		v := popV128(st)
		var lanes [2]int64
		for i := 0; i < 2; i++ {
			lanes[i] = int64(v.i32(i + 2))
		}
		pushV128(st, newI64x2(lanes))
	case wasm.OpI64x2ExtendLowI32x4U:
		v := popV128(st)
		var lanes [2]int64
		for i := 0; i < 2; i++ {
			lanes[i] = int64(uint64(v.u32(i)))
		}
		pushV128(st, newI64x2(lanes))
	case wasm.OpI64x2ExtendHighI32x4U:
		v := popV128(st)
		var lanes [2]int64
		for i := 0; i < 2; i++ {
			lanes[i] = int64(uint64(v.u32(i + 2)))
		}
		pushV128(st, newI64x2(lanes))
	case wasm.OpI64x2Shl:
		n := uint64(st.pop()) & 63
		pushV128(st, mapI64x2Unary(popV128(st), func(x int64) int64 { return int64(uint64(x) << n) }))
	case wasm.OpI64x2ShrS:
		n := uint64(st.pop()) & 63
		pushV128(st, mapI64x2Unary(popV128(st), func(x int64) int64 { return x >> n }))
	case wasm.OpI64x2ShrU:
		n := uint64(st.pop()) & 63
		pushV128(st, mapI64x2Unary(popV128(st), func(x int64) int64 { return int64(uint64(x) >> n) }))
	case wasm.OpI64x2Add:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI64x2Binary(a, b, func(x, y int64) int64 { return x + y }))
	case wasm.OpI64x2Sub:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI64x2Binary(a, b, func(x, y int64) int64 { return x - y }))
	case wasm.OpI64x2Mul:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapI64x2Binary(a, b, func(x, y int64) int64 { return x * y }))
	case wasm.OpI64x2ExtmulLowI32x4S:
		b, a := popV128(st), popV128(st)
		var lanes [2]int64
		for i := 0; i < 2; i++ {
			lanes[i] = int64(a.i32(i)) * int64(b.i32(i))
		}
		pushV128(st, newI64x2(lanes))
	case wasm.OpI64x2ExtmulHighI32x4S:
		b, a := popV128(st), popV128(st)
		var lanes [2]int64
		for i := 0; i < 2; i++ {
			lanes[i] = int64(a.i32(i+2)) * int64(b.i32(i+2))
		}
		pushV128(st, newI64x2(lanes))
	case wasm.OpI64x2ExtmulLowI32x4U:
		b, a := popV128(st), popV128(st)
		var lanes [2]int64
		for i := 0; i < 2; i++ {
			lanes[i] = int64(uint64(a.u32(i)) * uint64(b.u32(i)))
		}
		pushV128(st, newI64x2(lanes))
	case wasm.OpI64x2ExtmulHighI32x4U:
		b, a := popV128(st), popV128(st)
		var lanes [2]int64
		for i := 0; i < 2; i++ {
			lanes[i] = int64(uint64(a.u32(i+2)) * uint64(b.u32(i+2)))
		}
		pushV128(st, newI64x2(lanes))

	// f32x4 / f64x2 rounding and arithmetic
	case wasm.OpF32x4Ceil:
		pushV128(st, mapF32x4Unary(popV128(st), func(x float32) float32 { return canonNaN32(float32(math.Ceil(float64(x)))) }))
	case wasm.OpF32x4Floor:
		pushV128(st, mapF32x4Unary(popV128(st), func(x float32) float32 { return canonNaN32(float32(math.Floor(float64(x)))) }))
	case wasm.OpF32x4Trunc:
		pushV128(st, mapF32x4Unary(popV128(st), func(x float32) float32 { return canonNaN32(float32(math.Trunc(float64(x)))) }))
	case wasm.OpF32x4Nearest:
		pushV128(st, mapF32x4Unary(popV128(st), func(x float32) float32 { return canonNaN32(f32Nearest(x)) }))
	case wasm.OpF64x2Ceil:
		pushV128(st, mapF64x2Unary(popV128(st), func(x float64) float64 { return canonNaN64(math.Ceil(x)) }))
	case wasm.OpF64x2Floor:
		pushV128(st, mapF64x2Unary(popV128(st), func(x float64) float64 { return canonNaN64(math.Floor(x)) }))
	case wasm.OpF64x2Trunc:
		pushV128(st, mapF64x2Unary(popV128(st), func(x float64) float64 { return canonNaN64(math.Trunc(x)) }))
	case wasm.OpF64x2Nearest:
		pushV128(st, mapF64x2Unary(popV128(st), func(x float64) float64 { return canonNaN64(f64Nearest(x)) }))

	case wasm.OpF32x4Abs:
		pushV128(st, mapF32x4Unary(popV128(st), func(x float32) float32 { return float32(math.Abs(float64(x))) }))
	case wasm.OpF32x4Neg:
		pushV128(st, mapF32x4Unary(popV128(st), func(x float32) float32 { return -x }))
	case wasm.OpF32x4Sqrt:
		pushV128(st, mapF32x4Unary(popV128(st), func(x float32) float32 { return canonNaN32(float32(math.Sqrt(float64(x)))) }))
	case wasm.OpF32x4Add:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF32x4Binary(a, b, func(x, y float32) float32 { return canonNaN32(x + y) }))
	case wasm.OpF32x4Sub:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF32x4Binary(a, b, func(x, y float32) float32 { return canonNaN32(x - y) }))
	case wasm.OpF32x4Mul:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF32x4Binary(a, b, func(x, y float32) float32 { return canonNaN32(x * y) }))
	case wasm.OpF32x4Div:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF32x4Binary(a, b, func(x, y float32) float32 { return canonNaN32(x / y) }))
	case wasm.OpF32x4Min:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF32x4Binary(a, b, f32Min))
	case wasm.OpF32x4Max:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF32x4Binary(a, b, f32Max))
	case wasm.OpF32x4Pmin:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF32x4Binary(a, b, func(x, y float32) float32 {
			if y < x {
				return y
			}
			return x
		}))
	case wasm.OpF32x4Pmax:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF32x4Binary(a, b, func(x, y float32) float32 {
			if y > x {
				return y
			}
			return x
		}))

	case wasm.OpF64x2Abs:
		pushV128(st, mapF64x2Unary(popV128(st), math.Abs))
	case wasm.OpF64x2Neg:
		pushV128(st, mapF64x2Unary(popV128(st), func(x float64) float64 { return -x }))
	case wasm.OpF64x2Sqrt:
		pushV128(st, mapF64x2Unary(popV128(st), func(x float64) float64 { return canonNaN64(math.Sqrt(x)) }))
	case wasm.OpF64x2Add:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF64x2Binary(a, b, func(x, y float64) float64 { return canonNaN64(x + y) }))
	case wasm.OpF64x2Sub:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF64x2Binary(a, b, func(x, y float64) float64 { return canonNaN64(x - y) }))
	case wasm.OpF64x2Mul:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF64x2Binary(a, b, func(x, y float64) float64 { return canonNaN64(x * y) }))
	case wasm.OpF64x2Div:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF64x2Binary(a, b, func(x, y float64) float64 { return canonNaN64(x / y) }))
	case wasm.OpF64x2Min:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF64x2Binary(a, b, f64Min))
	case wasm.OpF64x2Max:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF64x2Binary(a, b, f64Max))
	case wasm.OpF64x2Pmin:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF64x2Binary(a, b, func(x, y float64) float64 {
			if y < x {
				return y
			}
			return x
		}))
	case wasm.OpF64x2Pmax:
		b, a := popV128(st), popV128(st)
		pushV128(st, mapF64x2Binary(a, b, func(x, y float64) float64 {
			if y > x {
				return y
			}
			return x
		}))

	// widening float<->int conversions
	case wasm.OpF32x4DemoteF64x2Zero:
		v := popV128(st)
		pushV128(st, newF32x4([4]float32{canonNaN32(float32(v.f64(0))), canonNaN32(float32(v.f64(1))), 0, 0}))
	case wasm.OpF64x2PromoteLowF32x4:
		v := popV128(st)
		pushV128(st, newF64x2([2]float64{canonNaN64(float64(v.f32(0))), canonNaN64(float64(v.f32(1)))}))
	case wasm.OpI32x4TruncSatF32x4S:
		v := popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = truncSatToI32(float64(v.f32(i)), true)
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpI32x4TruncSatF32x4U:
		v := popV128(st)
		var lanes [4]int32
		for i := 0; i < 4; i++ {
			lanes[i] = truncSatToI32(float64(v.f32(i)), false)
		}
		pushV128(st, newI32x4(lanes))
	case wasm.OpF32x4ConvertI32x4S:
		v := popV128(st)
		var lanes [4]float32
		for i := 0; i < 4; i++ {
			lanes[i] = float32(v.i32(i))
		}
		pushV128(st, newF32x4(lanes))
	case wasm.OpF32x4ConvertI32x4U:
		v := popV128(st)
		var lanes [4]float32
		for i := 0; i < 4; i++ {
			lanes[i] = float32(v.u32(i))
		}
		pushV128(st, newF32x4(lanes))
	case wasm.OpI32x4TruncSatF64x2SZero:
		v := popV128(st)
		pushV128(st, newI32x4([4]int32{truncSatToI32(v.f64(0), true), truncSatToI32(v.f64(1), true), 0, 0}))
	case wasm.OpI32x4TruncSatF64x2UZero:
		v := popV128(st)
		pushV128(st, newI32x4([4]int32{truncSatToI32(v.f64(0), false), truncSatToI32(v.f64(1), false), 0, 0}))
	case wasm.OpF64x2ConvertLowI32x4S:
		v := popV128(st)
		pushV128(st, newF64x2([2]float64{float64(v.i32(0)), float64(v.i32(1))}))
	case wasm.OpF64x2ConvertLowI32x4U:
		v := popV128(st)
		pushV128(st, newF64x2([2]float64{float64(v.u32(0)), float64(v.u32(1))}))

	default:
		return false, nil
	}
	return true, nil
}
