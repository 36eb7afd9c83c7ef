package vm

import (
	"math"
	"math/bits"

	"github.com/tinywasm/tinywasm/ieee754"
	"github.com/tinywasm/tinywasm/wasm"
)

// canonNaN32 replaces a NaN float32 with the implementation's canonical
// NaN bit pattern, leaving non-NaN values untouched. Used wherever a
// result's NaN payload isn't traced back to a specific input operand
// (conversions, lane-wise SIMD maps), so there is nothing to propagate.
func canonNaN32(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return ieee754.CanonicalNaN32
	}
	return v
}

func canonNaN64(v float64) float64 {
	if math.IsNaN(v) {
		return ieee754.CanonicalNaN64
	}
	return v
}

// f32Arith resolves the result of a unary or binary float32 op: if any of
// its operands was already NaN, the result follows the specification's
// NaN propagation rule (arithmetic NaN payload reused, else canonical);
// otherwise v, the op's already-computed non-NaN result, is returned
// unchanged (and canonicalized, covering the rare case Go's own float
// unit introduces a NaN with no NaN operand, such as Inf-Inf).
func f32Arith(v float32, operands ...float32) float32 {
	if r, ok := ieee754.PropagateNaN32(operands...); ok {
		return r
	}
	return canonNaN32(v)
}

func f64Arith(v float64, operands ...float64) float64 {
	if r, ok := ieee754.PropagateNaN64(operands...); ok {
		return r
	}
	return canonNaN64(v)
}

// --- integer arithmetic (i32) ---

func i32DivS(a, b int32) (int32, *wasm.Trap) {
	if b == 0 {
		return 0, wasm.NewTrap(wasm.TrapIntegerDivideByZero)
	}
	if a == math.MinInt32 && b == -1 {
		return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
	}
	return a / b, nil
}

func i32DivU(a, b uint32) (uint32, *wasm.Trap) {
	if b == 0 {
		return 0, wasm.NewTrap(wasm.TrapIntegerDivideByZero)
	}
	return a / b, nil
}

func i32RemS(a, b int32) (int32, *wasm.Trap) {
	if b == 0 {
		return 0, wasm.NewTrap(wasm.TrapIntegerDivideByZero)
	}
	if a == math.MinInt32 && b == -1 {
		return 0, nil
	}
	return a % b, nil
}

func i32RemU(a, b uint32) (uint32, *wasm.Trap) {
	if b == 0 {
		return 0, wasm.NewTrap(wasm.TrapIntegerDivideByZero)
	}
	return a % b, nil
}

func i64DivS(a, b int64) (int64, *wasm.Trap) {
	if b == 0 {
		return 0, wasm.NewTrap(wasm.TrapIntegerDivideByZero)
	}
	if a == math.MinInt64 && b == -1 {
		return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
	}
	return a / b, nil
}

func i64DivU(a, b uint64) (uint64, *wasm.Trap) {
	if b == 0 {
		return 0, wasm.NewTrap(wasm.TrapIntegerDivideByZero)
	}
	return a / b, nil
}

func i64RemS(a, b int64) (int64, *wasm.Trap) {
	if b == 0 {
		return 0, wasm.NewTrap(wasm.TrapIntegerDivideByZero)
	}
	if a == math.MinInt64 && b == -1 {
		return 0, nil
	}
	return a % b, nil
}

func i64RemU(a, b uint64) (uint64, *wasm.Trap) {
	if b == 0 {
		return 0, wasm.NewTrap(wasm.TrapIntegerDivideByZero)
	}
	return a % b, nil
}

func rotl32(v uint32, n uint32) uint32 { return bits.RotateLeft32(v, int(n&31)) }
func rotr32(v uint32, n uint32) uint32 { return bits.RotateLeft32(v, -int(n&31)) }
func rotl64(v uint64, n uint64) uint64 { return bits.RotateLeft64(v, int(n&63)) }
func rotr64(v uint64, n uint64) uint64 { return bits.RotateLeft64(v, -int(n&63)) }

// --- float arithmetic shared helper: min/max with signed-zero and NaN
// ordering per the specification (-0.0 < +0.0; any NaN input yields a
// canonical NaN result). ---

func f32Min(a, b float32) float32 {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return ieee754.CanonicalNaN32
	}
	if a == 0 && b == 0 {
		if math.Signbit(float64(a)) || math.Signbit(float64(b)) {
			return float32(math.Copysign(0, -1))
		}
		return 0
	}
	if a < b {
		return a
	}
	return b
}

func f32Max(a, b float32) float32 {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return ieee754.CanonicalNaN32
	}
	if a == 0 && b == 0 {
		if !math.Signbit(float64(a)) || !math.Signbit(float64(b)) {
			return 0
		}
		return float32(math.Copysign(0, -1))
	}
	if a > b {
		return a
	}
	return b
}

func f64Min(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return ieee754.CanonicalNaN64
	}
	if a == 0 && b == 0 {
		if math.Signbit(a) || math.Signbit(b) {
			return math.Copysign(0, -1)
		}
		return 0
	}
	if a < b {
		return a
	}
	return b
}

func f64Max(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return ieee754.CanonicalNaN64
	}
	if a == 0 && b == 0 {
		if !math.Signbit(a) || !math.Signbit(b) {
			return 0
		}
		return math.Copysign(0, -1)
	}
	if a > b {
		return a
	}
	return b
}

func f32Nearest(v float32) float32 { return float32(math.RoundToEven(float64(v))) }
func f64Nearest(v float64) float64 { return math.RoundToEven(v) }

// execNumeric evaluates the scalar numeric and comparison instructions
// (spec.md §4.7) whose operand width never exceeds 64 bits: integer
// wrapping arithmetic, trapping division/remainder, bitwise/shift/
// rotate, clz/ctz/popcnt, sign extension, comparisons, and IEEE-754
// float arithmetic. Conversions, including the saturating trunc_sat
// family, are handled by execConvert. Returns (handled, trap).
func (e *Engine) execNumeric(op wasm.Opcode, st *operandStack) (bool, *wasm.Trap) {
	switch op {
	// i32 comparisons
	case wasm.OpI32Eqz:
		st.push(b2u(st.pop() == 0))
	case wasm.OpI32Eq:
		b, a := st.pop(), st.pop()
		st.push(b2u(uint32(a) == uint32(b)))
	case wasm.OpI32Ne:
		b, a := st.pop(), st.pop()
		st.push(b2u(uint32(a) != uint32(b)))
	case wasm.OpI32LtS:
		b, a := st.pop(), st.pop()
		st.push(b2u(int32(a) < int32(b)))
	case wasm.OpI32LtU:
		b, a := st.pop(), st.pop()
		st.push(b2u(uint32(a) < uint32(b)))
	case wasm.OpI32GtS:
		b, a := st.pop(), st.pop()
		st.push(b2u(int32(a) > int32(b)))
	case wasm.OpI32GtU:
		b, a := st.pop(), st.pop()
		st.push(b2u(uint32(a) > uint32(b)))
	case wasm.OpI32LeS:
		b, a := st.pop(), st.pop()
		st.push(b2u(int32(a) <= int32(b)))
	case wasm.OpI32LeU:
		b, a := st.pop(), st.pop()
		st.push(b2u(uint32(a) <= uint32(b)))
	case wasm.OpI32GeS:
		b, a := st.pop(), st.pop()
		st.push(b2u(int32(a) >= int32(b)))
	case wasm.OpI32GeU:
		b, a := st.pop(), st.pop()
		st.push(b2u(uint32(a) >= uint32(b)))

	// i64 comparisons
	case wasm.OpI64Eqz:
		st.push(b2u(st.pop() == 0))
	case wasm.OpI64Eq:
		b, a := st.pop(), st.pop()
		st.push(b2u(a == b))
	case wasm.OpI64Ne:
		b, a := st.pop(), st.pop()
		st.push(b2u(a != b))
	case wasm.OpI64LtS:
		b, a := st.pop(), st.pop()
		st.push(b2u(int64(a) < int64(b)))
	case wasm.OpI64LtU:
		b, a := st.pop(), st.pop()
		st.push(b2u(a < b))
	case wasm.OpI64GtS:
		b, a := st.pop(), st.pop()
		st.push(b2u(int64(a) > int64(b)))
	case wasm.OpI64GtU:
		b, a := st.pop(), st.pop()
		st.push(b2u(a > b))
	case wasm.OpI64LeS:
		b, a := st.pop(), st.pop()
		st.push(b2u(int64(a) <= int64(b)))
	case wasm.OpI64LeU:
		b, a := st.pop(), st.pop()
		st.push(b2u(a <= b))
	case wasm.OpI64GeS:
		b, a := st.pop(), st.pop()
		st.push(b2u(int64(a) >= int64(b)))
	case wasm.OpI64GeU:
		b, a := st.pop(), st.pop()
		st.push(b2u(a >= b))

	// f32/f64 comparisons
	case wasm.OpF32Eq:
		b, a := popF32(st), popF32(st)
		st.push(b2u(a == b))
	case wasm.OpF32Ne:
		b, a := popF32(st), popF32(st)
		st.push(b2u(a != b))
	case wasm.OpF32Lt:
		b, a := popF32(st), popF32(st)
		st.push(b2u(a < b))
	case wasm.OpF32Gt:
		b, a := popF32(st), popF32(st)
		st.push(b2u(a > b))
	case wasm.OpF32Le:
		b, a := popF32(st), popF32(st)
		st.push(b2u(a <= b))
	case wasm.OpF32Ge:
		b, a := popF32(st), popF32(st)
		st.push(b2u(a >= b))
	case wasm.OpF64Eq:
		b, a := popF64(st), popF64(st)
		st.push(b2u(a == b))
	case wasm.OpF64Ne:
		b, a := popF64(st), popF64(st)
		st.push(b2u(a != b))
	case wasm.OpF64Lt:
		b, a := popF64(st), popF64(st)
		st.push(b2u(a < b))
	case wasm.OpF64Gt:
		b, a := popF64(st), popF64(st)
		st.push(b2u(a > b))
	case wasm.OpF64Le:
		b, a := popF64(st), popF64(st)
		st.push(b2u(a <= b))
	case wasm.OpF64Ge:
		b, a := popF64(st), popF64(st)
		st.push(b2u(a >= b))

	// i32 arithmetic
	case wasm.OpI32Clz:
		st.push(uint64(bits.LeadingZeros32(uint32(st.pop()))))
	case wasm.OpI32Ctz:
		st.push(uint64(bits.TrailingZeros32(uint32(st.pop()))))
	case wasm.OpI32Popcnt:
		st.push(uint64(bits.OnesCount32(uint32(st.pop()))))
	case wasm.OpI32Add:
		b, a := st.pop(), st.pop()
		st.push(uint64(uint32(a) + uint32(b)))
	case wasm.OpI32Sub:
		b, a := st.pop(), st.pop()
		st.push(uint64(uint32(a) - uint32(b)))
	case wasm.OpI32Mul:
		b, a := st.pop(), st.pop()
		st.push(uint64(uint32(a) * uint32(b)))
	case wasm.OpI32DivS:
		b, a := int32(uint32(st.pop())), int32(uint32(st.pop()))
		v, trap := i32DivS(a, b)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(uint32(v)))
	case wasm.OpI32DivU:
		b, a := uint32(st.pop()), uint32(st.pop())
		v, trap := i32DivU(a, b)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))
	case wasm.OpI32RemS:
		b, a := int32(uint32(st.pop())), int32(uint32(st.pop()))
		v, trap := i32RemS(a, b)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(uint32(v)))
	case wasm.OpI32RemU:
		b, a := uint32(st.pop()), uint32(st.pop())
		v, trap := i32RemU(a, b)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))
	case wasm.OpI32And:
		b, a := st.pop(), st.pop()
		st.push(uint64(uint32(a) & uint32(b)))
	case wasm.OpI32Or:
		b, a := st.pop(), st.pop()
		st.push(uint64(uint32(a) | uint32(b)))
	case wasm.OpI32Xor:
		b, a := st.pop(), st.pop()
		st.push(uint64(uint32(a) ^ uint32(b)))
	case wasm.OpI32Shl:
		b, a := st.pop(), st.pop()
		st.push(uint64(uint32(a) << (uint32(b) & 31)))
	case wasm.OpI32ShrS:
		b, a := st.pop(), st.pop()
		st.push(uint64(uint32(int32(uint32(a)) >> (uint32(b) & 31))))
	case wasm.OpI32ShrU:
		b, a := st.pop(), st.pop()
		st.push(uint64(uint32(a) >> (uint32(b) & 31)))
	case wasm.OpI32Rotl:
		b, a := st.pop(), st.pop()
		st.push(uint64(rotl32(uint32(a), uint32(b))))
	case wasm.OpI32Rotr:
		b, a := st.pop(), st.pop()
		st.push(uint64(rotr32(uint32(a), uint32(b))))

	// i64 arithmetic
	case wasm.OpI64Clz:
		st.push(uint64(bits.LeadingZeros64(st.pop())))
	case wasm.OpI64Ctz:
		st.push(uint64(bits.TrailingZeros64(st.pop())))
	case wasm.OpI64Popcnt:
		st.push(uint64(bits.OnesCount64(st.pop())))
	case wasm.OpI64Add:
		b, a := st.pop(), st.pop()
		st.push(a + b)
	case wasm.OpI64Sub:
		b, a := st.pop(), st.pop()
		st.push(a - b)
	case wasm.OpI64Mul:
		b, a := st.pop(), st.pop()
		st.push(a * b)
	case wasm.OpI64DivS:
		b, a := int64(st.pop()), int64(st.pop())
		v, trap := i64DivS(a, b)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))
	case wasm.OpI64DivU:
		b, a := st.pop(), st.pop()
		v, trap := i64DivU(a, b)
		if trap != nil {
			return true, trap
		}
		st.push(v)
	case wasm.OpI64RemS:
		b, a := int64(st.pop()), int64(st.pop())
		v, trap := i64RemS(a, b)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))
	case wasm.OpI64RemU:
		b, a := st.pop(), st.pop()
		v, trap := i64RemU(a, b)
		if trap != nil {
			return true, trap
		}
		st.push(v)
	case wasm.OpI64And:
		b, a := st.pop(), st.pop()
		st.push(a & b)
	case wasm.OpI64Or:
		b, a := st.pop(), st.pop()
		st.push(a | b)
	case wasm.OpI64Xor:
		b, a := st.pop(), st.pop()
		st.push(a ^ b)
	case wasm.OpI64Shl:
		b, a := st.pop(), st.pop()
		st.push(a << (b & 63))
	case wasm.OpI64ShrS:
		b, a := st.pop(), st.pop()
		st.push(uint64(int64(a) >> (b & 63)))
	case wasm.OpI64ShrU:
		b, a := st.pop(), st.pop()
		st.push(a >> (b & 63))
	case wasm.OpI64Rotl:
		b, a := st.pop(), st.pop()
		st.push(rotl64(a, b))
	case wasm.OpI64Rotr:
		b, a := st.pop(), st.pop()
		st.push(rotr64(a, b))

	// f32 arithmetic
	case wasm.OpF32Abs:
		pushF32(st, float32(math.Abs(float64(popF32(st)))))
	case wasm.OpF32Neg:
		pushF32(st, -popF32(st))
	case wasm.OpF32Ceil:
		v := popF32(st)
		pushF32(st, f32Arith(float32(math.Ceil(float64(v))), v))
	case wasm.OpF32Floor:
		v := popF32(st)
		pushF32(st, f32Arith(float32(math.Floor(float64(v))), v))
	case wasm.OpF32Trunc:
		v := popF32(st)
		pushF32(st, f32Arith(float32(math.Trunc(float64(v))), v))
	case wasm.OpF32Nearest:
		v := popF32(st)
		pushF32(st, f32Arith(f32Nearest(v), v))
	case wasm.OpF32Sqrt:
		v := popF32(st)
		pushF32(st, f32Arith(float32(math.Sqrt(float64(v))), v))
	case wasm.OpF32Add:
		b, a := popF32(st), popF32(st)
		pushF32(st, f32Arith(a+b, a, b))
	case wasm.OpF32Sub:
		b, a := popF32(st), popF32(st)
		pushF32(st, f32Arith(a-b, a, b))
	case wasm.OpF32Mul:
		b, a := popF32(st), popF32(st)
		pushF32(st, f32Arith(a*b, a, b))
	case wasm.OpF32Div:
		b, a := popF32(st), popF32(st)
		pushF32(st, f32Arith(a/b, a, b))
	case wasm.OpF32Min:
		b, a := popF32(st), popF32(st)
		pushF32(st, f32Min(a, b))
	case wasm.OpF32Max:
		b, a := popF32(st), popF32(st)
		pushF32(st, f32Max(a, b))
	case wasm.OpF32Copysign:
		b, a := popF32(st), popF32(st)
		pushF32(st, float32(math.Copysign(float64(a), float64(b))))

	// f64 arithmetic
	case wasm.OpF64Abs:
		pushF64(st, math.Abs(popF64(st)))
	case wasm.OpF64Neg:
		pushF64(st, -popF64(st))
	case wasm.OpF64Ceil:
		v := popF64(st)
		pushF64(st, f64Arith(math.Ceil(v), v))
	case wasm.OpF64Floor:
		v := popF64(st)
		pushF64(st, f64Arith(math.Floor(v), v))
	case wasm.OpF64Trunc:
		v := popF64(st)
		pushF64(st, f64Arith(math.Trunc(v), v))
	case wasm.OpF64Nearest:
		v := popF64(st)
		pushF64(st, f64Arith(f64Nearest(v), v))
	case wasm.OpF64Sqrt:
		v := popF64(st)
		pushF64(st, f64Arith(math.Sqrt(v), v))
	case wasm.OpF64Add:
		b, a := popF64(st), popF64(st)
		pushF64(st, f64Arith(a+b, a, b))
	case wasm.OpF64Sub:
		b, a := popF64(st), popF64(st)
		pushF64(st, f64Arith(a-b, a, b))
	case wasm.OpF64Mul:
		b, a := popF64(st), popF64(st)
		pushF64(st, f64Arith(a*b, a, b))
	case wasm.OpF64Div:
		b, a := popF64(st), popF64(st)
		pushF64(st, f64Arith(a/b, a, b))
	case wasm.OpF64Min:
		b, a := popF64(st), popF64(st)
		pushF64(st, f64Min(a, b))
	case wasm.OpF64Max:
		b, a := popF64(st), popF64(st)
		pushF64(st, f64Max(a, b))
	case wasm.OpF64Copysign:
		b, a := popF64(st), popF64(st)
		pushF64(st, math.Copysign(a, b))

	// sign extension
	case wasm.OpI32Extend8S:
		st.push(uint64(uint32(int32(int8(uint32(st.pop()))))))
	case wasm.OpI32Extend16S:
		st.push(uint64(uint32(int32(int16(uint32(st.pop()))))))
	case wasm.OpI64Extend8S:
		st.push(uint64(int64(int8(st.pop()))))
	case wasm.OpI64Extend16S:
		st.push(uint64(int64(int16(st.pop()))))
	case wasm.OpI64Extend32S:
		st.push(uint64(int64(int32(st.pop()))))

	default:
		return false, nil
	}
	return true, nil
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func popF32(st *operandStack) float32 { return math.Float32frombits(uint32(st.pop())) }
func popF64(st *operandStack) float64 { return math.Float64frombits(st.pop()) }
func pushF32(st *operandStack, v float32) { st.push(uint64(math.Float32bits(v))) }
func pushF64(st *operandStack, v float64) { st.push(math.Float64bits(v)) }
