package vm

import (
	"math"

	"github.com/tinywasm/tinywasm/wasm"
)

// truncF32ToI32 implements the trapping i32.trunc_f32_s/u family: NaN,
// infinity, or a magnitude outside the target range all trap rather
// than producing an implementation-defined bit pattern.
func truncF32ToI32(v float32, signed bool) (int32, *wasm.Trap) {
	f := float64(v)
	if math.IsNaN(f) {
		return 0, wasm.NewTrap(wasm.TrapInvalidConversionToInteger)
	}
	t := math.Trunc(f)
	if signed {
		if t < -2147483648 || t >= 2147483648 {
			return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
		}
		return int32(t), nil
	}
	if t < 0 || t >= 4294967296 {
		return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
	}
	return int32(uint32(t)), nil
}

func truncF64ToI32(v float64, signed bool) (int32, *wasm.Trap) {
	if math.IsNaN(v) {
		return 0, wasm.NewTrap(wasm.TrapInvalidConversionToInteger)
	}
	t := math.Trunc(v)
	if signed {
		if t < -2147483648 || t >= 2147483648 {
			return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
		}
		return int32(t), nil
	}
	if t < 0 || t >= 4294967296 {
		return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
	}
	return int32(uint32(t)), nil
}

func truncF32ToI64(v float32, signed bool) (int64, *wasm.Trap) {
	f := float64(v)
	if math.IsNaN(f) {
		return 0, wasm.NewTrap(wasm.TrapInvalidConversionToInteger)
	}
	t := math.Trunc(f)
	if signed {
		if t < -9223372036854775808 || t >= 9223372036854775808 {
			return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
		}
		return int64(t), nil
	}
	if t < 0 || t >= 18446744073709551616 {
		return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
	}
	return int64(uint64(t)), nil
}

func truncF64ToI64(v float64, signed bool) (int64, *wasm.Trap) {
	if math.IsNaN(v) {
		return 0, wasm.NewTrap(wasm.TrapInvalidConversionToInteger)
	}
	t := math.Trunc(v)
	if signed {
		if t < -9223372036854775808 || t >= 9223372036854775808 {
			return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
		}
		return int64(t), nil
	}
	if t < 0 || t >= 18446744073709551616 {
		return 0, wasm.NewTrap(wasm.TrapIntegerOverflow)
	}
	return int64(uint64(t)), nil
}

// truncSatToI32 saturates instead of trapping: NaN maps to 0, out-of-range
// magnitudes clamp to the representable extreme.
func truncSatToI32(t float64, signed bool) int32 {
	if math.IsNaN(t) {
		return 0
	}
	t = math.Trunc(t)
	if signed {
		if t <= -2147483648 {
			return math.MinInt32
		}
		if t >= 2147483648 {
			return math.MaxInt32
		}
		return int32(t)
	}
	if t <= 0 {
		return 0
	}
	if t >= 4294967296 {
		var m uint32 = math.MaxUint32
		return int32(m)
	}
	return int32(uint32(t))
}

func truncSatToI64(t float64, signed bool) int64 {
	if math.IsNaN(t) {
		return 0
	}
	t = math.Trunc(t)
	if signed {
		if t <= -9223372036854775808 {
			return math.MinInt64
		}
		if t >= 9223372036854775808 {
			return math.MaxInt64
		}
		return int64(t)
	}
	if t <= 0 {
		return 0
	}
	if t >= 18446744073709551616 {
		var m uint64 = math.MaxUint64
		return int64(m)
	}
	return int64(uint64(t))
}

// execConvert evaluates the conversion, reinterpret, and saturating
// truncation instruction families. Returns (handled, trap).
func (e *Engine) execConvert(op wasm.Opcode, st *operandStack) (bool, *wasm.Trap) {
	switch op {
	case wasm.OpI32WrapI64:
		st.push(uint64(uint32(st.pop())))

	case wasm.OpI32TruncF32S, wasm.OpI32TruncF32U:
		v, trap := truncF32ToI32(popF32(st), op == wasm.OpI32TruncF32S)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(uint32(v)))
	case wasm.OpI32TruncF64S, wasm.OpI32TruncF64U:
		v, trap := truncF64ToI32(popF64(st), op == wasm.OpI32TruncF64S)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(uint32(v)))

	case wasm.OpI64ExtendI32S:
		st.push(uint64(int64(int32(uint32(st.pop())))))
	case wasm.OpI64ExtendI32U:
		st.push(uint64(uint32(st.pop())))

	case wasm.OpI64TruncF32S, wasm.OpI64TruncF32U:
		v, trap := truncF32ToI64(popF32(st), op == wasm.OpI64TruncF32S)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))
	case wasm.OpI64TruncF64S, wasm.OpI64TruncF64U:
		v, trap := truncF64ToI64(popF64(st), op == wasm.OpI64TruncF64S)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))

	case wasm.OpF32ConvertI32S:
		pushF32(st, float32(int32(uint32(st.pop()))))
	case wasm.OpF32ConvertI32U:
		pushF32(st, float32(uint32(st.pop())))
	case wasm.OpF32ConvertI64S:
		pushF32(st, float32(int64(st.pop())))
	case wasm.OpF32ConvertI64U:
		pushF32(st, float32(st.pop()))
	case wasm.OpF32DemoteF64:
		pushF32(st, canonNaN32(float32(popF64(st))))

	case wasm.OpF64ConvertI32S:
		pushF64(st, float64(int32(uint32(st.pop()))))
	case wasm.OpF64ConvertI32U:
		pushF64(st, float64(uint32(st.pop())))
	case wasm.OpF64ConvertI64S:
		pushF64(st, float64(int64(st.pop())))
	case wasm.OpF64ConvertI64U:
		pushF64(st, float64(st.pop()))
	case wasm.OpF64PromoteF32:
		pushF64(st, canonNaN64(float64(popF32(st))))

	case wasm.OpI32ReinterpretF32:
		st.push(uint64(uint32(st.pop()))) // bit pattern already matches
	case wasm.OpI64ReinterpretF64:
		// no-op: f64 and i64 share the same 64-bit slot representation
	case wasm.OpF32ReinterpretI32:
		st.push(uint64(uint32(st.pop())))
	case wasm.OpF64ReinterpretI64:
		// no-op: same bit pattern

	case wasm.OpI32TruncSatF32S:
		st.push(uint64(uint32(truncSatToI32(float64(popF32(st)), true))))
	case wasm.OpI32TruncSatF32U:
		st.push(uint64(uint32(truncSatToI32(float64(popF32(st)), false))))
	case wasm.OpI32TruncSatF64S:
		st.push(uint64(uint32(truncSatToI32(popF64(st), true))))
	case wasm.OpI32TruncSatF64U:
		st.push(uint64(uint32(truncSatToI32(popF64(st), false))))
	case wasm.OpI64TruncSatF32S:
		st.push(uint64(truncSatToI64(float64(popF32(st)), true)))
	case wasm.OpI64TruncSatF32U:
		st.push(uint64(truncSatToI64(float64(popF32(st)), false)))
	case wasm.OpI64TruncSatF64S:
		st.push(uint64(truncSatToI64(popF64(st), true)))
	case wasm.OpI64TruncSatF64U:
		st.push(uint64(truncSatToI64(popF64(st), false)))

	default:
		return false, nil
	}
	return true, nil
}
