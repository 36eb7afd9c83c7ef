package instance

import (
	"encoding/binary"
	"math"

	"github.com/tinywasm/tinywasm/wasm"
)

// evalConstExpr evaluates a restricted constant expression against a
// partially built module instance. For global initializers only the
// imported functions are in FuncAddrs yet (local functions are
// allocated after globals); for segment expressions every function is.
// It is deliberately independent of the
// interpreter: the admitted opcode set is small enough, and different
// enough in its evaluation rules (no locals, no control flow, globals
// addressed only within the imported prefix), that folding it into the general
// instruction dispatcher would obscure more than it would share.
func evalConstExpr(store *Store, mi *ModuleInstance, expr []wasm.Instruction) ([2]uint64, error) {
	var stack [][2]uint64
	for _, instr := range expr {
		switch instr.Op {
		case wasm.OpI32Const:
			v := instr.Imm.(wasm.ImmI32)
			stack = append(stack, [2]uint64{uint64(uint32(v.V)), 0})

		case wasm.OpI64Const:
			v := instr.Imm.(wasm.ImmI64)
			stack = append(stack, [2]uint64{uint64(v.V), 0})

		case wasm.OpF32Const:
			v := instr.Imm.(wasm.ImmF32)
			stack = append(stack, [2]uint64{uint64(math.Float32bits(v.V)), 0})

		case wasm.OpF64Const:
			v := instr.Imm.(wasm.ImmF64)
			stack = append(stack, [2]uint64{math.Float64bits(v.V), 0})

		case wasm.OpV128Const:
			v := instr.Imm.(wasm.ImmV128)
			lo := binary.LittleEndian.Uint64(v.V[0:8])
			hi := binary.LittleEndian.Uint64(v.V[8:16])
			stack = append(stack, [2]uint64{lo, hi})

		case wasm.OpRefNull:
			stack = append(stack, [2]uint64{0, 0})

		case wasm.OpRefFunc:
			idx := instr.Imm.(wasm.ImmIndex).Index
			if int(idx) >= len(mi.FuncAddrs) {
				return [2]uint64{}, &wasm.LinkError{Code: wasm.LinkInvalidGlobalInitializer}
			}
			stack = append(stack, [2]uint64{uint64(mi.FuncAddrs[idx]) + 1, 0})

		case wasm.OpGlobalGet:
			idx := instr.Imm.(wasm.ImmIndex).Index
			// Constant expressions may only reference a previously
			// resolved *imported* global, never one declared locally
			// earlier in the same module's global section.
			if int(idx) >= mi.ImportedGlobalCount {
				return [2]uint64{}, &wasm.LinkError{Code: wasm.LinkInvalidGlobalInitializer}
			}
			g := store.Globals[mi.GlobalAddrs[idx]]
			if g.Type.Mutable {
				return [2]uint64{}, &wasm.LinkError{Code: wasm.LinkInvalidGlobalInitializer}
			}
			stack = append(stack, g.Value)

		case wasm.OpEnd:

		default:
			return [2]uint64{}, &wasm.LinkError{Code: wasm.LinkInvalidGlobalInitializer}
		}
	}
	if len(stack) != 1 {
		return [2]uint64{}, &wasm.LinkError{Code: wasm.LinkInvalidGlobalInitializer}
	}
	return stack[0], nil
}
