package binary

import "github.com/tinywasm/tinywasm/wasm"

// decodeConstExpr decodes a restricted constant expression: the
// initializer of a global, and the offset expression of an active
// element or data segment. The binary format allows the full
// instruction encoding here, but only a small admitted set of opcodes
// is well-formed; decodeExpr decodes the bytes and this wrapper rejects
// anything else as malformed rather than deferring to validation.
func decodeConstExpr(r *reader) ([]wasm.Instruction, error) {
	off := r.offset()
	expr, err := decodeExpr(r)
	if err != nil {
		return nil, err
	}
	for _, instr := range expr {
		switch instr.Op {
		case wasm.OpI32Const, wasm.OpI64Const, wasm.OpF32Const, wasm.OpF64Const, wasm.OpV128Const,
			wasm.OpRefNull, wasm.OpRefFunc, wasm.OpGlobalGet, wasm.OpEnd:
		default:
			return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
		}
	}
	return expr, nil
}
