package binary

import "github.com/tinywasm/tinywasm/wasm"

// decodeOpcode reads one primary opcode byte, resolving the 0xFC and
// 0xFD prefixes into their flat secondary-opcode Opcode range. 0xFE is
// reserved and always malformed.
func decodeOpcode(r *reader) (wasm.Opcode, int, error) {
	off := r.offset()
	b, err := r.byte()
	if err != nil {
		return 0, off, err
	}
	switch b {
	case 0xFC:
		sub, err := r.varU32()
		if err != nil {
			return 0, off, err
		}
		return wasm.MiscOp(sub), off, nil
	case 0xFD:
		sub, err := r.varU32()
		if err != nil {
			return 0, off, err
		}
		return wasm.SimdOp(sub), off, nil
	case 0xFE:
		return 0, off, r.errAt(off, wasm.DecodeUnknownOpcode, nil)
	default:
		return wasm.Opcode(b), off, nil
	}
}

func decodeMemArg(r *reader) (wasm.MemArg, error) {
	align, err := r.varU32()
	if err != nil {
		return wasm.MemArg{}, err
	}
	offset, err := r.varU32()
	if err != nil {
		return wasm.MemArg{}, err
	}
	return wasm.MemArg{Align: align, Offset: offset}, nil
}

func decodeV128Bytes(r *reader) ([16]byte, error) {
	var v [16]byte
	b, err := r.bytes(16)
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}
