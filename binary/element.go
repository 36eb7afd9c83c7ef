package binary

import "github.com/tinywasm/tinywasm/wasm"

// decodeElemKind decodes the single-byte "elemkind" used by the
// func-index shorthand element-segment encodings; only funcref exists
// today.
func decodeElemKind(r *reader) (wasm.RefType, error) {
	off := r.offset()
	b, err := r.byte()
	if err != nil {
		return 0, err
	}
	if b != 0x00 {
		return 0, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	return wasm.ValueTypeFuncref, nil
}

func decodeFuncIndexVecAsInit(r *reader) ([][]wasm.Instruction, error) {
	n, err := r.varU32()
	if err != nil {
		return nil, err
	}
	out := make([][]wasm.Instruction, n)
	for i := range out {
		idx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		out[i] = []wasm.Instruction{
			{Op: wasm.OpRefFunc, Imm: wasm.ImmIndex{Index: idx}, ElseIndex: -1, EndIndex: -1},
			{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
		}
	}
	return out, nil
}

func decodeExprVec(r *reader) ([][]wasm.Instruction, error) {
	n, err := r.varU32()
	if err != nil {
		return nil, err
	}
	out := make([][]wasm.Instruction, n)
	for i := range out {
		out[i], err = decodeConstExpr(r)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decodeElement decodes one element-segment entry. The binary format
// defines eight flag combinations (0-7) layering active/passive/
// declarative mode, an explicit table index, and either the legacy
// func-index shorthand or general reference-producing init expressions.
func decodeElement(r *reader) (*wasm.ElementSegment, error) {
	off := r.offset()
	flags, err := r.varU32()
	if err != nil {
		return nil, err
	}

	seg := &wasm.ElementSegment{RefType: wasm.ValueTypeFuncref}

	switch flags {
	case 0:
		seg.Mode = wasm.ElementModeActive
		seg.OffsetExpr, err = decodeConstExpr(r)
		if err != nil {
			return nil, err
		}
		seg.Init, err = decodeFuncIndexVecAsInit(r)
	case 1:
		seg.Mode = wasm.ElementModePassive
		seg.RefType, err = decodeElemKind(r)
		if err != nil {
			return nil, err
		}
		seg.Init, err = decodeFuncIndexVecAsInit(r)
	case 2:
		seg.Mode = wasm.ElementModeActive
		seg.TableIndex, err = r.varU32()
		if err != nil {
			return nil, err
		}
		seg.OffsetExpr, err = decodeConstExpr(r)
		if err != nil {
			return nil, err
		}
		seg.RefType, err = decodeElemKind(r)
		if err != nil {
			return nil, err
		}
		seg.Init, err = decodeFuncIndexVecAsInit(r)
	case 3:
		seg.Mode = wasm.ElementModeDeclarative
		seg.RefType, err = decodeElemKind(r)
		if err != nil {
			return nil, err
		}
		seg.Init, err = decodeFuncIndexVecAsInit(r)
	case 4:
		seg.Mode = wasm.ElementModeActive
		seg.OffsetExpr, err = decodeConstExpr(r)
		if err != nil {
			return nil, err
		}
		seg.Init, err = decodeExprVec(r)
	case 5:
		seg.Mode = wasm.ElementModePassive
		seg.RefType, err = r.refType()
		if err != nil {
			return nil, err
		}
		seg.Init, err = decodeExprVec(r)
	case 6:
		seg.Mode = wasm.ElementModeActive
		seg.TableIndex, err = r.varU32()
		if err != nil {
			return nil, err
		}
		seg.OffsetExpr, err = decodeConstExpr(r)
		if err != nil {
			return nil, err
		}
		seg.RefType, err = r.refType()
		if err != nil {
			return nil, err
		}
		seg.Init, err = decodeExprVec(r)
	case 7:
		seg.Mode = wasm.ElementModeDeclarative
		seg.RefType, err = r.refType()
		if err != nil {
			return nil, err
		}
		seg.Init, err = decodeExprVec(r)
	default:
		return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	if err != nil {
		return nil, err
	}
	return seg, nil
}
