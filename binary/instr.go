package binary

import "github.com/tinywasm/tinywasm/wasm"

// decodeExpr decodes a sequence of instructions terminated by the end
// opcode that closes the expression's own implicit top-level block
// (used for function bodies and for restricted constant expressions).
// Nested block/loop/if are resolved to their matching else/end index in
// the same pass, so the interpreter never has to re-scan a function's
// instruction stream to find a branch target.
func decodeExpr(r *reader) ([]wasm.Instruction, error) {
	var out []wasm.Instruction
	var open []int // indices into out of unmatched block/loop/if

	for {
		off := r.offset()
		op, _, err := decodeOpcode(r)
		if err != nil {
			return nil, err
		}

		switch op {
		case wasm.OpBlock, wasm.OpLoop, wasm.OpIf:
			bt, err := decodeBlockType(r)
			if err != nil {
				return nil, err
			}
			out = append(out, wasm.Instruction{Op: op, Imm: wasm.ImmBlock{Type: bt}, ElseIndex: -1, EndIndex: -1})
			open = append(open, len(out)-1)

		case wasm.OpElse:
			if len(open) == 0 {
				return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
			}
			top := open[len(open)-1]
			if out[top].Op != wasm.OpIf {
				return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
			}
			out[top].ElseIndex = len(out)
			out = append(out, wasm.Instruction{Op: op, ElseIndex: -1, EndIndex: -1})

		case wasm.OpEnd:
			out = append(out, wasm.Instruction{Op: op, ElseIndex: -1, EndIndex: -1})
			if len(open) == 0 {
				return out, nil
			}
			top := open[len(open)-1]
			open = open[:len(open)-1]
			out[top].EndIndex = len(out) - 1

		default:
			imm, err := decodeImmediate(r, op, off)
			if err != nil {
				return nil, err
			}
			out = append(out, wasm.Instruction{Op: op, Imm: imm, ElseIndex: -1, EndIndex: -1})
		}
	}
}

// decodeImmediate decodes the immediate operand(s) of every opcode
// other than block/loop/if/else/end, which decodeExpr handles directly
// since their immediates interact with structured-control resolution.
func decodeImmediate(r *reader, op wasm.Opcode, off int) (any, error) {
	switch op {
	case wasm.OpUnreachable, wasm.OpNop, wasm.OpReturn,
		wasm.OpDrop, wasm.OpSelect,
		wasm.OpRefIsNull,
		wasm.OpI32Eqz, wasm.OpI32Eq, wasm.OpI32Ne, wasm.OpI32LtS, wasm.OpI32LtU,
		wasm.OpI32GtS, wasm.OpI32GtU, wasm.OpI32LeS, wasm.OpI32LeU, wasm.OpI32GeS, wasm.OpI32GeU,
		wasm.OpI64Eqz, wasm.OpI64Eq, wasm.OpI64Ne, wasm.OpI64LtS, wasm.OpI64LtU,
		wasm.OpI64GtS, wasm.OpI64GtU, wasm.OpI64LeS, wasm.OpI64LeU, wasm.OpI64GeS, wasm.OpI64GeU,
		wasm.OpF32Eq, wasm.OpF32Ne, wasm.OpF32Lt, wasm.OpF32Gt, wasm.OpF32Le, wasm.OpF32Ge,
		wasm.OpF64Eq, wasm.OpF64Ne, wasm.OpF64Lt, wasm.OpF64Gt, wasm.OpF64Le, wasm.OpF64Ge,
		wasm.OpI32Clz, wasm.OpI32Ctz, wasm.OpI32Popcnt, wasm.OpI32Add, wasm.OpI32Sub, wasm.OpI32Mul,
		wasm.OpI32DivS, wasm.OpI32DivU, wasm.OpI32RemS, wasm.OpI32RemU,
		wasm.OpI32And, wasm.OpI32Or, wasm.OpI32Xor, wasm.OpI32Shl, wasm.OpI32ShrS, wasm.OpI32ShrU,
		wasm.OpI32Rotl, wasm.OpI32Rotr,
		wasm.OpI64Clz, wasm.OpI64Ctz, wasm.OpI64Popcnt, wasm.OpI64Add, wasm.OpI64Sub, wasm.OpI64Mul,
		wasm.OpI64DivS, wasm.OpI64DivU, wasm.OpI64RemS, wasm.OpI64RemU,
		wasm.OpI64And, wasm.OpI64Or, wasm.OpI64Xor, wasm.OpI64Shl, wasm.OpI64ShrS, wasm.OpI64ShrU,
		wasm.OpI64Rotl, wasm.OpI64Rotr,
		wasm.OpF32Abs, wasm.OpF32Neg, wasm.OpF32Ceil, wasm.OpF32Floor, wasm.OpF32Trunc, wasm.OpF32Nearest,
		wasm.OpF32Sqrt, wasm.OpF32Add, wasm.OpF32Sub, wasm.OpF32Mul, wasm.OpF32Div, wasm.OpF32Min,
		wasm.OpF32Max, wasm.OpF32Copysign,
		wasm.OpF64Abs, wasm.OpF64Neg, wasm.OpF64Ceil, wasm.OpF64Floor, wasm.OpF64Trunc, wasm.OpF64Nearest,
		wasm.OpF64Sqrt, wasm.OpF64Add, wasm.OpF64Sub, wasm.OpF64Mul, wasm.OpF64Div, wasm.OpF64Min,
		wasm.OpF64Max, wasm.OpF64Copysign,
		wasm.OpI32WrapI64, wasm.OpI32TruncF32S, wasm.OpI32TruncF32U, wasm.OpI32TruncF64S, wasm.OpI32TruncF64U,
		wasm.OpI64ExtendI32S, wasm.OpI64ExtendI32U, wasm.OpI64TruncF32S, wasm.OpI64TruncF32U,
		wasm.OpI64TruncF64S, wasm.OpI64TruncF64U,
		wasm.OpF32ConvertI32S, wasm.OpF32ConvertI32U, wasm.OpF32ConvertI64S, wasm.OpF32ConvertI64U, wasm.OpF32DemoteF64,
		wasm.OpF64ConvertI32S, wasm.OpF64ConvertI32U, wasm.OpF64ConvertI64S, wasm.OpF64ConvertI64U, wasm.OpF64PromoteF32,
		wasm.OpI32ReinterpretF32, wasm.OpI64ReinterpretF64, wasm.OpF32ReinterpretI32, wasm.OpF64ReinterpretI64,
		wasm.OpI32Extend8S, wasm.OpI32Extend16S, wasm.OpI64Extend8S, wasm.OpI64Extend16S, wasm.OpI64Extend32S,
		wasm.OpI32TruncSatF32S, wasm.OpI32TruncSatF32U, wasm.OpI32TruncSatF64S, wasm.OpI32TruncSatF64U,
		wasm.OpI64TruncSatF32S, wasm.OpI64TruncSatF32U, wasm.OpI64TruncSatF64S, wasm.OpI64TruncSatF64U:
		return nil, nil

	case wasm.OpI8x16Swizzle,
		wasm.OpI8x16Splat, wasm.OpI16x8Splat, wasm.OpI32x4Splat, wasm.OpI64x2Splat, wasm.OpF32x4Splat, wasm.OpF64x2Splat,
		wasm.OpI8x16Eq, wasm.OpI8x16Ne, wasm.OpI8x16LtS, wasm.OpI8x16LtU, wasm.OpI8x16GtS, wasm.OpI8x16GtU,
		wasm.OpI8x16LeS, wasm.OpI8x16LeU, wasm.OpI8x16GeS, wasm.OpI8x16GeU,
		wasm.OpI16x8Eq, wasm.OpI16x8Ne, wasm.OpI16x8LtS, wasm.OpI16x8LtU, wasm.OpI16x8GtS, wasm.OpI16x8GtU,
		wasm.OpI16x8LeS, wasm.OpI16x8LeU, wasm.OpI16x8GeS, wasm.OpI16x8GeU,
		wasm.OpI32x4Eq, wasm.OpI32x4Ne, wasm.OpI32x4LtS, wasm.OpI32x4LtU, wasm.OpI32x4GtS, wasm.OpI32x4GtU,
		wasm.OpI32x4LeS, wasm.OpI32x4LeU, wasm.OpI32x4GeS, wasm.OpI32x4GeU,
		wasm.OpF32x4Eq, wasm.OpF32x4Ne, wasm.OpF32x4Lt, wasm.OpF32x4Gt, wasm.OpF32x4Le, wasm.OpF32x4Ge,
		wasm.OpF64x2Eq, wasm.OpF64x2Ne, wasm.OpF64x2Lt, wasm.OpF64x2Gt, wasm.OpF64x2Le, wasm.OpF64x2Ge,
		wasm.OpV128Not, wasm.OpV128And, wasm.OpV128AndNot, wasm.OpV128Or, wasm.OpV128Xor, wasm.OpV128Bitselect, wasm.OpV128AnyTrue,
		wasm.OpF32x4DemoteF64x2Zero, wasm.OpF64x2PromoteLowF32x4,
		wasm.OpI8x16Abs, wasm.OpI8x16Neg, wasm.OpI8x16Popcnt, wasm.OpI8x16AllTrue, wasm.OpI8x16Bitmask,
		wasm.OpI8x16NarrowI16x8S, wasm.OpI8x16NarrowI16x8U,
		wasm.OpF32x4Ceil, wasm.OpF32x4Floor, wasm.OpF32x4Trunc, wasm.OpF32x4Nearest,
		wasm.OpI8x16Shl, wasm.OpI8x16ShrS, wasm.OpI8x16ShrU, wasm.OpI8x16Add, wasm.OpI8x16AddSatS, wasm.OpI8x16AddSatU,
		wasm.OpI8x16Sub, wasm.OpI8x16SubSatS, wasm.OpI8x16SubSatU,
		wasm.OpF64x2Ceil, wasm.OpF64x2Floor,
		wasm.OpI8x16MinS, wasm.OpI8x16MinU, wasm.OpI8x16MaxS, wasm.OpI8x16MaxU,
		wasm.OpF64x2Trunc,
		wasm.OpI8x16AvgrU,
		wasm.OpI16x8ExtaddPairwiseI8x16S, wasm.OpI16x8ExtaddPairwiseI8x16U,
		wasm.OpI32x4ExtaddPairwiseI16x8S, wasm.OpI32x4ExtaddPairwiseI16x8U,
		wasm.OpI16x8Abs, wasm.OpI16x8Neg, wasm.OpI16x8Q15mulrSatS, wasm.OpI16x8AllTrue, wasm.OpI16x8Bitmask,
		wasm.OpI16x8NarrowI32x4S, wasm.OpI16x8NarrowI32x4U,
		wasm.OpI16x8ExtendLowI8x16S, wasm.OpI16x8ExtendHighI8x16S, wasm.OpI16x8ExtendLowI8x16U, wasm.OpI16x8ExtendHighI8x16U,
		wasm.OpI16x8Shl, wasm.OpI16x8ShrS, wasm.OpI16x8ShrU, wasm.OpI16x8Add, wasm.OpI16x8AddSatS, wasm.OpI16x8AddSatU,
		wasm.OpI16x8Sub, wasm.OpI16x8SubSatS, wasm.OpI16x8SubSatU,
		wasm.OpF64x2Nearest,
		wasm.OpI16x8Mul, wasm.OpI16x8MinS, wasm.OpI16x8MinU, wasm.OpI16x8MaxS, wasm.OpI16x8MaxU, wasm.OpI16x8AvgrU,
		wasm.OpI16x8ExtmulLowI8x16S, wasm.OpI16x8ExtmulHighI8x16S, wasm.OpI16x8ExtmulLowI8x16U, wasm.OpI16x8ExtmulHighI8x16U,
		wasm.OpI32x4Abs, wasm.OpI32x4Neg, wasm.OpI32x4AllTrue, wasm.OpI32x4Bitmask,
		wasm.OpI32x4ExtendLowI16x8S, wasm.OpI32x4ExtendHighI16x8S, wasm.OpI32x4ExtendLowI16x8U, wasm.OpI32x4ExtendHighI16x8U,
		wasm.OpI32x4Shl, wasm.OpI32x4ShrS, wasm.OpI32x4ShrU, wasm.OpI32x4Add, wasm.OpI32x4Sub, wasm.OpI32x4Mul,
		wasm.OpI32x4MinS, wasm.OpI32x4MinU, wasm.OpI32x4MaxS, wasm.OpI32x4MaxU, wasm.OpI32x4DotI16x8S,
		wasm.OpI32x4ExtmulLowI16x8S, wasm.OpI32x4ExtmulHighI16x8S, wasm.OpI32x4ExtmulLowI16x8U, wasm.OpI32x4ExtmulHighI16x8U,
		wasm.OpI64x2Abs, wasm.OpI64x2Neg, wasm.OpI64x2AllTrue, wasm.OpI64x2Bitmask,
		wasm.OpI64x2ExtendLowI32x4S, wasm.OpI64x2ExtendHighI32x4S, wasm.OpI64x2ExtendLowI32x4U, wasm.OpI64x2ExtendHighI32x4U,
		wasm.OpI64x2Shl, wasm.OpI64x2ShrS, wasm.OpI64x2ShrU, wasm.OpI64x2Add, wasm.OpI64x2Sub, wasm.OpI64x2Mul,
		wasm.OpI64x2Eq, wasm.OpI64x2Ne, wasm.OpI64x2LtS, wasm.OpI64x2GtS, wasm.OpI64x2LeS, wasm.OpI64x2GeS,
		wasm.OpI64x2ExtmulLowI32x4S, wasm.OpI64x2ExtmulHighI32x4S, wasm.OpI64x2ExtmulLowI32x4U, wasm.OpI64x2ExtmulHighI32x4U,
		wasm.OpF32x4Abs, wasm.OpF32x4Neg, wasm.OpF32x4Sqrt, wasm.OpF32x4Add, wasm.OpF32x4Sub, wasm.OpF32x4Mul,
		wasm.OpF32x4Div, wasm.OpF32x4Min, wasm.OpF32x4Max, wasm.OpF32x4Pmin, wasm.OpF32x4Pmax,
		wasm.OpF64x2Abs, wasm.OpF64x2Neg, wasm.OpF64x2Sqrt, wasm.OpF64x2Add, wasm.OpF64x2Sub, wasm.OpF64x2Mul,
		wasm.OpF64x2Div, wasm.OpF64x2Min, wasm.OpF64x2Max, wasm.OpF64x2Pmin, wasm.OpF64x2Pmax,
		wasm.OpI32x4TruncSatF32x4S, wasm.OpI32x4TruncSatF32x4U, wasm.OpF32x4ConvertI32x4S, wasm.OpF32x4ConvertI32x4U,
		wasm.OpI32x4TruncSatF64x2SZero, wasm.OpI32x4TruncSatF64x2UZero,
		wasm.OpF64x2ConvertLowI32x4S, wasm.OpF64x2ConvertLowI32x4U:
		return nil, nil

	case wasm.OpBr, wasm.OpBrIf:
		idx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmIndex{Index: idx}, nil

	case wasm.OpBrTable:
		n, err := r.varU32()
		if err != nil {
			return nil, err
		}
		labels := make([]uint32, n)
		for i := range labels {
			labels[i], err = r.varU32()
			if err != nil {
				return nil, err
			}
		}
		def, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmBrTable{Labels: labels, Default: def}, nil

	case wasm.OpCall:
		idx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmIndex{Index: idx}, nil

	case wasm.OpCallIndirect:
		typeIdx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		tableIdx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmCallIndirect{TypeIndex: typeIdx, TableIndex: tableIdx}, nil

	case wasm.OpRefNull:
		rt, err := r.refType()
		if err != nil {
			return nil, err
		}
		return wasm.ImmRefType{Type: rt}, nil

	case wasm.OpRefFunc:
		idx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmIndex{Index: idx}, nil

	case wasm.OpSelectTyped:
		vec, err := r.valueTypeVec()
		if err != nil {
			return nil, err
		}
		return wasm.ImmSelectTyped{Types: vec}, nil

	case wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee,
		wasm.OpGlobalGet, wasm.OpGlobalSet,
		wasm.OpTableGet, wasm.OpTableSet,
		wasm.OpMemorySize, wasm.OpMemoryGrow,
		wasm.OpDataDrop, wasm.OpMemoryFill,
		wasm.OpElemDrop, wasm.OpTableGrow, wasm.OpTableSize, wasm.OpTableFill:
		idx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmIndex{Index: idx}, nil

	case wasm.OpI32Load, wasm.OpI64Load, wasm.OpF32Load, wasm.OpF64Load,
		wasm.OpI32Load8S, wasm.OpI32Load8U, wasm.OpI32Load16S, wasm.OpI32Load16U,
		wasm.OpI64Load8S, wasm.OpI64Load8U, wasm.OpI64Load16S, wasm.OpI64Load16U,
		wasm.OpI64Load32S, wasm.OpI64Load32U,
		wasm.OpI32Store, wasm.OpI64Store, wasm.OpF32Store, wasm.OpF64Store,
		wasm.OpI32Store8, wasm.OpI32Store16, wasm.OpI64Store8, wasm.OpI64Store16, wasm.OpI64Store32,
		wasm.OpV128Load, wasm.OpV128Load8x8S, wasm.OpV128Load8x8U,
		wasm.OpV128Load16x4S, wasm.OpV128Load16x4U, wasm.OpV128Load32x2S, wasm.OpV128Load32x2U,
		wasm.OpV128Load8Splat, wasm.OpV128Load16Splat, wasm.OpV128Load32Splat, wasm.OpV128Load64Splat,
		wasm.OpV128Store, wasm.OpV128Load32Zero, wasm.OpV128Load64Zero:
		mem, err := decodeMemArg(r)
		if err != nil {
			return nil, err
		}
		return wasm.ImmMemArg{Mem: mem}, nil

	case wasm.OpI32Const:
		v, err := r.varI32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmI32{V: v}, nil

	case wasm.OpI64Const:
		v, err := r.varI64()
		if err != nil {
			return nil, err
		}
		return wasm.ImmI64{V: v}, nil

	case wasm.OpF32Const:
		v, err := r.f32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmF32{V: v}, nil

	case wasm.OpF64Const:
		v, err := r.f64()
		if err != nil {
			return nil, err
		}
		return wasm.ImmF64{V: v}, nil

	case wasm.OpMemoryInit:
		dataIdx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		memIdx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmMemoryInit{DataIndex: dataIdx, MemoryIndex: memIdx}, nil

	case wasm.OpMemoryCopy:
		dst, err := r.varU32()
		if err != nil {
			return nil, err
		}
		src, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmMemoryCopy{DstIndex: dst, SrcIndex: src}, nil

	case wasm.OpTableInit:
		elemIdx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		tableIdx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmTableInit{ElemIndex: elemIdx, TableIndex: tableIdx}, nil

	case wasm.OpTableCopy:
		dst, err := r.varU32()
		if err != nil {
			return nil, err
		}
		src, err := r.varU32()
		if err != nil {
			return nil, err
		}
		return wasm.ImmTableCopy{DstIndex: dst, SrcIndex: src}, nil

	case wasm.OpV128Const:
		v, err := decodeV128Bytes(r)
		if err != nil {
			return nil, err
		}
		return wasm.ImmV128{V: v}, nil

	case wasm.OpI8x16Shuffle:
		v, err := decodeV128Bytes(r)
		if err != nil {
			return nil, err
		}
		return wasm.ImmShuffle{Lanes: v}, nil

	case wasm.OpI8x16ExtractLaneS, wasm.OpI8x16ExtractLaneU, wasm.OpI8x16ReplaceLane,
		wasm.OpI16x8ExtractLaneS, wasm.OpI16x8ExtractLaneU, wasm.OpI16x8ReplaceLane,
		wasm.OpI32x4ExtractLane, wasm.OpI32x4ReplaceLane,
		wasm.OpI64x2ExtractLane, wasm.OpI64x2ReplaceLane,
		wasm.OpF32x4ExtractLane, wasm.OpF32x4ReplaceLane,
		wasm.OpF64x2ExtractLane, wasm.OpF64x2ReplaceLane:
		lane, err := r.byte()
		if err != nil {
			return nil, err
		}
		return wasm.ImmLane{Lane: lane}, nil

	case wasm.OpV128Load8Lane, wasm.OpV128Load16Lane, wasm.OpV128Load32Lane, wasm.OpV128Load64Lane,
		wasm.OpV128Store8Lane, wasm.OpV128Store16Lane, wasm.OpV128Store32Lane, wasm.OpV128Store64Lane:
		mem, err := decodeMemArg(r)
		if err != nil {
			return nil, err
		}
		lane, err := r.byte()
		if err != nil {
			return nil, err
		}
		return wasm.ImmLoadLane{Mem: mem, Lane: lane}, nil

	default:
		return nil, r.errAt(off, wasm.DecodeUnknownOpcode, nil)
	}
}
