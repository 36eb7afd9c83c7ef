package binary

import "github.com/tinywasm/tinywasm/wasm"

func writeOpcode(w *writer, op wasm.Opcode) {
	switch {
	case op.IsSimdPrefixed():
		w.byte(0xFD)
		w.u32(op.Secondary())
	case op.IsMiscPrefixed():
		w.byte(0xFC)
		w.u32(op.Secondary())
	default:
		w.byte(byte(op))
	}
}

func encodeBlockType(w *writer, bt wasm.BlockType) {
	switch {
	case bt.Empty:
		w.byte(0x40)
	case bt.IsTypeIndex:
		w.i32(int32(bt.TypeIndex))
	default:
		w.valueType(bt.ValueType)
	}
}

func encodeMemArg(w *writer, mem wasm.MemArg) {
	w.u32(mem.Align)
	w.u32(mem.Offset)
}

// encodeExpr writes a decoded instruction slice back out verbatim; the
// slice already contains every else/end marker in source order, so no
// structural reconstruction from ElseIndex/EndIndex is needed.
func encodeExpr(w *writer, instrs []wasm.Instruction) {
	for _, instr := range instrs {
		encodeInstruction(w, instr)
	}
}

func encodeInstruction(w *writer, instr wasm.Instruction) {
	writeOpcode(w, instr.Op)
	switch imm := instr.Imm.(type) {
	case nil:
	case wasm.ImmI32:
		w.i32(imm.V)
	case wasm.ImmI64:
		w.i64(imm.V)
	case wasm.ImmF32:
		w.f32(imm.V)
	case wasm.ImmF64:
		w.f64(imm.V)
	case wasm.ImmV128:
		w.raw(imm.V[:])
	case wasm.ImmBlock:
		encodeBlockType(w, imm.Type)
	case wasm.ImmIndex:
		w.u32(imm.Index)
	case wasm.ImmBrTable:
		w.u32(uint32(len(imm.Labels)))
		for _, l := range imm.Labels {
			w.u32(l)
		}
		w.u32(imm.Default)
	case wasm.ImmCallIndirect:
		w.u32(imm.TypeIndex)
		w.u32(imm.TableIndex)
	case wasm.ImmMemArg:
		encodeMemArg(w, imm.Mem)
	case wasm.ImmLoadLane:
		encodeMemArg(w, imm.Mem)
		w.byte(imm.Lane)
	case wasm.ImmLane:
		w.byte(imm.Lane)
	case wasm.ImmShuffle:
		w.raw(imm.Lanes[:])
	case wasm.ImmRefType:
		w.valueType(imm.Type)
	case wasm.ImmMemoryInit:
		w.u32(imm.DataIndex)
		w.u32(imm.MemoryIndex)
	case wasm.ImmTableInit:
		w.u32(imm.ElemIndex)
		w.u32(imm.TableIndex)
	case wasm.ImmMemoryCopy:
		w.u32(imm.DstIndex)
		w.u32(imm.SrcIndex)
	case wasm.ImmTableCopy:
		w.u32(imm.DstIndex)
		w.u32(imm.SrcIndex)
	case wasm.ImmSelectTyped:
		w.valueTypeVec(imm.Types)
	}
}
