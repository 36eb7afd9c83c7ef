package vm

import (
	"context"
	"encoding/binary"

	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/wasm"
)

// effectiveAddr adds a load/store's static offset to its dynamic base
// operand, reporting an out-of-bounds trap on 32-bit overflow or a
// span that would run past the memory's current size. size is the
// number of bytes the access touches starting at the effective
// address.
func effectiveAddr(mem *instance.MemoryInstance, base uint32, arg wasm.MemArg, size uint32) (uint32, *wasm.Trap) {
	addr := uint64(base) + uint64(arg.Offset)
	if addr+uint64(size) > uint64(len(mem.Data)) {
		return 0, wasm.NewTrap(wasm.TrapOutOfBoundsMemoryAccess)
	}
	return uint32(addr), nil
}

// execMemory evaluates every scalar and SIMD memory instruction plus
// the bulk-memory family (memory.copy/fill/init, data.drop) and
// memory.size/grow. Returns (handled, trap).
func (e *Engine) execMemory(ctx context.Context, mi *instance.ModuleInstance, instr wasm.Instruction, st *operandStack) (bool, *wasm.Trap) {
	op := instr.Op
	mem0 := func() *instance.MemoryInstance { return e.Store.Memories[mi.MemoryAddrs[0]] }

	switch op {
	case wasm.OpI32Load:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem0(), uint32(st.pop()), m, 4)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(binary.LittleEndian.Uint32(mem0().Data[addr:])))
	case wasm.OpI64Load:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem0(), uint32(st.pop()), m, 8)
		if trap != nil {
			return true, trap
		}
		st.push(binary.LittleEndian.Uint64(mem0().Data[addr:]))
	case wasm.OpF32Load:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem0(), uint32(st.pop()), m, 4)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(binary.LittleEndian.Uint32(mem0().Data[addr:])))
	case wasm.OpF64Load:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem0(), uint32(st.pop()), m, 8)
		if trap != nil {
			return true, trap
		}
		st.push(binary.LittleEndian.Uint64(mem0().Data[addr:]))

	case wasm.OpI32Load8S:
		v, trap := loadByte(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(uint32(int32(int8(v)))))
	case wasm.OpI32Load8U:
		v, trap := loadByte(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))
	case wasm.OpI32Load16S:
		v, trap := loadHalf(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(uint32(int32(int16(v)))))
	case wasm.OpI32Load16U:
		v, trap := loadHalf(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))
	case wasm.OpI64Load8S:
		v, trap := loadByte(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(int64(int8(v))))
	case wasm.OpI64Load8U:
		v, trap := loadByte(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))
	case wasm.OpI64Load16S:
		v, trap := loadHalf(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(int64(int16(v))))
	case wasm.OpI64Load16U:
		v, trap := loadHalf(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))
	case wasm.OpI64Load32S:
		v, trap := loadWord(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(int64(int32(v))))
	case wasm.OpI64Load32U:
		v, trap := loadWord(mem0(), st, instr)
		if trap != nil {
			return true, trap
		}
		st.push(uint64(v))

	case wasm.OpI32Store, wasm.OpF32Store:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		v := uint32(st.pop())
		addr, trap := effectiveAddr(mem0(), uint32(st.pop()), m, 4)
		if trap != nil {
			return true, trap
		}
		binary.LittleEndian.PutUint32(mem0().Data[addr:], v)
	case wasm.OpI64Store, wasm.OpF64Store:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		v := st.pop()
		addr, trap := effectiveAddr(mem0(), uint32(st.pop()), m, 8)
		if trap != nil {
			return true, trap
		}
		binary.LittleEndian.PutUint64(mem0().Data[addr:], v)
	case wasm.OpI32Store8, wasm.OpI64Store8:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		v := byte(st.pop())
		addr, trap := effectiveAddr(mem0(), uint32(st.pop()), m, 1)
		if trap != nil {
			return true, trap
		}
		mem0().Data[addr] = v
	case wasm.OpI32Store16, wasm.OpI64Store16:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		v := uint16(st.pop())
		addr, trap := effectiveAddr(mem0(), uint32(st.pop()), m, 2)
		if trap != nil {
			return true, trap
		}
		binary.LittleEndian.PutUint16(mem0().Data[addr:], v)
	case wasm.OpI64Store32:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		v := uint32(st.pop())
		addr, trap := effectiveAddr(mem0(), uint32(st.pop()), m, 4)
		if trap != nil {
			return true, trap
		}
		binary.LittleEndian.PutUint32(mem0().Data[addr:], v)

	case wasm.OpMemorySize:
		st.push(uint64(mem0().Pages()))
	case wasm.OpMemoryGrow:
		delta := uint32(st.pop())
		old, ok := mem0().Grow(delta)
		if !ok {
			st.push(uint64(uint32(0xFFFFFFFF)))
		} else {
			st.push(uint64(old))
		}

	case wasm.OpMemoryCopy:
		n := uint32(st.pop())
		src := uint32(st.pop())
		dst := uint32(st.pop())
		mem := mem0()
		if uint64(src)+uint64(n) > uint64(len(mem.Data)) || uint64(dst)+uint64(n) > uint64(len(mem.Data)) {
			return true, wasm.NewTrap(wasm.TrapOutOfBoundsMemoryAccess)
		}
		copy(mem.Data[dst:dst+n], mem.Data[src:src+n])

	case wasm.OpMemoryFill:
		n := uint32(st.pop())
		val := byte(st.pop())
		dst := uint32(st.pop())
		mem := mem0()
		if uint64(dst)+uint64(n) > uint64(len(mem.Data)) {
			return true, wasm.NewTrap(wasm.TrapOutOfBoundsMemoryAccess)
		}
		region := mem.Data[dst : dst+n]
		for i := range region {
			region[i] = val
		}

	case wasm.OpMemoryInit:
		mm := instr.Imm.(wasm.ImmMemoryInit)
		n := uint32(st.pop())
		src := uint32(st.pop())
		dst := uint32(st.pop())
		mem := mem0()
		data := e.Store.Data[mi.DataAddrs[mm.DataIndex]]
		if data.Dropped {
			if n != 0 {
				return true, wasm.NewTrap(wasm.TrapDroppedSegmentAccess)
			}
		}
		if uint64(src)+uint64(n) > uint64(len(data.Bytes)) || uint64(dst)+uint64(n) > uint64(len(mem.Data)) {
			return true, wasm.NewTrap(wasm.TrapSegmentInitOutOfBounds)
		}
		copy(mem.Data[dst:dst+n], data.Bytes[src:src+n])

	case wasm.OpDataDrop:
		di := instr.Imm.(wasm.ImmIndex).Index
		e.Store.Data[mi.DataAddrs[di]].Drop()

	default:
		if handled, trap := e.execSIMDMemory(mi, instr, st); handled {
			return true, trap
		}
		return false, nil
	}
	return true, nil
}

func loadByte(mem *instance.MemoryInstance, st *operandStack, instr wasm.Instruction) (byte, *wasm.Trap) {
	m := instr.Imm.(wasm.ImmMemArg).Mem
	addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 1)
	if trap != nil {
		return 0, trap
	}
	return mem.Data[addr], nil
}

func loadHalf(mem *instance.MemoryInstance, st *operandStack, instr wasm.Instruction) (uint16, *wasm.Trap) {
	m := instr.Imm.(wasm.ImmMemArg).Mem
	addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 2)
	if trap != nil {
		return 0, trap
	}
	return binary.LittleEndian.Uint16(mem.Data[addr:]), nil
}

func loadWord(mem *instance.MemoryInstance, st *operandStack, instr wasm.Instruction) (uint32, *wasm.Trap) {
	m := instr.Imm.(wasm.ImmMemArg).Mem
	addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 4)
	if trap != nil {
		return 0, trap
	}
	return binary.LittleEndian.Uint32(mem.Data[addr:]), nil
}

// execSIMDMemory evaluates v128 load/store, the widening/splat/zero
// load variants, the single-lane load/store family, and v128.const.
func (e *Engine) execSIMDMemory(mi *instance.ModuleInstance, instr wasm.Instruction, st *operandStack) (bool, *wasm.Trap) {
	var mem *instance.MemoryInstance
	if len(mi.MemoryAddrs) > 0 {
		mem = e.Store.Memories[mi.MemoryAddrs[0]]
	}
	switch instr.Op {
	case wasm.OpV128Const:
		v := instr.Imm.(wasm.ImmV128).V
		st.pushV128(binary.LittleEndian.Uint64(v[0:8]), binary.LittleEndian.Uint64(v[8:16]))
		return true, nil

	case wasm.OpV128Load:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 16)
		if trap != nil {
			return true, trap
		}
		st.pushV128(binary.LittleEndian.Uint64(mem.Data[addr:]), binary.LittleEndian.Uint64(mem.Data[addr+8:]))
		return true, nil

	case wasm.OpV128Store:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		lo, hi := st.popV128()
		addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 16)
		if trap != nil {
			return true, trap
		}
		binary.LittleEndian.PutUint64(mem.Data[addr:], lo)
		binary.LittleEndian.PutUint64(mem.Data[addr+8:], hi)
		return true, nil

	case wasm.OpV128Load8x8S, wasm.OpV128Load8x8U, wasm.OpV128Load16x4S, wasm.OpV128Load16x4U,
		wasm.OpV128Load32x2S, wasm.OpV128Load32x2U:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 8)
		if trap != nil {
			return true, trap
		}
		raw := mem.Data[addr : addr+8]
		var out v128
		switch instr.Op {
		case wasm.OpV128Load8x8S:
			var arr [8]int16
			for i := 0; i < 8; i++ {
				arr[i] = int16(int8(raw[i]))
			}
			out = newI16x8(arr)
		case wasm.OpV128Load8x8U:
			var arr [8]int16
			for i := 0; i < 8; i++ {
				arr[i] = int16(raw[i])
			}
			out = newI16x8(arr)
		case wasm.OpV128Load16x4S:
			var arr [4]int32
			for i := 0; i < 4; i++ {
				arr[i] = int32(int16(binary.LittleEndian.Uint16(raw[i*2:])))
			}
			out = newI32x4(arr)
		case wasm.OpV128Load16x4U:
			var arr [4]int32
			for i := 0; i < 4; i++ {
				arr[i] = int32(binary.LittleEndian.Uint16(raw[i*2:]))
			}
			out = newI32x4(arr)
		case wasm.OpV128Load32x2S:
			var arr [2]int64
			for i := 0; i < 2; i++ {
				arr[i] = int64(int32(binary.LittleEndian.Uint32(raw[i*4:])))
			}
			out = newI64x2(arr)
		case wasm.OpV128Load32x2U:
			var arr [2]int64
			for i := 0; i < 2; i++ {
				arr[i] = int64(binary.LittleEndian.Uint32(raw[i*4:]))
			}
			out = newI64x2(arr)
		}
		lo, hi := out.slots()
		st.pushV128(lo, hi)
		return true, nil

	case wasm.OpV128Load8Splat:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 1)
		if trap != nil {
			return true, trap
		}
		lo, hi := newI8x16(splat16(mem.Data[addr])).slots()
		st.pushV128(lo, hi)
		return true, nil
	case wasm.OpV128Load16Splat:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 2)
		if trap != nil {
			return true, trap
		}
		v := binary.LittleEndian.Uint16(mem.Data[addr:])
		var arr [8]int16
		for i := range arr {
			arr[i] = int16(v)
		}
		lo, hi := newI16x8(arr).slots()
		st.pushV128(lo, hi)
		return true, nil
	case wasm.OpV128Load32Splat:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 4)
		if trap != nil {
			return true, trap
		}
		v := binary.LittleEndian.Uint32(mem.Data[addr:])
		var arr [4]int32
		for i := range arr {
			arr[i] = int32(v)
		}
		lo, hi := newI32x4(arr).slots()
		st.pushV128(lo, hi)
		return true, nil
	case wasm.OpV128Load64Splat:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 8)
		if trap != nil {
			return true, trap
		}
		v := binary.LittleEndian.Uint64(mem.Data[addr:])
		lo, hi := newI64x2([2]int64{int64(v), int64(v)}).slots()
		st.pushV128(lo, hi)
		return true, nil

	case wasm.OpV128Load32Zero:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 4)
		if trap != nil {
			return true, trap
		}
		v := binary.LittleEndian.Uint32(mem.Data[addr:])
		st.pushV128(uint64(v), 0)
		return true, nil
	case wasm.OpV128Load64Zero:
		m := instr.Imm.(wasm.ImmMemArg).Mem
		addr, trap := effectiveAddr(mem, uint32(st.pop()), m, 8)
		if trap != nil {
			return true, trap
		}
		v := binary.LittleEndian.Uint64(mem.Data[addr:])
		st.pushV128(v, 0)
		return true, nil

	case wasm.OpV128Load8Lane, wasm.OpV128Load16Lane, wasm.OpV128Load32Lane, wasm.OpV128Load64Lane:
		ll := instr.Imm.(wasm.ImmLoadLane)
		lo, hi := st.popV128()
		vec := v128FromSlots(lo, hi)
		size := laneLoadStoreSize(instr.Op)
		addr, trap := effectiveAddr(mem, uint32(st.pop()), ll.Mem, size)
		if trap != nil {
			return true, trap
		}
		switch instr.Op {
		case wasm.OpV128Load8Lane:
			vec[ll.Lane] = mem.Data[addr]
		case wasm.OpV128Load16Lane:
			copy(vec[ll.Lane*2:ll.Lane*2+2], mem.Data[addr:addr+2])
		case wasm.OpV128Load32Lane:
			copy(vec[ll.Lane*4:ll.Lane*4+4], mem.Data[addr:addr+4])
		case wasm.OpV128Load64Lane:
			copy(vec[ll.Lane*8:ll.Lane*8+8], mem.Data[addr:addr+8])
		}
		lo, hi = vec.slots()
		st.pushV128(lo, hi)
		return true, nil

	case wasm.OpV128Store8Lane, wasm.OpV128Store16Lane, wasm.OpV128Store32Lane, wasm.OpV128Store64Lane:
		ll := instr.Imm.(wasm.ImmLoadLane)
		lo, hi := st.popV128()
		vec := v128FromSlots(lo, hi)
		size := laneLoadStoreSize(instr.Op)
		addr, trap := effectiveAddr(mem, uint32(st.pop()), ll.Mem, size)
		if trap != nil {
			return true, trap
		}
		switch instr.Op {
		case wasm.OpV128Store8Lane:
			mem.Data[addr] = vec.u8(int(ll.Lane))
		case wasm.OpV128Store16Lane:
			binary.LittleEndian.PutUint16(mem.Data[addr:], vec.u16(int(ll.Lane)))
		case wasm.OpV128Store32Lane:
			binary.LittleEndian.PutUint32(mem.Data[addr:], vec.u32(int(ll.Lane)))
		case wasm.OpV128Store64Lane:
			binary.LittleEndian.PutUint64(mem.Data[addr:], vec.u64(int(ll.Lane)))
		}
		return true, nil

	default:
		return false, nil
	}
}

func laneLoadStoreSize(op wasm.Opcode) uint32 {
	switch op {
	case wasm.OpV128Load8Lane, wasm.OpV128Store8Lane:
		return 1
	case wasm.OpV128Load16Lane, wasm.OpV128Store16Lane:
		return 2
	case wasm.OpV128Load32Lane, wasm.OpV128Store32Lane:
		return 4
	default:
		return 8
	}
}

func splat16(b byte) [16]int8 {
	var arr [16]int8
	for i := range arr {
		arr[i] = int8(b)
	}
	return arr
}
