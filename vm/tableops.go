package vm

import (
	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/wasm"
)

// execTable evaluates table.get/set/size/grow/copy/fill/init and
// elem.drop. Returns (handled, trap).
func (e *Engine) execTable(mi *instance.ModuleInstance, instr wasm.Instruction, st *operandStack) (bool, *wasm.Trap) {
	switch instr.Op {
	case wasm.OpTableGet:
		idx := instr.Imm.(wasm.ImmIndex).Index
		table := e.Store.Tables[mi.TableAddrs[idx]]
		i := uint32(st.pop())
		if i >= table.Size() {
			return true, wasm.NewTrap(wasm.TrapOutOfBoundsTableAccess)
		}
		st.push(table.Elements[i])

	case wasm.OpTableSet:
		idx := instr.Imm.(wasm.ImmIndex).Index
		table := e.Store.Tables[mi.TableAddrs[idx]]
		v := st.pop()
		i := uint32(st.pop())
		if i >= table.Size() {
			return true, wasm.NewTrap(wasm.TrapOutOfBoundsTableAccess)
		}
		table.Elements[i] = v

	case wasm.OpTableSize:
		idx := instr.Imm.(wasm.ImmIndex).Index
		table := e.Store.Tables[mi.TableAddrs[idx]]
		st.push(uint64(table.Size()))

	case wasm.OpTableGrow:
		idx := instr.Imm.(wasm.ImmIndex).Index
		table := e.Store.Tables[mi.TableAddrs[idx]]
		delta := uint32(st.pop())
		fill := st.pop()
		old, ok := table.Grow(delta)
		if !ok {
			st.push(uint64(uint32(0xFFFFFFFF)))
		} else {
			for i := old; i < old+delta; i++ {
				table.Elements[i] = fill
			}
			st.push(uint64(old))
		}

	case wasm.OpTableFill:
		idx := instr.Imm.(wasm.ImmIndex).Index
		table := e.Store.Tables[mi.TableAddrs[idx]]
		n := uint32(st.pop())
		val := st.pop()
		i := uint32(st.pop())
		if uint64(i)+uint64(n) > uint64(table.Size()) {
			return true, wasm.NewTrap(wasm.TrapOutOfBoundsTableAccess)
		}
		for k := uint32(0); k < n; k++ {
			table.Elements[i+k] = val
		}

	case wasm.OpTableCopy:
		tc := instr.Imm.(wasm.ImmTableCopy)
		dstTable := e.Store.Tables[mi.TableAddrs[tc.DstIndex]]
		srcTable := e.Store.Tables[mi.TableAddrs[tc.SrcIndex]]
		n := uint32(st.pop())
		src := uint32(st.pop())
		dst := uint32(st.pop())
		if uint64(src)+uint64(n) > uint64(srcTable.Size()) || uint64(dst)+uint64(n) > uint64(dstTable.Size()) {
			return true, wasm.NewTrap(wasm.TrapOutOfBoundsTableAccess)
		}
		if dstTable == srcTable {
			copy(dstTable.Elements[dst:dst+n], srcTable.Elements[src:src+n])
		} else {
			tmp := make([]uint64, n)
			copy(tmp, srcTable.Elements[src:src+n])
			copy(dstTable.Elements[dst:dst+n], tmp)
		}

	case wasm.OpTableInit:
		ti := instr.Imm.(wasm.ImmTableInit)
		table := e.Store.Tables[mi.TableAddrs[ti.TableIndex]]
		elem := e.Store.Elements[mi.ElemAddrs[ti.ElemIndex]]
		n := uint32(st.pop())
		src := uint32(st.pop())
		dst := uint32(st.pop())
		if elem.Dropped {
			if n != 0 {
				return true, wasm.NewTrap(wasm.TrapDroppedSegmentAccess)
			}
		}
		if uint64(src)+uint64(n) > uint64(len(elem.Refs)) || uint64(dst)+uint64(n) > uint64(table.Size()) {
			return true, wasm.NewTrap(wasm.TrapSegmentInitOutOfBounds)
		}
		copy(table.Elements[dst:dst+n], elem.Refs[src:src+n])

	case wasm.OpElemDrop:
		idx := instr.Imm.(wasm.ImmIndex).Index
		e.Store.Elements[mi.ElemAddrs[idx]].Drop()

	default:
		return false, nil
	}
	return true, nil
}
