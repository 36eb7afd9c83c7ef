package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/wasm"
)

func newTestTableModule(size uint32) (*Engine, *instance.ModuleInstance) {
	store := instance.NewStore()
	table := instance.NewTableInstance(wasm.TableType{ElemType: wasm.ValueTypeFuncref, Limits: wasm.Limits{Min: size}})
	store.Tables = append(store.Tables, table)
	mi := &instance.ModuleInstance{TableAddrs: []uint32{0}}
	return NewEngine(store, nil), mi
}

func TestExecTable_GetSetOutOfBounds(t *testing.T) {
	e, mi := newTestTableModule(2)
	st := &operandStack{}

	st.push(0) // index
	st.push(7) // value
	handled, trap := e.execTable(mi, wasm.Instruction{Op: wasm.OpTableSet, Imm: wasm.ImmIndex{Index: 0}}, st)
	require.True(t, handled)
	require.Nil(t, trap)

	st.push(0)
	handled, trap = e.execTable(mi, wasm.Instruction{Op: wasm.OpTableGet, Imm: wasm.ImmIndex{Index: 0}}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.Equal(t, uint64(7), st.pop())

	st.push(5) // out of bounds
	handled, trap = e.execTable(mi, wasm.Instruction{Op: wasm.OpTableGet, Imm: wasm.ImmIndex{Index: 0}}, st)
	require.True(t, handled)
	require.NotNil(t, trap)
	require.Equal(t, wasm.TrapOutOfBoundsTableAccess, trap.Code)
}

func TestExecTable_GrowAndFill(t *testing.T) {
	e, mi := newTestTableModule(1)
	st := &operandStack{}

	st.push(9) // fill value
	st.push(3) // delta
	handled, trap := e.execTable(mi, wasm.Instruction{Op: wasm.OpTableGrow, Imm: wasm.ImmIndex{Index: 0}}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.Equal(t, uint64(1), st.pop()) // prior size

	table := e.Store.Tables[mi.TableAddrs[0]]
	require.Equal(t, uint32(4), table.Size())
	require.Equal(t, uint64(9), table.Elements[1])
	require.Equal(t, uint64(9), table.Elements[3])

	st.push(0) // index
	st.push(5) // value
	st.push(4) // n
	handled, trap = e.execTable(mi, wasm.Instruction{Op: wasm.OpTableFill, Imm: wasm.ImmIndex{Index: 0}}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	for i := 0; i < 4; i++ {
		require.Equal(t, uint64(5), table.Elements[i])
	}
}

func TestExecTable_CopyWithinSameTable(t *testing.T) {
	e, mi := newTestTableModule(4)
	table := e.Store.Tables[mi.TableAddrs[0]]
	table.Elements[0] = 11
	table.Elements[1] = 22

	st := &operandStack{}
	st.push(2) // dst
	st.push(0) // src
	st.push(2) // n
	handled, trap := e.execTable(mi, wasm.Instruction{
		Op:  wasm.OpTableCopy,
		Imm: wasm.ImmTableCopy{DstIndex: 0, SrcIndex: 0},
	}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.Equal(t, uint64(11), table.Elements[2])
	require.Equal(t, uint64(22), table.Elements[3])
}

func TestExecTable_InitAndDrop(t *testing.T) {
	e, mi := newTestTableModule(4)
	elem := &instance.ElementInstance{RefType: wasm.ValueTypeFuncref, Refs: []uint64{5, 6, 7}}
	e.Store.Elements = append(e.Store.Elements, elem)
	mi.ElemAddrs = []uint32{0}

	st := &operandStack{}
	st.push(0) // dst
	st.push(0) // src
	st.push(3) // n
	handled, trap := e.execTable(mi, wasm.Instruction{
		Op:  wasm.OpTableInit,
		Imm: wasm.ImmTableInit{ElemIndex: 0, TableIndex: 0},
	}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	table := e.Store.Tables[mi.TableAddrs[0]]
	require.Equal(t, []uint64{5, 6, 7, 0}, table.Elements)

	handled, trap = e.execTable(mi, wasm.Instruction{Op: wasm.OpElemDrop, Imm: wasm.ImmIndex{Index: 0}}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.True(t, elem.Dropped)

	st.push(0)
	st.push(0)
	st.push(1)
	handled, trap = e.execTable(mi, wasm.Instruction{
		Op:  wasm.OpTableInit,
		Imm: wasm.ImmTableInit{ElemIndex: 0, TableIndex: 0},
	}, st)
	require.True(t, handled)
	require.NotNil(t, trap)
	require.Equal(t, wasm.TrapDroppedSegmentAccess, trap.Code)
}
