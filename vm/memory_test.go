package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/wasm"
)

func newTestMemoryModule(pages uint32) (*Engine, *instance.ModuleInstance) {
	store := instance.NewStore()
	mem := instance.NewMemoryInstance(wasm.MemoryType{Limits: wasm.Limits{Min: pages}})
	store.Memories = append(store.Memories, mem)
	mi := &instance.ModuleInstance{MemoryAddrs: []uint32{0}}
	return NewEngine(store, nil), mi
}

func TestExecMemory_StoreThenLoad(t *testing.T) {
	e, mi := newTestMemoryModule(1)
	st := &operandStack{}

	st.push(0) // base addr
	st.push(0xDEADBEEF)
	handled, trap := e.execMemory(nil, mi, wasm.Instruction{
		Op:  wasm.OpI32Store,
		Imm: wasm.ImmMemArg{Mem: wasm.MemArg{}},
	}, st)
	require.True(t, handled)
	require.Nil(t, trap)

	st.push(0)
	handled, trap = e.execMemory(nil, mi, wasm.Instruction{
		Op:  wasm.OpI32Load,
		Imm: wasm.ImmMemArg{Mem: wasm.MemArg{}},
	}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.Equal(t, uint64(0xDEADBEEF), st.pop())
}

func TestExecMemory_OutOfBounds(t *testing.T) {
	e, mi := newTestMemoryModule(1) // one page = 65536 bytes
	st := &operandStack{}
	st.push(65536) // one past the end
	handled, trap := e.execMemory(nil, mi, wasm.Instruction{
		Op:  wasm.OpI32Load,
		Imm: wasm.ImmMemArg{Mem: wasm.MemArg{}},
	}, st)
	require.True(t, handled)
	require.NotNil(t, trap)
	require.Equal(t, wasm.TrapOutOfBoundsMemoryAccess, trap.Code)
}

func TestExecMemory_Grow(t *testing.T) {
	e, mi := newTestMemoryModule(1)
	st := &operandStack{}
	st.push(2)
	handled, trap := e.execMemory(nil, mi, wasm.Instruction{Op: wasm.OpMemoryGrow}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.Equal(t, uint64(1), st.pop()) // prior size in pages

	handled, trap = e.execMemory(nil, mi, wasm.Instruction{Op: wasm.OpMemorySize}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.Equal(t, uint64(3), st.pop())
}

func TestExecMemory_CopyAndFill(t *testing.T) {
	e, mi := newTestMemoryModule(1)
	mem := e.Store.Memories[mi.MemoryAddrs[0]]
	copy(mem.Data[0:4], []byte{1, 2, 3, 4})

	st := &operandStack{}
	st.push(100) // dst
	st.push(0)   // src
	st.push(4)   // n
	handled, trap := e.execMemory(nil, mi, wasm.Instruction{Op: wasm.OpMemoryCopy, Imm: wasm.ImmMemoryCopy{}}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.Equal(t, []byte{1, 2, 3, 4}, mem.Data[100:104])

	st.push(200) // dst
	st.push(9)   // val
	st.push(3)   // n
	handled, trap = e.execMemory(nil, mi, wasm.Instruction{Op: wasm.OpMemoryFill}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.Equal(t, []byte{9, 9, 9}, mem.Data[200:203])
}

func TestExecMemory_InitAndDrop(t *testing.T) {
	e, mi := newTestMemoryModule(1)
	data := &instance.DataInstance{Bytes: []byte{0xAA, 0xBB, 0xCC}}
	e.Store.Data = append(e.Store.Data, data)
	mi.DataAddrs = []uint32{0}

	st := &operandStack{}
	st.push(10) // dst
	st.push(0)  // src
	st.push(3)  // n
	handled, trap := e.execMemory(nil, mi, wasm.Instruction{
		Op:  wasm.OpMemoryInit,
		Imm: wasm.ImmMemoryInit{DataIndex: 0},
	}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	mem := e.Store.Memories[mi.MemoryAddrs[0]]
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC}, mem.Data[10:13])

	handled, trap = e.execMemory(nil, mi, wasm.Instruction{
		Op:  wasm.OpDataDrop,
		Imm: wasm.ImmIndex{Index: 0},
	}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	require.True(t, data.Dropped)

	st.push(0)
	st.push(0)
	st.push(1)
	handled, trap = e.execMemory(nil, mi, wasm.Instruction{
		Op:  wasm.OpMemoryInit,
		Imm: wasm.ImmMemoryInit{DataIndex: 0},
	}, st)
	require.True(t, handled)
	require.NotNil(t, trap)
	require.Equal(t, wasm.TrapDroppedSegmentAccess, trap.Code)
}

func TestExecSIMDMemory_V128LoadStore(t *testing.T) {
	e, mi := newTestMemoryModule(1)
	st := &operandStack{}

	st.push(0) // base addr, pushed before the value since a store pops the value first
	st.pushV128(0x1111111111111111, 0x2222222222222222)
	handled, trap := e.execSIMDMemory(mi, wasm.Instruction{
		Op:  wasm.OpV128Store,
		Imm: wasm.ImmMemArg{Mem: wasm.MemArg{}},
	}, st)
	require.True(t, handled)
	require.Nil(t, trap)

	st.push(0)
	handled, trap = e.execSIMDMemory(mi, wasm.Instruction{
		Op:  wasm.OpV128Load,
		Imm: wasm.ImmMemArg{Mem: wasm.MemArg{}},
	}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	lo, hi := st.popV128()
	require.Equal(t, uint64(0x1111111111111111), lo)
	require.Equal(t, uint64(0x2222222222222222), hi)
}

func TestExecSIMDMemory_Splat(t *testing.T) {
	e, mi := newTestMemoryModule(1)
	mem := e.Store.Memories[mi.MemoryAddrs[0]]
	mem.Data[0] = 0x07

	st := &operandStack{}
	st.push(0)
	handled, trap := e.execSIMDMemory(mi, wasm.Instruction{
		Op:  wasm.OpV128Load8Splat,
		Imm: wasm.ImmMemArg{Mem: wasm.MemArg{}},
	}, st)
	require.True(t, handled)
	require.Nil(t, trap)
	lo, hi := st.popV128()
	require.Equal(t, uint64(0x0707070707070707), lo)
	require.Equal(t, uint64(0x0707070707070707), hi)
}
