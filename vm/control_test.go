package vm

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/wasm"
)

// newTestEngine returns an Engine over a fresh, empty store, suitable
// for tests that build their own FunctionInstance/ModuleInstance by
// hand rather than going through a decoded module.
func newTestEngine() (*Engine, *instance.Store) {
	store := instance.NewStore()
	return NewEngine(store, nil), store
}

func i32Type(params, results int) *wasm.FunctionType {
	ft := &wasm.FunctionType{}
	for i := 0; i < params; i++ {
		ft.Params = append(ft.Params, wasm.ValueTypeI32)
	}
	for i := 0; i < results; i++ {
		ft.Results = append(ft.Results, wasm.ValueTypeI32)
	}
	return ft
}

func addFunction(e *Engine, store *instance.Store) (uint32, *instance.ModuleInstance) {
	ft := i32Type(2, 1)
	mi := &instance.ModuleInstance{Types: []*wasm.FunctionType{ft}}
	body := []wasm.Instruction{
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 1}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Add, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	fi := &instance.FunctionInstance{Type: ft, Module: mi, Code: &wasm.Code{Body: body}}
	addr := storeAddFunction(store, fi)
	mi.FuncAddrs = []uint32{addr}
	return addr, mi
}

// storeAddFunction appends fi to store the same way Instantiate does,
// writing the exported Functions slice directly since addFunction is
// unexported; tests build instances directly.
func storeAddFunction(store *instance.Store, fi *instance.FunctionInstance) uint32 {
	store.Functions = append(store.Functions, fi)
	return uint32(len(store.Functions) - 1)
}

func TestRunFrame_SimpleAdd(t *testing.T) {
	e, store := newTestEngine()
	addr, _ := addFunction(e, store)

	results, err := e.Invoke(context.Background(), addr, []uint64{3, 4})
	require.NoError(t, err)
	require.Equal(t, []uint64{7}, results)
}

func TestRunFrame_Block_Br(t *testing.T) {
	e, store := newTestEngine()
	ft := i32Type(0, 1)
	mi := &instance.ModuleInstance{Types: []*wasm.FunctionType{ft}}
	// block (result i32) i32.const 5 br 0 i32.const 9 end
	body := []wasm.Instruction{
		{Op: wasm.OpBlock, Imm: wasm.ImmBlock{Type: wasm.BlockType{ValueType: wasm.ValueTypeI32}}, ElseIndex: -1, EndIndex: 4},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 5}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpBr, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 9}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	fi := &instance.FunctionInstance{Type: ft, Module: mi, Code: &wasm.Code{Body: body}}
	addr := storeAddFunction(store, fi)
	mi.FuncAddrs = []uint32{addr}

	results, err := e.Invoke(context.Background(), addr, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{5}, results)
}

func TestRunFrame_Loop_Counts(t *testing.T) {
	e, store := newTestEngine()
	ft := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	mi := &instance.ModuleInstance{Types: []*wasm.FunctionType{ft}}
	// local 0: counter, init 0
	// loop
	//   local.get 0; i32.const 1; i32.add; local.set 0
	//   local.get 0; i32.const 5; i32.lt_s; br_if 0
	// end
	// local.get 0
	body := []wasm.Instruction{
		{Op: wasm.OpLoop, Imm: wasm.ImmBlock{Type: wasm.BlockType{Empty: true}}, ElseIndex: -1, EndIndex: 9},
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 1}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Add, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpLocalSet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 5}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32LtS, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpBrIf, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	fi := &instance.FunctionInstance{
		Type: ft, Module: mi,
		Code: &wasm.Code{Body: body, LocalTypes: []wasm.ValueType{wasm.ValueTypeI32}},
	}
	addr := storeAddFunction(store, fi)
	mi.FuncAddrs = []uint32{addr}

	results, err := e.Invoke(context.Background(), addr, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{5}, results)
}

func TestRunFrame_If_Else(t *testing.T) {
	e, store := newTestEngine()
	ft := &wasm.FunctionType{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	mi := &instance.ModuleInstance{Types: []*wasm.FunctionType{ft}}
	// local.get 0; if (result i32) i32.const 1 else i32.const 0 end
	body := []wasm.Instruction{
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpIf, Imm: wasm.ImmBlock{Type: wasm.BlockType{ValueType: wasm.ValueTypeI32}}, ElseIndex: 3, EndIndex: 5},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 1}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpElse, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	fi := &instance.FunctionInstance{Type: ft, Module: mi, Code: &wasm.Code{Body: body}}
	addr := storeAddFunction(store, fi)
	mi.FuncAddrs = []uint32{addr}

	results, err := e.Invoke(context.Background(), addr, []uint64{1})
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, results)

	results, err = e.Invoke(context.Background(), addr, []uint64{0})
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, results)
}

func TestRunFrame_Call(t *testing.T) {
	e, store := newTestEngine()
	addAddr, addMi := addFunction(e, store)

	callerFt := i32Type(2, 1)
	callerMi := &instance.ModuleInstance{
		Types:     []*wasm.FunctionType{callerFt},
		FuncAddrs: []uint32{addAddr},
	}
	_ = addMi
	body := []wasm.Instruction{
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 1}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpCall, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	fi := &instance.FunctionInstance{Type: callerFt, Module: callerMi, Code: &wasm.Code{Body: body}}
	callerAddr := storeAddFunction(store, fi)

	results, err := e.Invoke(context.Background(), callerAddr, []uint64{10, 32})
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, results)
}

func TestRunFrame_CallIndirect_TypeMismatch(t *testing.T) {
	e, store := newTestEngine()
	addAddr, _ := addFunction(e, store)

	wantFt := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}} // wrong arity on purpose
	mi := &instance.ModuleInstance{
		Types:      []*wasm.FunctionType{wantFt},
		TableAddrs: []uint32{0},
	}
	table := instance.NewTableInstance(wasm.TableType{ElemType: wasm.ValueTypeFuncref, Limits: wasm.Limits{Min: 1}})
	table.Elements[0] = uint64(addAddr) + 1
	store.Tables = append(store.Tables, table)

	body := []wasm.Instruction{
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpCallIndirect, Imm: wasm.ImmCallIndirect{TypeIndex: 0, TableIndex: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	callerFt := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	fi := &instance.FunctionInstance{Type: callerFt, Module: mi, Code: &wasm.Code{Body: body}}
	callerAddr := storeAddFunction(store, fi)
	mi.FuncAddrs = []uint32{callerAddr}

	_, err := e.Invoke(context.Background(), callerAddr, nil)
	require.Error(t, err)
	trap, ok := err.(*wasm.Trap)
	require.True(t, ok)
	require.Equal(t, wasm.TrapIndirectCallTypeMismatch, trap.Code)
}

func TestRunFrame_Unreachable_Traps(t *testing.T) {
	e, store := newTestEngine()
	ft := &wasm.FunctionType{}
	mi := &instance.ModuleInstance{Types: []*wasm.FunctionType{ft}}
	body := []wasm.Instruction{
		{Op: wasm.OpUnreachable, ElseIndex: -1, EndIndex: -1},
	}
	fi := &instance.FunctionInstance{Type: ft, Module: mi, Code: &wasm.Code{Body: body}}
	addr := storeAddFunction(store, fi)
	mi.FuncAddrs = []uint32{addr}

	_, err := e.Invoke(context.Background(), addr, nil)
	require.Error(t, err)
	trap, ok := err.(*wasm.Trap)
	require.True(t, ok)
	require.Equal(t, wasm.TrapUnreachable, trap.Code)
}

func TestRunFrame_Drop_Select(t *testing.T) {
	e, store := newTestEngine()
	ft := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	mi := &instance.ModuleInstance{Types: []*wasm.FunctionType{ft}}
	// i32.const 11; drop; i32.const 1; i32.const 2; i32.const 1; select
	body := []wasm.Instruction{
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 11}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpDrop, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 1}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 2}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 1}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpSelect, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	fi := &instance.FunctionInstance{Type: ft, Module: mi, Code: &wasm.Code{Body: body}}
	addr := storeAddFunction(store, fi)
	mi.FuncAddrs = []uint32{addr}

	results, err := e.Invoke(context.Background(), addr, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, results)
}

func TestRunFrame_Global(t *testing.T) {
	e, store := newTestEngine()
	ft := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	g := &instance.GlobalInstance{Type: wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: true}, Value: [2]uint64{41}}
	store.Globals = append(store.Globals, g)
	mi := &instance.ModuleInstance{Types: []*wasm.FunctionType{ft}, GlobalAddrs: []uint32{0}}

	body := []wasm.Instruction{
		{Op: wasm.OpGlobalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 1}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpI32Add, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpGlobalSet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpGlobalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	fi := &instance.FunctionInstance{Type: ft, Module: mi, Code: &wasm.Code{Body: body}}
	addr := storeAddFunction(store, fi)
	mi.FuncAddrs = []uint32{addr}

	results, err := e.Invoke(context.Background(), addr, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, results)
}

func TestEngine_CallStackExhausted(t *testing.T) {
	store := instance.NewStore()
	e := NewEngine(store, NewRuntimeConfig().WithMaxCallStackDepth(2))

	ft := &wasm.FunctionType{}
	mi := &instance.ModuleInstance{Types: []*wasm.FunctionType{ft}}
	body := []wasm.Instruction{
		{Op: wasm.OpCall, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
	fi := &instance.FunctionInstance{Type: ft, Module: mi, Code: &wasm.Code{Body: body}}
	addr := storeAddFunction(store, fi)
	mi.FuncAddrs = []uint32{addr} // self-recursive

	_, err := e.Invoke(context.Background(), addr, nil)
	require.Error(t, err)
	trap, ok := err.(*wasm.Trap)
	require.True(t, ok)
	require.Equal(t, wasm.TrapCallStackExhausted, trap.Code)
}

func TestEngine_WithLogger(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	store := instance.NewStore()
	e := NewEngine(store, NewRuntimeConfig().WithLogger(logger))

	ft := &wasm.FunctionType{}
	fi := &instance.FunctionInstance{Type: ft, Module: &instance.ModuleInstance{}, Code: &wasm.Code{Body: []wasm.Instruction{
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}}}
	addr := storeAddFunction(store, fi)

	_, err := e.Invoke(context.Background(), addr, nil)
	require.NoError(t, err)
	require.NotEmpty(t, hook.Entries)
}

func TestEngine_Invoke_HostFunction(t *testing.T) {
	store := instance.NewStore()
	e := NewEngine(store, nil)
	hostFi := &instance.FunctionInstance{
		Type: i32Type(1, 1),
		Host: func(ctx context.Context, args []uint64) ([]uint64, error) {
			return []uint64{args[0] * 2}, nil
		},
	}
	store.Functions = append(store.Functions, hostFi)

	results, err := e.Invoke(context.Background(), 0, []uint64{21})
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, results)
}
