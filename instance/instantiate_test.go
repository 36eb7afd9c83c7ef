package instance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/tinywasm/wasm"
)

func constExprI32(v int32) []wasm.Instruction {
	return []wasm.Instruction{
		{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: v}, ElseIndex: -1, EndIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
	}
}

func TestInstantiate_MinimalModule(t *testing.T) {
	ft := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	m := &wasm.Module{
		TypeSection:     []*wasm.FunctionType{ft},
		FunctionSection: []uint32{0},
		CodeSection: []*wasm.Code{{Body: []wasm.Instruction{
			{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 42}, ElseIndex: -1, EndIndex: -1},
			{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
		}}},
		ExportSection: []*wasm.Export{{Name: "answer", Kind: wasm.ExternKindFunc, Index: 0}},
	}

	store := NewStore()
	mi, err := Instantiate(store, m, nil)
	require.NoError(t, err)
	require.Len(t, store.Functions, 1)

	exp, ok := mi.Exports["answer"]
	require.True(t, ok)
	require.Equal(t, wasm.ExternKindFunc, exp.Kind)
	require.Equal(t, mi.FuncAddrs[0], exp.Addr)
}

func TestInstantiate_GlobalInitializer(t *testing.T) {
	m := &wasm.Module{
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "seed", Kind: wasm.ExternKindGlobal,
				GlobalType: &wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: false}},
		},
		GlobalSection: []*wasm.Global{
			{Type: &wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: false}, Init: constExprI32(7)},
			{Type: &wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: true}, Init: []wasm.Instruction{
				{Op: wasm.OpGlobalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
				{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
			}},
		},
		ExportSection: []*wasm.Export{
			{Name: "g0", Kind: wasm.ExternKindGlobal, Index: 1},
			{Name: "g1", Kind: wasm.ExternKindGlobal, Index: 2},
		},
	}

	seed := &GlobalInstance{Type: wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: false}, Value: [2]uint64{9, 0}}
	resolver := MapResolver{Key("env", "seed"): {Kind: wasm.ExternKindGlobal, Global: seed}}

	store := NewStore()
	mi, err := Instantiate(store, m, resolver)
	require.NoError(t, err)
	require.Equal(t, uint64(7), store.Globals[mi.GlobalAddrs[1]].Value[0])
	require.Equal(t, uint64(9), store.Globals[mi.GlobalAddrs[2]].Value[0])
}

// TestInstantiate_GlobalInitializerRejectsLocalGlobalGet ensures a
// global's initializer cannot reference an earlier *local* global, only
// an imported one, even though the earlier local global is already
// allocated and immutable by the time this one evaluates.
func TestInstantiate_GlobalInitializerRejectsLocalGlobalGet(t *testing.T) {
	m := &wasm.Module{
		GlobalSection: []*wasm.Global{
			{Type: &wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: false}, Init: constExprI32(7)},
			{Type: &wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: false}, Init: []wasm.Instruction{
				{Op: wasm.OpGlobalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1},
				{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
			}},
		},
	}

	store := NewStore()
	_, err := Instantiate(store, m, nil)
	require.Error(t, err)
	var linkErr *wasm.LinkError
	require.ErrorAs(t, err, &linkErr)
}

func TestInstantiate_MissingImportFails(t *testing.T) {
	m := &wasm.Module{
		TypeSection: []*wasm.FunctionType{{}},
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "missing", Kind: wasm.ExternKindFunc, TypeIndex: 0},
		},
	}
	store := NewStore()
	_, err := Instantiate(store, m, MapResolver{})
	require.Error(t, err)
	linkErr, ok := err.(*wasm.LinkError)
	require.True(t, ok)
	require.Equal(t, wasm.LinkMissingImport, linkErr.Code)
}

func TestInstantiate_ImportedFunctionTypeMismatch(t *testing.T) {
	wantFt := &wasm.FunctionType{Params: []wasm.ValueType{wasm.ValueTypeI32}}
	haveFt := &wasm.FunctionType{} // no params: mismatched
	m := &wasm.Module{
		TypeSection: []*wasm.FunctionType{wantFt},
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "f", Kind: wasm.ExternKindFunc, TypeIndex: 0},
		},
	}
	resolver := MapResolver{
		Key("env", "f"): {Kind: wasm.ExternKindFunc, Func: &FunctionInstance{Type: haveFt}},
	}
	store := NewStore()
	_, err := Instantiate(store, m, resolver)
	require.Error(t, err)
	linkErr, ok := err.(*wasm.LinkError)
	require.True(t, ok)
	require.Equal(t, wasm.LinkTypeMismatch, linkErr.Code)
}

func TestInstantiate_ActiveElementSegment(t *testing.T) {
	ft := &wasm.FunctionType{}
	m := &wasm.Module{
		TypeSection:     []*wasm.FunctionType{ft},
		FunctionSection: []uint32{0, 0},
		CodeSection: []*wasm.Code{
			{Body: []wasm.Instruction{{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1}}},
			{Body: []wasm.Instruction{{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1}}},
		},
		TableSection: []*wasm.TableType{
			{ElemType: wasm.ValueTypeFuncref, Limits: wasm.Limits{Min: 4}},
		},
		ElementSection: []*wasm.ElementSegment{
			{
				Mode:       wasm.ElementModeActive,
				TableIndex: 0,
				OffsetExpr: constExprI32(1),
				RefType:    wasm.ValueTypeFuncref,
				Init: [][]wasm.Instruction{
					{{Op: wasm.OpRefFunc, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1, EndIndex: -1}, {Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1}},
					{{Op: wasm.OpRefFunc, Imm: wasm.ImmIndex{Index: 1}, ElseIndex: -1, EndIndex: -1}, {Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1}},
				},
			},
		},
	}

	store := NewStore()
	mi, err := Instantiate(store, m, nil)
	require.NoError(t, err)

	table := store.Tables[mi.TableAddrs[0]]
	require.Equal(t, uint64(mi.FuncAddrs[0])+1, table.Elements[1])
	require.Equal(t, uint64(mi.FuncAddrs[1])+1, table.Elements[2])
}

func TestInstantiate_ActiveDataSegmentOutOfBoundsFails(t *testing.T) {
	m := &wasm.Module{
		MemorySection: []*wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		DataSection: []*wasm.DataSegment{
			{
				Mode:       wasm.DataModeActive,
				OffsetExpr: constExprI32(65530),
				Init:       []byte{1, 2, 3, 4, 5, 6, 7, 8}, // runs past the single page
			},
		},
	}
	store := NewStore()
	_, err := Instantiate(store, m, nil)
	require.Error(t, err)
	_, ok := err.(*wasm.Trap)
	require.True(t, ok)
}

func TestInstantiate_StartFunctionAddrResolved(t *testing.T) {
	ft := &wasm.FunctionType{}
	zero := uint32(0)
	m := &wasm.Module{
		TypeSection:     []*wasm.FunctionType{ft},
		FunctionSection: []uint32{0},
		CodeSection:     []*wasm.Code{{Body: []wasm.Instruction{{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1}}}},
		StartSection:    &zero,
	}
	store := NewStore()
	mi, err := Instantiate(store, m, nil)
	require.NoError(t, err)
	require.NotNil(t, mi.StartFuncAddr)
	require.Equal(t, mi.FuncAddrs[0], *mi.StartFuncAddr)
}
