package tinywasm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/wasm"
)

func TestInstantiate_ExportedConstant(t *testing.T) {
	ft := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	m := &wasm.Module{
		TypeSection:     []*wasm.FunctionType{ft},
		FunctionSection: []uint32{0},
		CodeSection: []*wasm.Code{{Body: []wasm.Instruction{
			{Op: wasm.OpI32Const, Imm: wasm.ImmI32{V: 99}, ElseIndex: -1, EndIndex: -1},
			{Op: wasm.OpEnd, ElseIndex: -1, EndIndex: -1},
		}}},
		ExportSection: []*wasm.Export{{Name: "answer", Kind: wasm.ExternKindFunc, Index: 0}},
	}

	inst, err := Instantiate(context.Background(), m, nil, nil)
	require.NoError(t, err)

	results, err := InvokeByName(context.Background(), inst, "answer")
	require.NoError(t, err)
	require.Equal(t, []uint64{99}, results)

	et, ok := inst.ExportType("answer")
	require.True(t, ok)
	require.Equal(t, wasm.ExternKindFunc, et.Kind)
	require.Empty(t, et.Func.Params)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, et.Func.Results)

	_, ok = inst.ExportType("missing")
	require.False(t, ok)
}

// TestExtern_HostFunctionRoundTrip exercises PutExtern/Extern against an
// imported host function that hands back whatever externref it was
// given, the way an embedder wiring a Go object through an externref
// parameter would.
func TestExtern_HostFunctionRoundTrip(t *testing.T) {
	ft := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeExternref},
		Results: []wasm.ValueType{wasm.ValueTypeExternref},
	}
	identity := &instance.FunctionInstance{
		Type: ft,
		Host: func(ctx context.Context, args []uint64) ([]uint64, error) {
			return args, nil
		},
	}
	m := &wasm.Module{
		TypeSection: []*wasm.FunctionType{ft},
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "identity", Kind: wasm.ExternKindFunc, TypeIndex: 0},
		},
		ExportSection: []*wasm.Export{{Name: "identity", Kind: wasm.ExternKindFunc, Index: 0}},
	}

	resolver := instance.MapResolver{
		instance.Key("env", "identity"): {Kind: wasm.ExternKindFunc, Func: identity},
	}

	inst, err := Instantiate(context.Background(), m, adaptMapResolver{resolver, m}, nil)
	require.NoError(t, err)

	type payload struct{ name string }
	want := &payload{name: "host object"}
	operand := inst.PutExtern(want)

	results, err := InvokeByName(context.Background(), inst, "identity", operand)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got, ok := inst.Extern(results[0])
	require.True(t, ok)
	require.Same(t, want, got)

	_, ok = inst.Extern(0)
	require.False(t, ok)
}

// adaptMapResolver bridges an instance.MapResolver to the root
// package's 3-arg ImportResolver for tests that already have a
// module/name-keyed resolver in hand.
type adaptMapResolver struct {
	r instance.MapResolver
	m *wasm.Module
}

func (a adaptMapResolver) Resolve(module, name string, expected wasm.ExternType) (Extern, error) {
	e, ok := a.r.Resolve(module, name)
	if !ok {
		return Extern{}, errNotFound{module, name}
	}
	return e, nil
}

type errNotFound struct{ module, name string }

func (e errNotFound) Error() string { return "no import registered for " + e.module + "." + e.name }
