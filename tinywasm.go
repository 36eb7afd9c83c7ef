// Package tinywasm is a stand-alone WebAssembly 2.0 decoder and
// execution engine: a binary decoder/encoder, a stack-machine
// interpreter with full scalar numeric and v128 SIMD coverage, and the
// linking machinery that turns a decoded module plus host-provided
// imports into a runnable instance.
package tinywasm

import (
	"context"
	"fmt"

	"github.com/tinywasm/tinywasm/binary"
	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/vm"
	"github.com/tinywasm/tinywasm/wasm"
)

// Decode parses a WebAssembly binary module into its intermediate
// representation. It returns a *wasm.DecodeError for any malformed
// input.
func Decode(b []byte) (*wasm.Module, error) {
	return binary.DecodeModule(b)
}

// Encode serializes a module IR back to its canonical binary form.
func Encode(m *wasm.Module) []byte {
	return binary.EncodeModule(m)
}

// Extern is a host-resolved or host-exposed import/export value:
// exactly one field is populated, selected by Kind.
type Extern = instance.Extern

// ImportResolver resolves one (module, field) import name pair to a
// host-provided extern, checking it against the statically-declared
// type the importing module expects. Returning a non-nil error fails
// instantiation with a LinkError of code LinkMissingImport; the
// resolver's error value itself is not kept.
type ImportResolver interface {
	Resolve(moduleName, fieldName string, expected wasm.ExternType) (Extern, error)
}

// Instance is a fully linked, invocable module instantiation.
type Instance interface {
	// Export looks up a named export, returning ok=false if m declared
	// no export under that name.
	Export(name string) (Extern, bool)

	// ExportType reports the static extern type of a named export, as
	// an importer of this instance would see it, without resolving the
	// concrete instance Export does. ok is false if m declared no
	// export under that name.
	ExportType(name string) (wasm.ExternType, bool)

	// Invoke calls the exported or otherwise addressable function at
	// funcAddr, encoding args and results one uint64 per scalar or
	// reference parameter/result and two consecutive uint64s
	// (low, high) per v128.
	Invoke(ctx context.Context, funcAddr uint32, args ...uint64) ([]uint64, error)

	// PutExtern stores an arbitrary host value and returns its externref
	// operand encoding, suitable as an argument to Invoke or as a
	// host function's result of type externref. A host function
	// closure typically captures the eventual Instance value (set once
	// Instantiate returns) to call this and Extern from within its own
	// body.
	PutExtern(v any) uint64

	// Extern resolves an externref operand, such as one received by a
	// host function, back to the Go value PutExtern stored for it. ok
	// is false for the null reference (operand zero).
	Extern(operand uint64) (v any, ok bool)
}

// RuntimeConfig re-exports vm.RuntimeConfig, the knob set controlling
// an Instance's resource ceilings and diagnostics.
type RuntimeConfig = vm.RuntimeConfig

// Instantiate links m against imports, allocates its functions,
// tables, memories, and globals into a fresh store, applies its
// element and data segments, and — if m declares one — invokes its
// start function before returning. cfg may be nil to take engine
// defaults.
func Instantiate(ctx context.Context, m *wasm.Module, imports ImportResolver, cfg *vm.RuntimeConfig) (Instance, error) {
	store := instance.NewStore()
	mi, err := instance.Instantiate(store, m, adaptResolver{r: imports, m: m})
	if err != nil {
		return nil, err
	}
	engine := vm.NewEngine(store, cfg)

	inst := &wasmInstance{mi: mi, store: store, engine: engine}
	if mi.StartFuncAddr != nil {
		if _, err := engine.Invoke(ctx, *mi.StartFuncAddr, nil); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

type wasmInstance struct {
	mi     *instance.ModuleInstance
	store  *instance.Store
	engine *vm.Engine
}

func (i *wasmInstance) Export(name string) (Extern, bool) {
	exp, ok := i.mi.Exports[name]
	if !ok {
		return Extern{}, false
	}
	switch exp.Kind {
	case wasm.ExternKindFunc:
		return Extern{Kind: exp.Kind, Func: i.store.Functions[exp.Addr]}, true
	case wasm.ExternKindTable:
		return Extern{Kind: exp.Kind, Table: i.store.Tables[exp.Addr]}, true
	case wasm.ExternKindMemory:
		return Extern{Kind: exp.Kind, Memory: i.store.Memories[exp.Addr]}, true
	case wasm.ExternKindGlobal:
		return Extern{Kind: exp.Kind, Global: i.store.Globals[exp.Addr]}, true
	default:
		return Extern{}, false
	}
}

func (i *wasmInstance) Invoke(ctx context.Context, funcAddr uint32, args ...uint64) ([]uint64, error) {
	return i.engine.Invoke(ctx, funcAddr, args)
}

func (i *wasmInstance) ExportType(name string) (wasm.ExternType, bool) {
	exp, ok := i.mi.Exports[name]
	if !ok {
		return wasm.ExternType{}, false
	}
	return i.mi.TypeOf(i.store, exp), true
}

func (i *wasmInstance) PutExtern(v any) uint64 { return i.store.PutExtern(v) }

func (i *wasmInstance) Extern(operand uint64) (any, bool) { return i.store.Extern(operand) }

// InvokeByName resolves name to its exported function's store address
// and calls it, for the common case of a caller that knows an export's
// name rather than its low-level address (Invoke's required form,
// since Export returns the extern's value, not its address). Returns
// an error if inst was not produced by Instantiate, or name does not
// name an exported function.
func InvokeByName(ctx context.Context, inst Instance, name string, args ...uint64) ([]uint64, error) {
	wi, ok := inst.(*wasmInstance)
	if !ok {
		return nil, fmt.Errorf("tinywasm: %T was not produced by Instantiate", inst)
	}
	exp, ok := wi.mi.Exports[name]
	if !ok || exp.Kind != wasm.ExternKindFunc {
		return nil, fmt.Errorf("tinywasm: no exported function %q", name)
	}
	return inst.Invoke(ctx, exp.Addr, args...)
}

// adaptResolver bridges the package-level ImportResolver — which
// carries the caller's expected type per the specification's import
// linking description — to instance.ImportResolver's simpler
// module/name lookup, which the instance package uses internally
// without depending on wasm.ExternType equality checks living outside
// it. The expected type comes from the importing module's own import
// section entry, found by name since that is all instance.Instantiate
// passes through.
type adaptResolver struct {
	r ImportResolver
	m *wasm.Module
}

func (a adaptResolver) Resolve(module, name string) (instance.Extern, bool) {
	if a.r == nil {
		return instance.Extern{}, false
	}
	imp := findImport(a.m, module, name)
	if imp == nil {
		return instance.Extern{}, false
	}
	extern, err := a.r.Resolve(module, name, expectedExternType(a.m, imp))
	if err != nil {
		return instance.Extern{}, false
	}
	return extern, true
}

func findImport(m *wasm.Module, module, name string) *wasm.Import {
	for _, imp := range m.ImportSection {
		if imp.Module == module && imp.Name == name {
			return imp
		}
	}
	return nil
}

func expectedExternType(m *wasm.Module, imp *wasm.Import) wasm.ExternType {
	switch imp.Kind {
	case wasm.ExternKindFunc:
		return wasm.ExternType{Kind: imp.Kind, Func: m.TypeSection[imp.TypeIndex]}
	case wasm.ExternKindTable:
		return wasm.ExternType{Kind: imp.Kind, Table: imp.TableType}
	case wasm.ExternKindMemory:
		return wasm.ExternType{Kind: imp.Kind, Memory: imp.MemoryType}
	case wasm.ExternKindGlobal:
		return wasm.ExternType{Kind: imp.Kind, Global: imp.GlobalType}
	default:
		return wasm.ExternType{}
	}
}
