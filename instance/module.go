package instance

import "github.com/tinywasm/tinywasm/wasm"

// ModuleInstance is one instantiation's index spaces: for each extern
// kind, the vector mapping that module's local indices (imports first,
// then locally declared instances, exactly as the binary format lays
// them out) to store addresses.
type ModuleInstance struct {
	Types []*wasm.FunctionType

	FuncAddrs   []uint32
	TableAddrs  []uint32
	MemoryAddrs []uint32
	GlobalAddrs []uint32
	ElemAddrs   []uint32
	DataAddrs   []uint32

	// ImportedGlobalCount is the number of entries at the front of
	// GlobalAddrs that came from imports rather than this module's own
	// global section. Constant expressions may only address globals
	// within this prefix, never a locally-declared one.
	ImportedGlobalCount int

	Exports map[string]ExportInstance

	// StartFuncAddr is the store address of the module's start
	// function, if it declared one. Instantiate does not invoke it;
	// the caller does, once the instance is fully linked, so that this
	// package never needs to depend on the interpreter.
	StartFuncAddr *uint32
}

// ExportInstance is one resolved export: the kind plus the store
// address of the corresponding instance.
type ExportInstance struct {
	Kind wasm.ExternKind
	Addr uint32
}

// TypeOf returns the static extern type of export e as seen by an
// importer, consulting the store for the concrete instance's type.
func (mi *ModuleInstance) TypeOf(store *Store, e ExportInstance) wasm.ExternType {
	switch e.Kind {
	case wasm.ExternKindFunc:
		return wasm.ExternType{Kind: e.Kind, Func: store.Functions[e.Addr].Type}
	case wasm.ExternKindTable:
		t := store.Tables[e.Addr].Type
		return wasm.ExternType{Kind: e.Kind, Table: &t}
	case wasm.ExternKindMemory:
		t := store.Memories[e.Addr].Type
		return wasm.ExternType{Kind: e.Kind, Memory: &t}
	case wasm.ExternKindGlobal:
		t := store.Globals[e.Addr].Type
		return wasm.ExternType{Kind: e.Kind, Global: &t}
	default:
		return wasm.ExternType{}
	}
}
