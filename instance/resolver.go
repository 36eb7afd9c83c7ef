package instance

import "github.com/tinywasm/tinywasm/wasm"

// Extern is a host-resolved import: exactly one of the four fields is
// populated, selected by Kind, mirroring wasm.Import's own shape.
type Extern struct {
	Kind   wasm.ExternKind
	Func   *FunctionInstance
	Table  *TableInstance
	Memory *MemoryInstance
	Global *GlobalInstance
}

// ImportResolver resolves a module/name import pair to a host-provided
// extern. Resolve returns ok=false if the host has nothing registered
// under that two-part name; Instantiate turns that into a LinkError.
type ImportResolver interface {
	Resolve(module, name string) (Extern, bool)
}

// MapResolver is the simplest ImportResolver: a flat map keyed by
// "module.name", convenient for host embedders that just want to
// register a handful of functions and globals.
type MapResolver map[string]Extern

// Resolve implements ImportResolver.
func (r MapResolver) Resolve(module, name string) (Extern, bool) {
	e, ok := r[module+"."+name]
	return e, ok
}

// Key builds the lookup key MapResolver uses, exported so callers
// populating a MapResolver don't have to know its separator.
func Key(module, name string) string { return module + "." + name }
