package instance

import (
	"context"

	"github.com/tinywasm/tinywasm/wasm"
)

// HostFunction is a host-implemented import. args and the returned
// results are encoded the same way the interpreter's operand stack
// encodes values: one uint64 per scalar parameter/result, two
// consecutive uint64s (low, high) per v128.
type HostFunction func(ctx context.Context, args []uint64) ([]uint64, error)

// FunctionInstance is a function address's content: either a decoded
// wasm function closed over the module instance that owns its locals'
// type context and call/global/table/memory index spaces, or a host
// function with no such closure.
type FunctionInstance struct {
	Type *wasm.FunctionType

	// Set iff this is a wasm-defined function.
	Module *ModuleInstance
	Code   *wasm.Code

	// Set iff this is a host-defined function (Module/Code are nil).
	Host HostFunction
}

// IsHost reports whether this function address is a host import rather
// than a wasm-defined function.
func (fi *FunctionInstance) IsHost() bool { return fi.Host != nil }
