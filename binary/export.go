package binary

import "github.com/tinywasm/tinywasm/wasm"

func decodeExport(r *reader) (*wasm.Export, error) {
	name, err := r.name()
	if err != nil {
		return nil, err
	}
	off := r.offset()
	kind, err := r.byte()
	if err != nil {
		return nil, err
	}
	switch wasm.ExternKind(kind) {
	case wasm.ExternKindFunc, wasm.ExternKindTable, wasm.ExternKindMemory, wasm.ExternKindGlobal:
	default:
		return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	idx, err := r.varU32()
	if err != nil {
		return nil, err
	}
	return &wasm.Export{Name: name, Kind: wasm.ExternKind(kind), Index: idx}, nil
}
