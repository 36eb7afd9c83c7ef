package binary

import "github.com/tinywasm/tinywasm/wasm"

func decodeImport(r *reader) (*wasm.Import, error) {
	mod, err := r.name()
	if err != nil {
		return nil, err
	}
	name, err := r.name()
	if err != nil {
		return nil, err
	}
	off := r.offset()
	kind, err := r.byte()
	if err != nil {
		return nil, err
	}
	imp := &wasm.Import{Module: mod, Name: name, Kind: wasm.ExternKind(kind)}
	switch imp.Kind {
	case wasm.ExternKindFunc:
		imp.TypeIndex, err = r.varU32()
	case wasm.ExternKindTable:
		imp.TableType, err = decodeTableType(r)
	case wasm.ExternKindMemory:
		imp.MemoryType, err = decodeMemoryType(r)
	case wasm.ExternKindGlobal:
		imp.GlobalType, err = decodeGlobalType(r)
	default:
		return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	if err != nil {
		return nil, err
	}
	return imp, nil
}
