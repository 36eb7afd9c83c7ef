package instance

import (
	"github.com/tinywasm/tinywasm/wasm"
)

// Instantiate links m against imports and allocates every one of its
// declared functions, tables, memories, and globals into store,
// following the six-step sequence the specification's instantiation
// algorithm describes: resolve imports (checking each against its
// declared type), allocate local tables/memories/globals (evaluating
// each global's restricted initializer against the partially-built
// index space), allocate local functions, evaluate and apply element
// and data segments, and install exports. It does not invoke the
// module's start function; the caller does that once satisfied the
// instance is fully linked, so this package stays independent of the
// interpreter that would run it.
func Instantiate(store *Store, m *wasm.Module, imports ImportResolver) (*ModuleInstance, error) {
	mi := &ModuleInstance{
		Types:   m.TypeSection,
		Exports: map[string]ExportInstance{},
	}

	if err := resolveImports(store, m, imports, mi); err != nil {
		return nil, err
	}

	allocateLocalTables(store, m, mi)
	allocateLocalMemories(store, m, mi)
	if err := allocateLocalGlobals(store, m, mi); err != nil {
		return nil, err
	}

	allocateLocalFunctions(store, m, mi)

	elems, err := evaluateElementSegments(store, m, mi)
	if err != nil {
		return nil, err
	}
	data := evaluateDataSegments(store, m, mi)

	if err := applyActiveElements(store, m, mi, elems); err != nil {
		return nil, err
	}
	if err := applyActiveData(store, m, mi, data); err != nil {
		return nil, err
	}

	installExports(m, mi)

	if m.StartSection != nil {
		addr := mi.FuncAddrs[*m.StartSection]
		mi.StartFuncAddr = &addr
	}

	return mi, nil
}

func resolveImports(store *Store, m *wasm.Module, imports ImportResolver, mi *ModuleInstance) error {
	mi.FuncAddrs = make([]uint32, 0, m.ImportCount(wasm.ExternKindFunc)+uint32(len(m.FunctionSection)))
	for _, imp := range m.ImportSection {
		var resolver ImportResolver = imports
		if resolver == nil {
			return &wasm.LinkError{Code: wasm.LinkMissingImport}
		}
		extern, ok := resolver.Resolve(imp.Module, imp.Name)
		if !ok {
			return &wasm.LinkError{Code: wasm.LinkMissingImport}
		}
		if extern.Kind != imp.Kind {
			return &wasm.LinkError{Code: wasm.LinkTypeMismatch}
		}
		switch imp.Kind {
		case wasm.ExternKindFunc:
			if extern.Func == nil || !extern.Func.Type.Equal(m.TypeSection[imp.TypeIndex]) {
				return &wasm.LinkError{Code: wasm.LinkTypeMismatch}
			}
			addr := store.addFunction(extern.Func)
			mi.FuncAddrs = append(mi.FuncAddrs, addr)

		case wasm.ExternKindTable:
			if extern.Table == nil || !tableTypeCompatible(extern.Table.Type, *imp.TableType) {
				return &wasm.LinkError{Code: wasm.LinkTypeMismatch}
			}
			addr := store.addTable(extern.Table)
			mi.TableAddrs = append(mi.TableAddrs, addr)

		case wasm.ExternKindMemory:
			if extern.Memory == nil || !memoryTypeCompatible(extern.Memory.Type, *imp.MemoryType) {
				return &wasm.LinkError{Code: wasm.LinkTypeMismatch}
			}
			addr := store.addMemory(extern.Memory)
			mi.MemoryAddrs = append(mi.MemoryAddrs, addr)

		case wasm.ExternKindGlobal:
			if extern.Global == nil || extern.Global.Type != *imp.GlobalType {
				return &wasm.LinkError{Code: wasm.LinkTypeMismatch}
			}
			addr := store.addGlobal(extern.Global)
			mi.GlobalAddrs = append(mi.GlobalAddrs, addr)
		}
	}
	mi.ImportedGlobalCount = len(mi.GlobalAddrs)
	return nil
}

// tableTypeCompatible implements the subtype rule an imported table
// must satisfy: matching element type, and a limits range at least as
// tight as declared.
func tableTypeCompatible(have, want wasm.TableType) bool {
	if have.ElemType != want.ElemType {
		return false
	}
	return limitsCompatible(have.Limits, want.Limits)
}

func memoryTypeCompatible(have, want wasm.MemoryType) bool {
	return limitsCompatible(have.Limits, want.Limits)
}

func limitsCompatible(have, want wasm.Limits) bool {
	if have.Min < want.Min {
		return false
	}
	if want.Max == nil {
		return true
	}
	if have.Max == nil {
		return false
	}
	return *have.Max <= *want.Max
}

func allocateLocalTables(store *Store, m *wasm.Module, mi *ModuleInstance) {
	for _, tt := range m.TableSection {
		addr := store.addTable(NewTableInstance(*tt))
		mi.TableAddrs = append(mi.TableAddrs, addr)
	}
}

func allocateLocalMemories(store *Store, m *wasm.Module, mi *ModuleInstance) {
	for _, mt := range m.MemorySection {
		addr := store.addMemory(NewMemoryInstance(*mt))
		mi.MemoryAddrs = append(mi.MemoryAddrs, addr)
	}
}

// allocateLocalGlobals evaluates each declared global's initializer in
// order. A global.get in an initializer may only name an imported
// global; evalConstExpr rejects any locally-declared one, earlier or
// not.
func allocateLocalGlobals(store *Store, m *wasm.Module, mi *ModuleInstance) error {
	for _, g := range m.GlobalSection {
		val, err := evalConstExpr(store, mi, g.Init)
		if err != nil {
			return err
		}
		addr := store.addGlobal(&GlobalInstance{Type: *g.Type, Value: val})
		mi.GlobalAddrs = append(mi.GlobalAddrs, addr)
	}
	return nil
}

func allocateLocalFunctions(store *Store, m *wasm.Module, mi *ModuleInstance) {
	for i, typeIdx := range m.FunctionSection {
		fi := &FunctionInstance{
			Type:   m.TypeSection[typeIdx],
			Module: mi,
			Code:   m.CodeSection[i],
		}
		addr := store.addFunction(fi)
		mi.FuncAddrs = append(mi.FuncAddrs, addr)
	}
}

// resolvedElement is one element segment's evaluated reference vector,
// computed before any segment is applied so that an evaluation failure
// in a later segment never leaves an earlier one half-applied.
type resolvedElement struct {
	seg  *wasm.ElementSegment
	refs []uint64
}

func evaluateElementSegments(store *Store, m *wasm.Module, mi *ModuleInstance) ([]resolvedElement, error) {
	resolved := make([]resolvedElement, len(m.ElementSection))
	for i, seg := range m.ElementSection {
		refs := make([]uint64, len(seg.Init))
		for j, init := range seg.Init {
			v, err := evalConstExpr(store, mi, init)
			if err != nil {
				return nil, err
			}
			refs[j] = v[0]
		}
		resolved[i] = resolvedElement{seg: seg, refs: refs}

		addr := store.addElement(&ElementInstance{
			RefType: seg.RefType,
			Refs:    append([]uint64(nil), refs...),
			Dropped: seg.Mode == wasm.ElementModeDeclarative,
		})
		mi.ElemAddrs = append(mi.ElemAddrs, addr)
	}
	return resolved, nil
}

type resolvedData struct {
	seg *wasm.DataSegment
}

// evaluateDataSegments allocates the Data arena entry for every data
// segment up front, active and passive alike, mirroring
// evaluateElementSegments: a data.drop or active-copy failure later
// never needs to reason about entries that don't exist yet.
func evaluateDataSegments(store *Store, m *wasm.Module, mi *ModuleInstance) []resolvedData {
	resolved := make([]resolvedData, len(m.DataSection))
	for i, seg := range m.DataSection {
		resolved[i] = resolvedData{seg: seg}
		addr := store.addData(&DataInstance{Bytes: append([]byte(nil), seg.Init...)})
		mi.DataAddrs = append(mi.DataAddrs, addr)
	}
	return resolved
}

// applyActiveElements copies each active element segment's references
// into its target table. Every active segment's offset and range is validated
// before any segment writes, so a later segment's trap never leaves an
// earlier active copy applied and a subsequent one silently skipped.
func applyActiveElements(store *Store, m *wasm.Module, mi *ModuleInstance, resolved []resolvedElement) error {
	type pending struct {
		table  *TableInstance
		offset uint32
		refs   []uint64
	}
	var plan []pending
	for _, r := range resolved {
		if r.seg.Mode != wasm.ElementModeActive {
			continue
		}
		off, err := evalConstExpr(store, mi, r.seg.OffsetExpr)
		if err != nil {
			return err
		}
		table := store.Tables[mi.TableAddrs[r.seg.TableIndex]]
		offset := uint32(off[0])
		if uint64(offset)+uint64(len(r.refs)) > uint64(table.Size()) {
			return wasm.NewTrap(wasm.TrapSegmentInitOutOfBounds)
		}
		plan = append(plan, pending{table: table, offset: offset, refs: r.refs})
	}
	for _, p := range plan {
		copy(p.table.Elements[p.offset:], p.refs)
	}
	return nil
}

func applyActiveData(store *Store, m *wasm.Module, mi *ModuleInstance, resolved []resolvedData) error {
	type pending struct {
		mem    *MemoryInstance
		offset uint32
		bytes  []byte
	}
	var plan []pending
	for _, r := range resolved {
		if r.seg.Mode != wasm.DataModeActive {
			continue
		}
		off, err := evalConstExpr(store, mi, r.seg.OffsetExpr)
		if err != nil {
			return err
		}
		mem := store.Memories[mi.MemoryAddrs[r.seg.MemoryIndex]]
		offset := uint32(off[0])
		if uint64(offset)+uint64(len(r.seg.Init)) > uint64(len(mem.Data)) {
			return wasm.NewTrap(wasm.TrapSegmentInitOutOfBounds)
		}
		plan = append(plan, pending{mem: mem, offset: offset, bytes: r.seg.Init})
	}
	for _, p := range plan {
		copy(p.mem.Data[p.offset:], p.bytes)
	}
	return nil
}

func installExports(m *wasm.Module, mi *ModuleInstance) {
	for _, exp := range m.ExportSection {
		var addr uint32
		switch exp.Kind {
		case wasm.ExternKindFunc:
			addr = mi.FuncAddrs[exp.Index]
		case wasm.ExternKindTable:
			addr = mi.TableAddrs[exp.Index]
		case wasm.ExternKindMemory:
			addr = mi.MemoryAddrs[exp.Index]
		case wasm.ExternKindGlobal:
			addr = mi.GlobalAddrs[exp.Index]
		}
		mi.Exports[exp.Name] = ExportInstance{Kind: exp.Kind, Addr: addr}
	}
}
