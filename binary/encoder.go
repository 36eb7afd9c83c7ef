package binary

import (
	"bytes"

	"github.com/tinywasm/tinywasm/leb128"
	"github.com/tinywasm/tinywasm/wasm"
)

func encodeFunctionType(w *writer, ft *wasm.FunctionType) {
	w.byte(funcTypeTag)
	w.valueTypeVec(ft.Params)
	w.valueTypeVec(ft.Results)
}

func encodeLimits(w *writer, l wasm.Limits) {
	if l.Max == nil {
		w.byte(0x00)
		w.u32(l.Min)
		return
	}
	w.byte(0x01)
	w.u32(l.Min)
	w.u32(*l.Max)
}

func encodeTableType(w *writer, t *wasm.TableType) {
	w.valueType(t.ElemType)
	encodeLimits(w, t.Limits)
}

func encodeMemoryType(w *writer, t *wasm.MemoryType) {
	encodeLimits(w, t.Limits)
}

func encodeGlobalType(w *writer, t *wasm.GlobalType) {
	w.valueType(t.ValType)
	if t.Mutable {
		w.byte(0x01)
	} else {
		w.byte(0x00)
	}
}

func encodeImport(w *writer, imp *wasm.Import) {
	w.name(imp.Module)
	w.name(imp.Name)
	w.byte(byte(imp.Kind))
	switch imp.Kind {
	case wasm.ExternKindFunc:
		w.u32(imp.TypeIndex)
	case wasm.ExternKindTable:
		encodeTableType(w, imp.TableType)
	case wasm.ExternKindMemory:
		encodeMemoryType(w, imp.MemoryType)
	case wasm.ExternKindGlobal:
		encodeGlobalType(w, imp.GlobalType)
	}
}

func encodeExport(w *writer, exp *wasm.Export) {
	w.name(exp.Name)
	w.byte(byte(exp.Kind))
	w.u32(exp.Index)
}

func encodeGlobal(w *writer, g *wasm.Global) {
	encodeGlobalType(w, g.Type)
	encodeExpr(w, g.Init)
}

// encodeElement always uses the general reference-producing encoding
// (flags 5/6/7), which can express every mode and reference type; the
// legacy func-index-vector shorthand (flags 0-3) is only ever produced
// by other encoders, never by this one.
func encodeElement(w *writer, seg *wasm.ElementSegment) {
	switch seg.Mode {
	case wasm.ElementModeActive:
		w.u32(6)
		w.u32(seg.TableIndex)
		encodeExpr(w, seg.OffsetExpr)
		w.valueType(seg.RefType)
	case wasm.ElementModePassive:
		w.u32(5)
		w.valueType(seg.RefType)
	case wasm.ElementModeDeclarative:
		w.u32(7)
		w.valueType(seg.RefType)
	}
	w.u32(uint32(len(seg.Init)))
	for _, init := range seg.Init {
		encodeExpr(w, init)
	}
}

func encodeData(w *writer, seg *wasm.DataSegment) {
	switch seg.Mode {
	case wasm.DataModeActive:
		w.u32(2)
		w.u32(seg.MemoryIndex)
		encodeExpr(w, seg.OffsetExpr)
	case wasm.DataModePassive:
		w.u32(1)
	}
	w.u32(uint32(len(seg.Init)))
	w.raw(seg.Init)
}

func encodeCode(w *writer, c *wasm.Code) {
	body := &writer{}

	// Re-run-length-encode LocalTypes; adjacent equal types collapse
	// into one (count, type) pair, matching what any encoder normally
	// produces even though decode expanded them individually.
	type run struct {
		vt    wasm.ValueType
		count uint32
	}
	var runs []run
	for _, vt := range c.LocalTypes {
		if len(runs) > 0 && runs[len(runs)-1].vt == vt {
			runs[len(runs)-1].count++
			continue
		}
		runs = append(runs, run{vt: vt, count: 1})
	}
	body.u32(uint32(len(runs)))
	for _, rn := range runs {
		body.u32(rn.count)
		body.valueType(rn.vt)
	}
	encodeExpr(body, c.Body)

	w.u32(uint32(len(body.bytes())))
	w.raw(body.bytes())
}

func encodeNameSection(ns *wasm.NameSection) []byte {
	w := &writer{}
	if ns.ModuleName != "" {
		sub := &writer{}
		sub.name(ns.ModuleName)
		w.byte(nameSubsectionModule)
		w.u32(uint32(len(sub.bytes())))
		w.raw(sub.bytes())
	}
	if len(ns.FunctionNames) > 0 {
		sub := &writer{}
		encodeNameMap(sub, ns.FunctionNames)
		w.byte(nameSubsectionFunction)
		w.u32(uint32(len(sub.bytes())))
		w.raw(sub.bytes())
	}
	if len(ns.LocalNames) > 0 {
		sub := &writer{}
		sub.u32(uint32(len(ns.LocalNames)))
		for funcIdx, locals := range ns.LocalNames {
			sub.u32(funcIdx)
			encodeNameMap(sub, locals)
		}
		w.byte(nameSubsectionLocal)
		w.u32(uint32(len(sub.bytes())))
		w.raw(sub.bytes())
	}
	return w.bytes()
}

func encodeNameMap(w *writer, m map[uint32]string) {
	w.u32(uint32(len(m)))
	for idx, name := range m {
		w.u32(idx)
		w.name(name)
	}
}

// EncodeModule serializes a Module back into the binary format. Known
// sections are emitted in the fixed physical order the format
// requires; custom sections are appended afterward in
// CustomSectionOrder. This does not guarantee byte-for-byte identity
// with an arbitrary source binary (which may have interleaved custom
// sections, non-minimal LEB128 encodings rejected at decode, or a
// legacy element/data shorthand), only that re-decoding the result
// yields an equal Module.
func EncodeModule(m *wasm.Module) []byte {
	var out bytes.Buffer
	out.Write(magic[:])
	out.Write(version[:])

	section := func(id SectionID, body []byte) {
		if len(body) == 0 {
			return
		}
		out.WriteByte(byte(id))
		out.Write(leb128.EncodeUint32(uint32(len(body))))
		out.Write(body)
	}

	if len(m.TypeSection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.TypeSection)))
		for _, ft := range m.TypeSection {
			encodeFunctionType(w, ft)
		}
		section(SectionType, w.bytes())
	}

	if len(m.ImportSection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.ImportSection)))
		for _, imp := range m.ImportSection {
			encodeImport(w, imp)
		}
		section(SectionImport, w.bytes())
	}

	if len(m.FunctionSection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.FunctionSection)))
		for _, idx := range m.FunctionSection {
			w.u32(idx)
		}
		section(SectionFunction, w.bytes())
	}

	if len(m.TableSection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.TableSection)))
		for _, t := range m.TableSection {
			encodeTableType(w, t)
		}
		section(SectionTable, w.bytes())
	}

	if len(m.MemorySection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.MemorySection)))
		for _, t := range m.MemorySection {
			encodeMemoryType(w, t)
		}
		section(SectionMemory, w.bytes())
	}

	if len(m.GlobalSection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.GlobalSection)))
		for _, g := range m.GlobalSection {
			encodeGlobal(w, g)
		}
		section(SectionGlobal, w.bytes())
	}

	if len(m.ExportSection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.ExportSection)))
		for _, exp := range m.ExportSection {
			encodeExport(w, exp)
		}
		section(SectionExport, w.bytes())
	}

	if m.StartSection != nil {
		w := &writer{}
		w.u32(*m.StartSection)
		section(SectionStart, w.bytes())
	}

	if len(m.ElementSection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.ElementSection)))
		for _, e := range m.ElementSection {
			encodeElement(w, e)
		}
		section(SectionElement, w.bytes())
	}

	if m.DataCount != nil {
		w := &writer{}
		w.u32(*m.DataCount)
		section(SectionDataCount, w.bytes())
	}

	if len(m.CodeSection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.CodeSection)))
		for _, c := range m.CodeSection {
			encodeCode(w, c)
		}
		section(SectionCode, w.bytes())
	}

	if len(m.DataSection) > 0 {
		w := &writer{}
		w.u32(uint32(len(m.DataSection)))
		for _, d := range m.DataSection {
			encodeData(w, d)
		}
		section(SectionData, w.bytes())
	}

	for _, name := range m.CustomSectionOrder {
		w := &writer{}
		w.name(name)
		if name == "name" && m.NameSection != nil {
			w.raw(encodeNameSection(m.NameSection))
		} else {
			w.raw(m.CustomSections[name])
		}
		section(SectionCustom, w.bytes())
	}

	return out.Bytes()
}
