package binary

import "github.com/tinywasm/tinywasm/wasm"

// sectionOrder is the fixed physical ordering of non-custom sections.
// It is not the same as ascending numeric id: the data-count section
// (id 12) is placed between element (9) and code (10), so order is
// enforced against this table rather than against raw id values.
var sectionOrder = []SectionID{
	SectionType, SectionImport, SectionFunction, SectionTable,
	SectionMemory, SectionGlobal, SectionExport, SectionStart,
	SectionElement, SectionDataCount, SectionCode, SectionData,
}

func sectionOrderIndex(id SectionID) int {
	for i, s := range sectionOrder {
		if s == id {
			return i
		}
	}
	return -1
}

// DecodeModule decodes a complete binary module: the 8-byte preamble
// followed by the section stream. Non-custom sections must appear at
// most once and in the fixed physical order above; custom sections may
// appear anywhere, any number of times, and are preserved in
// declaration order in CustomSectionOrder.
func DecodeModule(b []byte) (*wasm.Module, error) {
	r := newReader(b)

	for i, want := range magic {
		got, err := r.byte()
		if err != nil {
			return nil, err
		}
		if got != want {
			return nil, r.errAt(i, wasm.DecodeInvalidMagic, nil)
		}
	}
	for i, want := range version {
		got, err := r.byte()
		if err != nil {
			return nil, err
		}
		if got != want {
			return nil, r.errAt(4+i, wasm.DecodeInvalidVersion, nil)
		}
	}

	m := &wasm.Module{CustomSections: map[string][]byte{}}
	lastOrderIdx := -1
	seen := map[SectionID]bool{}

	for r.remaining() > 0 {
		secOff := r.offset()
		idByte, err := r.byte()
		if err != nil {
			return nil, err
		}
		id := SectionID(idByte)
		if id > SectionDataCount {
			return nil, r.errAt(secOff, wasm.DecodeInvalidSectionID, nil)
		}

		size, err := r.varU32()
		if err != nil {
			return nil, err
		}
		contentStart := r.offset()
		content, err := r.bytes(int(size))
		if err != nil {
			return nil, err
		}

		if id != SectionCustom {
			if seen[id] {
				return nil, r.errAt(secOff, wasm.DecodeDuplicateSection, nil)
			}
			idx := sectionOrderIndex(id)
			if idx <= lastOrderIdx {
				return nil, r.errAt(secOff, wasm.DecodeSectionOutOfOrder, nil)
			}
			seen[id] = true
			lastOrderIdx = idx
		}

		sr := newReader(content)
		if err := decodeSection(m, id, sr); err != nil {
			return nil, err
		}
		if id != SectionCustom && sr.remaining() != 0 {
			return nil, r.errAt(contentStart, wasm.DecodeSectionLengthMismatch, nil)
		}
	}

	if len(m.FunctionSection) != len(m.CodeSection) {
		return nil, r.errAt(r.offset(), wasm.DecodeFunctionCodeMismatch, nil)
	}

	return m, nil
}

func decodeSection(m *wasm.Module, id SectionID, r *reader) error {
	switch id {
	case SectionCustom:
		name, err := r.name()
		if err != nil {
			return err
		}
		rest := r.b[r.pos:]
		data := make([]byte, len(rest))
		copy(data, rest)
		r.pos = len(r.b)
		m.CustomSections[name] = data
		m.CustomSectionOrder = append(m.CustomSectionOrder, name)
		if name == "name" {
			m.NameSection = decodeNameSection(data)
		}
		return nil

	case SectionType:
		return decodeVector(r, &m.TypeSection, decodeFunctionType)

	case SectionImport:
		return decodeVector(r, &m.ImportSection, decodeImport)

	case SectionFunction:
		n, err := r.varU32()
		if err != nil {
			return err
		}
		m.FunctionSection = make([]uint32, n)
		for i := range m.FunctionSection {
			m.FunctionSection[i], err = r.varU32()
			if err != nil {
				return err
			}
		}
		return nil

	case SectionTable:
		return decodeVector(r, &m.TableSection, decodeTableType)

	case SectionMemory:
		return decodeVector(r, &m.MemorySection, decodeMemoryType)

	case SectionGlobal:
		return decodeVector(r, &m.GlobalSection, decodeGlobal)

	case SectionExport:
		return decodeVector(r, &m.ExportSection, decodeExport)

	case SectionStart:
		idx, err := r.varU32()
		if err != nil {
			return err
		}
		m.StartSection = &idx
		return nil

	case SectionElement:
		return decodeVector(r, &m.ElementSection, decodeElement)

	case SectionCode:
		return decodeVector(r, &m.CodeSection, decodeCode)

	case SectionData:
		return decodeVector(r, &m.DataSection, decodeData)

	case SectionDataCount:
		n, err := r.varU32()
		if err != nil {
			return err
		}
		m.DataCount = &n
		return nil

	default:
		return r.errAt(r.offset(), wasm.DecodeInvalidSectionID, nil)
	}
}

// decodeVector reads a u32 count followed by that many elements decoded
// by elem, the shape every section but function/start/data-count uses.
func decodeVector[T any](r *reader, out *[]T, elem func(*reader) (T, error)) error {
	n, err := r.varU32()
	if err != nil {
		return err
	}
	vec := make([]T, n)
	for i := range vec {
		vec[i], err = elem(r)
		if err != nil {
			return err
		}
	}
	*out = vec
	return nil
}
