package binary

import "github.com/tinywasm/tinywasm/wasm"

// magic is the 4-byte preamble of the binary format: literally "\0asm".
var magic = [4]byte{0x00, 0x61, 0x73, 0x6D}

// version is the format version word; this decoder targets the single
// version defined so far.
var version = [4]byte{0x01, 0x00, 0x00, 0x00}

// SectionID identifies a top-level section.
type SectionID byte

const (
	SectionCustom    SectionID = 0
	SectionType      SectionID = 1
	SectionImport    SectionID = 2
	SectionFunction  SectionID = 3
	SectionTable     SectionID = 4
	SectionMemory    SectionID = 5
	SectionGlobal    SectionID = 6
	SectionExport    SectionID = 7
	SectionStart     SectionID = 8
	SectionElement   SectionID = 9
	SectionCode      SectionID = 10
	SectionData      SectionID = 11
	SectionDataCount SectionID = 12
)

const funcTypeTag = 0x60

func decodeFunctionType(r *reader) (*wasm.FunctionType, error) {
	off := r.offset()
	b, err := r.byte()
	if err != nil {
		return nil, err
	}
	if b != funcTypeTag {
		return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	params, err := r.valueTypeVec()
	if err != nil {
		return nil, err
	}
	results, err := r.valueTypeVec()
	if err != nil {
		return nil, err
	}
	return &wasm.FunctionType{Params: params, Results: results}, nil
}

func decodeLimits(r *reader) (wasm.Limits, error) {
	off := r.offset()
	flag, err := r.byte()
	if err != nil {
		return wasm.Limits{}, err
	}
	var l wasm.Limits
	switch flag {
	case 0x00:
		l.Min, err = r.varU32()
		if err != nil {
			return wasm.Limits{}, err
		}
	case 0x01:
		l.Min, err = r.varU32()
		if err != nil {
			return wasm.Limits{}, err
		}
		m, err := r.varU32()
		if err != nil {
			return wasm.Limits{}, err
		}
		l.Max = &m
	default:
		return wasm.Limits{}, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	return l, nil
}

func decodeTableType(r *reader) (*wasm.TableType, error) {
	elem, err := r.refType()
	if err != nil {
		return nil, err
	}
	lim, err := decodeLimits(r)
	if err != nil {
		return nil, err
	}
	return &wasm.TableType{ElemType: elem, Limits: lim}, nil
}

func decodeMemoryType(r *reader) (*wasm.MemoryType, error) {
	off := r.offset()
	lim, err := decodeLimits(r)
	if err != nil {
		return nil, err
	}
	if lim.Min > wasm.MaxPages || (lim.Max != nil && *lim.Max > wasm.MaxPages) {
		return nil, r.errAt(off, wasm.DecodeIntegerTooLarge, nil)
	}
	if lim.Max != nil && *lim.Max < lim.Min {
		return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	return &wasm.MemoryType{Limits: lim}, nil
}

func decodeGlobalType(r *reader) (*wasm.GlobalType, error) {
	vt, err := r.valueType()
	if err != nil {
		return nil, err
	}
	off := r.offset()
	b, err := r.byte()
	if err != nil {
		return nil, err
	}
	gt := &wasm.GlobalType{ValType: vt}
	switch b {
	case 0x00:
	case 0x01:
		gt.Mutable = true
	default:
		return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	return gt, nil
}

// decodeBlockType decodes the block-signature immediate shared by
// block/loop/if: 0x40 (empty), a single value-type byte, or a signed
// LEB128 type index (always non-negative for a valid module, but
// encoded as signed per the binary format's s33 production so it can
// be distinguished from the one-byte forms whose encodings overlap the
// small end of the value-type byte range).
func decodeBlockType(r *reader) (wasm.BlockType, error) {
	off := r.offset()
	if off >= len(r.b) {
		return wasm.BlockType{}, r.errAt(off, wasm.DecodeTruncated, nil)
	}
	if r.b[off] == 0x40 {
		r.pos++
		return wasm.BlockType{Empty: true}, nil
	}
	switch wasm.ValueType(r.b[off]) {
	case wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeF32, wasm.ValueTypeF64,
		wasm.ValueTypeV128, wasm.ValueTypeFuncref, wasm.ValueTypeExternref:
		r.pos++
		return wasm.BlockType{ValueType: wasm.ValueType(r.b[off])}, nil
	}
	idx, err := r.varI32()
	if err != nil {
		return wasm.BlockType{}, err
	}
	if idx < 0 {
		return wasm.BlockType{}, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	return wasm.BlockType{IsTypeIndex: true, TypeIndex: uint32(idx)}, nil
}

