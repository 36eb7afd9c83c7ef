package binary

import (
	"unicode/utf8"

	"github.com/tinywasm/tinywasm/ieee754"
	"github.com/tinywasm/tinywasm/leb128"
	"github.com/tinywasm/tinywasm/wasm"
)

// reader is a positioned cursor over an immutable byte slice. Every
// read bounds-checks and returns a *wasm.DecodeError carrying the byte
// offset at which the failure was observed.
type reader struct {
	b   []byte
	pos int
}

func newReader(b []byte) *reader { return &reader{b: b} }

func (r *reader) offset() int { return r.pos }

func (r *reader) remaining() int { return len(r.b) - r.pos }

func (r *reader) errAt(off int, code wasm.DecodeCode, err error) *wasm.DecodeError {
	return &wasm.DecodeError{Offset: off, Code: code, Err: err}
}

func (r *reader) byte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, r.errAt(r.pos, wasm.DecodeTruncated, nil)
	}
	b := r.b[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.b) {
		return nil, r.errAt(r.pos, wasm.DecodeTruncated, nil)
	}
	out := r.b[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *reader) varU32() (uint32, error) {
	off := r.pos
	v, n, err := leb128.DecodeUint32(r.b, r.pos)
	if err != nil {
		return 0, r.errAt(off, wasm.DecodeInvalidLEB128, err)
	}
	r.pos += n
	return v, nil
}

func (r *reader) varI32() (int32, error) {
	off := r.pos
	v, n, err := leb128.DecodeInt32(r.b, r.pos)
	if err != nil {
		return 0, r.errAt(off, wasm.DecodeInvalidLEB128, err)
	}
	r.pos += n
	return v, nil
}

func (r *reader) varI64() (int64, error) {
	off := r.pos
	v, n, err := leb128.DecodeInt64(r.b, r.pos)
	if err != nil {
		return 0, r.errAt(off, wasm.DecodeInvalidLEB128, err)
	}
	r.pos += n
	return v, nil
}

func (r *reader) f32() (float32, error) {
	off := r.pos
	v, err := ieee754.DecodeFloat32(r.b, r.pos)
	if err != nil {
		return 0, r.errAt(off, wasm.DecodeTruncated, err)
	}
	r.pos += 4
	return v, nil
}

func (r *reader) f64() (float64, error) {
	off := r.pos
	v, err := ieee754.DecodeFloat64(r.b, r.pos)
	if err != nil {
		return 0, r.errAt(off, wasm.DecodeTruncated, err)
	}
	r.pos += 8
	return v, nil
}

// name reads a length-prefixed UTF-8 string.
func (r *reader) name() (string, error) {
	off := r.pos
	n, err := r.varU32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", r.errAt(off, wasm.DecodeInvalidUTF8, nil)
	}
	return string(b), nil
}

func (r *reader) valueType() (wasm.ValueType, error) {
	off := r.pos
	b, err := r.byte()
	if err != nil {
		return 0, err
	}
	vt := wasm.ValueType(b)
	if vt.IsNumeric() || vt.IsReference() || vt == wasm.ValueTypeV128 {
		return vt, nil
	}
	return 0, r.errAt(off, wasm.DecodeInvalidValueType, nil)
}

func (r *reader) refType() (wasm.RefType, error) {
	off := r.pos
	vt, err := r.valueType()
	if err != nil {
		return 0, err
	}
	if !vt.IsReference() {
		return 0, r.errAt(off, wasm.DecodeInvalidValueType, nil)
	}
	return vt, nil
}

func (r *reader) valueTypeVec() ([]wasm.ValueType, error) {
	n, err := r.varU32()
	if err != nil {
		return nil, err
	}
	out := make([]wasm.ValueType, n)
	for i := range out {
		vt, err := r.valueType()
		if err != nil {
			return nil, err
		}
		out[i] = vt
	}
	return out, nil
}
