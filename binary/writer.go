package binary

import (
	"bytes"

	"github.com/tinywasm/tinywasm/ieee754"
	"github.com/tinywasm/tinywasm/leb128"
	"github.com/tinywasm/tinywasm/wasm"
)

// writer accumulates an encoded section or instruction body. It has no
// failure mode: every value passed to it is already known-valid,
// having either come from a successfully decoded Module or been built
// programmatically against the wasm package's own types.
type writer struct{ buf bytes.Buffer }

func (w *writer) byte(b byte)   { w.buf.WriteByte(b) }
func (w *writer) raw(b []byte)  { w.buf.Write(b) }
func (w *writer) u32(v uint32)  { w.raw(leb128.EncodeUint32(v)) }
func (w *writer) i32(v int32)   { w.raw(leb128.EncodeInt32(v)) }
func (w *writer) i64(v int64)   { w.raw(leb128.EncodeInt64(v)) }
func (w *writer) f32(v float32) { w.raw(ieee754.EncodeFloat32(v)) }
func (w *writer) f64(v float64) { w.raw(ieee754.EncodeFloat64(v)) }

func (w *writer) name(s string) {
	w.u32(uint32(len(s)))
	w.raw([]byte(s))
}

func (w *writer) valueType(vt wasm.ValueType) { w.byte(byte(vt)) }

func (w *writer) valueTypeVec(vs []wasm.ValueType) {
	w.u32(uint32(len(vs)))
	for _, vt := range vs {
		w.valueType(vt)
	}
}

func (w *writer) bytes() []byte { return w.buf.Bytes() }
