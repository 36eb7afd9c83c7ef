package instance

import "github.com/tinywasm/tinywasm/wasm"

// GlobalInstance is a global address's content. Value's first element
// holds every scalar type's raw bit pattern (i32/f32 zero-extended,
// i64/f64 as-is) and a reference type's nullRef-style encoding; the
// second element is only meaningful for v128.
type GlobalInstance struct {
	Type  wasm.GlobalType
	Value [2]uint64
}
