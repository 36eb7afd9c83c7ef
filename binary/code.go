package binary

import "github.com/tinywasm/tinywasm/wasm"

// decodeCode decodes one code-section entry: its local declarations
// (run-length encoded as (count, valtype) pairs) followed by its
// instruction stream.
func decodeCode(r *reader) (*wasm.Code, error) {
	bodySize, err := r.varU32()
	if err != nil {
		return nil, err
	}
	bodyStart := r.offset()

	n, err := r.varU32()
	if err != nil {
		return nil, err
	}
	var locals []wasm.ValueType
	for i := uint32(0); i < n; i++ {
		count, err := r.varU32()
		if err != nil {
			return nil, err
		}
		vt, err := r.valueType()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < count; j++ {
			locals = append(locals, vt)
		}
	}

	body, err := decodeExpr(r)
	if err != nil {
		return nil, err
	}

	if r.offset()-bodyStart != int(bodySize) {
		return nil, r.errAt(bodyStart, wasm.DecodeSectionLengthMismatch, nil)
	}

	return &wasm.Code{LocalTypes: locals, Body: body}, nil
}
