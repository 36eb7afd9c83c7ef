package binary

import "github.com/tinywasm/tinywasm/wasm"

func decodeGlobal(r *reader) (*wasm.Global, error) {
	gt, err := decodeGlobalType(r)
	if err != nil {
		return nil, err
	}
	init, err := decodeConstExpr(r)
	if err != nil {
		return nil, err
	}
	return &wasm.Global{Type: gt, Init: init}, nil
}
