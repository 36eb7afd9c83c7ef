package binary

import "github.com/tinywasm/tinywasm/wasm"

// decodeData decodes one data-segment entry. Flag 0 is active against
// memory 0, flag 1 is passive, flag 2 is active against an explicit
// memory index (only meaningful once multiple memories exist).
func decodeData(r *reader) (*wasm.DataSegment, error) {
	off := r.offset()
	flags, err := r.varU32()
	if err != nil {
		return nil, err
	}

	seg := &wasm.DataSegment{}
	switch flags {
	case 0:
		seg.Mode = wasm.DataModeActive
		seg.OffsetExpr, err = decodeConstExpr(r)
	case 1:
		seg.Mode = wasm.DataModePassive
	case 2:
		seg.Mode = wasm.DataModeActive
		seg.MemoryIndex, err = r.varU32()
		if err != nil {
			return nil, err
		}
		seg.OffsetExpr, err = decodeConstExpr(r)
	default:
		return nil, r.errAt(off, wasm.DecodeInvalidByte, nil)
	}
	if err != nil {
		return nil, err
	}

	n, err := r.varU32()
	if err != nil {
		return nil, err
	}
	seg.Init, err = r.bytes(int(n))
	if err != nil {
		return nil, err
	}
	// r.bytes returns a slice aliasing the input; copy so the segment
	// owns stable storage independent of the source buffer's lifetime.
	init := make([]byte, len(seg.Init))
	copy(init, seg.Init)
	seg.Init = init
	return seg, nil
}
