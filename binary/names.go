package binary

import "github.com/tinywasm/tinywasm/wasm"

const (
	nameSubsectionModule   = 0
	nameSubsectionFunction = 1
	nameSubsectionLocal    = 2
)

// decodeNameSection parses the standard custom "name" section. Unlike
// every other section it is advisory: any malformed subsection is
// skipped rather than failing the whole decode, since a debugger aid
// should never be load-bearing for execution.
func decodeNameSection(data []byte) *wasm.NameSection {
	ns := &wasm.NameSection{
		FunctionNames: map[uint32]string{},
		LocalNames:    map[uint32]map[uint32]string{},
	}
	r := newReader(data)
	for r.remaining() > 0 {
		id, err := r.byte()
		if err != nil {
			return ns
		}
		size, err := r.varU32()
		if err != nil {
			return ns
		}
		sub, err := r.bytes(int(size))
		if err != nil {
			return ns
		}
		sr := newReader(sub)
		switch id {
		case nameSubsectionModule:
			if name, err := sr.name(); err == nil {
				ns.ModuleName = name
			}
		case nameSubsectionFunction:
			decodeNameMap(sr, ns.FunctionNames)
		case nameSubsectionLocal:
			n, err := sr.varU32()
			if err != nil {
				continue
			}
			for i := uint32(0); i < n; i++ {
				funcIdx, err := sr.varU32()
				if err != nil {
					break
				}
				locals := map[uint32]string{}
				decodeNameMap(sr, locals)
				ns.LocalNames[funcIdx] = locals
			}
		}
	}
	return ns
}

func decodeNameMap(r *reader, out map[uint32]string) {
	n, err := r.varU32()
	if err != nil {
		return
	}
	for i := uint32(0); i < n; i++ {
		idx, err := r.varU32()
		if err != nil {
			return
		}
		name, err := r.name()
		if err != nil {
			return
		}
		out[idx] = name
	}
}
