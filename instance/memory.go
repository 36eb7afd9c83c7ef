package instance

import "github.com/tinywasm/tinywasm/wasm"

// MemoryInstance is a memory address's content: a byte slice sized in
// whole pages plus the declared growth ceiling.
type MemoryInstance struct {
	Type wasm.MemoryType
	Data []byte
}

// NewMemoryInstance allocates a zero-filled memory sized to its type's
// minimum page count.
func NewMemoryInstance(t wasm.MemoryType) *MemoryInstance {
	return &MemoryInstance{Type: t, Data: make([]byte, uint64(t.Limits.Min)*uint64(wasm.PageSize))}
}

// Pages returns the memory's current size in pages.
func (m *MemoryInstance) Pages() uint32 { return uint32(len(m.Data) / int(wasm.PageSize)) }

// Grow appends delta pages of zero-filled memory, refusing to exceed
// the declared maximum (or wasm.MaxPages if unbounded). It returns the
// memory's prior size in pages, or false if growth was refused.
func (m *MemoryInstance) Grow(delta uint32) (uint32, bool) {
	old := m.Pages()
	newPages := uint64(old) + uint64(delta)
	ceiling := uint64(wasm.MaxPages)
	if m.Type.Limits.Max != nil && uint64(*m.Type.Limits.Max) < ceiling {
		ceiling = uint64(*m.Type.Limits.Max)
	}
	if newPages > ceiling {
		return old, false
	}
	grown := make([]byte, newPages*uint64(wasm.PageSize))
	copy(grown, m.Data)
	m.Data = grown
	return old, true
}
