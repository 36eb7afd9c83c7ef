package instance

import "github.com/tinywasm/tinywasm/wasm"

// nullRef is the sentinel stack encoding for a null function or
// external reference: an index into Store.Functions/Externs shifted up
// by one, so a bare zero is unambiguously "no reference".
const nullRef uint64 = 0

// TableInstance is a table address's content: a vector of opaque
// uint64-encoded references (see nullRef) plus the declared element
// type and growth ceiling.
type TableInstance struct {
	Type     wasm.TableType
	Elements []uint64
}

// NewTableInstance allocates a table sized to its type's minimum,
// filled with the null reference.
func NewTableInstance(t wasm.TableType) *TableInstance {
	return &TableInstance{Type: t, Elements: make([]uint64, t.Limits.Min)}
}

func (t *TableInstance) Size() uint32 { return uint32(len(t.Elements)) }

// Grow appends delta null-filled entries, refusing to exceed the
// declared maximum (or the implementation ceiling of 2^32-1 if
// unbounded). It returns the table's prior size, or false if growth
// was refused.
func (t *TableInstance) Grow(delta uint32) (uint32, bool) {
	old := t.Size()
	newSize := uint64(old) + uint64(delta)
	if t.Type.Limits.Max != nil && newSize > uint64(*t.Type.Limits.Max) {
		return old, false
	}
	if newSize > 0xFFFFFFFF {
		return old, false
	}
	grown := make([]uint64, newSize)
	copy(grown, t.Elements)
	t.Elements = grown
	return old, true
}
