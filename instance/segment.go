package instance

import "github.com/tinywasm/tinywasm/wasm"

// ElementInstance is an element address's content: the vector of
// references an active or passive element segment evaluates to at
// instantiation. table.init reads it; elem.drop empties it, after
// which any further table.init against it traps.
type ElementInstance struct {
	RefType wasm.RefType
	Refs    []uint64
	Dropped bool
}

func (e *ElementInstance) Drop() {
	e.Refs = nil
	e.Dropped = true
}

// DataInstance is a data address's content: a passive or active data
// segment's byte payload. data.drop empties it the same way elem.drop
// empties an ElementInstance.
type DataInstance struct {
	Bytes   []byte
	Dropped bool
}

func (d *DataInstance) Drop() {
	d.Bytes = nil
	d.Dropped = true
}
