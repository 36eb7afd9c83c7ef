// Package instance implements the runtime store: the append-only
// arenas of function, table, memory, global, element, and data
// instances a decoded module is allocated into at instantiation, plus
// the index-space bookkeeping (ModuleInstance) each instantiated
// module needs to resolve its own local and imported instructions.
package instance

// Store owns every instance ever allocated by any module instantiated
// against it. Addresses (plain slice indices) are stable for the
// store's lifetime; nothing is ever removed, only appended, mirroring
// the append-only arena the WebAssembly specification's abstract
// machine describes.
type Store struct {
	Functions []*FunctionInstance
	Tables    []*TableInstance
	Memories  []*MemoryInstance
	Globals   []*GlobalInstance
	Elements  []*ElementInstance
	Data      []*DataInstance

	// Externs holds host-provided externref payloads. An externref
	// operand is the externs index plus one; zero denotes null. This
	// keeps every stack slot and global a plain uint64 even though an
	// externref's host payload is an arbitrary Go value.
	Externs []any
}

// NewStore returns an empty store ready to instantiate modules into.
func NewStore() *Store { return &Store{} }

func (s *Store) addFunction(fi *FunctionInstance) uint32 {
	s.Functions = append(s.Functions, fi)
	return uint32(len(s.Functions) - 1)
}

func (s *Store) addTable(ti *TableInstance) uint32 {
	s.Tables = append(s.Tables, ti)
	return uint32(len(s.Tables) - 1)
}

func (s *Store) addMemory(mi *MemoryInstance) uint32 {
	s.Memories = append(s.Memories, mi)
	return uint32(len(s.Memories) - 1)
}

func (s *Store) addGlobal(gi *GlobalInstance) uint32 {
	s.Globals = append(s.Globals, gi)
	return uint32(len(s.Globals) - 1)
}

func (s *Store) addElement(ei *ElementInstance) uint32 {
	s.Elements = append(s.Elements, ei)
	return uint32(len(s.Elements) - 1)
}

func (s *Store) addData(di *DataInstance) uint32 {
	s.Data = append(s.Data, di)
	return uint32(len(s.Data) - 1)
}

// PutExtern stores a host externref payload and returns its operand
// encoding (index+1; never zero, which is reserved for null).
func (s *Store) PutExtern(v any) uint64 {
	s.Externs = append(s.Externs, v)
	return uint64(len(s.Externs))
}

// Extern resolves an externref operand back to its host payload. ok is
// false for the null reference (operand zero).
func (s *Store) Extern(operand uint64) (any, bool) {
	if operand == 0 {
		return nil, false
	}
	return s.Externs[operand-1], true
}

