package wasm

// Module is the decoded, but not yet instantiated, intermediate
// representation of a WebAssembly binary: the static content of every
// section, indexed exactly as the binary format lays them out.
type Module struct {
	TypeSection     []*FunctionType
	ImportSection   []*Import
	FunctionSection []uint32 // index into TypeSection, one per local function
	TableSection    []*TableType
	MemorySection   []*MemoryType
	GlobalSection   []*Global
	ExportSection   []*Export
	StartSection    *uint32
	ElementSection  []*ElementSegment
	CodeSection     []*Code
	DataSection     []*DataSegment
	DataCount       *uint32 // from the data-count section, if present

	CustomSections map[string][]byte // in declaration order is not preserved by a map; see CustomSectionOrder
	CustomSectionOrder []string
	NameSection *NameSection
}

// Import is a single entry of the import section: the two-part name
// under which a host-provided extern must be resolved, plus its
// expected type.
type Import struct {
	Module, Name string
	Kind         ExternKind

	// Exactly one of the following is populated, selected by Kind.
	TypeIndex  uint32 // ExternKindFunc
	TableType  *TableType
	MemoryType *MemoryType
	GlobalType *GlobalType
}

// Export is a single entry of the export section.
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// Global is a module-local global declaration.
type Global struct {
	Type *GlobalType
	Init []Instruction // restricted constant expression, terminated implicitly
}

// ElementMode distinguishes the three element-segment installation
// strategies introduced incrementally by the bulk-memory and
// reference-types proposals and folded into WebAssembly 2.0.
type ElementMode byte

const (
	ElementModeActive     ElementMode = iota // copied into a table at instantiation
	ElementModePassive                       // only reachable via table.init
	ElementModeDeclarative                   // never installed; only makes funcref constants valid for ref.func
)

// ElementSegment is a single entry of the element section. Init holds
// one constant expression per element (funcref index constants are
// expressed as ref.func); this generalizes the WASM 1.0 shorthand of a
// bare function-index vector.
type ElementSegment struct {
	Mode       ElementMode
	TableIndex uint32 // valid iff Mode == ElementModeActive
	OffsetExpr []Instruction
	RefType    RefType
	Init       [][]Instruction
}

// DataMode distinguishes active (copied at instantiation) from passive
// (only reachable via memory.init) data segments.
type DataMode byte

const (
	DataModeActive  DataMode = iota
	DataModePassive
)

// DataSegment is a single entry of the data section.
type DataSegment struct {
	Mode        DataMode
	MemoryIndex uint32 // valid iff Mode == DataModeActive
	OffsetExpr  []Instruction
	Init        []byte
}

// Code is a single entry of the code section: a function body's local
// declarations (beyond its parameters) and its decoded instruction
// stream.
type Code struct {
	LocalTypes   []ValueType
	Body         []Instruction
}

// NameSection is the parsed form of the standard custom "name" section.
type NameSection struct {
	ModuleName    string
	FunctionNames map[uint32]string
	LocalNames    map[uint32]map[uint32]string // funcIndex -> localIndex -> name
}

// FuncTypeIndex returns the FunctionType of the func-index-th function
// in the combined import+local function index space, or nil if out of
// range.
func (m *Module) FuncTypeIndex(funcIndex uint32) *FunctionType {
	importFuncCount := uint32(0)
	for _, imp := range m.ImportSection {
		if imp.Kind == ExternKindFunc {
			if funcIndex == importFuncCount {
				return m.TypeSection[imp.TypeIndex]
			}
			importFuncCount++
		}
	}
	localIndex := funcIndex - importFuncCount
	if int(localIndex) >= len(m.FunctionSection) {
		return nil
	}
	return m.TypeSection[m.FunctionSection[localIndex]]
}

// ImportCount returns the number of imports of the given kind.
func (m *Module) ImportCount(kind ExternKind) uint32 {
	var n uint32
	for _, imp := range m.ImportSection {
		if imp.Kind == kind {
			n++
		}
	}
	return n
}
