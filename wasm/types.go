// Package wasm defines the module intermediate representation shared by
// the binary decoder, encoder, and execution engine: value types,
// function/table/memory/global types, the instruction tagged union, and
// the error taxonomy observable at the host boundary.
package wasm

// ValueType is a WebAssembly value type: one of the four scalar numeric
// types, the 128-bit vector type, or one of the two reference types.
type ValueType byte

const (
	ValueTypeI32      ValueType = 0x7f
	ValueTypeI64      ValueType = 0x7e
	ValueTypeF32      ValueType = 0x7d
	ValueTypeF64      ValueType = 0x7c
	ValueTypeV128     ValueType = 0x7b
	ValueTypeFuncref  ValueType = 0x70
	ValueTypeExternref ValueType = 0x6f
)

// IsReference reports whether vt is one of the reference types.
func (vt ValueType) IsReference() bool {
	return vt == ValueTypeFuncref || vt == ValueTypeExternref
}

// IsNumeric reports whether vt is i32/i64/f32/f64.
func (vt ValueType) IsNumeric() bool {
	switch vt {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64:
		return true
	}
	return false
}

func (vt ValueType) String() string {
	switch vt {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	default:
		return "unknown"
	}
}

// RefType narrows ValueType to the two reference types, used where the
// binary format or the store specifically requires a reference (table
// element type, ref.null immediate).
type RefType = ValueType

// FunctionType is a function signature: an ordered vector of parameter
// types and an ordered vector of result types. WebAssembly 2.0 permits
// more than one result (multi-value).
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// Equal reports whether two function types have identical parameter and
// result vectors, the subtype check required at call_indirect and at
// import linking (function types have no sub-typing beyond equality).
func (t *FunctionType) Equal(o *FunctionType) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return sameValueTypes(t.Params, o.Params) && sameValueTypes(t.Results, o.Results)
}

func sameValueTypes(a, b []ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Limits bounds a table or memory's size in the table/memory's natural
// unit (elements for tables, 64KiB pages for memory).
type Limits struct {
	Min uint32
	Max *uint32 // nil means unbounded (up to the implementation's default ceiling)
}

// TableType describes a table: the reference type of its elements and
// its size limits.
type TableType struct {
	ElemType RefType
	Limits   Limits
}

// MemoryType is a linear memory's size limits, in pages.
type MemoryType struct {
	Limits Limits
}

// GlobalType describes a global variable's value type and mutability.
type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// ExternKind identifies which of the four extern categories an import or
// export refers to.
type ExternKind byte

const (
	ExternKindFunc   ExternKind = 0x00
	ExternKindTable  ExternKind = 0x01
	ExternKindMemory ExternKind = 0x02
	ExternKindGlobal ExternKind = 0x03
)

func (k ExternKind) String() string {
	switch k {
	case ExternKindFunc:
		return "func"
	case ExternKindTable:
		return "table"
	case ExternKindMemory:
		return "memory"
	case ExternKindGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// ExternType is the statically-known type of an import or export: for
// functions this is a FunctionType, for tables a TableType, for
// memories a MemoryType, for globals a GlobalType.
type ExternType struct {
	Kind   ExternKind
	Func   *FunctionType
	Table  *TableType
	Memory *MemoryType
	Global *GlobalType
}

// PageSize is the fixed quantum of linear memory growth: 64KiB.
const PageSize uint32 = 65536

// MaxPages is the default ceiling on memory size when a module declares
// no explicit maximum: 2^16 pages (4GiB of 32-bit-addressable memory).
const MaxPages uint32 = 65536
