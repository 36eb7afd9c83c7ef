// Package vm implements the stack-machine execution engine: the typed
// operand stack, activation and label frames, the control-flow
// interpreter, and the full scalar numeric and v128 SIMD instruction
// set mandated by the WebAssembly 2.0 specification.
package vm

import (
	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/wasm"
)

// slotWidth returns the number of uint64 stack slots a value of vt
// occupies: one for every scalar or reference type, two for v128.
func slotWidth(vt wasm.ValueType) int {
	if vt == wasm.ValueTypeV128 {
		return 2
	}
	return 1
}

// slotsFor sums slotWidth over a vector of value types, used to size
// the chunk of raw stack slots a label's arity carries across a branch.
func slotsFor(types []wasm.ValueType) int {
	n := 0
	for _, t := range types {
		n += slotWidth(t)
	}
	return n
}

// operandStack is the value stack of one activation: runFrame creates a
// fresh, empty one for every call, and that activation's label frames
// hold base offsets into it.
//
// widths records, for every logical value currently on the stack (not
// every raw slot), how many slots it occupies. The binary format's
// generic `drop` and label-target unwinding never carry an operand
// type, so this is how the interpreter recovers how many raw slots a
// polymorphic pop must remove without a separate validation pass.
type operandStack struct {
	slots  []uint64
	widths []uint8
}

func (s *operandStack) len() int { return len(s.slots) }

func (s *operandStack) push(v uint64) {
	s.slots = append(s.slots, v)
	s.widths = append(s.widths, 1)
}

func (s *operandStack) pop() uint64 {
	v := s.slots[len(s.slots)-1]
	s.slots = s.slots[:len(s.slots)-1]
	s.widths = s.widths[:len(s.widths)-1]
	return v
}

func (s *operandStack) pushV128(lo, hi uint64) {
	s.slots = append(s.slots, lo, hi)
	s.widths = append(s.widths, 2)
}

func (s *operandStack) popV128() (lo, hi uint64) {
	n := len(s.slots)
	hi, lo = s.slots[n-1], s.slots[n-2]
	s.slots = s.slots[:n-2]
	s.widths = s.widths[:len(s.widths)-1]
	return
}

// dropTop removes the top logical value regardless of its width,
// implementing the untyped `drop` opcode.
func (s *operandStack) dropTop() {
	w := s.widths[len(s.widths)-1]
	s.widths = s.widths[:len(s.widths)-1]
	s.slots = s.slots[:len(s.slots)-int(w)]
}

// truncate cuts the raw slot slice back to length n, dropping however
// many trailing logical values that spans. n must land on a logical
// value boundary, which every branch target base does in a valid
// module.
func (s *operandStack) truncate(n int) {
	excess := len(s.slots) - n
	for excess > 0 {
		w := s.widths[len(s.widths)-1]
		s.widths = s.widths[:len(s.widths)-1]
		excess -= int(w)
	}
	s.slots = s.slots[:n]
}

// popValues removes and returns the raw slots occupied by a value
// sequence of the given types, in stack order (so the result's last
// element is the type list's last entry, which was the stack top).
func (s *operandStack) popValues(types []wasm.ValueType) []uint64 {
	n := slotsFor(types)
	base := len(s.slots) - n
	vals := make([]uint64, n)
	copy(vals, s.slots[base:])
	s.slots = s.slots[:base]
	s.widths = s.widths[:len(s.widths)-len(types)]
	return vals
}

func (s *operandStack) pushValues(vals []uint64, types []wasm.ValueType) {
	s.slots = append(s.slots, vals...)
	for _, t := range types {
		s.widths = append(s.widths, uint8(slotWidth(t)))
	}
}

// label is a structured-control record: the arity (as a value-type
// vector, since slot width varies with v128) and continuation of one
// active block/loop/if/function-body frame.
type label struct {
	results        []wasm.ValueType // branch target's carried value types
	stackBase      int              // operand-stack length when this label was entered
	isLoop         bool
	continuationPC int // instruction index to resume at on a taken branch
}

// frame is one wasm function activation: its locals (flat, v128-width
// aware), the module instance supplying its index spaces, and its
// private label stack.
type frame struct {
	module *instance.ModuleInstance
	funcAddr uint32

	locals       []uint64
	localOffsets []int
	localTypes   []wasm.ValueType

	instrs []wasm.Instruction
	labels []label
}

func (f *frame) localSlot(idx uint32) int { return f.localOffsets[idx] }

func (f *frame) getLocal(idx uint32) (lo, hi uint64) {
	off := f.localSlot(idx)
	lo = f.locals[off]
	if slotWidth(f.localTypes[idx]) == 2 {
		hi = f.locals[off+1]
	}
	return
}

func (f *frame) setLocal(idx uint32, lo, hi uint64) {
	off := f.localSlot(idx)
	f.locals[off] = lo
	if slotWidth(f.localTypes[idx]) == 2 {
		f.locals[off+1] = hi
	}
}

// newLocals lays out a flat local bank for a function's parameter and
// declared-local types: params first (already on the stack as call
// arguments), then zero-initialized declared locals, each occupying
// slotWidth(type) consecutive slots.
func newLocals(paramTypes, declaredTypes []wasm.ValueType, args []uint64) ([]uint64, []int, []wasm.ValueType) {
	allTypes := make([]wasm.ValueType, 0, len(paramTypes)+len(declaredTypes))
	allTypes = append(allTypes, paramTypes...)
	allTypes = append(allTypes, declaredTypes...)

	offsets := make([]int, len(allTypes))
	total := 0
	for i, t := range allTypes {
		offsets[i] = total
		total += slotWidth(t)
	}
	locals := make([]uint64, total)
	copy(locals, args) // args are already laid out width-matched by the caller
	return locals, offsets, allTypes
}
