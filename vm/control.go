package vm

import (
	"context"
	"math"

	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/wasm"
)

// blockSignature resolves a structured control instruction's parameter
// and result value types from the running module instance's type
// space, generalizing the binary format's three block-type
// encodings (empty, single value type, general type index) to a pair
// of value-type vectors the interpreter can push/pop against.
func blockSignature(mi *instance.ModuleInstance, bt wasm.BlockType) (params, results []wasm.ValueType) {
	switch {
	case bt.Empty:
		return nil, nil
	case bt.IsTypeIndex:
		ft := mi.Types[bt.TypeIndex]
		return ft.Params, ft.Results
	default:
		return nil, []wasm.ValueType{bt.ValueType}
	}
}

// doBranch resolves a branch of the given relative depth against an
// active label stack: it pops the branch target's carried values off
// the operand stack, truncates the stack back to the target's entry
// point, and reports where execution resumes. depth 0 targets the
// innermost active label.
//
// isReturn is true when the branch reaches past the function's own
// outermost (sentinel) label, which is exactly what a `return`
// instruction, or a `br` whose depth exhausts every enclosing
// block/loop, means: the caller must unwind the frame instead of
// resuming at a continuation.
func doBranch(labels []label, depth uint32, st *operandStack) (remaining []label, results []uint64, pc int, isReturn bool) {
	idx := len(labels) - 1 - int(depth)
	target := labels[idx]
	results = st.popValues(target.results)
	st.truncate(target.stackBase)
	if idx == 0 {
		return labels[:1], results, target.continuationPC, true
	}
	st.pushValues(results, target.results)
	if target.isLoop {
		return labels[:idx+1], results, target.continuationPC, false
	}
	return labels[:idx], results, target.continuationPC, false
}

// runFrame interprets fi's instruction stream to completion, returning
// its declared results or the trap that aborted it. It is the sole
// entry point that advances a wasm-defined function's program counter;
// call and call_indirect recurse into Engine.callFunction, which in
// turn calls back into runFrame for another wasm-defined callee.
func (e *Engine) runFrame(ctx context.Context, fi *instance.FunctionInstance, args []uint64, depth int) ([]uint64, *wasm.Trap) {
	mi := fi.Module
	locals, offsets, localTypes := newLocals(fi.Type.Params, fi.Code.LocalTypes, args)

	f := &frame{
		module:       mi,
		locals:       locals,
		localOffsets: offsets,
		localTypes:   localTypes,
		instrs:       fi.Code.Body,
	}
	// The sentinel label represents the function body itself: branching
	// to it (a `return`, or a `br` whose depth exhausts every block) is
	// how normal falling off the end and an explicit return unify.
	f.labels = []label{{
		results:        fi.Type.Results,
		stackBase:      0,
		continuationPC: len(f.instrs),
	}}

	// args already occupy the frame's local bank; the operand stack for
	// this activation starts empty.
	st := &operandStack{}

	pc := 0
	for {
		if pc >= len(f.instrs) {
			return st.popValues(fi.Type.Results), nil
		}
		instr := f.instrs[pc]

		switch instr.Op {
		case wasm.OpUnreachable:
			return nil, wasm.NewTrap(wasm.TrapUnreachable)

		case wasm.OpNop:
			pc++

		case wasm.OpBlock:
			bt := instr.Imm.(wasm.ImmBlock).Type
			params, results := blockSignature(mi, bt)
			f.labels = append(f.labels, label{
				results:        results,
				stackBase:      st.len() - slotsFor(params),
				continuationPC: instr.EndIndex + 1,
			})
			pc++

		case wasm.OpLoop:
			bt := instr.Imm.(wasm.ImmBlock).Type
			params, _ := blockSignature(mi, bt)
			f.labels = append(f.labels, label{
				results:        params,
				stackBase:      st.len() - slotsFor(params),
				isLoop:         true,
				continuationPC: pc + 1,
			})
			pc++

		case wasm.OpIf:
			bt := instr.Imm.(wasm.ImmBlock).Type
			params, results := blockSignature(mi, bt)
			cond := st.pop()
			if cond != 0 {
				f.labels = append(f.labels, label{
					results:        results,
					stackBase:      st.len() - slotsFor(params),
					continuationPC: instr.EndIndex + 1,
				})
				pc++
			} else if instr.ElseIndex != -1 {
				f.labels = append(f.labels, label{
					results:        results,
					stackBase:      st.len() - slotsFor(params),
					continuationPC: instr.EndIndex + 1,
				})
				pc = instr.ElseIndex + 1
			} else {
				pc = instr.EndIndex + 1
			}

		case wasm.OpElse:
			// Reached by falling through the if-true branch: the
			// else-body must be skipped exactly as if End had been hit.
			top := f.labels[len(f.labels)-1]
			f.labels = f.labels[:len(f.labels)-1]
			pc = top.continuationPC

		case wasm.OpEnd:
			if len(f.labels) > 1 {
				f.labels = f.labels[:len(f.labels)-1]
				pc++
			} else {
				return st.popValues(fi.Type.Results), nil
			}

		case wasm.OpBr:
			depthImm := instr.Imm.(wasm.ImmIndex).Index
			labels, results, next, isReturn := doBranch(f.labels, depthImm, st)
			f.labels = labels
			if isReturn {
				return results, nil
			}
			pc = next

		case wasm.OpBrIf:
			depthImm := instr.Imm.(wasm.ImmIndex).Index
			cond := st.pop()
			if cond != 0 {
				labels, results, next, isReturn := doBranch(f.labels, depthImm, st)
				f.labels = labels
				if isReturn {
					return results, nil
				}
				pc = next
			} else {
				pc++
			}

		case wasm.OpBrTable:
			bt := instr.Imm.(wasm.ImmBrTable)
			n := uint32(st.pop())
			target := bt.Default
			if int(n) < len(bt.Labels) {
				target = bt.Labels[n]
			}
			labels, results, next, isReturn := doBranch(f.labels, target, st)
			f.labels = labels
			if isReturn {
				return results, nil
			}
			pc = next

		case wasm.OpReturn:
			return st.popValues(fi.Type.Results), nil

		case wasm.OpCall:
			idx := instr.Imm.(wasm.ImmIndex).Index
			callee := mi.FuncAddrs[idx]
			callArgs := st.popValues(e.Store.Functions[callee].Type.Params)
			results, trap := e.callFunction(ctx, callee, callArgs, depth+1)
			if trap != nil {
				return nil, trap
			}
			st.pushValues(results, e.Store.Functions[callee].Type.Results)
			pc++

		case wasm.OpCallIndirect:
			ci := instr.Imm.(wasm.ImmCallIndirect)
			tableAddr := mi.TableAddrs[ci.TableIndex]
			table := e.Store.Tables[tableAddr]
			elemIdx := uint32(st.pop())
			if elemIdx >= table.Size() {
				return nil, wasm.NewTrap(wasm.TrapOutOfBoundsTableAccess)
			}
			ref := table.Elements[elemIdx]
			if ref == 0 {
				return nil, wasm.NewTrap(wasm.TrapUninitializedElement)
			}
			callee := uint32(ref - 1)
			wantType := mi.Types[ci.TypeIndex]
			if !e.Store.Functions[callee].Type.Equal(wantType) {
				return nil, wasm.NewTrap(wasm.TrapIndirectCallTypeMismatch)
			}
			callArgs := st.popValues(wantType.Params)
			results, trap := e.callFunction(ctx, callee, callArgs, depth+1)
			if trap != nil {
				return nil, trap
			}
			st.pushValues(results, wantType.Results)
			pc++

		case wasm.OpDrop:
			st.dropTop()
			pc++

		case wasm.OpSelect, wasm.OpSelectTyped:
			cond := st.pop()
			// Both operands share one value type (typed select's
			// annotation only disambiguates funcref/externref/v128 for
			// validation; it does not change slot width, which
			// select-untyped must otherwise guess). We infer width from
			// the shadow width stack instead of the immediate, so both
			// forms share this code path.
			w2 := st.widths[len(st.widths)-1]
			if w2 == 2 {
				hi2, lo2 := st.slots[len(st.slots)-1], st.slots[len(st.slots)-2]
				hi1, lo1 := st.slots[len(st.slots)-3], st.slots[len(st.slots)-4]
				st.slots = st.slots[:len(st.slots)-4]
				st.widths = st.widths[:len(st.widths)-2]
				if cond != 0 {
					st.pushV128(lo1, hi1)
				} else {
					st.pushV128(lo2, hi2)
				}
			} else {
				v2 := st.pop()
				v1 := st.pop()
				if cond != 0 {
					st.push(v1)
				} else {
					st.push(v2)
				}
			}
			pc++

		case wasm.OpLocalGet:
			idx := instr.Imm.(wasm.ImmIndex).Index
			lo, hi := f.getLocal(idx)
			if slotWidth(f.localTypes[idx]) == 2 {
				st.pushV128(lo, hi)
			} else {
				st.push(lo)
			}
			pc++

		case wasm.OpLocalSet:
			idx := instr.Imm.(wasm.ImmIndex).Index
			if slotWidth(f.localTypes[idx]) == 2 {
				lo, hi := st.popV128()
				f.setLocal(idx, lo, hi)
			} else {
				f.setLocal(idx, st.pop(), 0)
			}
			pc++

		case wasm.OpLocalTee:
			idx := instr.Imm.(wasm.ImmIndex).Index
			if slotWidth(f.localTypes[idx]) == 2 {
				lo, hi := st.popV128()
				f.setLocal(idx, lo, hi)
				st.pushV128(lo, hi)
			} else {
				v := st.pop()
				f.setLocal(idx, v, 0)
				st.push(v)
			}
			pc++

		case wasm.OpGlobalGet:
			idx := instr.Imm.(wasm.ImmIndex).Index
			g := e.Store.Globals[mi.GlobalAddrs[idx]]
			if slotWidth(g.Type.ValType) == 2 {
				st.pushV128(g.Value[0], g.Value[1])
			} else {
				st.push(g.Value[0])
			}
			pc++

		case wasm.OpGlobalSet:
			idx := instr.Imm.(wasm.ImmIndex).Index
			g := e.Store.Globals[mi.GlobalAddrs[idx]]
			if slotWidth(g.Type.ValType) == 2 {
				lo, hi := st.popV128()
				g.Value[0], g.Value[1] = lo, hi
			} else {
				g.Value[0] = st.pop()
			}
			pc++

		case wasm.OpRefNull:
			st.push(0)
			pc++

		case wasm.OpRefIsNull:
			if st.pop() == 0 {
				st.push(1)
			} else {
				st.push(0)
			}
			pc++

		case wasm.OpRefFunc:
			idx := instr.Imm.(wasm.ImmIndex).Index
			st.push(uint64(mi.FuncAddrs[idx]) + 1)
			pc++

		case wasm.OpI32Const:
			st.push(uint64(uint32(instr.Imm.(wasm.ImmI32).V)))
			pc++

		case wasm.OpI64Const:
			st.push(uint64(instr.Imm.(wasm.ImmI64).V))
			pc++

		case wasm.OpF32Const:
			st.push(uint64(math.Float32bits(instr.Imm.(wasm.ImmF32).V)))
			pc++

		case wasm.OpF64Const:
			st.push(math.Float64bits(instr.Imm.(wasm.ImmF64).V))
			pc++

		default:
			if handled, trap := e.execNumeric(instr.Op, st); handled {
				if trap != nil {
					return nil, trap
				}
				pc++
				continue
			}
			if handled, trap := e.execConvert(instr.Op, st); handled {
				if trap != nil {
					return nil, trap
				}
				pc++
				continue
			}
			if handled, trap := e.execSIMD(instr, st); handled {
				if trap != nil {
					return nil, trap
				}
				pc++
				continue
			}
			if handled, trap := e.execMemory(ctx, mi, instr, st); handled {
				if trap != nil {
					return nil, trap
				}
				pc++
				continue
			}
			if handled, trap := e.execTable(mi, instr, st); handled {
				if trap != nil {
					return nil, trap
				}
				pc++
				continue
			}
			// An opcode reaching here would mean the decoder accepted an
			// instruction no execution path recognizes; validated input
			// never triggers this.
			panic("tinywasm: unhandled opcode in runFrame")
		}
	}
}
