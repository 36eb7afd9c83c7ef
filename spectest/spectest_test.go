package spectest

import (
	"testing"

	"github.com/tinywasm/tinywasm"
	"github.com/tinywasm/tinywasm/wasm"
)

// addModule builds a minimal module exporting one function,
// "add" : (i32, i32) -> i32, entirely in memory so this test exercises
// Run without depending on any external testdata fixture.
func addModule() *wasm.Module {
	ft := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}
	body := []wasm.Instruction{
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 0}, ElseIndex: -1},
		{Op: wasm.OpLocalGet, Imm: wasm.ImmIndex{Index: 1}, ElseIndex: -1},
		{Op: wasm.OpI32Add, ElseIndex: -1},
		{Op: wasm.OpEnd, ElseIndex: -1},
	}
	return &wasm.Module{
		TypeSection:     []*wasm.FunctionType{ft},
		FunctionSection: []uint32{0},
		CodeSection:     []*wasm.Code{{Body: body}},
		ExportSection:   []*wasm.Export{{Name: "add", Kind: wasm.ExternKindFunc, Index: 0}},
	}
}

const addFixture = `{
  "source_filename": "add.wast",
  "commands": [
    {"type": "module", "line": 1, "filename": "add.wasm"},
    {"type": "assert_return", "line": 2,
     "action": {"type": "invoke", "field": "add", "args": [
        {"type": "i32", "value": "2"}, {"type": "i32", "value": "3"}
     ]},
     "expected": [{"type": "i32", "value": "5"}]},
    {"type": "assert_trap", "line": 3, "text": "placeholder",
     "action": {"type": "invoke", "field": "missing", "args": []}}
  ]
}`

func TestRunAssertReturn(t *testing.T) {
	encoded := tinywasm.Encode(addModule())
	Run(t, []byte(addFixture), func(filename string) ([]byte, error) {
		return encoded, nil
	})
}
