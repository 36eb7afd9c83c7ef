// Package spectest is a JSON-driven conformance runner: it replays the
// WebAssembly reference test suite's {module, invoke, expect} command
// format (as produced by the upstream wast2json tool) against this
// module's own Decode/Instantiate/Invoke, the same shape the official
// test suite's json+wasm fixture pairs use.
package spectest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinywasm/tinywasm"
	"github.com/tinywasm/tinywasm/wasm"
)

// noImports rejects every import: the suite's single-module fixtures
// this runner targets declare none.
type noImports struct{}

func (noImports) Resolve(moduleName, fieldName string, expected wasm.ExternType) (tinywasm.Extern, error) {
	return tinywasm.Extern{}, fmt.Errorf("spectest: no host imports available, wanted %s.%s", moduleName, fieldName)
}

// testBase is one *.json fixture's top-level shape.
type testBase struct {
	SourceFile string    `json:"source_filename"`
	Commands   []command `json:"commands"`
}

type command struct {
	CommandType string `json:"type"`
	Line        int    `json:"line"`
	Filename    string `json:"filename,omitempty"`
	Action      action `json:"action,omitempty"`
	Expected    []val  `json:"expected,omitempty"`
	Text        string `json:"text,omitempty"`
}

type action struct {
	ActionType string `json:"type"`
	Field      string `json:"field,omitempty"`
	Args       []val  `json:"args,omitempty"`
}

type val struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// toUint64 decodes a fixture value into its raw stack-slot encoding,
// the same convention Invoke's args/results use: bit pattern for
// floats, zero-extended for i32. v128 values (and any other type not
// listed below) are not decoded and yield 0.
func (v val) toUint64() uint64 {
	switch v.Type {
	case "i32":
		n, _ := strconv.ParseUint(v.Value, 10, 32)
		return n
	case "i64":
		n, _ := strconv.ParseUint(v.Value, 10, 64)
		return n
	case "f32":
		if strings.Contains(v.Value, "nan") {
			return uint64(math.Float32bits(float32(math.NaN())))
		}
		n, _ := strconv.ParseUint(v.Value, 10, 32)
		return n
	case "f64":
		if strings.Contains(v.Value, "nan") {
			return math.Float64bits(math.NaN())
		}
		n, _ := strconv.ParseUint(v.Value, 10, 64)
		return n
	case "externref", "funcref":
		if v.Value == "null" {
			return 0
		}
		n, _ := strconv.ParseUint(v.Value, 10, 64)
		return n + 1
	default:
		return 0
	}
}

// Loader resolves a fixture's "filename" field to the module bytes it
// names, decoupling this package from any particular embed.FS so both
// go:embed-backed suites and ad hoc in-memory fixtures can drive it.
type Loader func(filename string) ([]byte, error)

// Run replays every command in a decoded fixture against fresh module
// instances, failing t on any mismatch. Registered modules (multi-
// module "register"/module-name-qualified actions) are out of scope:
// this runner only tracks the most recently instantiated module, which
// covers the overwhelming majority of the suite's single-module files.
func Run(t *testing.T, fixtureJSON []byte, load Loader) {
	var base testBase
	require.NoError(t, json.Unmarshal(fixtureJSON, &base))

	var current tinywasm.Instance
	for _, cmd := range base.Commands {
		switch cmd.CommandType {
		case "module":
			b, err := load(cmd.Filename)
			require.NoError(t, err, "line %d: loading %s", cmd.Line, cmd.Filename)
			m, err := tinywasm.Decode(b)
			require.NoError(t, err, "line %d: decoding %s", cmd.Line, cmd.Filename)
			inst, err := tinywasm.Instantiate(context.Background(), m, noImports{}, nil)
			require.NoError(t, err, "line %d: instantiating %s", cmd.Line, cmd.Filename)
			current = inst

		case "assert_return":
			args := argsOf(cmd.Action)
			results, err := tinywasm.InvokeByName(context.Background(), current, cmd.Action.Field, args...)
			if !assert.NoError(t, err, "line %d: invoke %s", cmd.Line, cmd.Action.Field) {
				continue
			}
			want := make([]uint64, len(cmd.Expected))
			for i, e := range cmd.Expected {
				want[i] = e.toUint64()
			}
			assert.Equal(t, want, results, "line %d: %s%v", cmd.Line, cmd.Action.Field, args)

		case "assert_trap":
			args := argsOf(cmd.Action)
			_, err := tinywasm.InvokeByName(context.Background(), current, cmd.Action.Field, args...)
			assert.Error(t, err, "line %d: expected trap %q from %s%v", cmd.Line, cmd.Text, cmd.Action.Field, args)

		case "assert_malformed":
			b, err := load(cmd.Filename)
			require.NoError(t, err, "line %d: loading %s", cmd.Line, cmd.Filename)
			_, decErr := tinywasm.Decode(b)
			assert.Error(t, decErr, "line %d: expected malformed-module rejection of %s", cmd.Line, cmd.Filename)

		case "assert_invalid", "assert_unlinkable", "assert_uninstantiable":
			// Static validation and full import-linking diagnostics are
			// out of scope; these commands only make sense against a
			// validator this runner doesn't carry.

		default:
			t.Logf("line %d: unhandled command type %q", cmd.Line, cmd.CommandType)
		}
	}
}

func argsOf(a action) []uint64 {
	args := make([]uint64, len(a.Args))
	for i, v := range a.Args {
		args[i] = v.toUint64()
	}
	return args
}

// ErrNoFixture is returned by a Loader stub that has nothing registered
// under the requested filename.
var ErrNoFixture = fmt.Errorf("spectest: no fixture registered")
