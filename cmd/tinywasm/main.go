// Command tinywasm is a thin decode+instantiate+invoke driver: load a
// .wasm file, instantiate it with no host imports, and call one
// exported function by name with integer arguments.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tinywasm/tinywasm"
	"github.com/tinywasm/tinywasm/wasm"
)

// noImports rejects every import, suiting this driver's use case: a
// self-contained module with no host dependencies.
type noImports struct{}

func (noImports) Resolve(moduleName, fieldName string, expected wasm.ExternType) (tinywasm.Extern, error) {
	return tinywasm.Extern{}, fmt.Errorf("tinywasm: no host imports available, wanted %s.%s", moduleName, fieldName)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr *os.File) int {
	flags := pflag.NewFlagSet("tinywasm", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	invoke := flags.String("invoke", "", "name of the exported function to call")
	args := flags.StringSlice("arg", nil, "i64 argument to pass to --invoke, repeatable")
	listExports := flags.Bool("list-exports", false, "print each exported function's name and signature, then exit")

	if err := flags.Parse(argv); err != nil {
		return 2
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: tinywasm --invoke FUNC [--arg N ...] module.wasm")
		return 2
	}

	b, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	m, err := tinywasm.Decode(b)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *listExports {
		printExportedFunctions(stdout, m)
		return 0
	}

	inst, err := tinywasm.Instantiate(context.Background(), m, noImports{}, nil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *invoke == "" {
		return 0
	}

	argVals, err := parseArgs(*args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	results, err := tinywasm.InvokeByName(context.Background(), inst, *invoke, argVals...)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, strings.Trim(fmt.Sprint(results), "[]"))
	return 0
}

// printExportedFunctions lists each function export's name alongside the
// signature resolved from its combined import+local function index.
func printExportedFunctions(stdout *os.File, m *wasm.Module) {
	for _, exp := range m.ExportSection {
		if exp.Kind != wasm.ExternKindFunc {
			continue
		}
		ft := m.FuncTypeIndex(exp.Index)
		fmt.Fprintf(stdout, "%s: (%s) -> (%s)\n", exp.Name, joinValueTypes(ft.Params), joinValueTypes(ft.Results))
	}
}

func joinValueTypes(vts []wasm.ValueType) string {
	parts := make([]string, len(vts))
	for i, vt := range vts {
		parts[i] = vt.String()
	}
	return strings.Join(parts, ", ")
}

func parseArgs(raw []string) ([]uint64, error) {
	vals := make([]uint64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --arg %q: %w", s, err)
		}
		vals[i] = uint64(v)
	}
	return vals, nil
}
