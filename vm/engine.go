package vm

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tinywasm/tinywasm/instance"
	"github.com/tinywasm/tinywasm/wasm"
)

// RuntimeConfig controls an Engine's resource ceilings and
// diagnostics, built up with With* calls from NewRuntimeConfig's
// defaults rather than struct-literal construction, so a future field
// never breaks existing callers.
type RuntimeConfig struct {
	maxCallStackDepth int
	logger            *logrus.Logger
}

const defaultMaxCallStackDepth = 8192

// NewRuntimeConfig returns the default configuration: an 8192-deep
// call stack ceiling and a logrus logger at warn level, quiet during
// normal execution.
func NewRuntimeConfig() *RuntimeConfig {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return &RuntimeConfig{
		maxCallStackDepth: defaultMaxCallStackDepth,
		logger:            logger,
	}
}

func (c *RuntimeConfig) clone() *RuntimeConfig {
	ret := *c
	return &ret
}

// WithMaxCallStackDepth overrides the recursive call-depth ceiling
// before a call traps with TrapCallStackExhausted.
func (c *RuntimeConfig) WithMaxCallStackDepth(depth int) *RuntimeConfig {
	ret := c.clone()
	ret.maxCallStackDepth = depth
	return ret
}

// WithLogger overrides the structured logger Invoke uses for its
// per-call debug entry and its trap warnings.
func (c *RuntimeConfig) WithLogger(logger *logrus.Logger) *RuntimeConfig {
	ret := c.clone()
	ret.logger = logger
	return ret
}

// Engine executes wasm functions already allocated into a Store. It
// holds no state of its own beyond the store and its configuration;
// every call's stack, frames, and labels live on the Go call stack for
// the duration of one Invoke, mirroring the teacher interpreter's
// per-call scratch state rather than a persistent VM.
type Engine struct {
	Store  *instance.Store
	Config *RuntimeConfig
}

// NewEngine returns an Engine bound to store. A nil cfg is replaced
// with NewRuntimeConfig's defaults.
func NewEngine(store *instance.Store, cfg *RuntimeConfig) *Engine {
	if cfg == nil {
		cfg = NewRuntimeConfig()
	}
	return &Engine{Store: store, Config: cfg}
}

// Invoke calls the function at funcAddr with args encoded one uint64
// slot per scalar/reference parameter and two consecutive slots
// (low, high) per v128 parameter, in parameter order. It returns
// results encoded the same way, or the *wasm.Trap that aborted
// execution.
func (e *Engine) Invoke(ctx context.Context, funcAddr uint32, args []uint64) ([]uint64, error) {
	e.Config.logger.WithFields(logrus.Fields{"funcAddr": funcAddr}).Debug("invoke")
	res, trap := e.callFunction(ctx, funcAddr, args, 0)
	if trap != nil {
		e.Config.logger.WithFields(logrus.Fields{
			"funcAddr": funcAddr,
			"trap":     trap.Code.String(),
		}).Warn("trap")
		return nil, trap
	}
	return res, nil
}

// callFunction dispatches to a host function or runs a wasm-defined
// function's frame, tracking recursion depth against the configured
// call-stack ceiling. depth counts activations already on the Go call
// stack for this Invoke, not including the one about to be pushed, so
// Invoke passes 0 and at most maxCallStackDepth activations run.
func (e *Engine) callFunction(ctx context.Context, funcAddr uint32, args []uint64, depth int) ([]uint64, *wasm.Trap) {
	if depth >= e.Config.maxCallStackDepth {
		return nil, wasm.NewTrap(wasm.TrapCallStackExhausted)
	}
	fi := e.Store.Functions[funcAddr]
	if fi.IsHost() {
		results, err := fi.Host(ctx, args)
		if err != nil {
			if trap, ok := err.(*wasm.Trap); ok {
				return nil, trap
			}
			return nil, wasm.NewTrap(wasm.TrapUnreachable)
		}
		return results, nil
	}
	return e.runFrame(ctx, fi, args, depth)
}
