// Package gojahost adapts a goja JavaScript engine to the host.Runtime
// primitive surface. goja's values are ordinary Go-GC'd objects, so the
// block and slot bookkeeping here is representational rather than
// load-bearing for memory safety; what the adapter does provide is a real
// object heap, real exceptions and a real execution surface for the scope
// machinery to govern.
package gojahost

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/goliatone/go-scopes/host"
)

var _ host.Runtime = (*Runtime)(nil)

// Runtime implements host.Runtime over a single goja engine. Like the
// engine itself it is confined to one goroutine.
type Runtime struct {
	vm       *goja.Runtime
	cache    ProgramCache
	registry *Registry

	blocks   []*block
	rootRefs []goja.Value
	contexts []*Context
	traps    []*trap
	pending  goja.Value
}

// Option configures a Runtime at construction.
type Option func(*Runtime)

// WithProgramCache replaces the default in-memory compiled-program cache.
// Passing nil disables caching entirely.
func WithProgramCache(cache ProgramCache) Option {
	return func(rt *Runtime) {
		rt.cache = cache
	}
}

// WithRegistry installs host functions into the engine's global scope.
func WithRegistry(registry *Registry) Option {
	return func(rt *Runtime) {
		if registry == nil {
			return
		}
		rt.registry = registry.Clone()
	}
}

// New constructs a Runtime around a fresh goja engine.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		vm:    goja.New(),
		cache: NewMemoryCache(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(rt)
	}
	if rt.registry != nil {
		rt.registry.bind(rt.vm)
	}
	return rt
}

// VM exposes the underlying engine for host-level work the adapter does not
// wrap. Values obtained this way still need to be promoted through a handle
// scope before crossing any scope boundary.
func (rt *Runtime) VM() *goja.Runtime {
	return rt.vm
}

type block struct {
	rt   *Runtime
	refs []goja.Value
}

// NewBlock implements host.Runtime.
func (rt *Runtime) NewBlock() host.Block {
	b := &block{rt: rt}
	rt.blocks = append(rt.blocks, b)
	return b
}

// Free implements host.Block.
func (b *block) Free() {
	rt := b.rt
	if len(rt.blocks) == 0 || rt.blocks[len(rt.blocks)-1] != b {
		panic("gojahost: block freed out of order")
	}
	rt.blocks = rt.blocks[:len(rt.blocks)-1]
	b.refs = nil
}

func (rt *Runtime) track(v goja.Value) {
	if len(rt.blocks) == 0 {
		rt.rootRefs = append(rt.rootRefs, v)
		return
	}
	b := rt.blocks[len(rt.blocks)-1]
	b.refs = append(b.refs, v)
}

// NewLocal implements host.Runtime. goja values pass through unchanged,
// anything else is converted by the engine.
func (rt *Runtime) NewLocal(raw any) host.Ref {
	var v goja.Value
	if gv, ok := raw.(goja.Value); ok {
		v = gv
	} else {
		v = rt.vm.ToValue(raw)
	}
	rt.track(v)
	return v
}

type slot struct {
	set func(goja.Value)
}

// NewEscapeSlot implements host.Runtime. The undefined placeholder is
// stored in the currently active block, so the slot's storage belongs to
// that block regardless of what gets constructed afterwards.
func (rt *Runtime) NewEscapeSlot() host.Slot {
	placeholder := goja.Undefined()
	if len(rt.blocks) == 0 {
		rt.rootRefs = append(rt.rootRefs, placeholder)
		i := len(rt.rootRefs) - 1
		return &slot{set: func(v goja.Value) { rt.rootRefs[i] = v }}
	}
	b := rt.blocks[len(rt.blocks)-1]
	b.refs = append(b.refs, placeholder)
	i := len(b.refs) - 1
	return &slot{set: func(v goja.Value) { b.refs[i] = v }}
}

// Fill implements host.Slot.
func (s *slot) Fill(value host.Ref) host.Ref {
	v := value.(goja.Value)
	s.set(v)
	return v
}

// Throw implements host.Runtime. The exception lands in the innermost
// active trap; with no trap active it stays pending and surfaces from the
// next Eval.
func (rt *Runtime) Throw(exception host.Ref) host.Ref {
	v := exception.(goja.Value)
	if len(rt.traps) > 0 {
		rt.traps[len(rt.traps)-1].catch(v, excMessage(v))
	} else {
		rt.pending = v
	}
	return goja.Undefined()
}

// Eval compiles (through the program cache) and runs src. A JavaScript
// exception is delivered to the innermost active trap and also returned as
// an error, mirroring how engines report an empty result alongside the
// trap state. The returned value is raw; promote it with a handle scope's
// NewLocal before holding on to it.
func (rt *Runtime) Eval(name, src string) (host.Ref, error) {
	if rt.pending != nil {
		v := rt.pending
		rt.pending = nil
		rt.deliver(v)
		return nil, fmt.Errorf("gojahost: run %s: pending exception: %s", name, excMessage(v))
	}
	program, err := rt.load(name, src)
	if err != nil {
		return nil, fmt.Errorf("gojahost: compile %s: %w", name, err)
	}
	v, err := rt.vm.RunProgram(program)
	if err != nil {
		var jsErr *goja.Exception
		if errors.As(err, &jsErr) {
			rt.deliver(jsErr.Value())
		}
		return nil, fmt.Errorf("gojahost: run %s: %w", name, err)
	}
	return v, nil
}

func (rt *Runtime) load(name, src string) (*goja.Program, error) {
	if rt.cache == nil {
		return goja.Compile(name, src, false)
	}
	if program, ok := rt.cache.Get(src); ok {
		return program, nil
	}
	program, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, err
	}
	rt.cache.Set(src, program)
	return program, nil
}

func (rt *Runtime) deliver(v goja.Value) {
	if len(rt.traps) == 0 {
		return
	}
	rt.traps[len(rt.traps)-1].catch(v, excMessage(v))
}

func excMessage(v goja.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}
