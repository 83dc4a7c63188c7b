// Package hosttest provides a scripted in-memory host.Runtime. It keeps its
// own block/context/trap stacks and panics when the caller violates the
// construct/destruct ordering a real engine would silently corrupt on, which
// makes it suitable for asserting the scope engine's behavior without a real
// engine underneath.
package hosttest

import (
	"fmt"

	"github.com/goliatone/go-scopes/host"
)

// Value is the concrete host.Ref produced by this runtime. Raw holds
// whatever was promoted; escape slots mutate Raw in place.
type Value struct {
	Raw any
}

var _ host.Runtime = (*Runtime)(nil)

// Runtime implements host.Runtime. The zero value is not usable; call New.
type Runtime struct {
	// Ops records every primitive call in order, for ordering assertions.
	Ops []string

	blocks    []*Block
	rootRefs  []host.Ref
	contexts  []*Context
	traps     []*Trap
	nextBlock int
}

// New constructs an empty runtime.
func New() *Runtime {
	return &Runtime{}
}

func (rt *Runtime) record(format string, args ...any) {
	rt.Ops = append(rt.Ops, fmt.Sprintf(format, args...))
}

// Block is one local-handle block.
type Block struct {
	rt    *Runtime
	ID    int
	Refs  []host.Ref
	Freed bool
}

// NewBlock implements host.Runtime.
func (rt *Runtime) NewBlock() host.Block {
	rt.nextBlock++
	b := &Block{rt: rt, ID: rt.nextBlock}
	rt.blocks = append(rt.blocks, b)
	rt.record("block.new %d", b.ID)
	return b
}

// Free implements host.Block. Freeing any block other than the most
// recently constructed one is the kind of misuse a real engine would turn
// into heap corruption; here it panics.
func (b *Block) Free() {
	rt := b.rt
	if len(rt.blocks) == 0 || rt.blocks[len(rt.blocks)-1] != b {
		panic(fmt.Sprintf("hosttest: block %d freed out of order", b.ID))
	}
	rt.blocks = rt.blocks[:len(rt.blocks)-1]
	b.Freed = true
	rt.record("block.free %d", b.ID)
}

// track stores ref in the currently active block, or at the root when no
// block exists (as during host-driven callbacks).
func (rt *Runtime) track(ref host.Ref) {
	if len(rt.blocks) == 0 {
		rt.rootRefs = append(rt.rootRefs, ref)
		return
	}
	b := rt.blocks[len(rt.blocks)-1]
	b.Refs = append(b.Refs, ref)
}

// NewLocal implements host.Runtime.
func (rt *Runtime) NewLocal(raw any) host.Ref {
	ref := &Value{Raw: raw}
	rt.track(ref)
	rt.record("local.new %v", raw)
	return ref
}

// Slot is pre-allocated escape storage; Cell lives in whichever block was
// active when the slot was allocated.
type Slot struct {
	rt     *Runtime
	Cell   *Value
	Filled bool
}

// NewEscapeSlot implements host.Runtime.
func (rt *Runtime) NewEscapeSlot() host.Slot {
	s := &Slot{rt: rt, Cell: &Value{Raw: undefined{}}}
	rt.track(s.Cell)
	rt.record("escape.alloc")
	return s
}

// Fill implements host.Slot.
func (s *Slot) Fill(value host.Ref) host.Ref {
	s.Filled = true
	s.Cell.Raw = value
	s.rt.record("escape.fill")
	return s.Cell
}

type undefined struct{}

// Context is a named execution context.
type Context struct {
	rt   *Runtime
	Name string
}

// NewContext constructs a context owned by this runtime. Not part of
// host.Runtime; each adapter has its own context constructor.
func (rt *Runtime) NewContext(name string) *Context {
	return &Context{rt: rt, Name: name}
}

// Owner implements host.Context.
func (c *Context) Owner() host.Runtime {
	return c.rt
}

// EnterContext implements host.Runtime.
func (rt *Runtime) EnterContext(ctx host.Context) {
	c := ctx.(*Context)
	rt.contexts = append(rt.contexts, c)
	rt.record("ctx.enter %s", c.Name)
}

// ExitContext implements host.Runtime.
func (rt *Runtime) ExitContext(ctx host.Context) {
	c := ctx.(*Context)
	if len(rt.contexts) == 0 || rt.contexts[len(rt.contexts)-1] != c {
		panic(fmt.Sprintf("hosttest: context %q exited out of order", c.Name))
	}
	rt.contexts = rt.contexts[:len(rt.contexts)-1]
	rt.record("ctx.exit %s", c.Name)
}

// CurrentContext implements host.Runtime.
func (rt *Runtime) CurrentContext() host.Context {
	if len(rt.contexts) == 0 {
		return nil
	}
	return rt.contexts[len(rt.contexts)-1]
}

// Trap is one exception trap.
type Trap struct {
	rt       *Runtime
	caught   bool
	exc      host.Ref
	msg      string
	Released bool
}

// NewTrap implements host.Runtime.
func (rt *Runtime) NewTrap() host.Trap {
	t := &Trap{rt: rt}
	rt.traps = append(rt.traps, t)
	rt.record("trap.new")
	return t
}

// Release implements host.Trap.
func (t *Trap) Release() {
	rt := t.rt
	if len(rt.traps) == 0 || rt.traps[len(rt.traps)-1] != t {
		panic("hosttest: trap released out of order")
	}
	rt.traps = rt.traps[:len(rt.traps)-1]
	t.Released = true
	rt.record("trap.release")
}

// HasCaught implements host.Trap.
func (t *Trap) HasCaught() bool { return t.caught }

// Exception implements host.Trap.
func (t *Trap) Exception() host.Ref { return t.exc }

// Message implements host.Trap.
func (t *Trap) Message() string { return t.msg }

// Rethrow implements host.Trap.
func (t *Trap) Rethrow() {
	rt := t.rt
	for i, other := range rt.traps {
		if other == t && i > 0 {
			rt.traps[i-1].catch(t.exc, t.msg)
			break
		}
	}
	t.rt.record("trap.rethrow")
}

// Reset implements host.Trap.
func (t *Trap) Reset() {
	t.caught = false
	t.exc = nil
	t.msg = ""
}

func (t *Trap) catch(exc host.Ref, msg string) {
	t.caught = true
	t.exc = exc
	t.msg = msg
}

// InjectException simulates host-executed code raising an exception while
// the innermost trap is active.
func (rt *Runtime) InjectException(exc host.Ref, msg string) {
	if len(rt.traps) == 0 {
		panic("hosttest: exception injected with no active trap")
	}
	rt.traps[len(rt.traps)-1].catch(exc, msg)
	rt.record("trap.catch %s", msg)
}

// Throw implements host.Runtime. The scheduled exception lands in the
// innermost active trap.
func (rt *Runtime) Throw(exception host.Ref) host.Ref {
	rt.InjectException(exception, fmt.Sprintf("%v", exception))
	rt.record("throw")
	return &Value{Raw: undefined{}}
}

// BlockDepth reports how many blocks are currently constructed.
func (rt *Runtime) BlockDepth() int { return len(rt.blocks) }

// ContextDepth reports how many contexts are currently entered.
func (rt *Runtime) ContextDepth() int { return len(rt.contexts) }

// TrapDepth reports how many traps are currently active.
func (rt *Runtime) TrapDepth() int { return len(rt.traps) }

// TopBlock returns the currently active block, or nil.
func (rt *Runtime) TopBlock() *Block {
	if len(rt.blocks) == 0 {
		return nil
	}
	return rt.blocks[len(rt.blocks)-1]
}
