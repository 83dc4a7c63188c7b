package gojahost

import (
	"github.com/dop251/goja"

	"github.com/goliatone/go-scopes/host"
)

type trap struct {
	rt     *Runtime
	caught bool
	exc    goja.Value
	msg    string
}

// NewTrap implements host.Runtime.
func (rt *Runtime) NewTrap() host.Trap {
	t := &trap{rt: rt}
	rt.traps = append(rt.traps, t)
	return t
}

func (t *trap) catch(v goja.Value, msg string) {
	t.caught = true
	t.exc = v
	t.msg = msg
}

// Release implements host.Trap.
func (t *trap) Release() {
	rt := t.rt
	if len(rt.traps) == 0 || rt.traps[len(rt.traps)-1] != t {
		panic("gojahost: trap released out of order")
	}
	rt.traps = rt.traps[:len(rt.traps)-1]
}

// HasCaught implements host.Trap.
func (t *trap) HasCaught() bool { return t.caught }

// Exception implements host.Trap.
func (t *trap) Exception() host.Ref {
	if !t.caught {
		return nil
	}
	return t.exc
}

// Message implements host.Trap.
func (t *trap) Message() string { return t.msg }

// Rethrow implements host.Trap. The exception is handed to the enclosing
// trap; with none it becomes pending on the runtime, surfacing from the
// next Eval.
func (t *trap) Rethrow() {
	rt := t.rt
	for i, other := range rt.traps {
		if other != t {
			continue
		}
		if i > 0 {
			rt.traps[i-1].catch(t.exc, t.msg)
		} else {
			rt.pending = t.exc
		}
		return
	}
}

// Reset implements host.Trap.
func (t *trap) Reset() {
	t.caught = false
	t.exc = nil
	t.msg = ""
}
