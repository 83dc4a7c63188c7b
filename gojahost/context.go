package gojahost

import (
	"github.com/dop251/goja"

	"github.com/goliatone/go-scopes/host"
)

// Context is a named set of globals layered over the engine's single global
// object. goja has no first-class multi-context support, so entering a
// context applies its globals (saving whatever they displace) and exiting
// restores the previous values; nesting composes the natural way as long as
// enter/exit stay strictly ordered, which the scope stack guarantees.
type Context struct {
	rt      *Runtime
	name    string
	globals map[string]any
	saved   map[string]goja.Value
}

// NewContext constructs a context owned by this runtime. globals may be nil.
func (rt *Runtime) NewContext(name string, globals map[string]any) *Context {
	return &Context{rt: rt, name: name, globals: globals}
}

// Name returns the context's name.
func (c *Context) Name() string {
	return c.name
}

// Owner implements host.Context.
func (c *Context) Owner() host.Runtime {
	return c.rt
}

// EnterContext implements host.Runtime.
func (rt *Runtime) EnterContext(ctx host.Context) {
	c := ctx.(*Context)
	c.saved = make(map[string]goja.Value, len(c.globals))
	global := rt.vm.GlobalObject()
	for k, v := range c.globals {
		c.saved[k] = global.Get(k)
		if err := global.Set(k, v); err != nil {
			panic("gojahost: cannot apply context global " + k + ": " + err.Error())
		}
	}
	rt.contexts = append(rt.contexts, c)
}

// ExitContext implements host.Runtime.
func (rt *Runtime) ExitContext(ctx host.Context) {
	c := ctx.(*Context)
	if len(rt.contexts) == 0 || rt.contexts[len(rt.contexts)-1] != c {
		panic("gojahost: context " + c.name + " exited out of order")
	}
	rt.contexts = rt.contexts[:len(rt.contexts)-1]
	global := rt.vm.GlobalObject()
	for k := range c.globals {
		prev := c.saved[k]
		if prev == nil {
			_ = global.Delete(k)
			continue
		}
		if err := global.Set(k, prev); err != nil {
			panic("gojahost: cannot restore global " + k + ": " + err.Error())
		}
	}
	c.saved = nil
}

// CurrentContext implements host.Runtime.
func (rt *Runtime) CurrentContext() host.Context {
	if len(rt.contexts) == 0 {
		return nil
	}
	return rt.contexts[len(rt.contexts)-1]
}
