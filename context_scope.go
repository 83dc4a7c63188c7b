package scopes

import (
	"github.com/goliatone/go-scopes/host"
)

// ContextScope sets the execution context for everything that happens while
// it is on the stack. Releasing it exits the context, restoring whichever
// context was entered before.
type ContextScope struct {
	HandleScope
	ctx host.Context
}

// NewContextScope enters ctx. The context must belong to the same runtime
// instance as this scope's isolate; letting objects from two instances
// intermix is unsound at the host level, so a mismatch faults immediately.
func (s *HandleScope) NewContextScope(ctx host.Context) *ContextScope {
	st := s.ref.touch("NewContextScope")
	iso := s.ref.iso
	if ctx == nil {
		iso.fault("NewContextScope", "context is nil")
	}
	if ctx.Owner() != iso.rt {
		iso.fault("NewContextScope", "context belongs to a different isolate")
	}

	iso.rt.EnterContext(ctx)
	base := st.currentMark()
	seq := st.push(frame{kind: frameContext, context: ctx})
	return &ContextScope{
		HandleScope: HandleScope{ref: scopeRef{
			iso:  iso,
			base: base,
			top:  st.currentMark(),
			seq:  seq,
		}},
		ctx: ctx,
	}
}

// Context returns the entered context.
func (s *ContextScope) Context() host.Context {
	s.ref.touch("Context")
	return s.ctx
}

// Release implements Scope. The context frame pops immediately, exiting the
// context on the host.
func (s *ContextScope) Release() {
	s.ref.release("Release", false)
}
