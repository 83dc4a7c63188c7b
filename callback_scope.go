package scopes

import (
	"github.com/goliatone/go-scopes/host"
)

// CallbackScope bootstraps handle and context capabilities inside a
// callback invoked by the host runtime itself. The host has already set up
// its own allocation state for the duration of the callback, so no raw
// primitive is constructed: the frame is a pure view. Constructing one
// anywhere other than inside a host callback misstates what the host has
// prepared and leads the host into undefined behavior.
type CallbackScope struct {
	HandleScope
	ctx host.Context
}

// NewCallbackScope opens a callback view for ctx on top of whatever scopes
// are currently on the stack. The context must belong to this isolate.
func (iso *Isolate) NewCallbackScope(ctx host.Context) *CallbackScope {
	if iso.disposed {
		iso.fault("NewCallbackScope", "isolate has been disposed")
	}
	if ctx != nil && ctx.Owner() != iso.rt {
		iso.fault("NewCallbackScope", "context belongs to a different isolate")
	}
	st := &iso.stack
	base := st.currentMark()
	seq := st.push(frame{
		kind:  frameBlock,
		owner: &blockRecord{live: true},
	})
	return &CallbackScope{
		HandleScope: HandleScope{ref: scopeRef{
			iso:  iso,
			base: base,
			top:  st.currentMark(),
			seq:  seq,
		}},
		ctx: ctx,
	}
}

// Context returns the context the callback was entered with, falling back
// to the context visible on the stack when none was supplied.
func (s *CallbackScope) Context() host.Context {
	st := s.ref.touch("Context")
	if s.ctx != nil {
		return s.ctx
	}
	return st.currentContext()
}

// Release implements Scope. The view frame pops immediately; locals minted
// through a callback scope are only valid until this point.
func (s *CallbackScope) Release() {
	s.ref.release("Release", false)
}
