package scopes

import (
	"github.com/goliatone/go-scopes/host"
)

// HandleScope is a scope that governs local handles: every Local minted
// while it is the active scope is released en masse when its block is
// popped. Creating a nested HandleScope redirects allocation to the nested
// block until that one is gone again.
type HandleScope struct {
	ref scopeRef
}

func newHandleScope(iso *Isolate, st *scopeStack) *HandleScope {
	base := st.currentMark()
	seq := st.push(frame{
		kind:  frameBlock,
		block: iso.rt.NewBlock(),
		owner: &blockRecord{live: true},
	})
	return &HandleScope{ref: scopeRef{
		iso:  iso,
		base: base,
		top:  st.currentMark(),
		seq:  seq,
	}}
}

// NewHandleScope opens a nested handle scope.
func (s *HandleScope) NewHandleScope() *HandleScope {
	st := s.ref.touch("NewHandleScope")
	return newHandleScope(s.ref.iso, st)
}

// NewLocal promotes a raw host value into a Local owned by this scope's
// handle block.
func (s *HandleScope) NewLocal(raw any) Local {
	st := s.ref.touch("NewLocal")
	return newLocal(st, st.iso.rt.NewLocal(raw))
}

// Context returns the execution context visible from this scope: the one
// entered by the nearest enclosing context scope, or whatever the host
// reports as current when none was entered through this stack. May be nil.
func (s *HandleScope) Context() host.Context {
	st := s.ref.touch("Context")
	return st.currentContext()
}

// Throw schedules exception to be raised by the host when control returns
// to it, and returns the host's undefined value. After calling Throw the
// caller must not invoke further host operations until the exception has
// been handled.
func (s *HandleScope) Throw(exception Local) Local {
	st := s.ref.touch("Throw")
	return newLocal(st, st.iso.rt.Throw(exception.Value()))
}

// Isolate implements Scope.
func (s *HandleScope) Isolate() *Isolate {
	return s.ref.iso
}

// Release implements Scope. The block is not popped immediately: it is
// flagged stale and collapsed the next time an ancestor scope is touched,
// so Locals minted here remain readable in the window between Release and
// that touch.
func (s *HandleScope) Release() {
	s.ref.release("Release", true)
}

// Local is a single tracked reference into the host heap, owned by the
// handle block that minted it. A Local is a value type and is free to copy;
// all copies denote the same storage.
type Local struct {
	ref   host.Ref
	owner *blockRecord
	iso   *Isolate
}

func newLocal(st *scopeStack, ref host.Ref) Local {
	owner := st.activeBlock()
	if owner == nil {
		st.iso.fault("NewLocal", "no handle block is active")
	}
	return Local{ref: ref, owner: owner, iso: st.iso}
}

// Value returns the underlying host reference. Reading a Local after its
// owning block has been popped is the exact misuse the host cannot detect,
// so it faults here instead.
func (l Local) Value() host.Ref {
	if l.owner == nil {
		panic(&UsageFault{Op: "Local.Value", Reason: "local was never initialized"})
	}
	if !l.owner.live {
		l.iso.fault("Local.Value", "local's handle block has been popped")
	}
	return l.ref
}

// IsZero reports whether the Local was never initialized.
func (l Local) IsZero() bool {
	return l.owner == nil
}
