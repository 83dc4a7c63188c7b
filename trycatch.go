package scopes

import (
	"github.com/goliatone/go-scopes/host"
)

// TryCatch is a scope that intercepts exceptions raised by host-executed
// code while it is on the stack. It keeps the capabilities of the scope it
// was opened in: locals minted through it go into the enclosing handle
// block, which is also how long the values returned by Exception live.
//
// Opening any scope inside the TryCatch makes its accessors unreachable
// until that inner scope is released; the trap nonetheless keeps catching
// for its entire lifetime.
type TryCatch struct {
	HandleScope
	trap host.Trap
}

func newTryCatch(iso *Isolate, st *scopeStack) *TryCatch {
	trap := iso.rt.NewTrap()
	base := st.currentMark()
	seq := st.push(frame{kind: frameTrap, trap: trap})
	return &TryCatch{
		HandleScope: HandleScope{ref: scopeRef{
			iso:  iso,
			base: base,
			top:  st.currentMark(),
			seq:  seq,
		}},
		trap: trap,
	}
}

// NewTryCatch opens an exception trap inside this scope.
func (s *HandleScope) NewTryCatch() *TryCatch {
	st := s.ref.touch("NewTryCatch")
	return newTryCatch(s.ref.iso, st)
}

// HasCaught reports whether an exception has been intercepted by this trap.
func (tc *TryCatch) HasCaught() bool {
	tc.ref.touch("HasCaught")
	return tc.trap.HasCaught()
}

// Exception returns the intercepted exception as a Local owned by the
// enclosing handle block. ok is false when nothing was caught.
func (tc *TryCatch) Exception() (exc Local, ok bool) {
	st := tc.ref.touch("Exception")
	if !tc.trap.HasCaught() {
		return Local{}, false
	}
	return newLocal(st, tc.trap.Exception()), true
}

// Message returns a human-readable rendering of the intercepted exception.
// ok is false when nothing was caught.
func (tc *TryCatch) Message() (msg string, ok bool) {
	tc.ref.touch("Message")
	if !tc.trap.HasCaught() {
		return "", false
	}
	return tc.trap.Message(), true
}

// Rethrow hands the intercepted exception to the enclosing trap in a way
// that avoids catching it again here. It reports false when there was
// nothing to rethrow.
func (tc *TryCatch) Rethrow() bool {
	tc.ref.touch("Rethrow")
	if !tc.trap.HasCaught() {
		return false
	}
	tc.trap.Rethrow()
	return true
}

// Reset discards the intercepted exception, if any. Not required before
// reusing the trap; a newer exception simply overwrites an older one.
func (tc *TryCatch) Reset() {
	tc.ref.touch("Reset")
	tc.trap.Reset()
}

// Release implements Scope. Traps hold no long-lived derived values, so the
// frame pops immediately.
func (tc *TryCatch) Release() {
	tc.ref.release("Release", false)
}

// EscapableTryCatch is a TryCatch opened inside an escapable scope; it
// additionally carries the (still one-shot) escape slot of that scope.
type EscapableTryCatch struct {
	TryCatch
	slot *escapeSlot
}

// Escape pushes value into the escape target of the enclosing escapable
// scope. See EscapableScope.Escape.
func (tc *EscapableTryCatch) Escape(value Local) Local {
	tc.ref.touch("Escape")
	return escape(tc.ref.iso, tc.slot, value)
}
