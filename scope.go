package scopes

// Scope is the behavior common to every scope handle. All scope types are
// views over a position in their isolate's scope stack; the concrete type
// encodes which capabilities the position grants.
type Scope interface {
	// Isolate returns the runtime instance this scope belongs to.
	Isolate() *Isolate
	// Release ends the scope. Handle-bearing scopes defer the actual pop
	// until an ancestor is touched; all other kinds pop immediately.
	Release()
}

var (
	_ Scope = (*HandleScope)(nil)
	_ Scope = (*EscapableScope)(nil)
	_ Scope = (*TryCatch)(nil)
	_ Scope = (*EscapableTryCatch)(nil)
	_ Scope = (*ContextScope)(nil)
	_ Scope = (*CallbackScope)(nil)
)

// scopeRef is the runtime state shared by every scope handle: the stack
// position its frames occupy and the sequence number of its topmost frame.
// The static type wrapped around a scopeRef is what varies.
type scopeRef struct {
	iso      *Isolate
	base     int // stack depth before this scope's frames were pushed
	top      int // stack depth after
	seq      uint64
	released bool
}

// touch validates that this scope is the live top of its isolate's stack,
// collapsing released descendants first. Every operation on a scope handle
// calls touch before doing anything else; it is the single point where the
// host API's trust-the-caller contract becomes a detectable fault.
func (r *scopeRef) touch(op string) *scopeStack {
	iso := r.iso
	if iso.disposed {
		iso.fault(op, "isolate has been disposed")
	}
	if r.released {
		iso.fault(op, "scope has been released")
	}
	st := &iso.stack
	st.collapseStaleAbove(r.top)
	switch {
	case len(st.frames) < r.top:
		iso.fault(op, "scope is no longer on the stack")
	case len(st.frames) > r.top:
		iso.fault(op, "scope is shadowed by a live descendant scope")
	case st.frames[r.top-1].seq != r.seq:
		iso.fault(op, "scope is no longer on the stack")
	}
	return st
}

// release ends the scope. deferred selects the handle-bearing teardown path:
// the frames are flagged stale and remain on the stack until an ancestor
// touch collapses them, so Locals minted here stay readable exactly as long
// as the caller can still be holding them.
func (r *scopeRef) release(op string, deferred bool) {
	st := r.touch(op)
	if deferred {
		for i := r.base; i < r.top; i++ {
			st.frames[i].stale = true
		}
	} else {
		st.unwindTo(r.base)
	}
	r.released = true
}
