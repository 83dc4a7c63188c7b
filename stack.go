package scopes

import (
	"github.com/goliatone/go-scopes/host"
)

// frameKind identifies which raw host primitive a frame wraps.
type frameKind uint8

const (
	frameBlock frameKind = iota
	frameEscape
	frameTrap
	frameContext

	frameKinds
)

func (k frameKind) String() string {
	switch k {
	case frameBlock:
		return "block"
	case frameEscape:
		return "escape"
	case frameTrap:
		return "trap"
	case frameContext:
		return "context"
	}
	return "unknown"
}

// blockRecord tracks the liveness of one local-handle block. Locals hold a
// pointer to the record of the block that minted them, and consult it on
// every read; popping the block flips live to false.
type blockRecord struct {
	live bool
}

// escapeSlot is the one-shot escape channel of an escapable scope. The host
// slot's storage lives in the parent block (owner), which is why an escaped
// Local is tagged with the parent's record.
type escapeSlot struct {
	slot     host.Slot
	owner    *blockRecord
	consumed bool
}

// frame is one pushed record on the scope stack: the raw primitive state for
// its kind, plus the active-slot index it displaced so pop can restore it.
type frame struct {
	kind frameKind
	seq  uint64
	prev int // active[kind] before this frame was pushed; -1 for none

	// stale marks a handle-bearing frame whose scope value has been
	// released but whose storage must survive until an ancestor is touched.
	stale bool

	block   host.Block   // frameBlock; nil for a callback view frame
	owner   *blockRecord // frameBlock
	slot    *escapeSlot  // frameEscape
	trap    host.Trap    // frameTrap
	context host.Context // frameContext
}

// scopeStack owns the frame buffer and the per-kind active slots for one
// runtime instance. Frames are appended by push and removed only by pop;
// unwindTo and collapseStaleAbove are loops over pop. The stack is confined
// to the goroutine that owns the isolate.
type scopeStack struct {
	iso     *Isolate
	frames  []frame
	active  [frameKinds]int
	nextSeq uint64
}

func (st *scopeStack) init(iso *Isolate) {
	st.iso = iso
	for k := range st.active {
		st.active[k] = -1
	}
}

// currentMark reports the stack depth; scope handles remember the depth at
// which their frames were pushed.
func (st *scopeStack) currentMark() int {
	return len(st.frames)
}

// push appends f, making it the active frame of its kind. Returns the seq
// assigned to the frame. Construction of raw primitive state happens in the
// scope constructors, before push; there is no error path here.
func (st *scopeStack) push(f frame) uint64 {
	st.nextSeq++
	f.seq = st.nextSeq
	f.prev = st.active[f.kind]
	st.active[f.kind] = len(st.frames)
	st.frames = append(st.frames, f)
	st.iso.log.Trace().
		Stringer("kind", f.kind).
		Int("depth", len(st.frames)).
		Uint64("seq", f.seq).
		Msg("scope frame pushed")
	return f.seq
}

// pop removes the topmost frame, restores the active slot it displaced, and
// runs the host destructor for its kind. It is the only place frames are
// removed.
func (st *scopeStack) pop() {
	top := len(st.frames) - 1
	if top < 0 {
		st.iso.fault("pop", "scope stack is empty")
	}
	f := st.frames[top]
	st.frames = st.frames[:top]
	st.active[f.kind] = f.prev

	switch f.kind {
	case frameBlock:
		f.owner.live = false
		if f.block != nil {
			f.block.Free()
		}
	case frameEscape:
		// The slot's storage belongs to the parent block; nothing to
		// destruct here.
	case frameTrap:
		f.trap.Release()
	case frameContext:
		st.iso.rt.ExitContext(f.context)
	}
	st.iso.log.Trace().
		Stringer("kind", f.kind).
		Int("depth", len(st.frames)).
		Uint64("seq", f.seq).
		Bool("stale", f.stale).
		Msg("scope frame popped")
}

// unwindTo pops until the stack depth equals mark.
func (st *scopeStack) unwindTo(mark int) {
	if mark < 0 || mark > len(st.frames) {
		st.iso.fault("unwind", "unwind mark is beyond the current stack")
	}
	for len(st.frames) > mark {
		st.pop()
	}
}

// collapseStaleAbove pops released handle-bearing frames sitting above
// depth. Touching any scope collapses its stale descendants first; by the
// time a caller can touch an ancestor, no Local derived from those frames
// can still be reachable.
func (st *scopeStack) collapseStaleAbove(depth int) {
	for len(st.frames) > depth && st.frames[len(st.frames)-1].stale {
		st.pop()
	}
}

// activeBlock returns the liveness record of the currently active
// local-handle block, or nil if no block frame is live.
func (st *scopeStack) activeBlock() *blockRecord {
	i := st.active[frameBlock]
	if i < 0 {
		return nil
	}
	return st.frames[i].owner
}

// activeEscape returns the escape slot visible at the top of the stack, or
// nil. Nested handle scopes inherit the slot of their nearest escapable
// ancestor through this lookup.
func (st *scopeStack) activeEscape() *escapeSlot {
	i := st.active[frameEscape]
	if i < 0 {
		return nil
	}
	return st.frames[i].slot
}

// currentContext returns the context entered by the topmost context frame,
// falling back to whatever the host itself reports when no frame on this
// stack entered one.
func (st *scopeStack) currentContext() host.Context {
	i := st.active[frameContext]
	if i < 0 {
		return st.iso.rt.CurrentContext()
	}
	return st.frames[i].context
}
