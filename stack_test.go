package scopes

import (
	"testing"

	"github.com/goliatone/go-scopes/host/hosttest"
)

// captureFault runs fn and returns the UsageFault it panicked with. Any
// other panic is re-raised; finishing without a fault fails the test.
func captureFault(t *testing.T, fn func()) *UsageFault {
	t.Helper()
	var fault *UsageFault
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			f, ok := r.(*UsageFault)
			if !ok {
				panic(r)
			}
			fault = f
		}()
		fn()
	}()
	if fault == nil {
		t.Fatalf("expected a usage fault, got none")
	}
	return fault
}

func TestStackLIFOIntegrity(t *testing.T) {
	rt := hosttest.New()
	iso := NewIsolate(rt)

	s1 := iso.NewHandleScope()
	if got := iso.stack.currentMark(); got != 1 {
		t.Fatalf("expected depth 1 after first scope, got %d", got)
	}
	if iso.stack.active[frameBlock] != 0 {
		t.Fatalf("active block should be frame 0, got %d", iso.stack.active[frameBlock])
	}

	ctx := rt.NewContext("main")
	cs := s1.NewContextScope(ctx)
	tc := cs.NewTryCatch()
	if got := iso.stack.currentMark(); got != 3 {
		t.Fatalf("expected depth 3, got %d", got)
	}
	if iso.stack.active[frameContext] != 1 {
		t.Fatalf("active context should be frame 1, got %d", iso.stack.active[frameContext])
	}
	if iso.stack.active[frameTrap] != 2 {
		t.Fatalf("active trap should be frame 2, got %d", iso.stack.active[frameTrap])
	}
	if rt.TrapDepth() != 1 || rt.ContextDepth() != 1 || rt.BlockDepth() != 1 {
		t.Fatalf("host state out of sync: traps=%d contexts=%d blocks=%d",
			rt.TrapDepth(), rt.ContextDepth(), rt.BlockDepth())
	}

	tc.Release()
	if iso.stack.active[frameTrap] != -1 {
		t.Fatalf("trap active slot not restored, got %d", iso.stack.active[frameTrap])
	}
	cs.Release()
	if iso.stack.active[frameContext] != -1 {
		t.Fatalf("context active slot not restored, got %d", iso.stack.active[frameContext])
	}
	if rt.ContextDepth() != 0 {
		t.Fatalf("host context not exited, depth %d", rt.ContextDepth())
	}

	s1.Release()
	iso.Dispose()
	if rt.BlockDepth() != 0 {
		t.Fatalf("host block not freed, depth %d", rt.BlockDepth())
	}
}

func TestActiveTracksTopmostOfKind(t *testing.T) {
	rt := hosttest.New()
	iso := NewIsolate(rt)

	s1 := iso.NewHandleScope()
	s2 := s1.NewHandleScope()
	if iso.stack.active[frameBlock] != 1 {
		t.Fatalf("active block should be the nested frame, got %d", iso.stack.active[frameBlock])
	}
	s2.Release()
	s1.NewLocal("touch")
	if iso.stack.active[frameBlock] != 0 {
		t.Fatalf("active block should fall back to frame 0, got %d", iso.stack.active[frameBlock])
	}
}

func TestUnwindDetectedByStaleHandles(t *testing.T) {
	rt := hosttest.New()
	iso := NewIsolate(rt)

	s1 := iso.NewHandleScope()
	s2 := s1.NewHandleScope()
	s3 := s2.NewHandleScope()

	// Bulk cleanup behind the facade's back, as an enclosing owner would
	// do when destroying several descendants at once.
	iso.stack.unwindTo(1)
	if got := iso.stack.currentMark(); got != 1 {
		t.Fatalf("expected depth 1 after unwind, got %d", got)
	}

	s1.NewLocal("still-live")
	f := captureFault(t, func() { s2.NewLocal("dead") })
	if f.Reason != "scope is no longer on the stack" {
		t.Fatalf("unexpected fault reason %q", f.Reason)
	}
	captureFault(t, func() { s3.NewLocal("dead") })
}

func TestUnwindPastStackFaults(t *testing.T) {
	iso := NewIsolate(hosttest.New())
	f := captureFault(t, func() { iso.stack.unwindTo(5) })
	if f.Op != "unwind" {
		t.Fatalf("unexpected fault op %q", f.Op)
	}
}

func TestPopEmptyStackFaults(t *testing.T) {
	iso := NewIsolate(hosttest.New())
	f := captureFault(t, func() { iso.stack.pop() })
	if f.Op != "pop" || f.Reason != "scope stack is empty" {
		t.Fatalf("unexpected fault %v", f)
	}
}

func TestSequenceGuardAgainstReusedDepth(t *testing.T) {
	rt := hosttest.New()
	iso := NewIsolate(rt)

	s1 := iso.NewHandleScope()
	s2 := s1.NewHandleScope()
	iso.stack.unwindTo(1)

	// A fresh scope reoccupies the same depth; the dead handle must not
	// validate against it.
	s2b := s1.NewHandleScope()
	f := captureFault(t, func() { s2.NewLocal("stale") })
	if f.Reason != "scope is no longer on the stack" {
		t.Fatalf("unexpected fault reason %q", f.Reason)
	}
	s2b.NewLocal("fresh")
}
