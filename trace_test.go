package scopes

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-scopes/host/hosttest"
)

func TestTraceReflectsStack(t *testing.T) {
	rt := hosttest.New()
	iso := NewIsolate(rt)

	s1 := iso.NewHandleScope()
	cs := s1.NewContextScope(rt.NewContext("main"))
	esc := cs.NewEscapableScope()

	tr := iso.Trace()
	if tr.Depth != 4 {
		t.Fatalf("expected depth 4, got %d", tr.Depth)
	}
	kinds := make([]string, 0, len(tr.Frames))
	for _, f := range tr.Frames {
		kinds = append(kinds, f.Kind)
	}
	want := []string{"block", "context", "escape", "block"}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("frame %d: expected kind %q, got %q", i, want[i], kinds[i])
		}
	}

	esc.Release()
	tr = iso.Trace()
	if !tr.Frames[2].Stale || !tr.Frames[3].Stale {
		t.Fatalf("released escapable frames should show as stale: %+v", tr.Frames)
	}

	payload, err := tr.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded Trace
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("trace JSON did not round-trip: %v", err)
	}
	if decoded.Isolate != iso.ID().String() || decoded.Depth != 4 {
		t.Fatalf("unexpected decoded trace %+v", decoded)
	}
}
