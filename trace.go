package scopes

import (
	"encoding/json"
)

// Trace is a diagnostic snapshot of an isolate's scope stack, bottom frame
// first. It exists for logging and bug reports; nothing in the scope
// machinery consumes it.
type Trace struct {
	Isolate string       `json:"isolate"`
	Depth   int          `json:"depth"`
	Frames  []FrameTrace `json:"frames,omitempty"`
}

// FrameTrace describes a single pushed frame.
type FrameTrace struct {
	Kind  string `json:"kind"`
	Seq   uint64 `json:"seq"`
	Stale bool   `json:"stale,omitempty"`
}

// Trace captures the current stack without validating or collapsing
// anything; stale frames show up as such.
func (iso *Isolate) Trace() Trace {
	t := Trace{
		Isolate: iso.id.String(),
		Depth:   len(iso.stack.frames),
	}
	for _, f := range iso.stack.frames {
		t.Frames = append(t.Frames, FrameTrace{
			Kind:  f.kind.String(),
			Seq:   f.seq,
			Stale: f.stale,
		})
	}
	return t
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}
