package scopes

// EscapableScope is a handle scope that can promote exactly one Local to
// the lifetime of the parent handle block.
type EscapableScope struct {
	HandleScope
	slot *escapeSlot
}

// NewEscapableScope opens a handle scope with a one-shot escape slot. The
// slot's placeholder is allocated in the parent block strictly before the
// new block is constructed — otherwise the escaped handle would end up
// inside the scope it is meant to escape from. Do not reorder.
func (s *HandleScope) NewEscapableScope() *EscapableScope {
	st := s.ref.touch("NewEscapableScope")
	iso := s.ref.iso

	parent := st.activeBlock()
	if parent == nil {
		iso.fault("NewEscapableScope", "no parent handle block to escape to")
	}
	slot := &escapeSlot{
		slot:  iso.rt.NewEscapeSlot(),
		owner: parent,
	}

	base := st.currentMark()
	st.push(frame{kind: frameEscape, slot: slot})
	seq := st.push(frame{
		kind:  frameBlock,
		block: iso.rt.NewBlock(),
		owner: &blockRecord{live: true},
	})
	return &EscapableScope{
		HandleScope: HandleScope{ref: scopeRef{
			iso:  iso,
			base: base,
			top:  st.currentMark(),
			seq:  seq,
		}},
		slot: slot,
	}
}

// NewHandleScope opens a nested handle scope. The child inherits this
// scope's escape slot, so escaping through the child still delivers to this
// scope's parent and still counts against the single shot.
func (s *EscapableScope) NewHandleScope() *EscapableScope {
	st := s.ref.touch("NewHandleScope")
	child := newHandleScope(s.ref.iso, st)
	return &EscapableScope{HandleScope: *child, slot: s.slot}
}

// NewTryCatch opens an exception trap that retains escape capability.
func (s *EscapableScope) NewTryCatch() *EscapableTryCatch {
	st := s.ref.touch("NewTryCatch")
	inner := newTryCatch(s.ref.iso, st)
	return &EscapableTryCatch{TryCatch: *inner, slot: s.slot}
}

// Escape pushes value into the parent handle block and returns a Local
// tagged with the parent's lifetime. The slot is delivered at most once;
// a second call is a usage fault.
func (s *EscapableScope) Escape(value Local) Local {
	s.ref.touch("Escape")
	return escape(s.ref.iso, s.slot, value)
}

func escape(iso *Isolate, slot *escapeSlot, value Local) Local {
	if slot.consumed {
		iso.fault("Escape", "escape slot already delivered")
	}
	slot.consumed = true
	ref := slot.slot.Fill(value.Value())
	return Local{ref: ref, owner: slot.owner, iso: iso}
}
