package scopes

import (
	"fmt"

	"github.com/google/uuid"
)

// UsageFault reports a violation of the scope nesting contract: popping past
// a live scope, touching a shadowed or dead scope, escaping twice, entering
// a foreign context, and the like. Faults are raised with panic, never
// returned as error values — by the time one fires the caller has already
// broken an invariant the host heap depends on, and continuing would risk
// silent corruption instead of a localized crash.
type UsageFault struct {
	// Op names the operation that detected the fault.
	Op string
	// Reason names the violated invariant.
	Reason string
	// Isolate identifies the runtime instance whose stack was touched.
	Isolate uuid.UUID
}

func (f *UsageFault) Error() string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("scopes: %s: %s (isolate %s)", f.Op, f.Reason, f.Isolate)
}

func (iso *Isolate) fault(op, reason string) {
	panic(&UsageFault{Op: op, Reason: reason, Isolate: iso.id})
}
