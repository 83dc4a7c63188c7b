// Package scopes provides safe, stack-disciplined access to objects living
// inside an embedded, garbage-collected host runtime. The host requires all
// object creation to be bracketed inside strictly nested scopes; this
// package owns that nesting. Scope handles are cheap views over a per
// isolate frame stack, their concrete types encode the capabilities the
// current nesting grants (creating locals, escaping one value to the
// parent, inspecting a caught exception, reading the entered context), and
// every operation revalidates its position before touching the host.
//
// Violations of the nesting contract are programmer errors and panic with a
// *UsageFault; errors reported by the host itself are ordinary values.
package scopes

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-scopes/host"
)

// Isolate pairs one host runtime instance with the scope stack that guards
// it. An isolate and everything created through it are confined to a single
// goroutine.
type Isolate struct {
	rt       host.Runtime
	id       uuid.UUID
	log      zerolog.Logger
	stack    scopeStack
	disposed bool
}

// IsolateOption configures an Isolate at construction.
type IsolateOption func(*Isolate)

// WithLogger attaches a logger; scope frame traffic is logged at trace
// level. The default logger discards everything.
func WithLogger(log zerolog.Logger) IsolateOption {
	return func(iso *Isolate) {
		iso.log = log
	}
}

// NewIsolate wraps rt in a fresh isolate with an empty scope stack.
func NewIsolate(rt host.Runtime, opts ...IsolateOption) *Isolate {
	iso := &Isolate{
		rt:  rt,
		id:  uuid.New(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(iso)
	}
	iso.stack.init(iso)
	iso.log = iso.log.With().Str("isolate", iso.id.String()).Logger()
	return iso
}

// ID returns the isolate's identity, used in fault messages and log fields.
func (iso *Isolate) ID() uuid.UUID {
	return iso.id
}

// Runtime exposes the wrapped host runtime instance.
func (iso *Isolate) Runtime() host.Runtime {
	return iso.rt
}

// NewHandleScope opens a scope at the root of the stack. Released
// descendants still parked on the stack are collapsed first; scopes that
// are still live make the root unreachable and fault.
func (iso *Isolate) NewHandleScope() *HandleScope {
	st := iso.root("NewHandleScope")
	return newHandleScope(iso, st)
}

// Dispose tears the isolate down. All scopes must have been released;
// deferred frames are collapsed, live ones fault. The host runtime itself
// is not owned by this package and stays untouched.
func (iso *Isolate) Dispose() {
	if iso.disposed {
		return
	}
	st := iso.root("Dispose")
	st.unwindTo(0)
	iso.disposed = true
	iso.log.Trace().Msg("isolate disposed")
}

// root collapses stale frames and verifies the stack is empty, activating
// the position below every scope.
func (iso *Isolate) root(op string) *scopeStack {
	if iso.disposed {
		iso.fault(op, "isolate has been disposed")
	}
	st := &iso.stack
	st.collapseStaleAbove(0)
	if len(st.frames) != 0 {
		iso.fault(op, "scopes are still active on this isolate")
	}
	return st
}
