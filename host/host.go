// Package host defines the narrow primitive surface the scope machinery
// requires from an embedded, garbage-collected runtime. Adapters for a
// concrete engine (see gojahost) implement these interfaces; the scope stack
// is the only caller and is responsible for invoking construct/destruct
// pairs in strict LIFO order. The primitives themselves trust program order
// completely and perform no nesting validation of their own.
package host

// Ref is an opaque reference to an object living in the host runtime's heap.
// Consumers never inspect a Ref directly; they receive it from the scope
// machinery and hand it back to host-level operations.
type Ref any

// Runtime is one host engine instance. A Runtime and the scope stack that
// drives it are confined to a single goroutine; none of these methods are
// safe for concurrent use.
type Runtime interface {
	// NewBlock constructs a local-handle block. Until the block is freed or
	// another block is constructed, NewLocal allocates into it.
	NewBlock() Block

	// NewEscapeSlot allocates a placeholder value inside the currently
	// active block and returns a handle to its storage. The placeholder is
	// tracked by the host GC from this moment on, so the slot survives any
	// blocks constructed afterwards.
	NewEscapeSlot() Slot

	// NewLocal promotes a raw host value into a tracked reference inside
	// the currently active block.
	NewLocal(raw any) Ref

	// EnterContext makes ctx the current execution context. ExitContext
	// must be called with the same context, in reverse nesting order.
	EnterContext(ctx Context)
	ExitContext(ctx Context)

	// CurrentContext reports the execution context currently entered, or
	// nil if none is.
	CurrentContext() Context

	// NewTrap begins an exception trap. The trap intercepts exceptions
	// raised by host-executed code until it is released.
	NewTrap() Trap

	// Throw schedules an exception on the runtime and returns the host's
	// undefined value.
	Throw(exception Ref) Ref
}

// Block is one local-handle block. Freeing it releases every reference that
// was allocated while it was active.
type Block interface {
	Free()
}

// Slot is pre-allocated escape storage. Fill overwrites the placeholder with
// value and returns a reference to the same storage; the slot's contents are
// owned by the block that was active when the slot was allocated.
type Slot interface {
	Fill(value Ref) Ref
}

// Trap is an active exception trap. The read accessors are only meaningful
// while this trap is the most recently begun, not yet released one.
type Trap interface {
	Release()

	// HasCaught reports whether an exception was intercepted.
	HasCaught() bool
	// Exception returns the intercepted exception value, or nil.
	Exception() Ref
	// Message returns a human-readable rendering of the exception.
	Message() string
	// Rethrow hands the intercepted exception to the enclosing trap, if
	// any, in a way that avoids it being caught again by this trap.
	Rethrow()
	// Reset discards the intercepted exception, if any.
	Reset()
}

// Context is one execution context of a Runtime. Owner identifies the
// runtime instance the context belongs to; the scope machinery compares it
// against its own runtime before entering.
type Context interface {
	Owner() Runtime
}
