package vm

import "github.com/pkg/errors"

// Faults raised by the runtime. Call sites wrap these with context, so test
// for them with errors.Is. errors.Cause returns the innermost sentinel, which
// for a stale reference is ErrNotFound.
var (
	// Identity errors: a HeapRef that does not name a live object. Always a
	// contract violation by the caller.
	ErrNotFound       = errors.New("object not found")
	ErrStaleReference = errors.Wrap(ErrNotFound, "stale reference")

	// Refcount invariant violations.
	ErrRefcountUnderflow = errors.New("refcount underflow")
	ErrLeak              = errors.New("objects still live at shutdown")

	// Arithmetic domain errors. Sends that fail this way also return
	// DomainError as their value.
	ErrZeroDivide      = errors.New("division by zero")
	ErrIntegerOverflow = errors.New("SmallInteger overflow")

	// Call stack faults.
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("call stack underflow")

	// Capacity and structure.
	ErrTableFull    = errors.New("object table full")
	ErrChainTooDeep = errors.New("superclass chain too deep")
	ErrArity        = errors.New("wrong number of arguments")
	ErrBadArgument  = errors.New("bad argument")
	ErrNotAString   = errors.New("not a string")
	ErrInvalidWord  = errors.New("invalid word")
	ErrIndex        = errors.New("index out of bounds")
	ErrWrongType    = errors.New("object has the wrong type")
)
