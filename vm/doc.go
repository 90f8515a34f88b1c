// Package vm implements the oidvm object runtime.
//
// This package contains:
//   - the tagged 64-bit value codec (Word) and the Value sum type
//   - the object table with generation-checked identities
//   - manual reference counting with worklist teardown
//   - the string interner (inline short strings, heap long strings)
//   - vtable-based message dispatch with per-kind primitives
//
// Ownership: a function that returns a heap reference hands the caller one
// count, which the caller must Release. Arguments are borrowed unless a
// function says it stores them, in which case it acquires its own count.
package vm
