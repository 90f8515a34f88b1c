package vm

import (
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Reference counting
// ---------------------------------------------------------------------------

// Acquire records a new owner of v and returns v unchanged. Only non-nil
// HeapRefs are counted; immediates pass straight through.
func (t *ObjectTable) Acquire(v Value) (Value, error) {
	r, ok := v.(HeapRef)
	if !ok || r.IsNil() {
		return v, nil
	}
	e, err := t.resolve(r)
	if err != nil {
		return v, errors.WithMessage(err, "acquire")
	}
	e.header.Refs++
	return v, nil
}

// Release drops one owner of v and returns v unchanged. When a count
// reaches zero the object is torn down: the references its payload holds
// are released (array elements, instance fields, a class's superclass), an
// instance also releases its class, and the slot goes back to the free pool.
//
// Teardown runs off an explicit worklist, so arbitrarily deep structures
// never grow the Go stack. Releasing a freed identity fails with
// ErrStaleReference. A count can never wrap below zero: releasing an object
// whose count is already zero fails with ErrRefcountUnderflow and frees the
// object, so it does not linger as a leak.
func (t *ObjectTable) Release(v Value) (Value, error) {
	r, ok := v.(HeapRef)
	if !ok || r.IsNil() {
		return v, nil
	}
	if _, err := t.resolve(r); err != nil {
		return v, errors.WithMessage(err, "release")
	}

	var firstErr error
	pending := []HeapRef{r}
	for len(pending) > 0 {
		next := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		e, err := t.resolve(next)
		if err != nil {
			// A torn-down object held a dangling reference. Keep going so the
			// rest of the structure is still reclaimed.
			if firstErr == nil {
				firstErr = errors.WithMessage(err, "release constituent")
			}
			continue
		}
		if e.header.Refs == 0 {
			t.log.Criticalf("refcount underflow on %#x", uint64(next))
			if firstErr == nil {
				firstErr = errors.Wrapf(ErrRefcountUnderflow, "object %#x", uint64(next))
			}
			pending = t.teardown(next, e, pending)
			continue
		}
		e.header.Refs--
		if e.header.Refs > 0 {
			continue
		}
		pending = t.teardown(next, e, pending)
	}
	return v, firstErr
}

// teardown frees a dead object and appends the references it owned to
// pending.
func (t *ObjectTable) teardown(r HeapRef, e *entry, pending []HeapRef) []HeapRef {
	var owned []Value
	if e.payload != nil {
		owned = e.payload.release()
	}
	if class, ok := e.header.Type.(HeapRef); ok && !class.IsNil() {
		owned = append(owned, class)
	}
	t.freeSlot(r, e)

	for _, v := range owned {
		if ref, ok := v.(HeapRef); ok && !ref.IsNil() {
			pending = append(pending, ref)
		}
	}
	if t.log.AllowLevel(commonlog.Debug) && len(owned) > 0 {
		t.log.Debugf("teardown %#x released %d constituents", uint64(r), len(owned))
	}
	return pending
}

// ReleaseAll releases every value in vs, returning the first error.
func (t *ObjectTable) ReleaseAll(vs ...Value) error {
	var firstErr error
	for _, v := range vs {
		if _, err := t.Release(v); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
