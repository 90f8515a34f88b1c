package vm

import "github.com/pkg/errors"

// Array is the payload of an array object: a fixed-size sequence of
// values, each of which the array owns a reference to.
type Array struct {
	elems []Value
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems) }

func (a *Array) release() []Value {
	elems := a.elems
	a.elems = nil
	return elems
}

// NewArray allocates an array holding elems. Each element is acquired, so
// the caller keeps its own references.
func (t *ObjectTable) NewArray(elems ...Value) (HeapRef, error) {
	owned := make([]Value, len(elems))
	for i, v := range elems {
		if _, err := t.Acquire(v); err != nil {
			t.ReleaseAll(owned[:i]...)
			return 0, err
		}
		owned[i] = v
	}
	r, err := t.Allocate(ArrayType, &Array{elems: owned})
	if err != nil {
		t.ReleaseAll(owned...)
		return 0, err
	}
	return r, nil
}

// NewArrayOfSize allocates an array of n Nil elements.
func (t *ObjectTable) NewArrayOfSize(n int) (HeapRef, error) {
	elems := make([]Value, n)
	for i := range elems {
		elems[i] = Nil
	}
	return t.Allocate(ArrayType, &Array{elems: elems})
}

func (t *ObjectTable) array(r HeapRef) (*Array, error) {
	e, err := t.resolve(r)
	if err != nil {
		return nil, err
	}
	a, ok := e.payload.(*Array)
	if !ok {
		return nil, errors.Wrapf(ErrWrongType, "object %#x is not an array", uint64(r))
	}
	return a, nil
}

// ArrayLen returns the number of elements of an array object.
func (t *ObjectTable) ArrayLen(r HeapRef) (int, error) {
	a, err := t.array(r)
	if err != nil {
		return 0, err
	}
	return len(a.elems), nil
}

// ArrayAt returns element i (0-based). The result is borrowed.
func (t *ObjectTable) ArrayAt(r HeapRef, i int) (Value, error) {
	a, err := t.array(r)
	if err != nil {
		return Nil, err
	}
	if i < 0 || i >= len(a.elems) {
		return Nil, errors.Wrapf(ErrIndex, "%d of %d", i, len(a.elems))
	}
	return a.elems[i], nil
}

// ArrayAtPut stores v at element i (0-based). The array acquires v and
// releases whatever it held there before.
func (t *ObjectTable) ArrayAtPut(r HeapRef, i int, v Value) error {
	a, err := t.array(r)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(a.elems) {
		return errors.Wrapf(ErrIndex, "%d of %d", i, len(a.elems))
	}
	if _, err := t.Acquire(v); err != nil {
		return err
	}
	old := a.elems[i]
	a.elems[i] = v
	_, err = t.Release(old)
	return err
}
