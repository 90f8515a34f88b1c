package vm

import (
	"bytes"

	"github.com/pkg/errors"
)

// ---------------------------------------------------------------------------
// Strings: inline up to 7 bytes, heap objects beyond
// ---------------------------------------------------------------------------

// LongString is the payload of a string too long to store inline. Its
// content is immutable and may contain zero bytes.
type LongString struct {
	data []byte
}

// Bytes returns the string's storage. The slice is borrowed from the table
// and must not be modified or used after the string is released.
func (s *LongString) Bytes() []byte { return s.data }

// Len returns the number of bytes in s.
func (s *LongString) Len() int { return len(s.data) }

func (s *LongString) release() []Value {
	s.data = nil
	return nil
}

// Intern returns a string Value for b. Up to ShortStringMax bytes are packed
// inline with no allocation and no counting. Anything longer is copied
// into a new LongString object owned by the caller with a count of 1.
func (t *ObjectTable) Intern(b []byte) (Value, error) {
	if s, ok := NewShortString(b); ok {
		return s, nil
	}
	data := make([]byte, len(b))
	copy(data, b)
	r, err := t.Allocate(LongStringType, &LongString{data: data})
	if err != nil {
		return Nil, errors.WithMessage(err, "intern")
	}
	return r, nil
}

// InternString is Intern for a Go string.
func (t *ObjectTable) InternString(s string) (Value, error) {
	return t.Intern([]byte(s))
}

// StringBytes returns the content of a string value. ShortStrings decode in
// place. For a LongString the result is a borrowed view of table storage:
// the count is not touched, and the view is only valid while the string
// stays live.
func (t *ObjectTable) StringBytes(v Value) ([]byte, error) {
	switch x := v.(type) {
	case ShortString:
		return x.Bytes(), nil
	case HeapRef:
		s, err := t.longString(x)
		if err != nil {
			return nil, err
		}
		return s.data, nil
	}
	return nil, errors.Wrapf(ErrNotAString, "%s value", v.Kind())
}

func (t *ObjectTable) longString(r HeapRef) (*LongString, error) {
	e, err := t.resolve(r)
	if err != nil {
		return nil, err
	}
	s, ok := e.payload.(*LongString)
	if !ok {
		return nil, errors.Wrapf(ErrNotAString, "object %#x is %s", uint64(r), printImmediate(e.header.Type))
	}
	return s, nil
}

// IsString reports whether v is a ShortString or a live LongString.
func (t *ObjectTable) IsString(v Value) bool {
	switch x := v.(type) {
	case ShortString:
		return true
	case HeapRef:
		_, err := t.longString(x)
		return err == nil
	}
	return false
}

// StringEqual compares two string values by content, whatever their
// representation.
func (t *ObjectTable) StringEqual(a, b Value) (bool, error) {
	if sa, ok := a.(ShortString); ok {
		if sb, ok := b.(ShortString); ok {
			return sa == sb, nil
		}
	}
	ab, err := t.StringBytes(a)
	if err != nil {
		return false, err
	}
	bb, err := t.StringBytes(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ab, bb), nil
}

// Concat returns a new string holding a followed by b.
func (t *ObjectTable) Concat(a, b Value) (Value, error) {
	ab, err := t.StringBytes(a)
	if err != nil {
		return Nil, err
	}
	bb, err := t.StringBytes(b)
	if err != nil {
		return Nil, err
	}
	joined := make([]byte, 0, len(ab)+len(bb))
	joined = append(joined, ab...)
	joined = append(joined, bb...)
	return t.Intern(joined)
}
