package vm

import "github.com/pkg/errors"

// DefaultStackDepth is the call stack depth used when none is configured.
const DefaultStackDepth = 256

// CallStack is a fixed-depth operand stack.
//
// Push transfers the caller's reference into the stack and Pop transfers it
// back out, so neither touches reference counts. Running past either end is
// an error rather than a silent Nil.
type CallStack struct {
	slots []Value
	sp    int
}

// NewCallStack creates an empty stack holding at most depth values.
func NewCallStack(depth int) *CallStack {
	if depth <= 0 {
		depth = DefaultStackDepth
	}
	return &CallStack{slots: make([]Value, depth)}
}

// Push adds v to the top of the stack.
func (s *CallStack) Push(v Value) error {
	if s.sp >= len(s.slots) {
		return errors.Wrapf(ErrStackOverflow, "depth %d", len(s.slots))
	}
	s.slots[s.sp] = v
	s.sp++
	return nil
}

// Pop removes and returns the top value.
func (s *CallStack) Pop() (Value, error) {
	if s.sp <= 0 {
		return Nil, errors.WithStack(ErrStackUnderflow)
	}
	s.sp--
	v := s.slots[s.sp]
	s.slots[s.sp] = nil
	return v, nil
}

// Peek returns the value n slots below the top without removing it. Peek(0)
// is the top. The result is borrowed.
func (s *CallStack) Peek(n int) (Value, error) {
	if n < 0 || n >= s.sp {
		return Nil, errors.Wrapf(ErrStackUnderflow, "peek %d with %d values", n, s.sp)
	}
	return s.slots[s.sp-1-n], nil
}

// PopN removes the top n values and returns them oldest first.
func (s *CallStack) PopN(n int) ([]Value, error) {
	if n < 0 || n > s.sp {
		return nil, errors.Wrapf(ErrStackUnderflow, "pop %d with %d values", n, s.sp)
	}
	out := make([]Value, n)
	s.sp -= n
	copy(out, s.slots[s.sp:s.sp+n])
	for i := s.sp; i < s.sp+n; i++ {
		s.slots[i] = nil
	}
	return out, nil
}

// Len returns the number of values on the stack.
func (s *CallStack) Len() int {
	return s.sp
}

// Depth returns the maximum number of values the stack holds.
func (s *CallStack) Depth() int {
	return len(s.slots)
}

// Drain empties the stack, returning every value oldest first. Ownership of
// each moves to the caller.
func (s *CallStack) Drain() []Value {
	out, _ := s.PopN(s.sp)
	return out
}
