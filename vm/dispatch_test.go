package vm

import (
	"testing"

	"github.com/pkg/errors"
)

func newTestDispatcher(opts DispatchOptions) (*Dispatcher, *ObjectTable) {
	ot := newTestTable(TableOptions{})
	return NewDispatcher(ot, opts), ot
}

func perform(t *testing.T, d *Dispatcher, recv Value, selector string, args ...Value) Value {
	t.Helper()
	v, err := d.Perform(recv, selector, args...)
	if err != nil {
		t.Fatalf("%v %s: %v", recv, selector, err)
	}
	return v
}

// ---------------------------------------------------------------------------
// SmallInteger and Float
// ---------------------------------------------------------------------------

func TestSmallIntegerArithmetic(t *testing.T) {
	d, _ := newTestDispatcher(DispatchOptions{})

	tests := []struct {
		recv     Value
		selector string
		arg      Value
		want     Value
	}{
		{SmallInteger(3), "+", SmallInteger(4), SmallInteger(7)},
		{SmallInteger(3), "-", SmallInteger(5), SmallInteger(-2)},
		{SmallInteger(3), "*", SmallInteger(4), SmallInteger(12)},
		{SmallInteger(7), "/", SmallInteger(2), Float(3.5)},
		{SmallInteger(6), "/", SmallInteger(3), Float(2)},
		{SmallInteger(7), "//", SmallInteger(2), SmallInteger(3)},
		{SmallInteger(-7), "//", SmallInteger(2), SmallInteger(-4)},
		{SmallInteger(7), "\\\\", SmallInteger(2), SmallInteger(1)},
		{SmallInteger(-7), "\\\\", SmallInteger(2), SmallInteger(1)},
		{SmallInteger(7), "%", SmallInteger(-2), SmallInteger(-1)},
		{SmallInteger(-7), "rem:", SmallInteger(2), SmallInteger(-1)},
		{SmallInteger(3), "+", Float(1.5), Float(4.5)},
		{SmallInteger(3), "<", SmallInteger(4), True},
		{SmallInteger(3), ">", SmallInteger(4), False},
		{SmallInteger(4), "<=", SmallInteger(4), True},
		{SmallInteger(4), ">=", Float(4.5), False},
		{SmallInteger(4), "=", Float(4), True},
		{SmallInteger(4), "==", SmallInteger(4), True},
		{SmallInteger(4), "~=", SmallInteger(5), True},
		{SmallInteger(4), "=", True, False},
	}

	for _, tt := range tests {
		got := perform(t, d, tt.recv, tt.selector, tt.arg)
		if got != tt.want {
			t.Errorf("%v %s %v = %v, want %v", tt.recv, tt.selector, tt.arg, got, tt.want)
		}
	}
}

func TestSmallIntegerUnary(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})

	tests := []struct {
		recv     Value
		selector string
		want     Value
	}{
		{SmallInteger(5), "negated", SmallInteger(-5)},
		{SmallInteger(-5), "abs", SmallInteger(5)},
		{SmallInteger(5), "asFloat", Float(5)},
		{SmallInteger(0), "isZero", True},
		{SmallInteger(0), "isNil", False},
	}
	for _, tt := range tests {
		if got := perform(t, d, tt.recv, tt.selector); got != tt.want {
			t.Errorf("%v %s = %v, want %v", tt.recv, tt.selector, got, tt.want)
		}
	}

	s := perform(t, d, SmallInteger(-42), "printString")
	if b, _ := ot.StringBytes(s); string(b) != "-42" {
		t.Errorf("printString = %q, want -42", b)
	}
	if ot.Live() != 0 {
		t.Errorf("Live = %d, want 0", ot.Live())
	}
}

func TestZeroDivide(t *testing.T) {
	d, _ := newTestDispatcher(DispatchOptions{})

	tests := []struct {
		recv     Value
		selector string
		arg      Value
	}{
		{SmallInteger(1), "/", SmallInteger(0)},
		{SmallInteger(1), "/", Float(0)},
		{SmallInteger(1), "//", SmallInteger(0)},
		{SmallInteger(1), "\\\\", SmallInteger(0)},
		{SmallInteger(1), "%", SmallInteger(0)},
		{Float(1), "/", SmallInteger(0)},
		{Float(5), "//", Float(0)},
		{Float(5), "\\\\", SmallInteger(0)},
	}
	for _, tt := range tests {
		v, err := d.Perform(tt.recv, tt.selector, tt.arg)
		if v != DomainError {
			t.Errorf("%v %s %v = %v, want DomainError", tt.recv, tt.selector, tt.arg, v)
		}
		if !errors.Is(err, ErrZeroDivide) {
			t.Errorf("%v %s %v err = %v, want ErrZeroDivide", tt.recv, tt.selector, tt.arg, err)
		}
	}
}

func TestIntegerOverflow(t *testing.T) {
	d, _ := newTestDispatcher(DispatchOptions{})

	tests := []struct {
		recv     Value
		selector string
		args     []Value
	}{
		{SmallInteger(MaxSmallInteger), "+", []Value{SmallInteger(1)}},
		{SmallInteger(MinSmallInteger), "-", []Value{SmallInteger(1)}},
		{SmallInteger(MaxSmallInteger), "*", []Value{SmallInteger(2)}},
		{SmallInteger(1 << 40), "*", []Value{SmallInteger(1 << 40)}},
		{SmallInteger(MinSmallInteger), "//", []Value{SmallInteger(-1)}},
		{SmallInteger(MinSmallInteger), "negated", nil},
		{SmallInteger(MinSmallInteger), "abs", nil},
		{Float(1e300), "floor", nil},
	}
	for _, tt := range tests {
		v, err := d.Perform(tt.recv, tt.selector, tt.args...)
		if v != DomainError {
			t.Errorf("%v %s = %v, want DomainError", tt.recv, tt.selector, v)
		}
		if !errors.Is(err, ErrIntegerOverflow) {
			t.Errorf("%v %s err = %v, want ErrIntegerOverflow", tt.recv, tt.selector, err)
		}
	}

	// The largest product that still fits is fine.
	if got := perform(t, d, SmallInteger(1<<30), "*", SmallInteger(1<<29)); got != Value(SmallInteger(1<<59)) {
		t.Errorf("2^30 * 2^29 = %v", got)
	}
}

func TestFloatPrimitives(t *testing.T) {
	d, _ := newTestDispatcher(DispatchOptions{})

	tests := []struct {
		recv     Value
		selector string
		args     []Value
		want     Value
	}{
		{Float(1.5), "+", []Value{SmallInteger(2)}, Float(3.5)},
		{Float(1.5), "*", []Value{Float(2)}, Float(3)},
		{Float(1), "/", []Value{Float(4)}, Float(0.25)},
		{Float(1.5), "<", []Value{SmallInteger(2)}, True},
		{Float(2), "=", []Value{SmallInteger(2)}, True},
		{Float(-2.5), "abs", nil, Float(2.5)},
		{Float(2.5), "negated", nil, Float(-2.5)},
		{Float(-2.5), "floor", nil, SmallInteger(-3)},
		{Float(-2.5), "truncated", nil, SmallInteger(-2)},
		{Float(2.5), "ceiling", nil, SmallInteger(3)},
		{Float(5.5), "//", []Value{Float(2)}, SmallInteger(2)},
		{Float(-5.5), "//", []Value{SmallInteger(2)}, SmallInteger(-3)},
		{Float(-5.5), "\\\\", []Value{Float(2)}, Float(0.5)},
		{Float(5.5), "\\\\", []Value{SmallInteger(-2)}, Float(-0.5)},
	}
	for _, tt := range tests {
		if got := perform(t, d, tt.recv, tt.selector, tt.args...); got != tt.want {
			t.Errorf("%v %s %v = %v, want %v", tt.recv, tt.selector, tt.args, got, tt.want)
		}
	}
}

func TestBadArgument(t *testing.T) {
	d, _ := newTestDispatcher(DispatchOptions{})
	if _, err := d.Perform(SmallInteger(3), "+", True); !errors.Is(err, ErrBadArgument) {
		t.Errorf("3 + true err = %v, want ErrBadArgument", err)
	}
	if _, err := d.Perform(True, "&", SmallInteger(1)); !errors.Is(err, ErrBadArgument) {
		t.Errorf("true & 1 err = %v, want ErrBadArgument", err)
	}
}

func TestArity(t *testing.T) {
	d, _ := newTestDispatcher(DispatchOptions{})
	if _, err := d.Perform(SmallInteger(3), "+"); !errors.Is(err, ErrArity) {
		t.Errorf("3 + (no arg) err = %v, want ErrArity", err)
	}
	if _, err := d.Perform(SmallInteger(3), "negated", SmallInteger(1)); !errors.Is(err, ErrArity) {
		t.Errorf("3 negated: 1 err = %v, want ErrArity", err)
	}
}

// ---------------------------------------------------------------------------
// Selectors and misses
// ---------------------------------------------------------------------------

func TestDoesNotUnderstand(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})
	long, _ := ot.InternString("neverDefinedAnywhere:")
	defer ot.Release(long)

	tests := []struct {
		recv     Value
		selector Value
	}{
		{SmallInteger(3), mustShort(t, "frob")},
		{True, mustShort(t, "+")},
		{Nil, mustShort(t, "size")},
		{SmallInteger(3), long},
		{SmallInteger(3), SmallInteger(7)},
		{SmallInteger(3), Nil},
	}
	for _, tt := range tests {
		v, err := d.Send(tt.recv, tt.selector)
		if err != nil {
			t.Errorf("%v %v err = %v, want nil", tt.recv, tt.selector, err)
		}
		if v != DoesNotUnderstand {
			t.Errorf("%v %v = %v, want DoesNotUnderstand", tt.recv, tt.selector, v)
		}
	}

	if v := perform(t, d, DoesNotUnderstand, "isDoesNotUnderstand"); v != True {
		t.Errorf("isDoesNotUnderstand = %v", v)
	}
	if v := perform(t, d, DomainError, "isDoesNotUnderstand"); v != False {
		t.Errorf("DomainError isDoesNotUnderstand = %v", v)
	}
}

func TestSendWithStringSelectors(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})

	// Short and long selectors resolve the same way.
	plus := mustShort(t, "+")
	if v, err := d.Send(SmallInteger(3), plus, SmallInteger(4)); err != nil || v != Value(SmallInteger(7)) {
		t.Errorf("3 + 4 = %v, %v", v, err)
	}

	sel, _ := ot.InternString("includesSubstring:")
	recv, _ := ot.InternString("hello there world")
	defer ot.ReleaseAll(sel, recv)
	if v, err := d.Send(recv, sel, mustShort(t, "there")); err != nil || v != True {
		t.Errorf("includesSubstring: = %v, %v", v, err)
	}
}

func TestStaleReceiver(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})
	s, _ := ot.InternString("released before the send")
	ot.Release(s)
	if _, err := d.Perform(s, "size"); !errors.Is(err, ErrStaleReference) {
		t.Errorf("send to stale err = %v, want ErrStaleReference", err)
	}
}

// ---------------------------------------------------------------------------
// Strings, Booleans, Nil
// ---------------------------------------------------------------------------

func TestStringPrimitives(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})
	hi := mustShort(t, "hi")
	long, _ := ot.InternString("a rather long string")
	same, _ := ot.InternString("a rather long string")
	defer ot.ReleaseAll(long, same)

	tests := []struct {
		recv     Value
		selector string
		args     []Value
		want     Value
	}{
		{hi, "size", nil, SmallInteger(2)},
		{long, "size", nil, SmallInteger(20)},
		{hi, "=", []Value{mustShort(t, "hi")}, True},
		{hi, "==", []Value{mustShort(t, "ho")}, False},
		{long, "=", []Value{same}, True},
		{long, "~=", []Value{hi}, True},
		{hi, "=", []Value{SmallInteger(2)}, False},
		{hi, "at:", []Value{SmallInteger(1)}, SmallInteger('h')},
		{long, "at:", []Value{SmallInteger(20)}, SmallInteger('g')},
		{mustShort(t, ""), "isEmpty", nil, True},
		{hi, "<", []Value{mustShort(t, "ho")}, True},
	}
	for _, tt := range tests {
		if got := perform(t, d, tt.recv, tt.selector, tt.args...); got != tt.want {
			t.Errorf("%s %s %v = %v, want %v", ot.Describe(tt.recv), tt.selector, tt.args, got, tt.want)
		}
	}

	if _, err := d.Perform(hi, "at:", SmallInteger(3)); !errors.Is(err, ErrIndex) {
		t.Errorf("'hi' at: 3 err = %v, want ErrIndex", err)
	}

	joined := perform(t, d, long, ",", hi)
	if b, _ := ot.StringBytes(joined); string(b) != "a rather long stringhi" {
		t.Errorf(", = %q", b)
	}
	ot.Release(joined)

	up := perform(t, d, hi, "asUppercase")
	if up != Value(mustShort(t, "HI")) {
		t.Errorf("asUppercase = %v", up)
	}

	// printString of a long string hands back another reference to it.
	p := perform(t, d, long, "printString")
	if p != long {
		t.Errorf("printString = %v, want the receiver", p)
	}
	ot.Release(p)
	if ot.Live() != 2 {
		t.Errorf("Live = %d, want 2", ot.Live())
	}
}

func TestBooleanPrimitives(t *testing.T) {
	d, _ := newTestDispatcher(DispatchOptions{})

	tests := []struct {
		recv     Value
		selector string
		args     []Value
		want     Value
	}{
		{True, "&", []Value{False}, False},
		{True, "|", []Value{False}, True},
		{True, "xor:", []Value{True}, False},
		{False, "not", nil, True},
		{True, "=", []Value{True}, True},
		{True, "==", []Value{SmallInteger(1)}, False},
		{False, "~=", []Value{True}, True},
	}
	for _, tt := range tests {
		if got := perform(t, d, tt.recv, tt.selector, tt.args...); got != tt.want {
			t.Errorf("%v %s %v = %v, want %v", tt.recv, tt.selector, tt.args, got, tt.want)
		}
	}
}

func TestNilPrimitives(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})
	if v := perform(t, d, Nil, "isNil"); v != True {
		t.Errorf("nil isNil = %v", v)
	}
	if v := perform(t, d, Nil, "==", Nil); v != True {
		t.Errorf("nil == nil = %v", v)
	}
	if v := perform(t, d, Nil, "==", SmallInteger(0)); v != False {
		t.Errorf("nil == 0 = %v", v)
	}
	if v := perform(t, d, Nil, "printString"); ot.Describe(v) != "nil" {
		t.Errorf("nil printString = %v", v)
	}
}

// ---------------------------------------------------------------------------
// Arrays
// ---------------------------------------------------------------------------

func TestArrayPrimitives(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})
	arr, _ := ot.NewArrayOfSize(2)
	s, _ := ot.InternString("an element string")

	if v := perform(t, d, arr, "size"); v != Value(SmallInteger(2)) {
		t.Errorf("size = %v", v)
	}
	stored := perform(t, d, arr, "at:put:", SmallInteger(1), s)
	ot.Release(stored)

	got := perform(t, d, arr, "at:", SmallInteger(1))
	if got != s {
		t.Errorf("at: 1 = %v, want %v", got, s)
	}
	if n := refs(t, ot, s.(HeapRef)); n != 3 {
		t.Errorf("element Refs = %d, want 3 (caller, array, at: result)", n)
	}
	ot.Release(got)

	if _, err := d.Perform(arr, "at:", SmallInteger(0)); !errors.Is(err, ErrIndex) {
		t.Errorf("at: 0 err = %v, want ErrIndex", err)
	}
	if v := perform(t, d, arr, "includes:", mustShort(t, "x")); v != False {
		t.Errorf("includes: = %v", v)
	}

	p := perform(t, d, arr, "printString")
	if b, _ := ot.StringBytes(p); string(b) != "('an element string' nil)" {
		t.Errorf("printString = %q", b)
	}
	ot.ReleaseAll(p, s, arr)
	if ot.Live() != 0 {
		t.Errorf("Live = %d, want 0", ot.Live())
	}
}

// ---------------------------------------------------------------------------
// Classes
// ---------------------------------------------------------------------------

func TestClassChainDispatch(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})
	animal, _ := ot.NewClass("Animal", Nil, []string{"name"})
	dog, _ := ot.NewClass("Dog", animal, nil)
	cat, _ := ot.NewClass("Cat", animal, nil)

	d.DefineMethod(animal, "speak", NewMethod0("speak", func(d *Dispatcher, _ Value) (Value, error) {
		return SmallInteger(1), nil
	}))
	d.DefineMethod(dog, "speak", NewMethod0("speak", func(d *Dispatcher, _ Value) (Value, error) {
		return SmallInteger(2), nil
	}))
	d.DefineMethod(animal, "rename:", NewMethod1("rename:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		return Nil, d.Objects().SetField(recv.(HeapRef), 0, arg)
	}))

	rex := perform(t, d, dog, "new")
	tom := perform(t, d, cat, "new")

	if v := perform(t, d, rex, "speak"); v != Value(SmallInteger(2)) {
		t.Errorf("dog speak = %v, want 2 (override)", v)
	}
	if v := perform(t, d, tom, "speak"); v != Value(SmallInteger(1)) {
		t.Errorf("cat speak = %v, want 1 (inherited)", v)
	}
	if v := perform(t, d, tom, "fly"); v != DoesNotUnderstand {
		t.Errorf("cat fly = %v, want DoesNotUnderstand", v)
	}

	perform(t, d, rex, "rename:", mustShort(t, "Rex"))
	name := perform(t, d, rex, "instVarNamed:", mustShort(t, "name"))
	if name != Value(mustShort(t, "Rex")) {
		t.Errorf("name = %v", name)
	}

	// Shared object behavior applies after the class chain.
	if v := perform(t, d, rex, "==", rex); v != True {
		t.Errorf("rex == rex = %v", v)
	}
	if v := perform(t, d, rex, "==", tom); v != False {
		t.Errorf("rex == tom = %v", v)
	}
	if v := perform(t, d, rex, "isKindOf:", animal); v != True {
		t.Errorf("isKindOf: = %v", v)
	}
	if v := perform(t, d, rex, "respondsTo:", mustShort(t, "speak")); v != True {
		t.Errorf("respondsTo: speak = %v", v)
	}
	if v := perform(t, d, rex, "respondsTo:", mustShort(t, "fly")); v != False {
		t.Errorf("respondsTo: fly = %v", v)
	}
	class := perform(t, d, rex, "class")
	if class != Value(dog) {
		t.Errorf("class = %v, want Dog", class)
	}
	ot.Release(class)

	className := perform(t, d, rex, "className")
	if className != Value(mustShort(t, "Dog")) {
		t.Errorf("className = %v", className)
	}
	p := perform(t, d, rex, "printString")
	if b, _ := ot.StringBytes(p); string(b) != "a Dog" {
		t.Errorf("printString = %q", b)
	}
	ot.Release(p)

	ot.ReleaseAll(rex, tom, dog, cat, animal)
	if ot.Live() != 0 {
		t.Errorf("Live = %d, want 0", ot.Live())
	}
}

func TestClassSidePrimitives(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})
	base, _ := ot.NewClass("Base", Nil, []string{"a"})
	sub, _ := ot.NewClass("Derived", base, []string{"b", "c"})
	d.DefineMethod(sub, "zap", NewMethod0("zap", func(*Dispatcher, Value) (Value, error) { return Nil, nil }))
	d.DefineMethod(sub, "bang", NewMethod0("bang", func(*Dispatcher, Value) (Value, error) { return Nil, nil }))

	name := perform(t, d, sub, "name")
	if name != Value(mustShort(t, "Derived")) {
		t.Errorf("name = %v", name)
	}
	super := perform(t, d, sub, "superclass")
	if super != Value(base) {
		t.Errorf("superclass = %v, want Base", super)
	}
	ot.Release(super)
	if v := perform(t, d, base, "superclass"); !IsNil(v) {
		t.Errorf("root superclass = %v, want nil", v)
	}
	if v := perform(t, d, sub, "inheritsFrom:", base); v != True {
		t.Errorf("inheritsFrom: = %v", v)
	}
	if v := perform(t, d, sub, "inheritsFrom:", sub); v != False {
		t.Errorf("inheritsFrom: self = %v", v)
	}
	if v := perform(t, d, sub, "includesSelector:", mustShort(t, "zap")); v != True {
		t.Errorf("includesSelector: = %v", v)
	}

	sels := perform(t, d, sub, "selectors")
	if got := ot.Describe(sels); got != "('bang' 'zap')" {
		t.Errorf("selectors = %s", got)
	}
	vars := perform(t, d, sub, "instanceVariableNames")
	if got := ot.Describe(vars); got != "('b' 'c')" {
		t.Errorf("instanceVariableNames = %s", got)
	}

	obj := perform(t, d, sub, "new")
	if n, _ := ot.instance(obj.(HeapRef)); n.NumFields() != 3 {
		t.Errorf("instance fields = %d, want 3", n.NumFields())
	}

	ot.ReleaseAll(sels, vars, obj, sub, base)
	if ot.Live() != 0 {
		t.Errorf("Live = %d, want 0", ot.Live())
	}
}

func TestChainTooDeep(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{MaxChainDepth: 2})
	a, _ := ot.NewClass("A", Nil, nil)
	b, _ := ot.NewClass("B", a, nil)
	c, _ := ot.NewClass("C", b, nil)
	d.DefineMethod(c, "near", NewMethod0("near", func(*Dispatcher, Value) (Value, error) { return True, nil }))
	obj, _ := ot.Instantiate(c)
	defer ot.ReleaseAll(obj, c, b, a)

	if v := perform(t, d, obj, "near"); v != True {
		t.Errorf("near = %v", v)
	}
	if _, err := d.Perform(obj, "isNil"); !errors.Is(err, ErrChainTooDeep) {
		t.Errorf("deep lookup err = %v, want ErrChainTooDeep", err)
	}
}

func TestInstVarAt(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})
	class, _ := ot.NewClass("Box", Nil, []string{"content"})
	obj, _ := ot.Instantiate(class)
	s, _ := ot.InternString("boxed long string")

	stored := perform(t, d, obj, "instVarAt:put:", SmallInteger(1), s)
	ot.Release(stored)
	got := perform(t, d, obj, "instVarAt:", SmallInteger(1))
	if got != s {
		t.Errorf("instVarAt: 1 = %v", got)
	}
	ot.Release(got)
	if _, err := d.Perform(obj, "instVarAt:", SmallInteger(2)); !errors.Is(err, ErrIndex) {
		t.Errorf("instVarAt: 2 err = %v, want ErrIndex", err)
	}
	if _, err := d.Perform(obj, "instVarNamed:", mustShort(t, "nope")); !errors.Is(err, ErrNotFound) {
		t.Errorf("instVarNamed: nope err = %v, want ErrNotFound", err)
	}

	ot.ReleaseAll(s, obj, class)
	if ot.Live() != 0 {
		t.Errorf("Live = %d, want 0", ot.Live())
	}
}

func TestUnderstands(t *testing.T) {
	d, _ := newTestDispatcher(DispatchOptions{})
	if ok, _ := d.Understands(SmallInteger(1), "+"); !ok {
		t.Error("SmallInteger should understand +")
	}
	if ok, _ := d.Understands(True, "+"); ok {
		t.Error("Boolean should not understand +")
	}
	if ok, _ := d.Understands(True, "neverInterned"); ok {
		t.Error("unknown selector understood")
	}
}

// ---------------------------------------------------------------------------
// Selectors
// ---------------------------------------------------------------------------

func TestSelectorTable(t *testing.T) {
	st := NewSelectorTable()
	plus := st.Intern("+")
	atPut := st.Intern("at:put:")
	if st.Intern("+") != plus {
		t.Error("Intern is not stable")
	}
	if plus == atPut {
		t.Error("distinct names share an ID")
	}
	if st.Lookup("at:put:") != atPut || st.Lookup("missing") != -1 {
		t.Errorf("Lookup = %d, %d", st.Lookup("at:put:"), st.Lookup("missing"))
	}
	if st.Name(atPut) != "at:put:" || st.Name(99) != "" {
		t.Errorf("Name = %q, %q", st.Name(atPut), st.Name(99))
	}
	if st.Len() != 2 {
		t.Errorf("Len = %d, want 2", st.Len())
	}
}

func TestSelectorArity(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"negated", 0},
		{"isNil", 0},
		{"+", 1},
		{"//", 1},
		{"\\\\", 1},
		{"~=", 1},
		{",", 1},
		{"at:", 1},
		{"at:put:", 2},
		{"", -1},
	}
	for _, tt := range tests {
		if got := SelectorArity(tt.name); got != tt.want {
			t.Errorf("SelectorArity(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestMissDoesNotGrowSelectors(t *testing.T) {
	d, _ := newTestDispatcher(DispatchOptions{})
	before := d.Selectors().Len()
	d.Perform(SmallInteger(1), "neverDefined")
	if d.Selectors().Len() != before {
		t.Errorf("selector count grew from %d to %d", before, d.Selectors().Len())
	}
}

func TestDefineMethodChecksArity(t *testing.T) {
	d, ot := newTestDispatcher(DispatchOptions{})
	class, _ := ot.NewClass("Thing", Nil, nil)
	defer ot.Release(class)

	unary := NewMethod0("poke", func(*Dispatcher, Value) (Value, error) { return Nil, nil })
	if err := d.DefineMethod(class, "poke:", unary); !errors.Is(err, ErrArity) {
		t.Errorf("unary method under keyword selector err = %v, want ErrArity", err)
	}
	if err := d.DefineMethod(class, "+", unary); !errors.Is(err, ErrArity) {
		t.Errorf("unary method under binary selector err = %v, want ErrArity", err)
	}
	if err := d.DefineMethod(class, "poke", unary); err != nil {
		t.Errorf("DefineMethod: %v", err)
	}
	s, _ := ot.InternString("a string, not a class")
	defer ot.Release(s)
	if err := d.DefineMethod(s.(HeapRef), "poke", unary); !errors.Is(err, ErrWrongType) {
		t.Errorf("DefineMethod on a string err = %v, want ErrWrongType", err)
	}
}
