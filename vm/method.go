package vm

// Method is a callable behavior found by dispatch.
//
// Receiver and arguments are borrowed for the duration of the call. A
// returned heap reference is owned by the caller, so a method returning an
// existing object (a field, an element, the receiver) acquires it first.
type Method interface {
	Invoke(d *Dispatcher, receiver Value, args []Value) (Value, error)
	// Arity is the number of arguments the method takes.
	Arity() int
	Name() string
}

// Method0Func implements a unary method.
type Method0Func func(d *Dispatcher, receiver Value) (Value, error)

// Method1Func implements a binary or one-keyword method.
type Method1Func func(d *Dispatcher, receiver Value, arg Value) (Value, error)

// Method2Func implements a two-keyword method.
type Method2Func func(d *Dispatcher, receiver Value, arg1, arg2 Value) (Value, error)

// goMethod is a Method backed by a Go function. The dispatcher checks the
// argument count before Invoke, so call may index args freely.
type goMethod struct {
	name  string
	arity int
	call  func(d *Dispatcher, receiver Value, args []Value) (Value, error)
}

func (m *goMethod) Invoke(d *Dispatcher, receiver Value, args []Value) (Value, error) {
	return m.call(d, receiver, args)
}

func (m *goMethod) Arity() int   { return m.arity }
func (m *goMethod) Name() string { return m.name }

// NewMethod0 wraps a unary Go function.
func NewMethod0(name string, fn Method0Func) Method {
	return &goMethod{name: name, arity: 0, call: func(d *Dispatcher, recv Value, _ []Value) (Value, error) {
		return fn(d, recv)
	}}
}

// NewMethod1 wraps a one-argument Go function.
func NewMethod1(name string, fn Method1Func) Method {
	return &goMethod{name: name, arity: 1, call: func(d *Dispatcher, recv Value, args []Value) (Value, error) {
		return fn(d, recv, args[0])
	}}
}

// NewMethod2 wraps a two-argument Go function.
func NewMethod2(name string, fn Method2Func) Method {
	return &goMethod{name: name, arity: 2, call: func(d *Dispatcher, recv Value, args []Value) (Value, error) {
		return fn(d, recv, args[0], args[1])
	}}
}
