package vm

import (
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

// DefaultMaxChainDepth bounds the superclass walk when none is configured.
const DefaultMaxChainDepth = 64

// DispatchOptions configures a Dispatcher.
type DispatchOptions struct {
	// MaxChainDepth is the most classes a lookup visits before failing with
	// ErrChainTooDeep.
	MaxChainDepth int
	// Log receives dispatch traces. Defaults to the "oidvm.dispatch" logger.
	Log commonlog.Logger
}

// Dispatcher resolves and runs message sends.
//
// Immediate receivers are served from a closed per-kind table of built-in
// primitives. Heap receivers are resolved through the ObjectTable: an
// instance's class chain is searched, then the behavior every object
// shares; long strings, arrays and classes use their own built-in tables.
type Dispatcher struct {
	objects   *ObjectTable
	selectors *SelectorTable

	// immediate is indexed by Kind. The KindHeapRef slot serves Nil.
	immediate [numKinds]*VTable
	arrays    *VTable
	classes   *VTable
	object    *VTable

	maxChainDepth int
	log           commonlog.Logger
}

// NewDispatcher creates a dispatcher over objects with every built-in
// primitive registered.
func NewDispatcher(objects *ObjectTable, opts DispatchOptions) *Dispatcher {
	depth := opts.MaxChainDepth
	if depth <= 0 {
		depth = DefaultMaxChainDepth
	}
	log := opts.Log
	if log == nil {
		log = commonlog.GetLogger("oidvm.dispatch")
	}
	d := &Dispatcher{
		objects:       objects,
		selectors:     NewSelectorTable(),
		arrays:        NewVTable("Array"),
		classes:       NewVTable("Class"),
		object:        NewVTable("Object"),
		maxChainDepth: depth,
		log:           log,
	}
	d.immediate[KindHeapRef] = NewVTable("UndefinedObject")
	for k := KindSmallInteger; k < numKinds; k++ {
		d.immediate[k] = NewVTable(k.String())
	}

	d.registerNilPrimitives()
	d.registerSmallIntegerPrimitives()
	d.registerFloatPrimitives()
	d.registerStringPrimitives()
	d.registerBooleanPrimitives()
	d.registerPrimitivePrimitives()
	d.registerObjectPrimitives()
	d.registerArrayPrimitives()
	d.registerClassPrimitives()
	return d
}

// Objects returns the table this dispatcher resolves heap receivers in.
func (d *Dispatcher) Objects() *ObjectTable {
	return d.objects
}

// Selectors returns the selector table shared by every vtable.
func (d *Dispatcher) Selectors() *SelectorTable {
	return d.selectors
}

// DefineMethod adds a method to a class's own vtable, replacing any method
// the class already had for selector. The method must take as many
// arguments as the selector's spelling implies.
func (d *Dispatcher) DefineMethod(class HeapRef, selector string, m Method) error {
	if want := SelectorArity(selector); m.Arity() != want {
		return errors.Wrapf(ErrArity, "%s takes %d arguments, method %s takes %d", selector, want, m.Name(), m.Arity())
	}
	c, err := d.objects.Class(class)
	if err != nil {
		return err
	}
	c.VTable.Define(d.selectors, selector, m)
	d.log.Debugf("defined %s>>%s", c.VTable.Owner(), selector)
	return nil
}

// ---------------------------------------------------------------------------
// Sending
// ---------------------------------------------------------------------------

// Send delivers selector with args to receiver.
//
// The selector must be a string value; any other selector, and any
// selector the receiver has no method for, yields DoesNotUnderstand with a
// nil error. Receiver, selector and arguments are borrowed; a heap result
// is a new reference owned by the caller.
func (d *Dispatcher) Send(receiver, selector Value, args ...Value) (Value, error) {
	name, ok, err := d.selectorName(selector)
	if err != nil {
		return Nil, err
	}
	if !ok {
		d.log.Debugf("selector %s is not a string", printImmediate(selector))
		return DoesNotUnderstand, nil
	}
	return d.Perform(receiver, name, args...)
}

// Perform is Send with the selector given as a Go string.
func (d *Dispatcher) Perform(receiver Value, selector string, args ...Value) (Value, error) {
	id := d.selectors.Lookup(selector)
	var m Method
	if id >= 0 {
		var err error
		if m, err = d.lookup(receiver, id); err != nil {
			return Nil, errors.WithMessagef(err, "send %s", selector)
		}
	}
	if m == nil {
		d.log.Debugf("%s does not understand %s", printImmediate(receiver), selector)
		return DoesNotUnderstand, nil
	}
	if a := m.Arity(); a != len(args) {
		return Nil, errors.Wrapf(ErrArity, "%s takes %d, got %d", selector, a, len(args))
	}
	return m.Invoke(d, receiver, args)
}

// Understands reports whether receiver has a method for selector.
func (d *Dispatcher) Understands(receiver Value, selector string) (bool, error) {
	id := d.selectors.Lookup(selector)
	if id < 0 {
		return false, nil
	}
	m, err := d.lookup(receiver, id)
	return m != nil, err
}

func (d *Dispatcher) selectorName(selector Value) (string, bool, error) {
	switch s := selector.(type) {
	case ShortString:
		return s.String(), true, nil
	case HeapRef:
		if s.IsNil() {
			return "", false, nil
		}
		e, err := d.objects.resolve(s)
		if err != nil {
			return "", false, err
		}
		ls, ok := e.payload.(*LongString)
		if !ok {
			return "", false, nil
		}
		return string(ls.data), true, nil
	}
	return "", false, nil
}

// lookup finds the method for selector ID on receiver, or nil.
func (d *Dispatcher) lookup(receiver Value, id int) (Method, error) {
	r, ok := receiver.(HeapRef)
	if !ok || r.IsNil() {
		return d.immediate[receiver.Kind()].Lookup(id), nil
	}

	e, err := d.objects.resolve(r)
	if err != nil {
		return nil, err
	}
	switch typ := e.header.Type.(type) {
	case HeapRef:
		return d.lookupClass(typ, id)
	case Primitive:
		switch typ.Sub {
		case SubLongString:
			return d.immediate[KindShortString].Lookup(id), nil
		case SubArray:
			return d.arrays.Lookup(id), nil
		case SubClass:
			return d.classes.Lookup(id), nil
		}
	}
	return nil, nil
}

// lookupClass walks from class up its superclass chain, then falls back to
// the behavior shared by all instances.
func (d *Dispatcher) lookupClass(class HeapRef, id int) (Method, error) {
	depth := 0
	for r := class; !r.IsNil(); depth++ {
		if depth >= d.maxChainDepth {
			return nil, errors.Wrapf(ErrChainTooDeep, "more than %d classes above %#x", d.maxChainDepth, uint64(class))
		}
		c, err := d.objects.Class(r)
		if err != nil {
			return nil, err
		}
		if m := c.VTable.Lookup(id); m != nil {
			return m, nil
		}
		next, _ := c.Super.(HeapRef)
		r = next
	}
	return d.object.Lookup(id), nil
}
