package vm

import "github.com/pkg/errors"

// identical reports whether a and b are the same value: equal immediates or
// the same heap reference.
func identical(a, b Value) bool {
	return a == b
}

func defineIdentity(d *Dispatcher, vt *VTable) {
	vt.Define1(d.selectors, "==", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		return FromBool(identical(recv, arg)), nil
	})
	vt.Define1(d.selectors, "~~", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		return FromBool(!identical(recv, arg)), nil
	})
}

// ---------------------------------------------------------------------------
// Nil Primitives
// ---------------------------------------------------------------------------

func (d *Dispatcher) registerNilPrimitives() {
	vt := d.immediate[KindHeapRef]
	d.defineCommon(vt, true)
	defineIdentity(d, vt)
	vt.Define1(d.selectors, "=", func(_ *Dispatcher, _ Value, arg Value) (Value, error) {
		return FromBool(IsNil(arg)), nil
	})
}

// ---------------------------------------------------------------------------
// Primitive (sentinel) Primitives
// ---------------------------------------------------------------------------

func (d *Dispatcher) registerPrimitivePrimitives() {
	vt := d.immediate[KindPrimitive]
	d.defineCommon(vt, false)
	defineIdentity(d, vt)
	vt.Define1(d.selectors, "=", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		return FromBool(identical(recv, arg)), nil
	})
	vt.Define0(d.selectors, "isDoesNotUnderstand", func(_ *Dispatcher, recv Value) (Value, error) {
		return FromBool(recv.(Primitive).Sub == SubDoesNotUnderstand), nil
	})
	vt.Define0(d.selectors, "isDomainError", func(_ *Dispatcher, recv Value) (Value, error) {
		return FromBool(recv.(Primitive).Sub == SubDomainError), nil
	})
}

// ---------------------------------------------------------------------------
// Object Primitives: behavior every class instance shares
// ---------------------------------------------------------------------------

// instVarIndex converts a 1-based field index argument.
func instVarIndex(selector string, arg Value) (int, error) {
	i, ok := arg.(SmallInteger)
	if !ok {
		return 0, badArgument(selector, arg)
	}
	return int(i) - 1, nil
}

func (d *Dispatcher) registerObjectPrimitives() {
	vt := d.object
	d.defineCommon(vt, false)
	defineIdentity(d, vt)
	vt.Define1(d.selectors, "=", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		return FromBool(identical(recv, arg)), nil
	})

	vt.Define0(d.selectors, "class", func(d *Dispatcher, recv Value) (Value, error) {
		class, err := d.objects.ClassOf(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		return d.objects.Acquire(class)
	})

	vt.Define1(d.selectors, "isKindOf:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		ancestor, ok := arg.(HeapRef)
		if !ok {
			return False, nil
		}
		class, err := d.objects.ClassOf(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		is, err := d.objects.IsSubclassOf(class, ancestor)
		if err != nil {
			return Nil, err
		}
		return FromBool(is), nil
	})

	vt.Define1(d.selectors, "respondsTo:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		name, ok, err := d.selectorName(arg)
		if err != nil {
			return Nil, err
		}
		if !ok {
			return False, nil
		}
		understood, err := d.Understands(recv, name)
		if err != nil {
			return Nil, err
		}
		return FromBool(understood), nil
	})

	vt.Define1(d.selectors, "instVarAt:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		i, err := instVarIndex("instVarAt:", arg)
		if err != nil {
			return Nil, err
		}
		v, err := d.objects.FieldAt(recv.(HeapRef), i)
		if err != nil {
			return Nil, err
		}
		return d.objects.Acquire(v)
	})

	vt.Define2(d.selectors, "instVarAt:put:", func(d *Dispatcher, recv, arg, value Value) (Value, error) {
		i, err := instVarIndex("instVarAt:put:", arg)
		if err != nil {
			return Nil, err
		}
		if err := d.objects.SetField(recv.(HeapRef), i, value); err != nil {
			return Nil, err
		}
		return d.objects.Acquire(value)
	})

	vt.Define1(d.selectors, "instVarNamed:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		i, err := d.fieldNamed(recv.(HeapRef), arg)
		if err != nil {
			return Nil, err
		}
		v, err := d.objects.FieldAt(recv.(HeapRef), i)
		if err != nil {
			return Nil, err
		}
		return d.objects.Acquire(v)
	})

	vt.Define2(d.selectors, "instVarNamed:put:", func(d *Dispatcher, recv, arg, value Value) (Value, error) {
		i, err := d.fieldNamed(recv.(HeapRef), arg)
		if err != nil {
			return Nil, err
		}
		if err := d.objects.SetField(recv.(HeapRef), i, value); err != nil {
			return Nil, err
		}
		return d.objects.Acquire(value)
	})
}

// fieldNamed resolves a field name argument against the receiver's class.
func (d *Dispatcher) fieldNamed(recv HeapRef, arg Value) (int, error) {
	name, err := d.objects.StringBytes(arg)
	if err != nil {
		return 0, badArgument("instVarNamed:", arg)
	}
	class, err := d.objects.ClassOf(recv)
	if err != nil {
		return 0, err
	}
	i, err := d.objects.FieldIndex(class, string(name))
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, errors.Wrapf(ErrNotFound, "field %q", name)
	}
	return i, nil
}
