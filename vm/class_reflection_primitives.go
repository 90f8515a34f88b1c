package vm

import "sort"

// ---------------------------------------------------------------------------
// Class Reflection Primitives
// ---------------------------------------------------------------------------

// stringArray builds an array of strings. The array takes its own
// references, so the interned temporaries are released before returning.
func (d *Dispatcher) stringArray(names []string) (Value, error) {
	vals := make([]Value, 0, len(names))
	defer func() { d.objects.ReleaseAll(vals...) }()
	for _, n := range names {
		v, err := d.objects.InternString(n)
		if err != nil {
			return Nil, err
		}
		vals = append(vals, v)
	}
	r, err := d.objects.NewArray(vals...)
	if err != nil {
		return Nil, err
	}
	return r, nil
}

func (d *Dispatcher) registerClassPrimitives() {
	vt := d.classes
	d.defineCommon(vt, false)
	defineIdentity(d, vt)

	// ---------------------------------------------------------------------------
	// Class-side (sent to class objects)
	// ---------------------------------------------------------------------------

	vt.Define0(d.selectors, "new", func(d *Dispatcher, recv Value) (Value, error) {
		r, err := d.objects.Instantiate(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		return r, nil
	})

	vt.Define0(d.selectors, "name", func(d *Dispatcher, recv Value) (Value, error) {
		c, err := d.objects.Class(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		return d.objects.InternString(c.Name)
	})

	vt.Define0(d.selectors, "superclass", func(d *Dispatcher, recv Value) (Value, error) {
		super, err := d.objects.Superclass(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		return d.objects.Acquire(super)
	})

	vt.Define1(d.selectors, "inheritsFrom:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		ancestor, ok := arg.(HeapRef)
		if !ok || ancestor == recv {
			return False, nil
		}
		is, err := d.objects.IsSubclassOf(recv.(HeapRef), ancestor)
		if err != nil {
			return Nil, err
		}
		return FromBool(is), nil
	})

	// selectors answers the selectors this class defines itself, sorted.
	vt.Define0(d.selectors, "selectors", func(d *Dispatcher, recv Value) (Value, error) {
		c, err := d.objects.Class(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		var names []string
		for id := range c.VTable.LocalMethods() {
			names = append(names, d.selectors.Name(id))
		}
		sort.Strings(names)
		return d.stringArray(names)
	})

	vt.Define1(d.selectors, "includesSelector:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		name, ok, err := d.selectorName(arg)
		if err != nil {
			return Nil, err
		}
		if !ok {
			return False, nil
		}
		c, err := d.objects.Class(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		return FromBool(c.VTable.HasMethod(d.selectors.Lookup(name))), nil
	})

	vt.Define0(d.selectors, "instanceVariableNames", func(d *Dispatcher, recv Value) (Value, error) {
		c, err := d.objects.Class(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		return d.stringArray(c.Fields)
	})

	// ---------------------------------------------------------------------------
	// Instance-side class reflection (sent to instances)
	// ---------------------------------------------------------------------------

	d.object.Define0(d.selectors, "className", func(d *Dispatcher, recv Value) (Value, error) {
		class, err := d.objects.ClassOf(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		c, err := d.objects.Class(class)
		if err != nil {
			return Nil, err
		}
		return d.objects.InternString(c.Name)
	})
}
