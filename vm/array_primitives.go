package vm

// ---------------------------------------------------------------------------
// Array Primitives
// ---------------------------------------------------------------------------

// arrayIndex converts a 1-based index argument.
func arrayIndex(selector string, arg Value) (int, error) {
	i, ok := arg.(SmallInteger)
	if !ok {
		return 0, badArgument(selector, arg)
	}
	return int(i) - 1, nil
}

func (d *Dispatcher) registerArrayPrimitives() {
	vt := d.arrays
	d.defineCommon(vt, false)
	defineIdentity(d, vt)

	vt.Define0(d.selectors, "size", func(d *Dispatcher, recv Value) (Value, error) {
		n, err := d.objects.ArrayLen(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		return SmallInteger(n), nil
	})

	vt.Define0(d.selectors, "isEmpty", func(d *Dispatcher, recv Value) (Value, error) {
		n, err := d.objects.ArrayLen(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		return FromBool(n == 0), nil
	})

	vt.Define1(d.selectors, "at:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		i, err := arrayIndex("at:", arg)
		if err != nil {
			return Nil, err
		}
		v, err := d.objects.ArrayAt(recv.(HeapRef), i)
		if err != nil {
			return Nil, err
		}
		return d.objects.Acquire(v)
	})

	vt.Define2(d.selectors, "at:put:", func(d *Dispatcher, recv, arg, value Value) (Value, error) {
		i, err := arrayIndex("at:put:", arg)
		if err != nil {
			return Nil, err
		}
		if err := d.objects.ArrayAtPut(recv.(HeapRef), i, value); err != nil {
			return Nil, err
		}
		return d.objects.Acquire(value)
	})

	vt.Define1(d.selectors, "includes:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		a, err := d.objects.array(recv.(HeapRef))
		if err != nil {
			return Nil, err
		}
		for _, elem := range a.elems {
			if identical(elem, arg) {
				return True, nil
			}
			if eq, err := d.objects.StringEqual(elem, arg); err == nil && eq {
				return True, nil
			}
			if numericEqual(elem, arg) {
				return True, nil
			}
		}
		return False, nil
	})
}
