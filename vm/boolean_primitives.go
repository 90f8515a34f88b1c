package vm

// ---------------------------------------------------------------------------
// Boolean Primitives
// ---------------------------------------------------------------------------

func (d *Dispatcher) registerBooleanPrimitives() {
	vt := d.immediate[KindBoolean]
	d.defineCommon(vt, false)

	logic := func(name string, op func(a, b bool) bool) {
		vt.Define1(d.selectors, name, func(_ *Dispatcher, recv, arg Value) (Value, error) {
			b, ok := arg.(Boolean)
			if !ok {
				return Nil, badArgument(name, arg)
			}
			return FromBool(op(bool(recv.(Boolean)), bool(b))), nil
		})
	}
	logic("&", func(a, b bool) bool { return a && b })
	logic("|", func(a, b bool) bool { return a || b })
	logic("xor:", func(a, b bool) bool { return a != b })

	vt.Define0(d.selectors, "not", func(_ *Dispatcher, recv Value) (Value, error) {
		return FromBool(!bool(recv.(Boolean))), nil
	})

	eq := func(_ *Dispatcher, recv, arg Value) (Value, error) {
		b, ok := arg.(Boolean)
		return FromBool(ok && b == recv.(Boolean)), nil
	}
	vt.Define1(d.selectors, "=", eq)
	vt.Define1(d.selectors, "==", eq)
	vt.Define1(d.selectors, "~=", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		b, ok := arg.(Boolean)
		return FromBool(!ok || b != recv.(Boolean)), nil
	})
}
