package vm

import "math"

// ---------------------------------------------------------------------------
// Float Primitives
// ---------------------------------------------------------------------------

func (d *Dispatcher) registerFloatPrimitives() {
	vt := d.immediate[KindFloat]
	d.defineCommon(vt, false)

	arith := func(name string, op func(a, b float64) float64) {
		vt.Define1(d.selectors, name, func(_ *Dispatcher, recv, arg Value) (Value, error) {
			b, ok := toFloat(arg)
			if !ok {
				return Nil, badArgument(name, arg)
			}
			return Float(op(float64(recv.(Float)), b)), nil
		})
	}
	arith("+", func(a, b float64) float64 { return a + b })
	arith("-", func(a, b float64) float64 { return a - b })
	arith("*", func(a, b float64) float64 { return a * b })

	vt.Define1(d.selectors, "/", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		b, ok := toFloat(arg)
		if !ok {
			return Nil, badArgument("/", arg)
		}
		if b == 0 {
			return zeroDivide("/")
		}
		return Float(float64(recv.(Float)) / b), nil
	})

	// Floored quotient and remainder, matching SmallInteger.
	floored := func(name string, op func(a, b float64) (Value, error)) {
		vt.Define1(d.selectors, name, func(_ *Dispatcher, recv, arg Value) (Value, error) {
			b, ok := toFloat(arg)
			if !ok {
				return Nil, badArgument(name, arg)
			}
			if b == 0 {
				return zeroDivide(name)
			}
			return op(float64(recv.(Float)), b)
		})
	}
	floored("//", func(a, b float64) (Value, error) {
		return floatToSmall(math.Floor(a / b))
	})
	floored("\\\\", func(a, b float64) (Value, error) {
		return Float(a - math.Floor(a/b)*b), nil
	})

	d.compareNumbers(vt)

	vt.Define0(d.selectors, "negated", func(_ *Dispatcher, recv Value) (Value, error) {
		return -recv.(Float), nil
	})

	vt.Define0(d.selectors, "abs", func(_ *Dispatcher, recv Value) (Value, error) {
		return Float(math.Abs(float64(recv.(Float)))), nil
	})

	vt.Define0(d.selectors, "floor", func(_ *Dispatcher, recv Value) (Value, error) {
		return floatToSmall(math.Floor(float64(recv.(Float))))
	})

	vt.Define0(d.selectors, "ceiling", func(_ *Dispatcher, recv Value) (Value, error) {
		return floatToSmall(math.Ceil(float64(recv.(Float))))
	})

	vt.Define0(d.selectors, "truncated", func(_ *Dispatcher, recv Value) (Value, error) {
		return floatToSmall(math.Trunc(float64(recv.(Float))))
	})

	vt.Define0(d.selectors, "rounded", func(_ *Dispatcher, recv Value) (Value, error) {
		return floatToSmall(math.Round(float64(recv.(Float))))
	})

	vt.Define0(d.selectors, "sqrt", func(_ *Dispatcher, recv Value) (Value, error) {
		return Float(math.Sqrt(float64(recv.(Float)))), nil
	})

	vt.Define0(d.selectors, "isNaN", func(_ *Dispatcher, recv Value) (Value, error) {
		return FromBool(math.IsNaN(float64(recv.(Float)))), nil
	})

	vt.Define0(d.selectors, "asFloat", func(_ *Dispatcher, recv Value) (Value, error) {
		return recv, nil
	})
}
