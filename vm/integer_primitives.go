package vm

import (
	"math"

	"github.com/pkg/errors"
)

// ---------------------------------------------------------------------------
// Numeric helpers
// ---------------------------------------------------------------------------

// toFloat widens a numeric value. ok is false for anything else.
func toFloat(v Value) (f float64, ok bool) {
	switch x := v.(type) {
	case SmallInteger:
		return float64(x), true
	case Float:
		return float64(x), true
	}
	return 0, false
}

func badArgument(selector string, arg Value) error {
	return errors.Wrapf(ErrBadArgument, "%s with %s", selector, arg.Kind())
}

func zeroDivide(selector string) (Value, error) {
	return DomainError, errors.Wrapf(ErrZeroDivide, "%s", selector)
}

// floorDiv and floorMod round toward negative infinity. b must be nonzero.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// mulSmall multiplies two SmallIntegers, failing when the product leaves
// the SmallInteger range or would wrap an int64.
func mulSmall(a, b int64) (Value, error) {
	if a == 0 || b == 0 {
		return SmallInteger(0), nil
	}
	p := a * b
	if p/b != a {
		return DomainError, errors.Wrapf(ErrIntegerOverflow, "%d * %d", a, b)
	}
	return smallIntResult(p)
}

// floatToSmall converts a float already rounded to an integral value.
func floatToSmall(f float64) (Value, error) {
	if math.IsNaN(f) || math.Abs(f) >= 1<<62 || !FitsSmallInteger(int64(f)) {
		return DomainError, errors.Wrapf(ErrIntegerOverflow, "%g", f)
	}
	return SmallInteger(int64(f)), nil
}

// numericEqual compares two numbers by value. Non-numbers are never equal
// to a number.
func numericEqual(a, b Value) bool {
	if ai, ok := a.(SmallInteger); ok {
		if bi, ok := b.(SmallInteger); ok {
			return ai == bi
		}
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

// compareNumbers registers the ordering selectors on vt for a numeric
// receiver.
func (d *Dispatcher) compareNumbers(vt *VTable) {
	cmp := func(name string, pred func(a, b float64) bool, ipred func(a, b int64) bool) {
		vt.Define1(d.selectors, name, func(_ *Dispatcher, recv, arg Value) (Value, error) {
			if ri, ok := recv.(SmallInteger); ok {
				if ai, ok := arg.(SmallInteger); ok {
					return FromBool(ipred(int64(ri), int64(ai))), nil
				}
			}
			rf, _ := toFloat(recv)
			af, ok := toFloat(arg)
			if !ok {
				return Nil, badArgument(name, arg)
			}
			return FromBool(pred(rf, af)), nil
		})
	}
	cmp("<", func(a, b float64) bool { return a < b }, func(a, b int64) bool { return a < b })
	cmp(">", func(a, b float64) bool { return a > b }, func(a, b int64) bool { return a > b })
	cmp("<=", func(a, b float64) bool { return a <= b }, func(a, b int64) bool { return a <= b })
	cmp(">=", func(a, b float64) bool { return a >= b }, func(a, b int64) bool { return a >= b })

	eq := func(_ *Dispatcher, recv, arg Value) (Value, error) {
		return FromBool(numericEqual(recv, arg)), nil
	}
	vt.Define1(d.selectors, "=", eq)
	vt.Define1(d.selectors, "==", eq)
	vt.Define1(d.selectors, "~=", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		return FromBool(!numericEqual(recv, arg)), nil
	})
}

// defineCommon registers the behavior every receiver kind shares.
func (d *Dispatcher) defineCommon(vt *VTable, isNil bool) {
	vt.Define0(d.selectors, "isNil", func(_ *Dispatcher, _ Value) (Value, error) {
		return FromBool(isNil), nil
	})
	vt.Define0(d.selectors, "notNil", func(_ *Dispatcher, _ Value) (Value, error) {
		return FromBool(!isNil), nil
	})
	vt.Define0(d.selectors, "printString", func(d *Dispatcher, recv Value) (Value, error) {
		return d.objects.InternString(d.objects.Describe(recv))
	})
}

// ---------------------------------------------------------------------------
// SmallInteger Primitives
// ---------------------------------------------------------------------------

func (d *Dispatcher) registerSmallIntegerPrimitives() {
	vt := d.immediate[KindSmallInteger]
	d.defineCommon(vt, false)

	// Arithmetic
	vt.Define1(d.selectors, "+", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		a := int64(recv.(SmallInteger))
		switch b := arg.(type) {
		case SmallInteger:
			return smallIntResult(a + int64(b))
		case Float:
			return Float(float64(a) + float64(b)), nil
		}
		return Nil, badArgument("+", arg)
	})

	vt.Define1(d.selectors, "-", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		a := int64(recv.(SmallInteger))
		switch b := arg.(type) {
		case SmallInteger:
			return smallIntResult(a - int64(b))
		case Float:
			return Float(float64(a) - float64(b)), nil
		}
		return Nil, badArgument("-", arg)
	})

	vt.Define1(d.selectors, "*", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		a := int64(recv.(SmallInteger))
		switch b := arg.(type) {
		case SmallInteger:
			return mulSmall(a, int64(b))
		case Float:
			return Float(float64(a) * float64(b)), nil
		}
		return Nil, badArgument("*", arg)
	})

	// / always produces a Float, so 7 / 2 is 3.5.
	vt.Define1(d.selectors, "/", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		a := float64(recv.(SmallInteger))
		b, ok := toFloat(arg)
		if !ok {
			return Nil, badArgument("/", arg)
		}
		if b == 0 {
			return zeroDivide("/")
		}
		return Float(a / b), nil
	})

	// // is floor division.
	vt.Define1(d.selectors, "//", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		b, ok := arg.(SmallInteger)
		if !ok {
			return Nil, badArgument("//", arg)
		}
		if b == 0 {
			return zeroDivide("//")
		}
		return smallIntResult(floorDiv(int64(recv.(SmallInteger)), int64(b)))
	})

	mod := func(name string) Method1Func {
		return func(_ *Dispatcher, recv, arg Value) (Value, error) {
			b, ok := arg.(SmallInteger)
			if !ok {
				return Nil, badArgument(name, arg)
			}
			if b == 0 {
				return zeroDivide(name)
			}
			return SmallInteger(floorMod(int64(recv.(SmallInteger)), int64(b))), nil
		}
	}
	vt.Define1(d.selectors, "\\\\", mod("\\\\"))
	vt.Define1(d.selectors, "%", mod("%"))

	// rem: truncates toward zero.
	vt.Define1(d.selectors, "rem:", func(_ *Dispatcher, recv, arg Value) (Value, error) {
		b, ok := arg.(SmallInteger)
		if !ok {
			return Nil, badArgument("rem:", arg)
		}
		if b == 0 {
			return zeroDivide("rem:")
		}
		return SmallInteger(int64(recv.(SmallInteger)) % int64(b)), nil
	})

	d.compareNumbers(vt)

	// Unary
	vt.Define0(d.selectors, "negated", func(_ *Dispatcher, recv Value) (Value, error) {
		return smallIntResult(-int64(recv.(SmallInteger)))
	})

	vt.Define0(d.selectors, "abs", func(_ *Dispatcher, recv Value) (Value, error) {
		n := int64(recv.(SmallInteger))
		if n < 0 {
			return smallIntResult(-n)
		}
		return recv, nil
	})

	vt.Define0(d.selectors, "asFloat", func(_ *Dispatcher, recv Value) (Value, error) {
		return Float(float64(recv.(SmallInteger))), nil
	})

	vt.Define0(d.selectors, "isZero", func(_ *Dispatcher, recv Value) (Value, error) {
		return FromBool(recv.(SmallInteger) == 0), nil
	})
}
