package vm

import (
	"bytes"

	"github.com/pkg/errors"
)

// ---------------------------------------------------------------------------
// String Primitives
// ---------------------------------------------------------------------------

// The ShortString vtable also serves LongString objects, so every method
// here reads its receiver through StringBytes.
func (d *Dispatcher) registerStringPrimitives() {
	vt := d.immediate[KindShortString]
	d.defineCommon(vt, false)

	vt.Define0(d.selectors, "size", func(d *Dispatcher, recv Value) (Value, error) {
		b, err := d.objects.StringBytes(recv)
		if err != nil {
			return Nil, err
		}
		return SmallInteger(len(b)), nil
	})

	vt.Define0(d.selectors, "isEmpty", func(d *Dispatcher, recv Value) (Value, error) {
		b, err := d.objects.StringBytes(recv)
		if err != nil {
			return Nil, err
		}
		return FromBool(len(b) == 0), nil
	})

	equal := func(d *Dispatcher, recv, arg Value) (bool, error) {
		if !d.objects.IsString(arg) {
			return false, nil
		}
		return d.objects.StringEqual(recv, arg)
	}
	eq := func(d *Dispatcher, recv, arg Value) (Value, error) {
		ok, err := equal(d, recv, arg)
		if err != nil {
			return Nil, err
		}
		return FromBool(ok), nil
	}
	vt.Define1(d.selectors, "=", eq)
	vt.Define1(d.selectors, "==", eq)
	vt.Define1(d.selectors, "~=", func(d *Dispatcher, recv, arg Value) (Value, error) {
		ok, err := equal(d, recv, arg)
		if err != nil {
			return Nil, err
		}
		return FromBool(!ok), nil
	})

	vt.Define1(d.selectors, "<", func(d *Dispatcher, recv, arg Value) (Value, error) {
		a, err := d.objects.StringBytes(recv)
		if err != nil {
			return Nil, err
		}
		b, err := d.objects.StringBytes(arg)
		if err != nil {
			return Nil, badArgument("<", arg)
		}
		return FromBool(bytes.Compare(a, b) < 0), nil
	})

	// , concatenates. The result is inline when it fits.
	vt.Define1(d.selectors, ",", func(d *Dispatcher, recv, arg Value) (Value, error) {
		if !d.objects.IsString(arg) {
			return Nil, badArgument(",", arg)
		}
		return d.objects.Concat(recv, arg)
	})

	// at: is 1-based and answers the byte as a SmallInteger.
	vt.Define1(d.selectors, "at:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		i, ok := arg.(SmallInteger)
		if !ok {
			return Nil, badArgument("at:", arg)
		}
		b, err := d.objects.StringBytes(recv)
		if err != nil {
			return Nil, err
		}
		if i < 1 || int64(i) > int64(len(b)) {
			return Nil, errors.Wrapf(ErrIndex, "%d of %d", i, len(b))
		}
		return SmallInteger(b[i-1]), nil
	})

	vt.Define1(d.selectors, "includesSubstring:", func(d *Dispatcher, recv, arg Value) (Value, error) {
		a, err := d.objects.StringBytes(recv)
		if err != nil {
			return Nil, err
		}
		b, err := d.objects.StringBytes(arg)
		if err != nil {
			return Nil, badArgument("includesSubstring:", arg)
		}
		return FromBool(bytes.Contains(a, b)), nil
	})

	vt.Define0(d.selectors, "asUppercase", func(d *Dispatcher, recv Value) (Value, error) {
		b, err := d.objects.StringBytes(recv)
		if err != nil {
			return Nil, err
		}
		return d.objects.Intern(bytes.ToUpper(b))
	})

	vt.Define0(d.selectors, "asLowercase", func(d *Dispatcher, recv Value) (Value, error) {
		b, err := d.objects.StringBytes(recv)
		if err != nil {
			return Nil, err
		}
		return d.objects.Intern(bytes.ToLower(b))
	})

	// printString and displayString answer the receiver itself.
	self := func(d *Dispatcher, recv Value) (Value, error) {
		return d.objects.Acquire(recv)
	}
	vt.Define0(d.selectors, "printString", self)
	vt.Define0(d.selectors, "displayString", self)
}
