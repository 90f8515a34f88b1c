package vm

import "github.com/pkg/errors"

// ---------------------------------------------------------------------------
// Class: heap object describing instances
// ---------------------------------------------------------------------------

// Class is the payload of a class object. Classes live in the ObjectTable
// like any other heap object; their header type is ClassType. A class
// holds a reference to its superclass, so a superclass outlives all of its
// subclasses.
type Class struct {
	Name      string
	Super     Value    // superclass reference, or Nil for a root class
	Fields    []string // field names declared by this class
	NumFields int      // total fields, inherited ones included
	VTable    *VTable
}

func (c *Class) release() []Value {
	c.VTable = nil
	return []Value{c.Super}
}

// fieldOffset returns the index of this class's first declared field.
func (c *Class) fieldOffset() int {
	return c.NumFields - len(c.Fields)
}

// Instance is the payload of an object whose header type is a class
// reference. It owns a reference to every field value.
type Instance struct {
	fields []Value
}

// NumFields returns the number of fields.
func (o *Instance) NumFields() int { return len(o.fields) }

func (o *Instance) release() []Value {
	fields := o.fields
	o.fields = nil
	return fields
}

// NewClass allocates a class. super is Nil or a live class reference, which
// the new class acquires.
func (t *ObjectTable) NewClass(name string, super Value, fields []string) (HeapRef, error) {
	inherited := 0
	if !IsNil(super) {
		sr, ok := super.(HeapRef)
		if !ok {
			return 0, errors.Wrapf(ErrWrongType, "superclass of %s is a %s", name, super.Kind())
		}
		sc, err := t.Class(sr)
		if err != nil {
			return 0, errors.WithMessagef(err, "superclass of %s", name)
		}
		inherited = sc.NumFields
	}
	if _, err := t.Acquire(super); err != nil {
		return 0, err
	}

	c := &Class{
		Name:      name,
		Super:     super,
		Fields:    append([]string(nil), fields...),
		NumFields: inherited + len(fields),
		VTable:    NewVTable(name),
	}
	r, err := t.Allocate(ClassType, c)
	if err != nil {
		t.Release(super)
		return 0, err
	}
	return r, nil
}

// Class returns the payload of a class object.
func (t *ObjectTable) Class(r HeapRef) (*Class, error) {
	e, err := t.resolve(r)
	if err != nil {
		return nil, err
	}
	c, ok := e.payload.(*Class)
	if !ok {
		return nil, errors.Wrapf(ErrWrongType, "object %#x is not a class", uint64(r))
	}
	return c, nil
}

// Superclass returns the superclass of a class object, or Nil.
func (t *ObjectTable) Superclass(r HeapRef) (Value, error) {
	c, err := t.Class(r)
	if err != nil {
		return Nil, err
	}
	return c.Super, nil
}

// Instantiate allocates an instance of class with every field Nil. The
// instance acquires its class.
func (t *ObjectTable) Instantiate(class HeapRef) (HeapRef, error) {
	c, err := t.Class(class)
	if err != nil {
		return 0, err
	}
	fields := make([]Value, c.NumFields)
	for i := range fields {
		fields[i] = Nil
	}
	if _, err := t.Acquire(class); err != nil {
		return 0, err
	}
	r, err := t.Allocate(class, &Instance{fields: fields})
	if err != nil {
		t.Release(class)
		return 0, err
	}
	return r, nil
}

// ClassOf returns the class reference of an instance.
func (t *ObjectTable) ClassOf(r HeapRef) (HeapRef, error) {
	e, err := t.resolve(r)
	if err != nil {
		return 0, err
	}
	class, ok := e.header.Type.(HeapRef)
	if !ok || class.IsNil() {
		return 0, errors.Wrapf(ErrWrongType, "object %#x is a primitive %s", uint64(r), printImmediate(e.header.Type))
	}
	return class, nil
}

func (t *ObjectTable) instance(r HeapRef) (*Instance, error) {
	e, err := t.resolve(r)
	if err != nil {
		return nil, err
	}
	o, ok := e.payload.(*Instance)
	if !ok {
		return nil, errors.Wrapf(ErrWrongType, "object %#x is not an instance", uint64(r))
	}
	return o, nil
}

// FieldAt returns field i of an instance. The result is borrowed.
func (t *ObjectTable) FieldAt(r HeapRef, i int) (Value, error) {
	o, err := t.instance(r)
	if err != nil {
		return Nil, err
	}
	if i < 0 || i >= len(o.fields) {
		return Nil, errors.Wrapf(ErrIndex, "field %d of %d", i, len(o.fields))
	}
	return o.fields[i], nil
}

// SetField stores v in field i of an instance, acquiring v and releasing the
// previous value.
func (t *ObjectTable) SetField(r HeapRef, i int, v Value) error {
	o, err := t.instance(r)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(o.fields) {
		return errors.Wrapf(ErrIndex, "field %d of %d", i, len(o.fields))
	}
	if _, err := t.Acquire(v); err != nil {
		return err
	}
	old := o.fields[i]
	o.fields[i] = v
	_, err = t.Release(old)
	return err
}

// FieldIndex returns the field index of name in class or its superclasses,
// or -1 if no class in the chain declares it.
func (t *ObjectTable) FieldIndex(class HeapRef, name string) (int, error) {
	for r := class; !r.IsNil(); {
		c, err := t.Class(r)
		if err != nil {
			return -1, err
		}
		for i, n := range c.Fields {
			if n == name {
				return c.fieldOffset() + i, nil
			}
		}
		next, _ := c.Super.(HeapRef)
		r = next
	}
	return -1, nil
}

// IsSubclassOf reports whether class is ancestor or inherits from it.
func (t *ObjectTable) IsSubclassOf(class, ancestor HeapRef) (bool, error) {
	for r := class; !r.IsNil(); {
		if r == ancestor {
			return true, nil
		}
		c, err := t.Class(r)
		if err != nil {
			return false, err
		}
		next, _ := c.Super.(HeapRef)
		r = next
	}
	return false, nil
}
