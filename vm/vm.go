package vm

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// VM: object table, call stack and dispatcher for one runtime instance
// ---------------------------------------------------------------------------

// Options configures a VM. Zero fields take their defaults.
type Options struct {
	InitialCapacity int // object table slots to start with
	MaxObjects      int // live object cap, 0 for unbounded
	StackDepth      int // call stack depth
	MaxChainDepth   int // superclass walk bound
}

// VM owns one object table and everything that resolves references in it.
// A VM is not safe for concurrent use; separate VMs share nothing.
type VM struct {
	// ID tags this instance in log output.
	ID string

	Objects    *ObjectTable
	Stack      *CallStack
	Dispatcher *Dispatcher

	// classes are roots: DefineClass hands the VM one reference each.
	classes    map[string]HeapRef
	classOrder []string
	roots      []Value
	log        commonlog.Logger
}

// New creates a VM with its own object table, call stack and dispatcher.
func New(opts Options) *VM {
	id := uuid.New().String()
	scoped := func(name string) commonlog.Logger {
		return commonlog.NewKeyValueLogger(commonlog.GetLogger(name), "vm", id)
	}

	objects := NewObjectTable(TableOptions{
		InitialCapacity: opts.InitialCapacity,
		MaxObjects:      opts.MaxObjects,
		Log:             scoped("oidvm.table"),
	})
	vm := &VM{
		ID:      id,
		Objects: objects,
		Stack:   NewCallStack(opts.StackDepth),
		Dispatcher: NewDispatcher(objects, DispatchOptions{
			MaxChainDepth: opts.MaxChainDepth,
			Log:           scoped("oidvm.dispatch"),
		}),
		classes: make(map[string]HeapRef),
		log:     scoped("oidvm.vm"),
	}
	vm.log.Infof("started with stack depth %d", vm.Stack.Depth())
	return vm
}

// InternBuffer interns a byte buffer supplied by the host. The bytes are
// copied, so the buffer may be reused once this returns.
func (vm *VM) InternBuffer(b []byte) (Value, error) {
	return vm.Objects.Intern(b)
}

// Send delivers a message. See Dispatcher.Send for ownership rules.
func (vm *VM) Send(receiver, selector Value, args ...Value) (Value, error) {
	return vm.Dispatcher.Send(receiver, selector, args...)
}

// Perform delivers a message named by a Go string.
func (vm *VM) Perform(receiver Value, selector string, args ...Value) (Value, error) {
	return vm.Dispatcher.Perform(receiver, selector, args...)
}

// Describe renders v for display.
func (vm *VM) Describe(v Value) string {
	return vm.Objects.Describe(v)
}

// ---------------------------------------------------------------------------
// Classes
// ---------------------------------------------------------------------------

// DefineClass creates a class the VM keeps alive until Close. superclass is
// Nil or a class defined earlier. The returned reference is borrowed from
// the VM.
func (vm *VM) DefineClass(name string, superclass Value, fields ...string) (HeapRef, error) {
	if _, ok := vm.classes[name]; ok {
		return 0, errors.Wrapf(ErrBadArgument, "class %s already defined", name)
	}
	r, err := vm.Objects.NewClass(name, superclass, fields)
	if err != nil {
		return 0, errors.WithMessagef(err, "define %s", name)
	}
	vm.classes[name] = r
	vm.classOrder = append(vm.classOrder, name)
	vm.log.Debugf("defined class %s with %d fields", name, len(fields))
	return r, nil
}

// ClassNamed returns a class defined with DefineClass.
func (vm *VM) ClassNamed(name string) (HeapRef, bool) {
	r, ok := vm.classes[name]
	return r, ok
}

// DefineMethod adds a method to a class's vtable.
func (vm *VM) DefineMethod(class HeapRef, selector string, m Method) error {
	return vm.Dispatcher.DefineMethod(class, selector, m)
}

// ---------------------------------------------------------------------------
// Roots and shutdown
// ---------------------------------------------------------------------------

// AddRoot keeps v alive until Close by taking a reference to it.
func (vm *VM) AddRoot(v Value) error {
	if _, err := vm.Objects.Acquire(v); err != nil {
		return err
	}
	vm.roots = append(vm.roots, v)
	return nil
}

// RemoveRoot drops one reference taken by AddRoot.
func (vm *VM) RemoveRoot(v Value) error {
	for i := len(vm.roots) - 1; i >= 0; i-- {
		if vm.roots[i] == v {
			vm.roots = append(vm.roots[:i], vm.roots[i+1:]...)
			_, err := vm.Objects.Release(v)
			return err
		}
	}
	return errors.Wrapf(ErrNotFound, "root %s", printImmediate(v))
}

// Close releases every value left on the call stack, every root and every
// defined class. Anything still live afterwards was leaked by the host, and
// Close reports it with ErrLeak.
func (vm *VM) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	keep(vm.Objects.ReleaseAll(vm.Stack.Drain()...))
	keep(vm.Objects.ReleaseAll(vm.roots...))
	vm.roots = nil
	for i := len(vm.classOrder) - 1; i >= 0; i-- {
		name := vm.classOrder[i]
		_, err := vm.Objects.Release(vm.classes[name])
		keep(err)
		delete(vm.classes, name)
	}
	vm.classOrder = nil

	if first != nil {
		vm.log.Errorf("close: %s", first.Error())
		return first
	}
	if live := vm.Objects.LiveRefs(); len(live) > 0 {
		names := make([]string, len(live))
		for i, r := range live {
			names[i] = vm.Objects.Describe(r)
		}
		vm.log.Errorf("%d objects leaked: %s", len(live), strings.Join(names, ", "))
		return errors.Wrapf(ErrLeak, "%d live: %s", len(live), strings.Join(names, ", "))
	}
	vm.log.Info("closed")
	return nil
}
