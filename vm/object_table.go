package vm

import (
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// ObjectTable: sole owner of heap objects
// ---------------------------------------------------------------------------

// Header is kept for every heap object. Type is normally a class reference;
// primitive objects carry a Primitive type tag instead (LongStringType,
// ArrayType, ClassType). A live object always has Refs >= 1.
type Header struct {
	Type Value
	Refs uint64
}

// Payload is the variable part of a heap object.
type Payload interface {
	// release drops the payload's storage and returns the values it held a
	// reference to. Called once, when the object's count reaches zero.
	release() []Value
}

type entry struct {
	header  Header
	payload Payload
	gen     uint32
	live    bool
}

// Identity layout: the low 32 bits index the slot, the next 29 bits are the
// slot's generation at allocation time.
const (
	indexBits = 32
	genMask   = 1<<(tagShift-indexBits) - 1
)

func makeRef(index, gen uint32) HeapRef {
	return HeapRef(uint64(gen)<<indexBits | uint64(index))
}

func (r HeapRef) index() uint32      { return uint32(r) }
func (r HeapRef) generation() uint32 { return uint32(uint64(r) >> indexBits) }

// DefaultInitialCapacity is the slot count a table starts with when none is
// configured.
const DefaultInitialCapacity = 64

// TableOptions configures an ObjectTable.
type TableOptions struct {
	// InitialCapacity is the number of slots allocated up front.
	InitialCapacity int
	// MaxObjects caps the number of live objects; 0 means unbounded.
	MaxObjects int
	// Log receives allocation traces. Defaults to the "oidvm.table" logger.
	Log commonlog.Logger
}

// ObjectTable maps HeapRefs to their headers and payloads.
//
// Slots are held by pointer in a slice that doubles when full. A HeapRef is
// a slot index, so growth never moves an identity. Freed slots are reused
// last-in first-out with a bumped generation, which makes any reference
// kept past its release fail Lookup instead of aliasing the new occupant.
//
// An ObjectTable is not safe for concurrent use.
type ObjectTable struct {
	slots      []*entry // slot 0 is reserved for Nil
	freeList   []uint32
	live       int
	maxObjects int
	log        commonlog.Logger
}

// NewObjectTable creates an empty table.
func NewObjectTable(opts TableOptions) *ObjectTable {
	capacity := opts.InitialCapacity
	if capacity <= 0 {
		capacity = DefaultInitialCapacity
	}
	log := opts.Log
	if log == nil {
		log = commonlog.GetLogger("oidvm.table")
	}
	return &ObjectTable{
		slots:      make([]*entry, 1, capacity+1),
		maxObjects: opts.MaxObjects,
		log:        log,
	}
}

// Allocate stores a new object with a reference count of 1 and returns its
// identity. The identity is never one held by a live object.
func (t *ObjectTable) Allocate(typ Value, payload Payload) (HeapRef, error) {
	if t.maxObjects > 0 && t.live >= t.maxObjects {
		return 0, errors.Wrapf(ErrTableFull, "%d live objects", t.live)
	}

	var index uint32
	if n := len(t.freeList); n > 0 {
		index = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		if uint64(len(t.slots)) > uint64(^uint32(0)) {
			return 0, errors.Wrap(ErrTableFull, "identity space exhausted")
		}
		if len(t.slots) == cap(t.slots) {
			grown := make([]*entry, len(t.slots), 2*cap(t.slots))
			copy(grown, t.slots)
			t.slots = grown
		}
		index = uint32(len(t.slots))
		t.slots = append(t.slots, &entry{})
	}

	e := t.slots[index]
	e.header = Header{Type: typ, Refs: 1}
	e.payload = payload
	e.live = true
	t.live++

	ref := makeRef(index, e.gen)
	if t.log.AllowLevel(commonlog.Debug) {
		t.log.Debugf("allocate %#x type %s", uint64(ref), printImmediate(typ))
	}
	return ref, nil
}

// resolve returns the live slot named by r.
func (t *ObjectTable) resolve(r HeapRef) (*entry, error) {
	index := r.index()
	if index == 0 || int(index) >= len(t.slots) {
		return nil, errors.Wrapf(ErrStaleReference, "object %#x", uint64(r))
	}
	e := t.slots[index]
	if !e.live || e.gen != r.generation() {
		return nil, errors.Wrapf(ErrStaleReference, "object %#x", uint64(r))
	}
	return e, nil
}

// Lookup returns the header of a live object. A freed, reused or never
// allocated identity fails with ErrStaleReference; so does Nil.
//
// The returned header may be read freely but is only meant to be mutated
// by the reference counter.
func (t *ObjectTable) Lookup(r HeapRef) (*Header, error) {
	e, err := t.resolve(r)
	if err != nil {
		return nil, err
	}
	return &e.header, nil
}

// Payload returns the payload of a live object.
func (t *ObjectTable) Payload(r HeapRef) (Payload, error) {
	e, err := t.resolve(r)
	if err != nil {
		return nil, err
	}
	return e.payload, nil
}

// Refs returns the current reference count of a live object.
func (t *ObjectTable) Refs(r HeapRef) (uint64, error) {
	e, err := t.resolve(r)
	if err != nil {
		return 0, err
	}
	return e.header.Refs, nil
}

// freeSlot returns a slot to the pool. Only the reference counter calls this,
// after the count has reached zero.
func (t *ObjectTable) freeSlot(r HeapRef, e *entry) {
	e.header = Header{}
	e.payload = nil
	e.live = false
	e.gen = (e.gen + 1) & genMask
	t.freeList = append(t.freeList, r.index())
	t.live--
	if t.log.AllowLevel(commonlog.Debug) {
		t.log.Debugf("free %#x", uint64(r))
	}
}

// Live returns the number of live objects.
func (t *ObjectTable) Live() int {
	return t.live
}

// Capacity returns the number of slots currently reserved.
func (t *ObjectTable) Capacity() int {
	return cap(t.slots) - 1
}

// LiveRefs returns the identities of all live objects in slot order.
func (t *ObjectTable) LiveRefs() []HeapRef {
	refs := make([]HeapRef, 0, t.live)
	for i, e := range t.slots {
		if e != nil && e.live {
			refs = append(refs, makeRef(uint32(i), e.gen))
		}
	}
	return refs
}
