// Package wire converts values to and from canonical CBOR documents so a
// host can hand a value graph across a process boundary.
//
// Immediates, strings and arrays are portable. Class objects and class
// instances carry vtables and Go methods that have no encoding, so Marshal
// rejects them. Shared subarrays are copied on the way out; a cycle is an
// error, and so is a graph that copying would expand past maxNodes.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/chazu/oidvm/vm"
)

var (
	ErrNotPortable = errors.New("wire: value has no portable encoding")
	ErrCycle       = errors.New("wire: cyclic value")
	ErrMalformed   = errors.New("wire: malformed document")
)

// maxNesting bounds both array depth and the CBOR decoder's nesting. Each
// array level is a map holding an array, so it costs the decoder two.
const maxNesting = 128

// maxNodes bounds how many nodes one Marshal produces. Shared subarrays are
// copied, so a small graph can expand past it.
const maxNodes = 1 << 16

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{
		MaxNestedLevels: 2*maxNesting + 2,
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// NodeKind tags a Node.
type NodeKind uint8

const (
	NodeNil NodeKind = iota
	NodeInteger
	NodeString
	NodeFloat
	NodeBoolean
	NodePrimitive
	NodeArray
)

// Node is the encoded form of one value. Only the fields its Kind uses are
// set.
type Node struct {
	Kind  NodeKind `cbor:"k"`
	Int   int64    `cbor:"i,omitempty"`
	Float float64  `cbor:"f,omitempty"`
	Bool  bool     `cbor:"b,omitempty"`
	Bytes []byte   `cbor:"s,omitempty"`
	Sub   uint8    `cbor:"p,omitempty"`
	Arg   uint64   `cbor:"a,omitempty"`
	Elems []Node   `cbor:"e,omitempty"`
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Marshal encodes v, resolving heap references in t. v is borrowed.
func Marshal(t *vm.ObjectTable, v vm.Value) ([]byte, error) {
	n, err := ToNode(t, v)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(n)
}

// ToNode converts v into its encoded tree without serializing it.
func ToNode(t *vm.ObjectTable, v vm.Value) (Node, error) {
	e := encoder{t: t, onPath: make(map[vm.HeapRef]bool)}
	return e.node(v, 0)
}

type encoder struct {
	t      *vm.ObjectTable
	onPath map[vm.HeapRef]bool
	nodes  int
}

func (e *encoder) node(v vm.Value, depth int) (Node, error) {
	e.nodes++
	if e.nodes > maxNodes {
		return Node{}, errors.Wrapf(ErrNotPortable, "more than %d nodes once shared arrays are copied", maxNodes)
	}
	switch x := v.(type) {
	case vm.SmallInteger:
		return Node{Kind: NodeInteger, Int: int64(x)}, nil
	case vm.Float:
		return Node{Kind: NodeFloat, Float: float64(x)}, nil
	case vm.Boolean:
		return Node{Kind: NodeBoolean, Bool: bool(x)}, nil
	case vm.ShortString:
		return Node{Kind: NodeString, Bytes: x.Bytes()}, nil
	case vm.Primitive:
		return Node{Kind: NodePrimitive, Sub: uint8(x.Sub), Arg: x.Arg}, nil
	case vm.HeapRef:
		if x.IsNil() {
			return Node{Kind: NodeNil}, nil
		}
		return e.heap(x, depth)
	}
	return Node{}, errors.Wrapf(ErrNotPortable, "%s value", v.Kind())
}

func (e *encoder) heap(r vm.HeapRef, depth int) (Node, error) {
	h, err := e.t.Lookup(r)
	if err != nil {
		return Node{}, err
	}
	switch h.Type {
	case vm.LongStringType:
		b, err := e.t.StringBytes(r)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: NodeString, Bytes: append([]byte(nil), b...)}, nil
	case vm.ArrayType:
		return e.array(r, depth)
	}
	return Node{}, errors.Wrapf(ErrNotPortable, "%s", e.t.Describe(r))
}

func (e *encoder) array(r vm.HeapRef, depth int) (Node, error) {
	if e.onPath[r] {
		return Node{}, errors.Wrapf(ErrCycle, "array %#x contains itself", uint64(r))
	}
	if depth >= maxNesting {
		return Node{}, errors.Wrapf(ErrNotPortable, "arrays nested deeper than %d", maxNesting)
	}
	e.onPath[r] = true
	defer delete(e.onPath, r)

	n, err := e.t.ArrayLen(r)
	if err != nil {
		return Node{}, err
	}
	out := Node{Kind: NodeArray, Elems: make([]Node, n)}
	for i := 0; i < n; i++ {
		elem, err := e.t.ArrayAt(r, i)
		if err != nil {
			return Node{}, err
		}
		if out.Elems[i], err = e.node(elem, depth+1); err != nil {
			return Node{}, errors.WithMessagef(err, "element %d", i+1)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// Unmarshal decodes a document into t. Strings are interned and arrays
// allocated, so a heap result is a new reference owned by the caller.
func Unmarshal(t *vm.ObjectTable, data []byte) (vm.Value, error) {
	var n Node
	if err := cborDecMode.Unmarshal(data, &n); err != nil {
		return vm.Nil, errors.Wrap(err, "wire: unmarshal")
	}
	return FromNode(t, n)
}

// FromNode builds the value an encoded tree describes.
func FromNode(t *vm.ObjectTable, n Node) (vm.Value, error) {
	return fromNode(t, n, 0)
}

func fromNode(t *vm.ObjectTable, n Node, depth int) (vm.Value, error) {
	switch n.Kind {
	case NodeNil:
		return vm.Nil, nil
	case NodeInteger:
		if !vm.FitsSmallInteger(n.Int) {
			return vm.Nil, errors.Wrapf(ErrMalformed, "integer %d out of range", n.Int)
		}
		return vm.SmallInteger(n.Int), nil
	case NodeFloat:
		return vm.Float(n.Float), nil
	case NodeBoolean:
		return vm.FromBool(n.Bool), nil
	case NodeString:
		return t.Intern(n.Bytes)
	case NodePrimitive:
		return vm.Primitive{Sub: vm.SubTag(n.Sub), Arg: n.Arg & vm.PrimitiveArgMask}, nil
	case NodeArray:
		return arrayFromNode(t, n, depth)
	}
	return vm.Nil, errors.Wrapf(ErrMalformed, "node kind %d", n.Kind)
}

func arrayFromNode(t *vm.ObjectTable, n Node, depth int) (vm.Value, error) {
	if depth >= maxNesting {
		return vm.Nil, errors.Wrapf(ErrMalformed, "arrays nested deeper than %d", maxNesting)
	}
	elems := make([]vm.Value, 0, len(n.Elems))
	defer func() { t.ReleaseAll(elems...) }()
	for i, child := range n.Elems {
		v, err := fromNode(t, child, depth+1)
		if err != nil {
			return vm.Nil, errors.WithMessagef(err, "element %d", i+1)
		}
		elems = append(elems, v)
	}
	r, err := t.NewArray(elems...)
	if err != nil {
		return vm.Nil, err
	}
	return r, nil
}
