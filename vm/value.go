package vm

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Value is a runtime value. Each kind has its own concrete type carrying a
// native payload:
//
//   - HeapRef: identity of an object owned by an ObjectTable
//   - SmallInteger: 61-bit signed integer
//   - ShortString: up to 7 bytes stored inline
//   - Float: float64 (precision is only lost when encoded to a Word)
//   - Boolean: true or false
//   - Primitive: sub-tagged markers such as type tags and sentinels
//
// The set is closed; code switching on a Value covers exactly these six.
type Value interface {
	// Kind returns the tag this value encodes to.
	Kind() Kind
	// Word returns the compact 64-bit encoding.
	Word() Word

	isValue()
}

// HeapRef identifies an object in an ObjectTable. The zero HeapRef is Nil.
type HeapRef uint64

// SmallInteger is an immediate integer in [MinSmallInteger, MaxSmallInteger].
type SmallInteger int64

// Float is an immediate double.
type Float float64

// Boolean is an immediate truth value.
type Boolean bool

// ShortString holds up to ShortStringMax bytes inline. It is comparable, so
// two ShortStrings with equal content are == in Go as well.
type ShortString struct {
	n uint8
	b [ShortStringMax]byte
}

// SubTag distinguishes Primitive values.
type SubTag uint8

// Primitive sub-tags.
const (
	SubDoesNotUnderstand SubTag = 0x01
	SubDomainError       SubTag = 0x02
	SubLongString        SubTag = 0x08
	SubClass             SubTag = 0x09
	SubArray             SubTag = 0x0A
)

// Primitive is a sub-tagged immediate used for type tags and sentinels.
type Primitive struct {
	Sub SubTag
	Arg uint64
}

// Well-known values.
var (
	Nil   Value = HeapRef(0)
	True  Value = Boolean(true)
	False Value = Boolean(false)

	// DoesNotUnderstand is returned by a send that found no method.
	DoesNotUnderstand Value = Primitive{Sub: SubDoesNotUnderstand}
	// DomainError is returned together with ErrZeroDivide or
	// ErrIntegerOverflow by arithmetic that has no valid result.
	DomainError Value = Primitive{Sub: SubDomainError}

	// Type tags stored in the header of primitive heap objects.
	LongStringType Value = Primitive{Sub: SubLongString}
	ClassType      Value = Primitive{Sub: SubClass}
	ArrayType      Value = Primitive{Sub: SubArray}
)

func (HeapRef) Kind() Kind      { return KindHeapRef }
func (SmallInteger) Kind() Kind { return KindSmallInteger }
func (ShortString) Kind() Kind  { return KindShortString }
func (Float) Kind() Kind        { return KindFloat }
func (Boolean) Kind() Kind      { return KindBoolean }
func (Primitive) Kind() Kind    { return KindPrimitive }

func (r HeapRef) Word() Word      { return EncodeHeapRef(uint64(r)) }
func (i SmallInteger) Word() Word { return EncodeSmallInteger(int64(i)) }
func (f Float) Word() Word        { return EncodeFloat(float64(f)) }
func (b Boolean) Word() Word      { return EncodeBoolean(bool(b)) }
func (p Primitive) Word() Word    { return EncodePrimitive(p.Sub, p.Arg) }

func (s ShortString) Word() Word {
	w, _ := EncodeShortString(s.Bytes())
	return w
}

func (HeapRef) isValue()      {}
func (SmallInteger) isValue() {}
func (ShortString) isValue()  {}
func (Float) isValue()        {}
func (Boolean) isValue()      {}
func (Primitive) isValue()    {}

// ---------------------------------------------------------------------------
// Constructors and accessors
// ---------------------------------------------------------------------------

// NewShortString returns b as an inline string. ok is false when b is longer
// than ShortStringMax.
func NewShortString(b []byte) (s ShortString, ok bool) {
	if len(b) > ShortStringMax {
		return ShortString{}, false
	}
	s.n = uint8(len(b))
	copy(s.b[:], b)
	return s, true
}

// Bytes returns a copy of the string's content.
func (s ShortString) Bytes() []byte {
	out := make([]byte, s.n)
	copy(out, s.b[:s.n])
	return out
}

// Len returns the number of bytes in s.
func (s ShortString) Len() int {
	return int(s.n)
}

func (s ShortString) String() string {
	return string(s.b[:s.n])
}

// IsNil reports whether r is the nil reference.
func (r HeapRef) IsNil() bool {
	return r == 0
}

// IsNil reports whether v is Nil.
func IsNil(v Value) bool {
	r, ok := v.(HeapRef)
	return ok && r == 0
}

// IsFalsy reports whether v counts as false in a condition: Nil, false and
// SmallInteger 0.
func IsFalsy(v Value) bool {
	switch x := v.(type) {
	case HeapRef:
		return x == 0
	case Boolean:
		return !bool(x)
	case SmallInteger:
		return x == 0
	}
	return false
}

// FromBool converts a Go bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// smallIntResult boxes an arithmetic result, failing when it leaves the
// SmallInteger range.
func smallIntResult(n int64) (Value, error) {
	if !FitsSmallInteger(n) {
		return DomainError, errors.Wrapf(ErrIntegerOverflow, "%d", n)
	}
	return SmallInteger(n), nil
}

// ---------------------------------------------------------------------------
// Word boundary
// ---------------------------------------------------------------------------

// Decode converts a Word back into a Value. Reserved tags fail with
// ErrInvalidWord.
func Decode(w Word) (Value, error) {
	switch k := DecodeKind(w); k {
	case KindHeapRef:
		return HeapRef(DecodeHeapRef(w)), nil
	case KindSmallInteger:
		return SmallInteger(DecodeSmallInteger(w)), nil
	case KindShortString:
		b, _ := DecodeShortString(w)
		s, _ := NewShortString(b)
		return s, nil
	case KindFloat:
		return Float(DecodeFloat(w)), nil
	case KindBoolean:
		return Boolean(DecodeBoolean(w)), nil
	case KindPrimitive:
		sub, arg := DecodePrimitive(w)
		return Primitive{Sub: sub, Arg: arg}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidWord, "tag %d in %#016x", k, uint64(w))
	}
}

// ---------------------------------------------------------------------------
// Printing
// ---------------------------------------------------------------------------

// printImmediate renders an immediate value the way printString does.
func printImmediate(v Value) string {
	switch x := v.(type) {
	case HeapRef:
		if x == 0 {
			return "nil"
		}
		return "<object " + strconv.FormatUint(uint64(x), 16) + ">"
	case SmallInteger:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		f := float64(x)
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsAny(s, ".e") {
			return s
		}
		return s + ".0"
	case Boolean:
		if x {
			return "true"
		}
		return "false"
	case ShortString:
		return x.String()
	case Primitive:
		switch x.Sub {
		case SubDoesNotUnderstand:
			return "<doesNotUnderstand>"
		case SubDomainError:
			return "<domainError>"
		case SubLongString:
			return "<LongString>"
		case SubClass:
			return "<Class>"
		case SubArray:
			return "<Array>"
		}
		return "<primitive " + strconv.Itoa(int(x.Sub)) + ">"
	}
	return "<?>"
}
