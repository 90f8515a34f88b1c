package vm

import "math"

// Word is the compact 64-bit encoding of a Value.
//
// The three most significant bits hold the kind tag and the remaining 61
// bits the payload. The layout per kind:
//
//	HeapRef       tag 0  object identity (0 is Nil)
//	SmallInteger  tag 1  61-bit two's complement
//	ShortString   tag 2  bytes in bits 0..55 (byte i at 8i), length in bits 56..60
//	Float         tag 3  IEEE-754 bits >> 3
//	Boolean       tag 4  0 or 1
//	Primitive     tag 5  sub-tag in bits 53..60, argument in bits 0..52
//
// Words are what gets embedded or shipped; the runtime itself works with
// the Value sum type.
type Word uint64

// Kind is the 3-bit tag of a Word.
type Kind uint8

const (
	KindHeapRef Kind = iota
	KindSmallInteger
	KindShortString
	KindFloat
	KindBoolean
	KindPrimitive

	numKinds = 6
)

const (
	tagShift = 61
	// payloadMask selects the 61 payload bits.
	payloadMask uint64 = 1<<tagShift - 1
	// intSignBit is the sign bit of a 61-bit payload.
	intSignBit uint64 = 1 << (tagShift - 1)

	// ShortStringMax is the longest byte sequence stored inline.
	ShortStringMax = 7
	sstrLenShift   = 56
	sstrLenMask    = 0x1f

	// floatDropBits is the number of mantissa bits given up to the tag.
	floatDropBits = 3
	quietNaN      = 0x7FF8000000000000

	subShift = 53
	subMask  = 0xff
	// PrimitiveArgMask selects the argument bits of a Primitive word.
	PrimitiveArgMask uint64 = 1<<subShift - 1
)

// SmallInteger range (61-bit signed).
const (
	MaxSmallInteger int64 = 1<<60 - 1
	MinSmallInteger int64 = -(1 << 60)
)

var kindNames = [...]string{
	KindHeapRef:      "HeapRef",
	KindSmallInteger: "SmallInteger",
	KindShortString:  "ShortString",
	KindFloat:        "Float",
	KindBoolean:      "Boolean",
	KindPrimitive:    "Primitive",
}

// Valid reports whether k is one of the assigned tags. Tags 6 and 7 are
// reserved.
func (k Kind) Valid() bool {
	return k < numKinds
}

// IsImmediate reports whether values of kind k live entirely in their word.
func (k Kind) IsImmediate() bool {
	return k != KindHeapRef && k.Valid()
}

func (k Kind) String() string {
	if !k.Valid() {
		return "Reserved"
	}
	return kindNames[k]
}

// ---------------------------------------------------------------------------
// Kind tag
// ---------------------------------------------------------------------------

// DecodeKind returns the tag of w. It never fails; reserved tags come back
// as kinds for which Valid is false.
func DecodeKind(w Word) Kind {
	return Kind(uint64(w) >> tagShift)
}

func makeWord(k Kind, payload uint64) Word {
	return Word(uint64(k)<<tagShift | payload&payloadMask)
}

func payloadOf(w Word) uint64 {
	return uint64(w) & payloadMask
}

// ---------------------------------------------------------------------------
// SmallInteger
// ---------------------------------------------------------------------------

// FitsSmallInteger reports whether n is representable as a SmallInteger.
func FitsSmallInteger(n int64) bool {
	return n >= MinSmallInteger && n <= MaxSmallInteger
}

// EncodeSmallInteger packs n into a SmallInteger word. Values outside
// [MinSmallInteger, MaxSmallInteger] lose their high bits; callers check
// FitsSmallInteger first.
func EncodeSmallInteger(n int64) Word {
	return makeWord(KindSmallInteger, uint64(n))
}

// DecodeSmallInteger sign extends the 61-bit payload of w.
func DecodeSmallInteger(w Word) int64 {
	p := payloadOf(w)
	if p&intSignBit != 0 {
		p |= ^payloadMask
	}
	return int64(p)
}

// ---------------------------------------------------------------------------
// ShortString
// ---------------------------------------------------------------------------

// EncodeShortString packs up to ShortStringMax bytes inline. The boolean
// is false when b is too long, in which case the caller must take the heap
// path instead.
func EncodeShortString(b []byte) (Word, bool) {
	if len(b) > ShortStringMax {
		return 0, false
	}
	var p uint64
	for i, c := range b {
		p |= uint64(c) << (8 * i)
	}
	p |= uint64(len(b)) << sstrLenShift
	return makeWord(KindShortString, p), true
}

// DecodeShortString unpacks the bytes and length of a ShortString word.
func DecodeShortString(w Word) ([]byte, int) {
	p := payloadOf(w)
	n := int(p>>sstrLenShift) & sstrLenMask
	if n > ShortStringMax {
		n = ShortStringMax
	}
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = byte(p >> (8 * i))
	}
	return b, n
}

// ---------------------------------------------------------------------------
// Float
// ---------------------------------------------------------------------------

// EncodeFloat packs f into a Float word, truncating the 3 least significant
// mantissa bits. Sign and exponent survive intact. Every NaN is stored as
// the canonical quiet NaN so that no NaN decodes as an infinity.
func EncodeFloat(f float64) Word {
	bits := math.Float64bits(f)
	if math.IsNaN(f) {
		bits = quietNaN | bits&(1<<63)
	}
	return makeWord(KindFloat, bits>>floatDropBits)
}

// DecodeFloat restores the float64 held by w, with its dropped mantissa bits
// as zero.
func DecodeFloat(w Word) float64 {
	return math.Float64frombits(payloadOf(w) << floatDropBits)
}

// ---------------------------------------------------------------------------
// Boolean, HeapRef, Primitive
// ---------------------------------------------------------------------------

// EncodeBoolean packs b into a Boolean word.
func EncodeBoolean(b bool) Word {
	if b {
		return makeWord(KindBoolean, 1)
	}
	return makeWord(KindBoolean, 0)
}

// DecodeBoolean returns the truth value of a Boolean word.
func DecodeBoolean(w Word) bool {
	return payloadOf(w)&1 == 1
}

// EncodeHeapRef packs an object identity.
func EncodeHeapRef(id uint64) Word {
	return makeWord(KindHeapRef, id)
}

// DecodeHeapRef returns the object identity of w.
func DecodeHeapRef(w Word) uint64 {
	return payloadOf(w)
}

// EncodePrimitive packs a sub-tag and its argument. The sub-tag lives in the
// payload, not the kind tag, so DecodeKind never has to look past 3 bits.
func EncodePrimitive(sub SubTag, arg uint64) Word {
	return makeWord(KindPrimitive, uint64(sub)<<subShift|arg&PrimitiveArgMask)
}

// DecodePrimitive returns the sub-tag and argument of a Primitive word.
func DecodePrimitive(w Word) (SubTag, uint64) {
	p := payloadOf(w)
	return SubTag(p >> subShift & subMask), p & PrimitiveArgMask
}
