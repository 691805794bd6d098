// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

// TypeKind is the stable numeric tag of a Type (spec §3.1, §6.3).
// Values must never change across revisions; a Kind the current
// library does not know about is treated as Invalid rather than
// panicking, so a newer producer talking to an older core degrades
// safely.
type TypeKind uint8

const (
	TypeNull TypeKind = iota
	TypeBool
	TypeByte
	TypeInteger
	TypePointer
	TypeFloat
	TypeString

	TypeStruct
	TypeVariant
	TypeArray
	TypeVla
	TypeVlaVisitor

	TypeEnum
	TypeEnumBitmap

	// TypeGather wraps a scalar or struct Type read by pointer and
	// offset (spec §3.1 "Gather"); TypeGatherArray and TypeGatherVla
	// are its fixed- and variable-length container forms.
	TypeGather
	TypeGatherArray
	TypeGatherVla

	TypeDynamic
	TypeOptional

	typeKindCount
)

func (k TypeKind) valid() bool { return k < typeKindCount }

func (k TypeKind) String() string {
	names := [...]string{
		"null", "bool", "byte", "integer", "pointer", "float", "string",
		"struct", "variant", "array", "vla", "vla_visitor",
		"enum", "enum_bitmap",
		"gather", "gather_array", "gather_vla",
		"dynamic", "optional",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "invalid"
}

// ByteOrder names a byte order independent of the host's, since
// integer and float byte order can differ on architectures that mix
// endianness (spec §4.1).
type ByteOrder uint8

const (
	OrderHost ByteOrder = iota
	OrderLittle
	OrderBig
)

// AccessMode selects how a Gather type's pointer is interpreted:
// directly, or as one machine word to dereference before applying the
// offset (spec §3.1, §4.1).
type AccessMode uint8

const (
	AccessDirect AccessMode = iota
	AccessPointer
)

// StringEncoding is the code unit width/charset of a String type.
type StringEncoding uint8

const (
	EncodingUTF8 StringEncoding = iota
	EncodingUTF16
	EncodingUTF32
)

// UnitSize returns the size in bytes of one code unit, used by
// validate to enforce the "string unit size in {1,2,4}" invariant.
func (e StringEncoding) UnitSize() int {
	switch e {
	case EncodingUTF8:
		return 1
	case EncodingUTF16:
		return 2
	case EncodingUTF32:
		return 4
	default:
		return 0
	}
}

// Type is the sealed tagged-union interface every type-description
// node implements. It is sealed (the isType marker is unexported) so
// the set of kinds stays closed to this package per spec §6.3's ABI
// stability contract; applications build descriptions from the
// constructors below rather than implementing Type themselves.
type Type interface {
	Kind() TypeKind
	Attrs() []Attr
	isType()
}

type typeBase struct {
	kind  TypeKind
	attrs []Attr
}

func (t typeBase) Kind() TypeKind { return t.kind }
func (t typeBase) Attrs() []Attr  { return t.attrs }
func (typeBase) isType()          {}

// Field is a (name, Type) pair; Struct, GatherStruct and event
// descriptions are all built from Field slices (spec §3.1).
type Field struct {
	Name string
	Type Type
}

// --- stack-copy scalars ---

type NullType struct{ typeBase }

func Null(attrs ...Attr) *NullType { return &NullType{typeBase{TypeNull, attrs}} }

type BoolType struct{ typeBase }

func Bool(attrs ...Attr) *BoolType { return &BoolType{typeBase{TypeBool, attrs}} }

type ByteType struct{ typeBase }

func Byte(attrs ...Attr) *ByteType { return &ByteType{typeBase{TypeByte, attrs}} }

// IntegerWidth is one of the five widths the spec allows for Integer,
// Float and EnumBitmap element types.
type IntegerWidth int

const (
	Width8   IntegerWidth = 8
	Width16  IntegerWidth = 16
	Width32  IntegerWidth = 32
	Width64  IntegerWidth = 64
	Width128 IntegerWidth = 128
)

// IntegerType describes a (possibly sub-word) integer field: Width is
// the storage width, EffectiveBits/OffsetBits describe a bit window
// within it (spec §4.1's "effective_bits < width*8" case), and
// ByteOrder/Signed govern decoding.
type IntegerType struct {
	typeBase
	Width         IntegerWidth
	Signed        bool
	ByteOrder     ByteOrder
	EffectiveBits int
	OffsetBits    int
}

func Integer(width IntegerWidth, signed bool, order ByteOrder, attrs ...Attr) *IntegerType {
	return &IntegerType{typeBase{TypeInteger, attrs}, width, signed, order, int(width), 0}
}

// IntegerBitfield builds an Integer type occupying effectiveBits bits
// at offsetBits within a width-bit storage unit.
func IntegerBitfield(width IntegerWidth, signed bool, order ByteOrder, effectiveBits, offsetBits int, attrs ...Attr) *IntegerType {
	return &IntegerType{typeBase{TypeInteger, attrs}, width, signed, order, effectiveBits, offsetBits}
}

// PointerType is the Integer specialization sized to the host
// pointer (spec §3.1); it always decodes as an unsigned, host-order,
// host-width integer.
type PointerType struct{ typeBase }

func Pointer(attrs ...Attr) *PointerType { return &PointerType{typeBase{TypePointer, attrs}} }

type FloatType struct {
	typeBase
	Width     IntegerWidth
	ByteOrder ByteOrder
}

func Float(width IntegerWidth, order ByteOrder, attrs ...Attr) *FloatType {
	return &FloatType{typeBase{TypeFloat, attrs}, width, order}
}

type StringType struct {
	typeBase
	Encoding  StringEncoding
	ByteOrder ByteOrder
}

func String(encoding StringEncoding, order ByteOrder, attrs ...Attr) *StringType {
	return &StringType{typeBase{TypeString, attrs}, encoding, order}
}

// --- stack-copy compound ---

type StructType struct {
	typeBase
	Fields []Field
}

func Struct(fields []Field, attrs ...Attr) *StructType {
	return &StructType{typeBase{TypeStruct, attrs}, fields}
}

// VariantOption is one arm of a Variant: the selector value range
// [Begin, End] (inclusive) that activates Type.
type VariantOption struct {
	Begin, End int64
	Type       Type
}

type VariantType struct {
	typeBase
	Selector *IntegerType
	Options  []VariantOption
}

func Variant(selector *IntegerType, options []VariantOption, attrs ...Attr) *VariantType {
	return &VariantType{typeBase{TypeVariant, attrs}, selector, options}
}

type ArrayType struct {
	typeBase
	Element Type
	Length  int
}

func Array(element Type, length int, attrs ...Attr) *ArrayType {
	return &ArrayType{typeBase{TypeArray, attrs}, element, length}
}

// VlaType is a variable-length array whose Length is itself supplied
// as a value at call time (spec §3.1).
type VlaType struct {
	typeBase
	Length  Type
	Element Type
}

func Vla(length, element Type, attrs ...Attr) *VlaType {
	return &VlaType{typeBase{TypeVla, attrs}, length, element}
}

// VlaVisitorFunc lets an application stream elements without
// materializing a slice; it is invoked with a visit callback the
// application calls once per element.
type VlaVisitorFunc func(ctx any, emit func(Arg) bool)

type VlaVisitorType struct {
	typeBase
	Length    Type
	Element   Type
	VisitorFn VlaVisitorFunc
}

func NewVlaVisitor(length, element Type, fn VlaVisitorFunc, attrs ...Attr) *VlaVisitorType {
	return &VlaVisitorType{typeBase{TypeVlaVisitor, attrs}, length, element, fn}
}

// --- stack-copy enumeration ---

// EnumMapping labels the inclusive selector range [Begin, End].
type EnumMapping struct {
	Begin, End int64
	Label      string
}

type EnumType struct {
	typeBase
	Element  *IntegerType
	Mappings []EnumMapping
}

func Enum(element *IntegerType, mappings []EnumMapping, attrs ...Attr) *EnumType {
	return &EnumType{typeBase{TypeEnum, attrs}, element, mappings}
}

// EnumBitmapMapping labels the inclusive bit range [BitBegin, BitEnd].
type EnumBitmapMapping struct {
	BitBegin, BitEnd int
	Label            string
}

// EnumBitmapType's Element is Integer, Array (of Integer/Byte) or Vla,
// per spec §3.1; validate() checks the Element's own kind but not the
// element type of an Array or Vla Element.
type EnumBitmapType struct {
	typeBase
	Element  Type
	Mappings []EnumBitmapMapping
}

func EnumBitmap(element Type, mappings []EnumBitmapMapping, attrs ...Attr) *EnumBitmapType {
	return &EnumBitmapType{typeBase{TypeEnumBitmap, attrs}, element, mappings}
}

// --- gather (data described by pointer and offset) ---

// GatherType reads a scalar or Struct Type out of a Gather-described
// buffer at Offset, per AccessMode (spec §3.1). Array and Vla have
// their own gather forms below because their length is described
// alongside the element rather than embedded in it.
type GatherType struct {
	typeBase
	Offset  int64
	Access  AccessMode
	Element Type
}

func Gather(offset int64, access AccessMode, element Type, attrs ...Attr) *GatherType {
	return &GatherType{typeBase{TypeGather, attrs}, offset, access, element}
}

type GatherArrayType struct {
	typeBase
	Offset  int64
	Access  AccessMode
	Element Type
	Length  int
}

func GatherArray(offset int64, access AccessMode, element Type, length int, attrs ...Attr) *GatherArrayType {
	return &GatherArrayType{typeBase{TypeGatherArray, attrs}, offset, access, element, length}
}

// GatherVlaType nests a length Type read from the buffer itself.
// Nesting a GatherVla inside a GatherArray/GatherVla Element is
// forbidden (spec §3.1); validate() rejects it.
type GatherVlaType struct {
	typeBase
	Offset  int64
	Access  AccessMode
	Length  Type
	Element Type
}

func NewGatherVla(offset int64, access AccessMode, length, element Type, attrs ...Attr) *GatherVlaType {
	return &GatherVlaType{typeBase{TypeGatherVla, attrs}, offset, access, length, element}
}

// --- dynamic / optional ---

// DynamicType reserves a field whose actual type is supplied per call
// (spec §3.1); the matching Arg carries both its Type and payload.
type DynamicType struct{ typeBase }

func Dynamic(attrs ...Attr) *DynamicType { return &DynamicType{typeBase{TypeDynamic, attrs}} }

// OptionalType wraps Element; the matching Arg carries a presence
// selector.
type OptionalType struct {
	typeBase
	Element Type
}

func Optional(element Type, attrs ...Attr) *OptionalType {
	return &OptionalType{typeBase{TypeOptional, attrs}, element}
}
