// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import "unsafe"

// Arg is the sealed tagged-union interface mirroring Type at the
// value level (spec §3.1). Every Arg reports the TypeKind it can
// satisfy so walk_arguments can check it against the Type expected at
// that position before handing it to a Visitor.
type Arg interface {
	Kind() TypeKind
	isArg()
}

type argBase struct{ kind TypeKind }

func (a argBase) Kind() TypeKind { return a.kind }
func (argBase) isArg()           {}

// --- static: inlined in the argument vector ---

type NullArg struct{ argBase }

func ArgNull() NullArg { return NullArg{argBase{TypeNull}} }

type BoolArg struct {
	argBase
	Value bool
}

func ArgBool(v bool) BoolArg { return BoolArg{argBase{TypeBool}, v} }

type ByteArg struct {
	argBase
	Value byte
}

func ArgByte(v byte) ByteArg { return ByteArg{argBase{TypeByte}, v} }

// IntegerArg carries the full 128-bit representation so a round trip
// through a narrower IntegerType is exact (spec P6); callers working
// with widths <= 64 bits use ArgInt/ArgUint.
type IntegerArg struct {
	argBase
	Value Int128
}

func ArgInt(v int64) IntegerArg  { return IntegerArg{argBase{TypeInteger}, Int128FromInt64(v)} }
func ArgUint(v uint64) IntegerArg { return IntegerArg{argBase{TypeInteger}, Int128FromUint64(v)} }
func ArgInt128(v Int128) IntegerArg { return IntegerArg{argBase{TypeInteger}, v} }

type PointerArg struct {
	argBase
	Value uintptr
}

func ArgPointer(v uintptr) PointerArg { return PointerArg{argBase{TypePointer}, v} }

// FloatArg stores widths <= 64 in Value; Width128 values carry their
// raw bit pattern in Hi/Lo instead (Go has no binary128 arithmetic).
type FloatArg struct {
	argBase
	Value   float64
	Hi, Lo  uint64
	IsWide  bool
}

func ArgFloat(v float64) FloatArg { return FloatArg{argBase: argBase{TypeFloat}, Value: v} }

func ArgFloat128(hi, lo uint64) FloatArg {
	return FloatArg{argBase: argBase{TypeFloat}, Hi: hi, Lo: lo, IsWide: true}
}

type StringArg struct {
	argBase
	Value string
}

func ArgString(v string) StringArg { return StringArg{argBase{TypeString}, v} }

// --- static: compound value vectors ---

type StructArg struct {
	argBase
	Fields []Arg
}

func ArgStruct(fields []Arg) StructArg { return StructArg{argBase{TypeStruct}, fields} }

type VariantArg struct {
	argBase
	Selector int64
	Value    Arg
}

func ArgVariant(selector int64, value Arg) VariantArg {
	return VariantArg{argBase{TypeVariant}, selector, value}
}

type ArrayArg struct {
	argBase
	Elements []Arg
}

func ArgArray(elements []Arg) ArrayArg { return ArrayArg{argBase{TypeArray}, elements} }

type VlaArg struct {
	argBase
	Elements []Arg
}

func ArgVla(elements []Arg) VlaArg { return VlaArg{argBase{TypeVla}, elements} }

// VlaVisitorArg carries an opaque context the VlaVisitorType's
// VisitorFn receives at walk time.
type VlaVisitorArg struct {
	argBase
	Context any
}

func ArgVlaVisitor(ctx any) VlaVisitorArg { return VlaVisitorArg{argBase{TypeVlaVisitor}, ctx} }

type EnumArg struct {
	argBase
	Value Int128
}

func ArgEnum(v int64) EnumArg { return EnumArg{argBase{TypeEnum}, Int128FromInt64(v)} }

// EnumBitmapArg.Value is the wrapped IntegerArg/ArrayArg/VlaArg
// matching the EnumBitmapType.Element kind it pairs with.
type EnumBitmapArg struct {
	argBase
	Value Arg
}

func ArgEnumBitmap(v Arg) EnumBitmapArg { return EnumBitmapArg{argBase{TypeEnumBitmap}, v} }

// --- gather: the value is a pointer, the Type carries the layout ---

// GatherArg is a raw pointer into caller-owned memory; the paired
// GatherType/GatherArrayType/GatherVlaType describes how to interpret
// it. unsafe.Pointer matches the pointer-plus-layout model of spec
// §3.1 directly; there is no safe stand-in for "read someone else's
// memory by offset" in Go.
type GatherArg struct {
	argBase
	Ptr unsafe.Pointer
}

func ArgGather(p unsafe.Pointer) GatherArg { return GatherArg{argBase{TypeGather}, p} }

// --- dynamic: carries both its Type and its payload inline ---

type DynamicArg struct {
	argBase
	Type  Type
	Value Arg
}

func ArgDynamic(t Type, v Arg) DynamicArg { return DynamicArg{argBase{TypeDynamic}, t, v} }

// --- optional ---

type OptionalArg struct {
	argBase
	Present bool
	Value   Arg
}

func ArgOptional(present bool, value Arg) OptionalArg {
	return OptionalArg{argBase{TypeOptional}, present, value}
}

// ArgVec is the fast-path argument vector: a length-and-pointer pair
// wrapping the caller's array (spec §4.4 step 3). A Go slice already
// is exactly that pair, so ArgVec is a plain alias rather than a
// wrapper struct.
type ArgVec = []Arg

// DynamicField is one (name, value) pair of a variadic event's
// dynamic struct (spec §3.4's VARIADIC flow).
type DynamicField struct {
	Name  string
	Value DynamicArg
}

// VarStruct is the dynamic struct passed alongside a variadic
// event's static ArgVec (spec §4.4 "Variadic path").
type VarStruct struct {
	Fields []DynamicField
	Attrs  []Attr
}
