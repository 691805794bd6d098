// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import "fmt"

// Visitor is the structural-traversal interface walk_description and
// walk_arguments drive depth-first (spec §4.1, §9 design note: "a
// visitor-dispatch interface replaces virtual methods"). Embed
// BaseVisitor to get no-op defaults for every hook and override only
// the kinds a given walker cares about.
type Visitor interface {
	VisitNull(t *NullType, a *NullArg)
	VisitBool(t *BoolType, a *BoolArg)
	VisitByte(t *ByteType, a *ByteArg)
	VisitInteger(t *IntegerType, a *IntegerArg)
	VisitPointer(t *PointerType, a *PointerArg)
	VisitFloat(t *FloatType, a *FloatArg)
	VisitString(t *StringType, a *StringArg)

	VisitStructBegin(t *StructType, a *StructArg)
	VisitStructEnd(t *StructType, a *StructArg)
	VisitVariant(t *VariantType, a *VariantArg, chosen VariantOption)
	VisitArrayBegin(t *ArrayType, a *ArrayArg)
	VisitArrayEnd(t *ArrayType, a *ArrayArg)
	VisitVlaBegin(t *VlaType, a *VlaArg)
	VisitVlaEnd(t *VlaType, a *VlaArg)
	VisitVlaVisitor(t *VlaVisitorType, a *VlaVisitorArg)

	VisitEnum(t *EnumType, a *EnumArg, label string)
	VisitEnumBitmap(t *EnumBitmapType, a *EnumBitmapArg, labels []string)

	VisitGather(t *GatherType, a *GatherArg)
	VisitGatherArray(t *GatherArrayType, a *GatherArg)
	VisitGatherVla(t *GatherVlaType, a *GatherArg)

	VisitDynamic(t *DynamicType, a *DynamicArg)
	VisitOptional(t *OptionalType, a *OptionalArg)
}

// BaseVisitor implements Visitor with no-op methods. Real visitors
// embed it by value and override the handful of kinds they need,
// matching spec §9's "default empty handlers for the composite
// kinds" guidance extended to every leaf too.
type BaseVisitor struct{}

func (BaseVisitor) VisitNull(*NullType, *NullArg)       {}
func (BaseVisitor) VisitBool(*BoolType, *BoolArg)       {}
func (BaseVisitor) VisitByte(*ByteType, *ByteArg)       {}
func (BaseVisitor) VisitInteger(*IntegerType, *IntegerArg) {}
func (BaseVisitor) VisitPointer(*PointerType, *PointerArg) {}
func (BaseVisitor) VisitFloat(*FloatType, *FloatArg)    {}
func (BaseVisitor) VisitString(*StringType, *StringArg) {}

func (BaseVisitor) VisitStructBegin(*StructType, *StructArg) {}
func (BaseVisitor) VisitStructEnd(*StructType, *StructArg)   {}
func (BaseVisitor) VisitVariant(*VariantType, *VariantArg, VariantOption) {}
func (BaseVisitor) VisitArrayBegin(*ArrayType, *ArrayArg) {}
func (BaseVisitor) VisitArrayEnd(*ArrayType, *ArrayArg)   {}
func (BaseVisitor) VisitVlaBegin(*VlaType, *VlaArg) {}
func (BaseVisitor) VisitVlaEnd(*VlaType, *VlaArg)   {}
func (BaseVisitor) VisitVlaVisitor(*VlaVisitorType, *VlaVisitorArg) {}

func (BaseVisitor) VisitEnum(*EnumType, *EnumArg, string)            {}
func (BaseVisitor) VisitEnumBitmap(*EnumBitmapType, *EnumBitmapArg, []string) {}

func (BaseVisitor) VisitGather(*GatherType, *GatherArg)      {}
func (BaseVisitor) VisitGatherArray(*GatherArrayType, *GatherArg) {}
func (BaseVisitor) VisitGatherVla(*GatherVlaType, *GatherArg) {}

func (BaseVisitor) VisitDynamic(*DynamicType, *DynamicArg) {}
func (BaseVisitor) VisitOptional(*OptionalType, *OptionalArg) {}

// TypeMismatchError is the programming-error signal raised when an
// Arg's kind does not match the Type expected at its position. Spec
// §4.1/§4.4 treat this as fatal: dispatch never recovers it, so it
// propagates out of Call/CallVariadic and terminates the goroutine
// (and, absent an outer recover, the process) rather than risk
// handing a tracer a corrupted view.
type TypeMismatchError struct {
	Expected TypeKind
	Got      TypeKind
	Path     string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("side: type mismatch at %s: expected %s, got %s", e.Path, e.Expected, e.Got)
}

func abortMismatch(path string, expected TypeKind, got Arg) {
	var got2 TypeKind
	if got != nil {
		got2 = got.Kind()
	}
	panic(&TypeMismatchError{Expected: expected, Got: got2, Path: path})
}

// WalkDescription performs a depth-first traversal of a Field list
// (an event's Fields, or a compound Type's nested Fields) without any
// argument values, invoking v's hooks with pointers to zero-valued
// Args (never nil). With no values to follow, a Vla's or Optional's
// element type is not visited, and a Variant visits only the option
// whose range contains 0. This is the "describe only" half of spec
// §4.1's contract, used by tracers that want to learn an event's shape
// once at registration time.
func WalkDescription(v Visitor, fields []Field) {
	for _, f := range fields {
		walkType(v, f.Type, nil, "."+f.Name)
	}
}

// WalkArguments walks fields paired with the caller-supplied args,
// checking each Arg's Kind against the Type at that position (spec
// §4.1's validate-at-traversal-time discipline) and invoking v's
// per-kind hooks. It panics with *TypeMismatchError on the first
// mismatch.
func WalkArguments(v Visitor, fields []Field, args ArgVec) {
	if len(fields) != len(args) {
		panic(&TypeMismatchError{Path: "<argvec>", Expected: TypeStruct, Got: TypeStruct})
	}
	for i, f := range fields {
		walkType(v, f.Type, args[i], "."+f.Name)
	}
}

func walkType(v Visitor, t Type, a Arg, path string) {
	switch tt := t.(type) {
	case *NullType:
		na := mustArg[NullArg](a, TypeNull, path)
		v.VisitNull(tt, &na)
	case *BoolType:
		ba := mustArg[BoolArg](a, TypeBool, path)
		v.VisitBool(tt, &ba)
	case *ByteType:
		ba := mustArg[ByteArg](a, TypeByte, path)
		v.VisitByte(tt, &ba)
	case *IntegerType:
		ia := mustArg[IntegerArg](a, TypeInteger, path)
		if a != nil {
			ia.Value = tt.decode(ia.Value)
		}
		v.VisitInteger(tt, &ia)
	case *PointerType:
		pa := mustArg[PointerArg](a, TypePointer, path)
		v.VisitPointer(tt, &pa)
	case *FloatType:
		fa := mustArg[FloatArg](a, TypeFloat, path)
		v.VisitFloat(tt, &fa)
	case *StringType:
		sa := mustArg[StringArg](a, TypeString, path)
		v.VisitString(tt, &sa)

	case *StructType:
		sa := mustArg[StructArg](a, TypeStruct, path)
		v.VisitStructBegin(tt, &sa)
		if a != nil {
			for i, f := range tt.Fields {
				walkType(v, f.Type, sa.Fields[i], path+"."+f.Name)
			}
		} else {
			WalkDescription(v, tt.Fields)
		}
		v.VisitStructEnd(tt, &sa)

	case *VariantType:
		va := mustArg[VariantArg](a, TypeVariant, path)
		opt := selectVariant(tt, va.Selector)
		v.VisitVariant(tt, &va, opt)
		if opt.Type != nil {
			walkType(v, opt.Type, va.Value, path+"<variant>")
		}

	case *ArrayType:
		aa := mustArg[ArrayArg](a, TypeArray, path)
		v.VisitArrayBegin(tt, &aa)
		for i := 0; i < tt.Length; i++ {
			var elemArg Arg
			if a != nil {
				elemArg = aa.Elements[i]
			}
			walkType(v, tt.Element, elemArg, fmt.Sprintf("%s[%d]", path, i))
		}
		v.VisitArrayEnd(tt, &aa)

	case *VlaType:
		va := mustArg[VlaArg](a, TypeVla, path)
		v.VisitVlaBegin(tt, &va)
		for i, elemArg := range va.Elements {
			walkType(v, tt.Element, elemArg, fmt.Sprintf("%s[%d]", path, i))
		}
		v.VisitVlaEnd(tt, &va)

	case *VlaVisitorType:
		vva := mustArg[VlaVisitorArg](a, TypeVlaVisitor, path)
		v.VisitVlaVisitor(tt, &vva)

	case *EnumType:
		ea := mustArg[EnumArg](a, TypeEnum, path)
		v.VisitEnum(tt, &ea, enumLabel(tt, ea.Value.Int64()))

	case *EnumBitmapType:
		eba := mustArg[EnumBitmapArg](a, TypeEnumBitmap, path)
		v.VisitEnumBitmap(tt, &eba, enumBitmapLabels(tt, eba.Value))

	case *GatherType:
		ga := mustArg[GatherArg](a, TypeGather, path)
		v.VisitGather(tt, &ga)
	case *GatherArrayType:
		ga := mustArg[GatherArg](a, TypeGather, path)
		v.VisitGatherArray(tt, &ga)
	case *GatherVlaType:
		ga := mustArg[GatherArg](a, TypeGather, path)
		v.VisitGatherVla(tt, &ga)

	case *DynamicType:
		da := mustArg[DynamicArg](a, TypeDynamic, path)
		v.VisitDynamic(tt, &da)

	case *OptionalType:
		oa := mustArg[OptionalArg](a, TypeOptional, path)
		v.VisitOptional(tt, &oa)
		if oa.Present {
			walkType(v, tt.Element, oa.Value, path+"?")
		}

	default:
		panic(&TypeMismatchError{Path: path, Expected: TypeNull, Got: TypeNull})
	}
}

// mustArg asserts a is either nil (description-only walk) or of type
// T, aborting with a TypeMismatchError otherwise. Gather's embedded
// GatherArray/GatherVla share the plain GatherArg wire type (the
// offset/access semantics live in the Type, not the Arg), so they are
// checked against TypeGather explicitly by their callers above.
func mustArg[T Arg](a Arg, expected TypeKind, path string) T {
	if a == nil {
		var zero T
		return zero
	}
	if a.Kind() != expected {
		abortMismatch(path, expected, a)
	}
	v, ok := a.(T)
	if !ok {
		abortMismatch(path, expected, a)
	}
	return v
}

func selectVariant(t *VariantType, selector int64) VariantOption {
	for _, opt := range t.Options {
		if selector >= opt.Begin && selector <= opt.End {
			return opt
		}
	}
	return VariantOption{}
}

func enumLabel(t *EnumType, v int64) string {
	for _, m := range t.Mappings {
		if v >= m.Begin && v <= m.End {
			return m.Label
		}
	}
	return ""
}

func enumBitmapLabels(t *EnumBitmapType, v Arg) []string {
	bits := bitmapBits(t.Element, v)
	var labels []string
	for _, m := range t.Mappings {
		for b := m.BitBegin; b <= m.BitEnd; b++ {
			if b < len(bits) && bits[b] {
				labels = append(labels, m.Label)
				break
			}
		}
	}
	return labels
}

// bitmapBits walks elemType/v together so each element's own storage
// width and byte order governs how its bits are unpacked (spec §4.1:
// "bitmap enums interpret bits in element-stride order, respecting
// the per-element byte order"), concatenating element-stride runs in
// declaration order for Array/Vla elements.
func bitmapBits(elemType Type, v Arg) []bool {
	switch tt := elemType.(type) {
	case *IntegerType:
		ia, ok := v.(IntegerArg)
		if !ok {
			return nil
		}
		raw := ia.Value
		if tt.ByteOrder != OrderHost {
			raw = swapBytesWidth(raw, tt.Width)
		}
		bits := make([]bool, tt.Width)
		for i := range bits {
			bits[i] = bitAt(raw, i)
		}
		return bits
	case *ByteType:
		ba, ok := v.(ByteArg)
		if !ok {
			return nil
		}
		bits := make([]bool, 8)
		for i := range bits {
			bits[i] = ba.Value&(1<<uint(i)) != 0
		}
		return bits
	case *ArrayType:
		aa, ok := v.(ArrayArg)
		if !ok {
			return nil
		}
		var bits []bool
		for _, e := range aa.Elements {
			bits = append(bits, bitmapBits(tt.Element, e)...)
		}
		return bits
	case *VlaType:
		va, ok := v.(VlaArg)
		if !ok {
			return nil
		}
		var bits []bool
		for _, e := range va.Elements {
			bits = append(bits, bitmapBits(tt.Element, e)...)
		}
		return bits
	default:
		return nil
	}
}
