// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks a Type tree against the invariants spec §4.1
// requires before registration: no GatherVla nested inside a
// GatherArray/GatherVla element, an Enum having an element integer
// type, an EnumBitmap element being an Integer, Array or Vla, Variant
// selectors being integers (enforced at the type level already, see
// VariantType.Selector), and string unit sizes in {1, 2, 4} bytes.
// Enum and bitmap element widths are not compared against any stride.
// Every violation found is collected, not just the first, via
// hashicorp/go-multierror.
func Validate(t Type) error {
	var errs *multierror.Error
	validateType(t, "", &errs)
	return errs.ErrorOrNil()
}

// ValidateFields validates every field of an event description; used
// by RegisterEvents before anything is published (spec §4.3 step 1).
func ValidateFields(fields []Field) error {
	var errs *multierror.Error
	for _, f := range fields {
		validateType(f.Type, f.Name, &errs)
	}
	return errs.ErrorOrNil()
}

func validateType(t Type, path string, errs **multierror.Error) {
	if t == nil {
		*errs = multierror.Append(*errs, fmt.Errorf("%s: nil type", path))
		return
	}
	if !t.Kind().valid() {
		*errs = multierror.Append(*errs, fmt.Errorf("%s: unknown type kind %d", path, t.Kind()))
		return
	}
	for _, a := range t.Attrs() {
		if !a.Kind().valid() {
			*errs = multierror.Append(*errs, fmt.Errorf("%s: unknown attribute kind for key %q", path, a.Key))
		}
	}

	switch tt := t.(type) {
	case *IntegerType:
		if tt.EffectiveBits <= 0 || tt.EffectiveBits > int(tt.Width) {
			*errs = multierror.Append(*errs, fmt.Errorf("%s: effective_bits %d out of range for width %d", path, tt.EffectiveBits, tt.Width))
		}
		if tt.OffsetBits < 0 || tt.OffsetBits+tt.EffectiveBits > int(tt.Width) {
			*errs = multierror.Append(*errs, fmt.Errorf("%s: offset_bits %d+%d overflows width %d", path, tt.OffsetBits, tt.EffectiveBits, tt.Width))
		}
	case *StringType:
		if tt.Encoding.UnitSize() == 0 {
			*errs = multierror.Append(*errs, fmt.Errorf("%s: invalid string unit size", path))
		}
	case *StructType:
		for _, f := range tt.Fields {
			validateType(f.Type, path+"."+f.Name, errs)
		}
	case *VariantType:
		if tt.Selector == nil {
			*errs = multierror.Append(*errs, fmt.Errorf("%s: variant selector must be an integer type", path))
		}
		for i, opt := range tt.Options {
			validateType(opt.Type, fmt.Sprintf("%s<variant#%d>", path, i), errs)
		}
	case *ArrayType:
		validateType(tt.Element, path+"[]", errs)
	case *VlaType:
		validateType(tt.Length, path+"<len>", errs)
		validateType(tt.Element, path+"[]", errs)
	case *VlaVisitorType:
		validateType(tt.Length, path+"<len>", errs)
		validateType(tt.Element, path+"[]", errs)
		if tt.VisitorFn == nil {
			*errs = multierror.Append(*errs, fmt.Errorf("%s: vla_visitor has no visitor function", path))
		}
	case *EnumType:
		if tt.Element == nil {
			*errs = multierror.Append(*errs, fmt.Errorf("%s: enum has no element integer type", path))
		}
	case *EnumBitmapType:
		switch tt.Element.(type) {
		case *IntegerType, *ArrayType, *VlaType:
		default:
			*errs = multierror.Append(*errs, fmt.Errorf("%s: enum_bitmap element must be integer, array or vla", path))
		}
		validateType(tt.Element, path+"<bitmap>", errs)
	case *GatherType:
		switch tt.Element.(type) {
		case *GatherType, *GatherArrayType, *GatherVlaType:
			*errs = multierror.Append(*errs, fmt.Errorf("%s: gather element must not itself be a gather type", path))
		default:
			validateType(tt.Element, path+"<gather>", errs)
		}
	case *GatherArrayType:
		if isGatherVla(tt.Element) {
			*errs = multierror.Append(*errs, fmt.Errorf("%s: gather_vla forbidden nested inside gather_array", path))
		}
		validateType(tt.Element, path+"[]", errs)
	case *GatherVlaType:
		if isGatherVla(tt.Element) {
			*errs = multierror.Append(*errs, fmt.Errorf("%s: gather_vla forbidden nested inside gather_vla", path))
		}
		validateType(tt.Length, path+"<len>", errs)
		validateType(tt.Element, path+"[]", errs)
	case *OptionalType:
		validateType(tt.Element, path+"?", errs)
	}
}

func isGatherVla(t Type) bool {
	_, ok := t.(*GatherVlaType)
	return ok
}
