// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

// AttrKind is the stable numeric tag of an Attr's value (spec §3.1,
// §6.3: the ABI surface requires these values never change across
// revisions; unknown values are treated as Invalid by validate).
type AttrKind uint8

const (
	AttrNull AttrKind = iota
	AttrBool
	AttrInt
	AttrUint
	AttrFloat
	AttrString
	attrKindCount
)

func (k AttrKind) valid() bool { return k < attrKindCount }

// Int128 carries a 128-bit signed or unsigned integer as a pair of
// 64-bit limbs. Go has no native int128, and none of the retrieved
// example repos vendor one for pure Go, so this is the one numeric
// representation in the type model built without a third-party
// dependency (see DESIGN.md).
type Int128 struct {
	Hi uint64
	Lo uint64
}

// Int64 truncates to the low 64 bits, which is exact whenever the
// value was produced from a width <= 64 integer.
func (v Int128) Int64() int64   { return int64(v.Lo) }
func (v Int128) Uint64() uint64 { return v.Lo }

func Int128FromInt64(v int64) Int128 {
	hi := uint64(0)
	if v < 0 {
		hi = ^uint64(0)
	}
	return Int128{Hi: hi, Lo: uint64(v)}
}

func Int128FromUint64(v uint64) Int128 { return Int128{Lo: v} }

// Attr is an opaque (key, value) pair attached to a Type, a Field, or
// an EventDescription. The core never interprets an attribute; tracers
// do (e.g. "std.integer.base" selects display radix).
type Attr struct {
	Key   string
	kind  AttrKind
	b     bool
	i     Int128
	f     float64
	s     string
}

func (a Attr) Kind() AttrKind { return a.kind }

func NullAttr(key string) Attr { return Attr{Key: key, kind: AttrNull} }

func BoolAttr(key string, v bool) Attr { return Attr{Key: key, kind: AttrBool, b: v} }

func IntAttr(key string, v int64) Attr {
	return Attr{Key: key, kind: AttrInt, i: Int128FromInt64(v)}
}

func Int128Attr(key string, v Int128) Attr { return Attr{Key: key, kind: AttrInt, i: v} }

func UintAttr(key string, v uint64) Attr {
	return Attr{Key: key, kind: AttrUint, i: Int128FromUint64(v)}
}

func FloatAttr(key string, v float64) Attr { return Attr{Key: key, kind: AttrFloat, f: v} }

func StringAttr(key string, v string) Attr { return Attr{Key: key, kind: AttrString, s: v} }

// BoolValue, IntValue, UintValue, FloatValue and StringValue do not
// check Kind(): on an Attr of another kind they return the accessor's
// zero value (IntValue and UintValue read the same Int128 payload).
// Callers are expected to switch on Kind first, the same discipline
// the type model's visitors use.
func (a Attr) BoolValue() bool     { return a.b }
func (a Attr) IntValue() Int128    { return a.i }
func (a Attr) UintValue() Int128   { return a.i }
func (a Attr) FloatValue() float64 { return a.f }
func (a Attr) StringValue() string { return a.s }

// Well-known attribute keys used by the reference printf-style
// tracer contract (spec §1: concrete tracers are out of scope, but
// the keys they read are part of the attribute vocabulary).
const (
	AttrKeyIntegerBase = "std.integer.base"
	AttrKeyUnit        = "std.unit"
)
