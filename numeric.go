// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import "math/big"

// decode converts a raw stored word into the logical value the spec's
// "Numeric semantics" describe: a byte-order conversion to host order,
// a bit window extraction at OffsetBits/EffectiveBits, and sign
// extension when the window is narrower than the storage width. It is
// applied by walkType before an *IntegerType node reaches a Visitor,
// so Arg.Value always carries the value as the wire producer wrote
// it, never the decoded one.
//
// math/big does the 128-bit shift/mask/sign-extend arithmetic: none
// of the retrieved example repos vendor a pure-Go int128, and
// encoding/binary only converts bytes to/against fixed Go integer
// types, not an arbitrary declared-width sub-word window, so this is
// the same stdlib-only exception already taken for Int128 itself (see
// attr.go, DESIGN.md).
func (t *IntegerType) decode(raw Int128) Int128 {
	v := raw
	if t.ByteOrder != OrderHost {
		v = swapBytesWidth(v, t.Width)
	}
	if t.OffsetBits != 0 {
		v = shiftRightInt128(v, t.OffsetBits)
	}
	if t.EffectiveBits < int(t.Width) {
		v = maskBits(v, t.EffectiveBits)
		if t.Signed {
			v = signExtend(v, t.EffectiveBits)
		}
	}
	return v
}

// swapBytesWidth reverses the byte order of v within width bits (spec
// §4.1: "byte-order conversion is host-vs-declared").
func swapBytesWidth(v Int128, width IntegerWidth) Int128 {
	switch width {
	case Width8:
		return v
	case Width16:
		lo := uint16(v.Lo)
		return Int128{Lo: uint64(lo>>8 | lo<<8)}
	case Width32:
		lo := uint32(v.Lo)
		return Int128{Lo: uint64(
			lo>>24 | (lo>>8)&0xFF00 | (lo<<8)&0xFF0000 | lo<<24,
		)}
	case Width64:
		return Int128{Lo: reverseBytes64(v.Lo)}
	case Width128:
		return Int128{Hi: reverseBytes64(v.Lo), Lo: reverseBytes64(v.Hi)}
	default:
		return v
	}
}

func reverseBytes64(v uint64) uint64 {
	var r uint64
	for i := 0; i < 8; i++ {
		r = r<<8 | v&0xFF
		v >>= 8
	}
	return r
}

func (v Int128) toBig() *big.Int {
	b := new(big.Int).SetUint64(v.Hi)
	b.Lsh(b, 64)
	b.Or(b, new(big.Int).SetUint64(v.Lo))
	return b
}

func int128FromBig(b *big.Int) Int128 {
	mask64 := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(b, mask64).Uint64()
	hi := new(big.Int).Rsh(b, 64)
	hi.And(hi, mask64)
	return Int128{Hi: hi.Uint64(), Lo: lo}
}

// shiftRightInt128 implements the "LSB is bit 0 after host-order
// load" bit-window offset (spec §4.1).
func shiftRightInt128(v Int128, n int) Int128 {
	if n <= 0 {
		return v
	}
	return int128FromBig(new(big.Int).Rsh(v.toBig(), uint(n)))
}

// maskBits keeps only the low bits bits of v.
func maskBits(v Int128, bits int) Int128 {
	if bits >= 128 {
		return v
	}
	if bits <= 0 {
		return Int128{}
	}
	mask := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	mask.Sub(mask, big.NewInt(1))
	return int128FromBig(new(big.Int).And(v.toBig(), mask))
}

// signExtend fills bits [bits,127] with the sign bit at position
// bits-1, implementing the "sign extension is applied if the
// declared type is signed" rule for a narrower-than-storage window.
func signExtend(v Int128, bits int) Int128 {
	if bits <= 0 || bits >= 128 {
		return v
	}
	signMask := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	b := v.toBig()
	if b.Cmp(signMask) < 0 {
		return v
	}
	full := new(big.Int).Lsh(big.NewInt(1), 128)
	low := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	highBits := full.Sub(full, low)
	b.Or(b, highBits)
	return int128FromBig(b)
}

// bitAt reports whether bit i (0 = LSB) is set in v.
func bitAt(v Int128, i int) bool {
	switch {
	case i < 0 || i >= 128:
		return false
	case i < 64:
		return v.Lo&(uint64(1)<<uint(i)) != 0
	default:
		return v.Hi&(uint64(1)<<uint(i-64)) != 0
	}
}
