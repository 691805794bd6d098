package side

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingVisitor struct {
	BaseVisitor
	ints    int
	strings int
}

func (v *countingVisitor) VisitInteger(t *IntegerType, a *IntegerArg) {
	v.ints++
}

func (v *countingVisitor) VisitString(t *StringType, a *StringArg) {
	v.strings++
}

func TestWalkArgumentsVisitsEachField(t *testing.T) {
	fields := []Field{
		{Name: "a", Type: Integer(Width32, true, OrderHost)},
		{Name: "b", Type: String(EncodingUTF8, OrderHost)},
		{Name: "c", Type: Integer(Width64, false, OrderHost)},
	}
	args := ArgVec{ArgInt(1), ArgString("x"), ArgUint(2)}

	v := &countingVisitor{}
	WalkArguments(v, fields, args)

	assert.Equal(t, 2, v.ints)
	assert.Equal(t, 1, v.strings)
}

func TestWalkArgumentsAbortsOnKindMismatch(t *testing.T) {
	fields := []Field{{Name: "a", Type: Integer(Width32, true, OrderHost)}}
	args := ArgVec{ArgString("not an int")}

	require.Panics(t, func() {
		WalkArguments(&BaseVisitor{}, fields, args)
	})
}

func TestWalkDescriptionRunsWithoutArgs(t *testing.T) {
	fields := []Field{
		{Name: "a", Type: Integer(Width32, true, OrderHost)},
		{Name: "b", Type: Struct([]Field{{Name: "inner", Type: Bool()}})},
	}
	assert.NotPanics(t, func() {
		WalkDescription(&BaseVisitor{}, fields)
	})
}

type capturingVisitor struct {
	BaseVisitor
	last Int128
}

func (v *capturingVisitor) VisitInteger(t *IntegerType, a *IntegerArg) {
	v.last = a.Value
}

// A non-host byte order combined with a sub-word bit window and sign
// extension exercises the whole "Numeric semantics" chain in one pass
// (spec §4.1): swap bytes back to host order, slide the window down
// to bit 0, then sign-extend it.
func TestWalkArgumentsDecodesByteOrderBitWindowAndSignExtension(t *testing.T) {
	fields := []Field{
		{Name: "a", Type: IntegerBitfield(Width32, true, OrderBig, 8, 8)},
	}
	// 0x78563412 read big-endian is 0x12345678 in host (little-endian)
	// order; bits [8,16) of that word are 0x56, whose top bit is clear.
	args := ArgVec{ArgUint(0x78563412)}

	v := &capturingVisitor{}
	WalkArguments(v, fields, args)

	assert.Equal(t, int64(0x56), v.last.Int64())
}

func TestWalkArgumentsSignExtendsNegativeBitfield(t *testing.T) {
	fields := []Field{
		{Name: "a", Type: IntegerBitfield(Width32, true, OrderHost, 8, 0)},
	}
	args := ArgVec{ArgUint(0xFF)}

	v := &capturingVisitor{}
	WalkArguments(v, fields, args)

	assert.Equal(t, int64(-1), v.last.Int64())
}

// Each element's own byte order governs how its bits unpack (spec
// §4.1), so a big-endian-declared element must decode differently
// from a host-order one holding the identical raw word.
func TestEnumBitmapRespectsPerElementByteOrder(t *testing.T) {
	bitmapType := EnumBitmap(
		Integer(Width16, false, OrderBig),
		[]EnumBitmapMapping{{BitBegin: 0, BitEnd: 0, Label: "low-bit"}},
	)
	// 0x0001 in big-endian storage is the byte sequence 00 01; loaded
	// big-endian-declared-then-swapped-to-host, bit 0 is clear, bit 8
	// is the one that's set.
	arg := ArgEnumBitmap(ArgUint(0x0001))

	labels := enumBitmapLabels(bitmapType, arg.Value)
	assert.Empty(t, labels)

	bitmapType2 := EnumBitmap(
		Integer(Width16, false, OrderBig),
		[]EnumBitmapMapping{{BitBegin: 8, BitEnd: 8, Label: "swapped-bit"}},
	)
	labels2 := enumBitmapLabels(bitmapType2, arg.Value)
	assert.Equal(t, []string{"swapped-bit"}, labels2)
}

func TestBitAtCoversBitsAbove64(t *testing.T) {
	v := Int128{Hi: 1, Lo: 0}
	assert.True(t, bitAt(v, 64))
	assert.False(t, bitAt(v, 63))
	assert.False(t, bitAt(v, 128))
}
