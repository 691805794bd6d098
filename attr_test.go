package side

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt128RoundTrip(t *testing.T) {
	assert.Equal(t, int64(-7), Int128FromInt64(-7).Int64())
	assert.Equal(t, uint64(42), Int128FromUint64(42).Uint64())
}

func TestAttrConstructorsSetKind(t *testing.T) {
	cases := []struct {
		attr Attr
		kind AttrKind
	}{
		{NullAttr("k"), AttrNull},
		{BoolAttr("k", true), AttrBool},
		{IntAttr("k", -1), AttrInt},
		{UintAttr("k", 1), AttrUint},
		{FloatAttr("k", 1.5), AttrFloat},
		{StringAttr("k", "v"), AttrString},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, c.attr.Kind())
	}
}

func TestAttrKindValid(t *testing.T) {
	assert.True(t, AttrString.valid())
	assert.False(t, AttrKind(200).valid())
}
