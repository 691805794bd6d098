package side

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeKindString(t *testing.T) {
	assert.Equal(t, "gather_vla", TypeGatherVla.String())
	assert.Equal(t, "invalid", TypeKind(200).String())
}

func TestStringEncodingUnitSize(t *testing.T) {
	assert.Equal(t, 1, EncodingUTF8.UnitSize())
	assert.Equal(t, 2, EncodingUTF16.UnitSize())
	assert.Equal(t, 4, EncodingUTF32.UnitSize())
}

func TestIntegerConstructorDefaultsEffectiveBitsToWidth(t *testing.T) {
	it := Integer(Width32, true, OrderHost)
	assert.Equal(t, 32, it.EffectiveBits)
	assert.Equal(t, 0, it.OffsetBits)
}

func TestTypeAttrsRoundTrip(t *testing.T) {
	attr := IntAttr(AttrKeyIntegerBase, 16)
	it := Integer(Width32, true, OrderHost, attr)
	assert.Equal(t, []Attr{attr}, it.Attrs())
	assert.Equal(t, TypeInteger, it.Kind())
}
