package side

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgConstructorsReportKind(t *testing.T) {
	assert.Equal(t, TypeBool, ArgBool(true).Kind())
	assert.Equal(t, TypeInteger, ArgInt(-1).Kind())
	assert.Equal(t, TypeInteger, ArgUint(1).Kind())
	assert.Equal(t, TypeString, ArgString("x").Kind())
	assert.Equal(t, TypeOptional, ArgOptional(false, nil).Kind())
}

func TestArgIntRoundTripsInt128(t *testing.T) {
	a := ArgInt(-12345)
	assert.Equal(t, int64(-12345), a.Value.Int64())
}

func TestArgVecIsPlainSlice(t *testing.T) {
	var v ArgVec = []Arg{ArgInt(1), ArgString("s")}
	assert.Len(t, v, 2)
}
