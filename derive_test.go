package side

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `side:"name"`
	Count  int32  `side:"count,std.unit=items"`
	Active bool
	Nested struct {
		Value uint64
	}
	unexported int
}

func TestFromStructDerivesFieldsByName(t *testing.T) {
	fields := FromStruct[sample]()
	require.Len(t, fields, 4) // unexported field skipped

	byName := map[string]Field{}
	for _, f := range fields {
		byName[f.Name] = f
	}

	assert.Contains(t, byName, "name")
	assert.Equal(t, TypeString, byName["name"].Type.Kind())

	count, ok := byName["count"]
	require.True(t, ok)
	assert.Equal(t, TypeInteger, count.Type.Kind())
	require.Len(t, count.Type.Attrs(), 1)
	assert.Equal(t, AttrKeyUnit, count.Type.Attrs()[0].Key)

	assert.Equal(t, TypeBool, byName["Active"].Type.Kind())
	assert.Equal(t, TypeStruct, byName["Nested"].Type.Kind())
}

func TestFromStructPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() {
		FromStruct[int]()
	})
}
