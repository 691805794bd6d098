package side

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeEventIsNotVariadic(t *testing.T) {
	e := DescribeEvent("test", "plain", nil, nil, LogInfo)
	assert.False(t, e.IsVariadic())
}

func TestDescribeVariadicEventSetsFlag(t *testing.T) {
	e := DescribeVariadicEvent("test", "var", nil, nil, LogInfo)
	assert.True(t, e.IsVariadic())
}

func TestNewEventStateStartsWithEmptySentinel(t *testing.T) {
	st := newEventState()
	assert.Same(t, &emptyCallbacks, st.callbacks.Load())
	assert.Equal(t, uint32(0), st.enabled.Load())
}

func TestCallbackEntryIsEmpty(t *testing.T) {
	assert.True(t, callbackEntry{}.isEmpty())
	assert.False(t, callbackEntry{fixedFn: func(*EventDescription, ArgVec, uint64, any) {}}.isEmpty())
}
