package side

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopCallback(*EventDescription, ArgVec, uint64, any) {}

func TestRegisterEventsNotifiesExistingTracer(t *testing.T) {
	ensureInit()

	var inserted []string
	tracer := RegisterTracer(func(desc *EventDescription, n Notification, priv any) {
		if n == NotifyInsert {
			inserted = append(inserted, desc.Name)
		}
	}, nil)
	defer UnregisterTracer(tracer)

	event := DescribeEvent("registry-test", "insert-notify", nil, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	assert.Contains(t, inserted, "insert-notify")
}

func TestRegisterTracerReplaysExistingEvents(t *testing.T) {
	ensureInit()

	event := DescribeEvent("registry-test", "replay", nil, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	var seen []string
	tracer := RegisterTracer(func(desc *EventDescription, n Notification, priv any) {
		if n == NotifyInsert {
			seen = append(seen, desc.Name)
		}
	}, nil)
	defer UnregisterTracer(tracer)

	assert.Contains(t, seen, "replay")
}

func TestAttachRejectsDuplicate(t *testing.T) {
	ensureInit()
	event := DescribeEvent("registry-test", "dup", nil, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	require.NoError(t, TracerCallbackRegister(event.EventDescription, noopCallback, nil))
	defer TracerCallbackUnregister(event.EventDescription, noopCallback, nil)

	err = TracerCallbackRegister(event.EventDescription, noopCallback, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestDetachUnknownReturnsNotFound(t *testing.T) {
	ensureInit()
	event := DescribeEvent("registry-test", "detach-unknown", nil, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	err = TracerCallbackUnregister(event.EventDescription, noopCallback, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttachTogglesEnabled(t *testing.T) {
	ensureInit()
	event := DescribeEvent("registry-test", "toggle-enabled", nil, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	assert.Equal(t, uint32(0), event.state.enabled.Load())

	require.NoError(t, TracerCallbackRegister(event.EventDescription, noopCallback, nil))
	assert.Equal(t, uint32(1), event.state.enabled.Load())

	require.NoError(t, TracerCallbackUnregister(event.EventDescription, noopCallback, nil))
	assert.Equal(t, uint32(0), event.state.enabled.Load())
}

func TestVariadicCallbackRejectedOnFixedEvent(t *testing.T) {
	ensureInit()
	event := DescribeEvent("registry-test", "fixed-only", nil, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	err = VariadicCallbackRegister(event.EventDescription, func(*EventDescription, ArgVec, *VarStruct, uint64, any) {}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}
