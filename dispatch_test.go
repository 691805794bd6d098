package side

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestCallDoesNothingWithNoCallbacks(t *testing.T) {
	ensureInit()
	event := DescribeEvent("dispatch-test", "no-callbacks", []Field{
		{Name: "n", Type: Integer(Width32, true, OrderHost)},
	}, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	assert.NotPanics(t, func() {
		event.Call(ArgVec{ArgInt(1)})
	})
}

func TestCallInvokesAttachedCallback(t *testing.T) {
	ensureInit()
	event := DescribeEvent("dispatch-test", "fan-out", []Field{
		{Name: "n", Type: Integer(Width32, true, OrderHost)},
	}, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	var mu sync.Mutex
	var got int64
	var gotKey uint64
	cb := func(desc *EventDescription, args ArgVec, key uint64, priv any) {
		mu.Lock()
		defer mu.Unlock()
		got = args[0].(IntegerArg).Value.Int64()
		gotKey = key
	}
	require.NoError(t, TracerCallbackRegister(event.EventDescription, cb, nil))
	defer TracerCallbackUnregister(event.EventDescription, cb, nil)

	event.Call(ArgVec{ArgInt(99)})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int64(99), got)
	assert.Equal(t, uint64(0), gotKey)
}

func TestCallVariadicPassesVarStruct(t *testing.T) {
	ensureInit()
	event := DescribeVariadicEvent("dispatch-test", "variadic", nil, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	var gotFields int
	cb := func(desc *EventDescription, args ArgVec, v *VarStruct, key uint64, priv any) {
		gotFields = len(v.Fields)
	}
	require.NoError(t, VariadicCallbackRegister(event.EventDescription, cb, nil))
	defer VariadicCallbackUnregister(event.EventDescription, cb, nil)

	v := &VarStruct{Fields: []DynamicField{
		{Name: "x", Value: ArgDynamic(Integer(Width32, true, OrderHost), ArgInt(1))},
	}}
	event.CallVariadic(nil, v)

	assert.Equal(t, 1, gotFields)
}

// TestConcurrentAttachDetachStopsRecordingOnceDetachReturns mirrors
// the "concurrent attach/detach" end-to-end scenario: a pool of
// dispatcher goroutines calls the event continuously while a
// controller goroutine repeatedly attaches and detaches a sink, and
// no value reaches the sink's recorder after a detach call has
// returned (P3: detach blocks until every in-flight invocation from
// before it was called has finished).
func TestConcurrentAttachDetachStopsRecordingOnceDetachReturns(t *testing.T) {
	ensureInit()
	event := DescribeEvent("dispatch-test", "concurrent-attach-detach", []Field{
		{Name: "seq", Type: Integer(Width64, false, OrderHost)},
	}, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	var seq atomic.Uint64
	var stop atomic.Bool

	var mu sync.Mutex
	var recorded []uint64

	cb := func(desc *EventDescription, args ArgVec, key uint64, priv any) {
		mu.Lock()
		recorded = append(recorded, args[0].(IntegerArg).Value.Uint64())
		mu.Unlock()
	}

	const dispatchers = 8
	var wg sync.WaitGroup
	for i := 0; i < dispatchers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				event.Call(ArgVec{ArgUint(seq.Inc())})
			}
		}()
	}
	defer func() {
		stop.Store(true)
		wg.Wait()
	}()

	const cycles = 20
	for i := 0; i < cycles; i++ {
		require.NoError(t, TracerCallbackRegister(event.EventDescription, cb, nil))
		time.Sleep(time.Millisecond)
		require.NoError(t, TracerCallbackUnregister(event.EventDescription, cb, nil))

		mu.Lock()
		countAtDetach := len(recorded)
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		countAfterWait := len(recorded)
		mu.Unlock()
		assert.Equal(t, countAtDetach, countAfterWait, "cycle %d: callback recorded a value after detach returned", i)
	}
}

func TestCallStatedumpRejectsReservedKey(t *testing.T) {
	ensureInit()
	event := DescribeEvent("dispatch-test", "statedump-key", nil, nil, LogInfo)
	h, err := RegisterEvents(event)
	require.NoError(t, err)
	defer UnregisterEvents(h)

	err = event.CallStatedump(nil, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}
