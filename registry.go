// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import (
	"container/list"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxCallbacks bounds attached callbacks per event (spec §4.3 step 1).
const maxCallbacks = 255

// Notification is what a tracer's registration callback receives when
// events are registered or unregistered (spec §4.3).
type Notification int

const (
	NotifyInsert Notification = iota
	NotifyRemove
)

// TracerNotifyFunc is invoked once per EventDescription in a handle,
// in registration order, every time an EventsRegisterHandle is
// inserted or removed, and once per event of every existing handle
// when a tracer itself registers or unregisters (spec §4.3's replay
// rule).
type TracerNotifyFunc func(desc *EventDescription, n Notification, priv any)

// EventsRegisterHandle is the token RegisterEvents returns; pass it to
// UnregisterEvents to withdraw the same batch.
type EventsRegisterHandle struct {
	events []*EventDescription
	elem   *list.Element
	id     uuid.UUID
}

// ID returns a debug-facing label for log correlation; it is not the
// handle's identity (pointer equality is).
func (h *EventsRegisterHandle) ID() uuid.UUID { return h.id }

// TracerHandle is the token RegisterTracer returns.
type TracerHandle struct {
	fn   TracerNotifyFunc
	priv any
	elem *list.Element
	id   uuid.UUID
}

func (h *TracerHandle) ID() uuid.UUID { return h.id }

type registryState struct {
	lock          *reentrantMutex
	eventsList    *list.List // of *EventsRegisterHandle
	tracerList    *list.List // of *TracerHandle
}

var registry *registryState

func initRegistry() {
	registry = &registryState{
		lock:       newReentrantMutex(),
		eventsList: list.New(),
		tracerList: list.New(),
	}
}

// teardownRegistry unregisters everything still linked, mirroring
// what a well-behaved application would have done itself (spec §3.4).
func teardownRegistry() {
	registry.lock.Lock()
	defer registry.lock.Unlock()

	for e := registry.eventsList.Front(); e != nil; {
		next := e.Next()
		h := e.Value.(*EventsRegisterHandle)
		unregisterEventsLocked(h)
		e = next
	}
	for e := registry.tracerList.Front(); e != nil; {
		next := e.Next()
		h := e.Value.(*TracerHandle)
		unregisterTracerLocked(h)
		e = next
	}
}

// RegisterEvents validates and publishes a batch of event
// descriptions (spec §4.3). Every tracer already registered is
// notified with NotifyInsert, in order, before this call returns.
func RegisterEvents(events ...Describable) (*EventsRegisterHandle, error) {
	ensureInit()
	if finalized.Load() {
		return nil, wrapError(ErrorFinalized, ErrFinalized, "register events")
	}

	descs := make([]*EventDescription, 0, len(events))
	for _, e := range events {
		d := e.description()
		if err := ValidateFields(d.Fields); err != nil {
			return nil, wrapError(ErrorInvalid, err, "register event %s:%s", d.Provider, d.Name)
		}
		descs = append(descs, d)
	}

	registry.lock.Lock()
	defer registry.lock.Unlock()

	h := &EventsRegisterHandle{events: descs, id: uuid.New()}
	h.elem = registry.eventsList.PushBack(h)

	for _, d := range descs {
		notifyTracersLocked(d, NotifyInsert)
	}
	eventsRegisteredTotal.Add(float64(len(descs)))
	logger.Debug("side: registered events", eventsField(descs)...)
	return h, nil
}

// UnregisterEvents notifies every tracer with NotifyRemove, drains
// each event's callback array back to the empty sentinel, and unlinks
// the handle (spec §4.3).
func UnregisterEvents(h *EventsRegisterHandle) {
	registry.lock.Lock()
	defer registry.lock.Unlock()
	unregisterEventsLocked(h)
}

func unregisterEventsLocked(h *EventsRegisterHandle) {
	for _, d := range h.events {
		notifyTracersLocked(d, NotifyRemove)
		globalRCU.WaitGracePeriod()
		d.state.callbacks.Store(&emptyCallbacks)
		d.state.nrCallbacks.Store(0)
		d.state.enabled.Store(0)
	}
	registry.eventsList.Remove(h.elem)
	eventsRegisteredTotal.Sub(float64(len(h.events)))
}

// RegisterTracer links a notification callback and immediately
// replays every already-registered event through it as NotifyInsert,
// so a tracer attached late never misses an event (spec §4.3).
func RegisterTracer(fn TracerNotifyFunc, priv any) *TracerHandle {
	ensureInit()

	registry.lock.Lock()
	defer registry.lock.Unlock()

	h := &TracerHandle{fn: fn, priv: priv, id: uuid.New()}
	h.elem = registry.tracerList.PushBack(h)

	for e := registry.eventsList.Front(); e != nil; e = e.Next() {
		eh := e.Value.(*EventsRegisterHandle)
		for _, d := range eh.events {
			fn(d, NotifyInsert, priv)
		}
	}
	return h
}

// UnregisterTracer replays NotifyRemove for every existing events
// handle, then unlinks the tracer (spec §4.3).
func UnregisterTracer(h *TracerHandle) {
	registry.lock.Lock()
	defer registry.lock.Unlock()
	unregisterTracerLocked(h)
}

func unregisterTracerLocked(h *TracerHandle) {
	for e := registry.eventsList.Front(); e != nil; e = e.Next() {
		eh := e.Value.(*EventsRegisterHandle)
		for _, d := range eh.events {
			h.fn(d, NotifyRemove, h.priv)
		}
	}
	registry.tracerList.Remove(h.elem)
}

func notifyTracersLocked(d *EventDescription, n Notification) {
	for e := registry.tracerList.Front(); e != nil; e = e.Next() {
		th := e.Value.(*TracerHandle)
		th.fn(d, n, th.priv)
	}
}

// TracerCallbackRegister attaches fn to desc (spec §4.3's attach
// algorithm). priv is opaque and passed back on every invocation.
func TracerCallbackRegister(desc *EventDescription, fn CallbackFunc, priv any) error {
	if desc.IsVariadic() {
		return newError(ErrorInvalid, "event %s:%s is variadic, attach a VariadicCallbackFunc", desc.Provider, desc.Name)
	}
	return attach(desc, callbackEntry{fixedFn: fn, priv: priv})
}

// TracerCallbackUnregister detaches a previously attached fn/priv
// pair (spec §4.3's detach algorithm).
func TracerCallbackUnregister(desc *EventDescription, fn CallbackFunc, priv any) error {
	return detach(desc, func(e callbackEntry) bool {
		return sameFunc(e.fixedFn, fn) && e.priv == priv
	})
}

// VariadicCallbackRegister attaches fn to a variadic event.
func VariadicCallbackRegister(desc *EventDescription, fn VariadicCallbackFunc, priv any) error {
	if !desc.IsVariadic() {
		return newError(ErrorInvalid, "event %s:%s is not variadic, attach a CallbackFunc", desc.Provider, desc.Name)
	}
	return attach(desc, callbackEntry{variadicFn: fn, priv: priv})
}

// VariadicCallbackUnregister detaches a previously attached variadic
// fn/priv pair.
func VariadicCallbackUnregister(desc *EventDescription, fn VariadicCallbackFunc, priv any) error {
	return detach(desc, func(e callbackEntry) bool {
		return sameVariadicFunc(e.variadicFn, fn) && e.priv == priv
	})
}

func attach(desc *EventDescription, entry callbackEntry) error {
	if entry.fixedFn == nil && entry.variadicFn == nil {
		return newError(ErrorInvalid, "nil callback")
	}

	ensureInit()
	registry.lock.Lock()
	defer registry.lock.Unlock()

	if finalized.Load() {
		return wrapError(ErrorFinalized, ErrFinalized, "attach callback")
	}

	st := desc.state
	old := st.callbacks.Load()
	count := 0
	for _, e := range *old {
		if e.isEmpty() {
			break
		}
		count++
		if (e.fixedFn != nil && entry.fixedFn != nil && sameFunc(e.fixedFn, entry.fixedFn) && e.priv == entry.priv) ||
			(e.variadicFn != nil && entry.variadicFn != nil && sameVariadicFunc(e.variadicFn, entry.variadicFn) && e.priv == entry.priv) {
			return wrapError(ErrorAlreadyExists, ErrAlreadyExists, "callback already attached to %s:%s", desc.Provider, desc.Name)
		}
	}
	if count >= maxCallbacks {
		return newError(ErrorInvalid, "event %s:%s has reached the callback limit", desc.Provider, desc.Name)
	}

	next := make(callbackArray, count+2)
	copy(next, (*old)[:count])
	next[count] = entry

	st.callbacks.Store(&next)
	globalRCU.WaitGracePeriod()

	if st.nrCallbacks.Inc() == 1 {
		st.enabled.Store(1)
	}
	callbacksAttachedTotal.Inc()
	return nil
}

func detach(desc *EventDescription, match func(callbackEntry) bool) error {
	ensureInit()
	registry.lock.Lock()
	defer registry.lock.Unlock()

	st := desc.state
	old := st.callbacks.Load()
	idx := -1
	count := 0
	for i, e := range *old {
		if e.isEmpty() {
			break
		}
		count++
		if idx < 0 && match(e) {
			idx = i
		}
	}
	if idx < 0 {
		return wrapError(ErrorNotFound, ErrNotFound, "callback not attached to %s:%s", desc.Provider, desc.Name)
	}

	if count == 1 {
		st.callbacks.Store(&emptyCallbacks)
	} else {
		next := make(callbackArray, count)
		copy(next, (*old)[:idx])
		copy(next[idx:], (*old)[idx+1:count])
		next[count-1] = callbackEntry{}
		st.callbacks.Store(&next)
	}
	globalRCU.WaitGracePeriod()

	if st.nrCallbacks.Dec() == 0 {
		st.enabled.Store(0)
	}
	callbacksAttachedTotal.Dec()
	return nil
}

// sameFunc and sameVariadicFunc compare callbacks by code pointer,
// the closest Go analogue to the spec's C function-pointer equality
// for attach/detach duplicate detection. Go gives no portable
// func-to-func == operator, so reflect is the idiomatic way to get at
// the underlying entry point.
func sameFunc(a, b CallbackFunc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func sameVariadicFunc(a, b VariadicCallbackFunc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func eventsField(descs []*EventDescription) []zap.Field {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Provider + ":" + d.Name
	}
	return []zap.Field{zap.Strings("events", names)}
}
