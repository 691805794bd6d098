// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import (
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// LogLevel mirrors syslog's severity scale (spec §3.2).
type LogLevel uint8

const (
	LogEmerg LogLevel = iota
	LogAlert
	LogCrit
	LogErr
	LogWarning
	LogNotice
	LogInfo
	LogDebug
)

// EventFlags are the per-event declaration flags (spec §3.2).
type EventFlags uint32

const (
	// FlagVariadic marks an event as accepting a VarStruct of
	// dynamic fields in addition to its static Fields.
	FlagVariadic EventFlags = 1 << iota
)

// enabledCallbackMask covers the low bits of eventState.enabled, which
// the core sets to 1 while at least one callback is attached and to 0
// otherwise (the count itself is nrCallbacks). The top byte is
// reserved for a
// kernel-style writer that coordinates via atomic add/sub on bits
// this user-space core never sets (spec §3.3, §9 open question);
// it stays masked and is never redefined.
const (
	enabledCallbackMask = 0x00FFFFFF
	enabledKernelMask   = 0xFF000000
)

// CallbackFunc is the callback contract for a fixed (non-variadic)
// event (spec §6.1). key is 0 for ordinary live dispatch and non-zero
// for a statedump delivery (spec §4.5); this collapses the spec's
// separate Callback/StatedumpCallback signatures into one Go type.
type CallbackFunc func(desc *EventDescription, args ArgVec, key uint64, priv any)

// VariadicCallbackFunc is the callback contract for a variadic event.
type VariadicCallbackFunc func(desc *EventDescription, args ArgVec, v *VarStruct, key uint64, priv any)

type callbackEntry struct {
	fixedFn    CallbackFunc
	variadicFn VariadicCallbackFunc
	priv       any
}

func (c callbackEntry) isEmpty() bool { return c.fixedFn == nil && c.variadicFn == nil }

// callbackArray is the RCU-protected, NUL-terminated callback list
// (spec §3.3): the last entry is always empty, so iteration stops
// without a separate length check. emptyCallbacks is the shared
// sentinel every event starts with.
type callbackArray []callbackEntry

var emptyCallbacks = callbackArray{{}}

// eventState is an event's mutable state handle (spec §3.3).
type eventState struct {
	enabled   atomic.Uint32
	callbacks atomic.Pointer[callbackArray]
	nrCallbacks atomic.Uint32
	desc      *EventDescription
}

func newEventState() *eventState {
	st := &eventState{}
	st.callbacks.Store(&emptyCallbacks)
	return st
}

// layoutTag records the struct-size/version/extension-count prefix
// spec §3.2 requires so a newer producer can add type/attribute kinds
// a consumer predates and still know to treat them as unknown rather
// than corrupt (spec §6.3).
type layoutTag struct {
	structSize      uint32
	version         uint32
	extraTypeCodes  uint32
	extraAttrCodes  uint32
}

const currentStructSize = 1 // bumped whenever EventDescription gains a field
const currentABIVersion = 1

// EventDescription is an event's immutable-after-registration
// description (spec §3.2). Applications construct one with
// DescribeEvent or DescribeVariadicEvent, not by composing the
// struct literal directly, so the struct-size/version prefix always
// matches the code that produced it.
type EventDescription struct {
	layout   layoutTag
	Provider string
	Name     string
	Fields   []Field
	Attrs    []Attr
	Level    LogLevel
	Flags    EventFlags

	state *eventState
	id    uuid.UUID
}

func (e *EventDescription) IsVariadic() bool { return e.Flags&FlagVariadic != 0 }

// description lets both FixedEvent and VariadicEvent satisfy
// Describable through promotion, so RegisterEvents can accept either
// flavor in the same batch.
func (e *EventDescription) description() *EventDescription { return e }

// Describable is anything RegisterEvents can publish: FixedEvent,
// VariadicEvent, or a bare *EventDescription.
type Describable interface {
	description() *EventDescription
}

// FixedEvent is a handle to a non-variadic EventDescription; only it
// exposes Call. This is the Go realization of spec §9's open-question
// recommendation to tighten the variadic/non-variadic boundary at the
// type level instead of only at attach time.
type FixedEvent struct{ *EventDescription }

// VariadicEvent is a handle to a variadic EventDescription; only it
// exposes CallVariadic.
type VariadicEvent struct{ *EventDescription }

func describeEvent(provider, name string, fields []Field, attrs []Attr, level LogLevel, flags EventFlags) *EventDescription {
	return &EventDescription{
		layout:   layoutTag{structSize: currentStructSize, version: currentABIVersion},
		Provider: provider,
		Name:     name,
		Fields:   fields,
		Attrs:    attrs,
		Level:    level,
		Flags:    flags,
		state:    newEventState(),
		id:       uuid.New(),
	}
}

// DescribeEvent declares a fixed event (spec §4.1's describe_event
// entry point, restricted to the non-variadic flavor).
func DescribeEvent(provider, name string, fields []Field, attrs []Attr, level LogLevel) FixedEvent {
	return FixedEvent{describeEvent(provider, name, fields, attrs, level, 0)}
}

// DescribeVariadicEvent declares a variadic event: FlagVariadic is
// set automatically.
func DescribeVariadicEvent(provider, name string, fields []Field, attrs []Attr, level LogLevel) VariadicEvent {
	return VariadicEvent{describeEvent(provider, name, fields, attrs, level, FlagVariadic)}
}
