// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

// Call dispatches a fixed (non-variadic) event to every attached
// callback (spec §4.4's fixed call sequence, live-dispatch flavor:
// key is always 0).
func (e FixedEvent) Call(args ArgVec) {
	dispatchFixed(e.EventDescription, args, 0)
}

// CallVariadic dispatches a variadic event, additionally carrying the
// dynamic struct (spec §4.4's variadic path).
func (e VariadicEvent) CallVariadic(args ArgVec, v *VarStruct) {
	dispatchVariadic(e.EventDescription, args, v, 0)
}

// CallStatedump is the statedump flavor of Call: key must be non-zero
// (spec §4.5's "key == 0 is reserved for live events").
func (e FixedEvent) CallStatedump(args ArgVec, key uint64) error {
	if key == 0 {
		return newError(ErrorInvalid, "statedump call with reserved key 0 on %s:%s", e.Provider, e.Name)
	}
	dispatchFixed(e.EventDescription, args, key)
	return nil
}

// CallVariadicStatedump is the statedump flavor of CallVariadic.
func (e VariadicEvent) CallVariadicStatedump(args ArgVec, v *VarStruct, key uint64) error {
	if key == 0 {
		return newError(ErrorInvalid, "statedump call with reserved key 0 on %s:%s", e.Provider, e.Name)
	}
	dispatchVariadic(e.EventDescription, args, v, key)
	return nil
}

// dispatchFixed implements spec §4.4 steps 1-7. The disabled check is
// a single relaxed load, one compare, one branch; nothing below it
// runs unless a callback is attached.
func dispatchFixed(desc *EventDescription, args ArgVec, key uint64) {
	st := desc.state
	enabled := st.enabled.Load()
	if enabled == 0 {
		return
	}
	if enabled&enabledKernelMask != 0 {
		invokeKernelWriteHook(desc, args)
	}

	tok := globalRCU.ReadLock()
	cbs := st.callbacks.Load()
	for _, e := range *cbs {
		if e.isEmpty() {
			break
		}
		if e.fixedFn != nil {
			e.fixedFn(desc, args, key, e.priv)
		}
	}
	globalRCU.ReadUnlock(tok)
}

func dispatchVariadic(desc *EventDescription, args ArgVec, v *VarStruct, key uint64) {
	st := desc.state
	enabled := st.enabled.Load()
	if enabled == 0 {
		return
	}
	if enabled&enabledKernelMask != 0 {
		invokeKernelWriteHook(desc, args)
	}

	tok := globalRCU.ReadLock()
	cbs := st.callbacks.Load()
	for _, e := range *cbs {
		if e.isEmpty() {
			break
		}
		if e.variadicFn != nil {
			e.variadicFn(desc, args, v, key, e.priv)
		}
	}
	globalRCU.ReadUnlock(tok)
}

// invokeKernelWriteHook is the reserved hook for the kernel-style
// writer spec §3.3/§9 carves the top byte of enabled out for. The
// user-space core never sets those bits itself, so this is a no-op
// kept only so the contract has somewhere to live.
func invokeKernelWriteHook(desc *EventDescription, args ArgVec) {}
