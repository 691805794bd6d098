// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// reentrantMutex is the Go stand-in for the recursive mutex spec §3.4
// requires: the registry invokes tracer notification callbacks with
// the lock held (spec §6.2), and a tracer is entitled to call back
// into tracer_callback_register/unregister from inside one. No
// dependency in the retrieval pack offers a reentrant lock for Go
// (the ecosystem convention leans the other way), so this is the
// module's other standard-library-only piece: it identifies the
// owning goroutine by parsing runtime.Stack's header line, the
// well-known workaround given Go deliberately does not expose a
// goroutine ID.
type reentrantMutex struct {
	sem   chan struct{}
	mu    sync.Mutex
	owner int64
	depth int
}

func newReentrantMutex() *reentrantMutex {
	return &reentrantMutex{sem: make(chan struct{}, 1)}
}

func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return -1
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}

func (m *reentrantMutex) Lock() {
	gid := currentGoroutineID()

	m.mu.Lock()
	if m.depth > 0 && m.owner == gid {
		m.depth++
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.sem <- struct{}{}

	m.mu.Lock()
	m.owner = gid
	m.depth = 1
	m.mu.Unlock()
}

func (m *reentrantMutex) Unlock() {
	gid := currentGoroutineID()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth == 0 || m.owner != gid {
		panic("side: Unlock of reentrant mutex not held by the calling goroutine")
	}
	m.depth--
	if m.depth == 0 {
		<-m.sem
	}
}
