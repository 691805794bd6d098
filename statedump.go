// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import (
	"container/list"
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatedumpMode selects how a registered request's DumpFunc gets
// invoked when a statedump is requested (spec §4.5).
type StatedumpMode int

const (
	// ModePollingThread means the application's own thread drives
	// invocation by calling the handle's Poll method.
	ModePollingThread StatedumpMode = iota
	// ModeAgentThread means a core-owned worker goroutine invokes
	// the callback asynchronously.
	ModeAgentThread
)

func (m StatedumpMode) String() string {
	if m == ModeAgentThread {
		return "agent-thread"
	}
	return "polling-thread"
}

// DumpFunc replays an application's current state for the given
// statedump key by calling the statedump flavor of Call/CallVariadic
// on whichever events it chooses (spec §4.5).
type DumpFunc func(key uint64)

// StatedumpRequestHandle is what RegisterStatedumpRequest returns.
type StatedumpRequestHandle struct {
	name string
	fn   DumpFunc
	mode StatedumpMode

	elem    *list.Element
	wg      sync.WaitGroup
	pending chan uint64
}

// Poll invokes DumpFunc synchronously for every statedump key queued
// against this handle since the last call. It is a no-op for
// AgentThread-mode handles.
func (h *StatedumpRequestHandle) Poll() {
	if h.mode != ModePollingThread {
		return
	}
	for {
		select {
		case key := <-h.pending:
			h.invoke(key)
		default:
			return
		}
	}
}

func (h *StatedumpRequestHandle) invoke(key uint64) {
	h.wg.Add(1)
	defer h.wg.Done()
	h.fn(key)
	statedumpCompleteOne(key)
}

type statedumpRun struct {
	remaining int
	done      chan struct{}
}

type agentJob struct {
	handle *StatedumpRequestHandle
	key    uint64
}

type statedumpState struct {
	requests *list.List // of *StatedumpRequestHandle
	nextKey  atomic.Uint64
	runs     map[uint64]*statedumpRun

	agentOnce   sync.Once
	agentJobs   chan agentJob
	agentGroup  *errgroup.Group
	agentCancel context.CancelFunc
}

var statedump *statedumpState

func initStatedump() {
	statedump = &statedumpState{
		requests: list.New(),
		runs:     make(map[uint64]*statedumpRun),
	}
}

// teardownStatedump unregisters every remaining request and stops the
// agent goroutine if it was ever started (spec §3.4, §5).
func teardownStatedump() {
	registry.lock.Lock()
	handles := make([]*StatedumpRequestHandle, 0, statedump.requests.Len())
	for e := statedump.requests.Front(); e != nil; e = e.Next() {
		handles = append(handles, e.Value.(*StatedumpRequestHandle))
	}
	registry.lock.Unlock()

	for _, h := range handles {
		UnregisterStatedumpRequest(h)
	}

	if statedump.agentCancel != nil {
		statedump.agentCancel()
		statedump.agentGroup.Wait()
	}
}

// RegisterStatedumpRequest registers fn to be invoked once per
// RequestStatedump call, in the style mode selects (spec §4.5).
func RegisterStatedumpRequest(name string, fn DumpFunc, mode StatedumpMode) *StatedumpRequestHandle {
	ensureInit()

	registry.lock.Lock()
	defer registry.lock.Unlock()

	h := &StatedumpRequestHandle{
		name:    name,
		fn:      fn,
		mode:    mode,
		pending: make(chan uint64, 16),
	}
	h.elem = statedump.requests.PushBack(h)
	statedumpRequestsTotal.Inc()
	logger.Debug("side: registered statedump request", zap.String("name", name), zap.Stringer("mode", mode))
	return h
}

// UnregisterStatedumpRequest unlinks h and waits for any in-flight
// invocation of its callback to return (spec §4.5).
func UnregisterStatedumpRequest(h *StatedumpRequestHandle) {
	registry.lock.Lock()
	if h.elem != nil {
		statedump.requests.Remove(h.elem)
		h.elem = nil
	}
	registry.lock.Unlock()

	h.wg.Wait()
	statedumpRequestsTotal.Dec()
}

// RequestStatedump assigns a fresh, monotonic key and schedules a
// call to every registered request's DumpFunc under that key (spec
// §4.5). It returns immediately; use StatedumpWait to block for
// completion.
func RequestStatedump() uint64 {
	ensureInit()

	registry.lock.Lock()
	key := statedump.nextKey.Inc()

	handles := make([]*StatedumpRequestHandle, 0, statedump.requests.Len())
	for e := statedump.requests.Front(); e != nil; e = e.Next() {
		handles = append(handles, e.Value.(*StatedumpRequestHandle))
	}

	run := &statedumpRun{remaining: len(handles), done: make(chan struct{})}
	statedump.runs[key] = run
	registry.lock.Unlock()

	if len(handles) == 0 {
		close(run.done)
		return key
	}

	for _, h := range handles {
		switch h.mode {
		case ModePollingThread:
			h.pending <- key
		case ModeAgentThread:
			ensureStatedumpAgent()
			statedump.agentJobs <- agentJob{handle: h, key: key}
		}
	}
	return key
}

// StatedumpWait blocks until every handle registered at the time of
// the matching RequestStatedump call has returned from its DumpFunc
// for that key (spec §4.5's completion rule).
func StatedumpWait(key uint64) {
	registry.lock.Lock()
	run, ok := statedump.runs[key]
	registry.lock.Unlock()
	if !ok {
		return
	}
	<-run.done
}

func statedumpCompleteOne(key uint64) {
	registry.lock.Lock()
	defer registry.lock.Unlock()

	run, ok := statedump.runs[key]
	if !ok {
		return
	}
	run.remaining--
	if run.remaining == 0 {
		delete(statedump.runs, key)
		close(run.done)
		statedumpRunsTotal.Inc()
	}
}

// ensureStatedumpAgent starts the single core-owned worker goroutine
// on first AgentThread-mode use (spec §5: "the core itself spawns at
// most one thread").
func ensureStatedumpAgent() {
	statedump.agentOnce.Do(func() {
		statedump.agentJobs = make(chan agentJob, 64)
		ctx, cancel := context.WithCancel(context.Background())
		statedump.agentCancel = cancel

		g, gctx := errgroup.WithContext(ctx)
		statedump.agentGroup = g
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case job := <-statedump.agentJobs:
					job.handle.invoke(job.key)
				}
			}
		})
	})
}
