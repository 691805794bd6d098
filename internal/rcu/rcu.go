// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rcu implements the two-phase flip grace-period mechanism
// spec §4.2 describes: a wait-free read side (ReadLock/ReadUnlock)
// and a writer-side WaitGracePeriod that blocks until every read
// critical section begun before the call has completed.
//
// Go has no restartable-sequence or getcpu() primitive, and none of
// the example repos retrieved for this project vendor one in pure
// Go, so the "per-CPU" cells the spec calls for are approximated by
// a fixed shard table indexed with math/rand/v2's package-level
// IntN — a fast, allocation-free, per-P source since Go 1.22, the
// closest available stand-in without cgo or assembly. This is the
// one place in the module left on the standard library out of
// necessity rather than preference; see DESIGN.md.
package rcu

import (
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const pollInterval = 10 * time.Millisecond

// shard holds one table entry's begin/end pair for both periods.
// Each field is independently cache-line padded in spirit by simply
// being its own atomic word; Go gives no portable way to force
// alignment padding without unsafe trickery the rest of this module
// avoids.
type shard struct {
	begin [2]atomic.Uint64
	end   [2]atomic.Uint64
}

// State is one RCU domain. The core keeps exactly one process-wide
// State (spec §3.4); tests construct their own to exercise it in
// isolation.
type State struct {
	period atomic.Uint32
	shards []shard
	gpLock sync.Mutex
}

// New creates an RCU domain sized to the current GOMAXPROCS, which is
// the closest available proxy for "number of CPUs this program can
// concurrently run readers on".
func New() *State {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return &State{shards: make([]shard, n)}
}

// Token identifies the shard and period a ReadLock call used, so the
// matching ReadUnlock increments the same cell.
type Token struct {
	shard  int
	period uint32
}

// ReadLock begins a read-side critical section (spec §4.2 "Read
// path" steps 1-3). It never allocates and never blocks.
func (s *State) ReadLock() Token {
	p := s.period.Load()
	idx := rand.IntN(len(s.shards))
	s.shards[idx].begin[p].Add(1)
	return Token{shard: idx, period: p}
}

// ReadUnlock ends the critical section started by the matching
// ReadLock call (spec §4.2 "Read path" step 4: exit barrier then
// seq-cst increment of end[period]).
func (s *State) ReadUnlock(tok Token) {
	s.shards[tok.shard].end[tok.period].Add(1)
}

// WaitGracePeriod blocks until every read critical section begun
// before this call has completed (spec §4.2 "Write path"). It polls
// at pollInterval when readers are still draining.
func (s *State) WaitGracePeriod() {
	if s.activeReaders(0) == 0 && s.activeReaders(1) == 0 {
		return
	}

	s.gpLock.Lock()
	defer s.gpLock.Unlock()

	prev := s.period.Load()
	s.waitDrain(prev)
	s.period.Store(prev ^ 1)
	s.waitDrain(prev ^ 1)
}

// activeReaders computes sum_begin[p] - sum_end[p], reading all ends
// before all begins (spec §4.2 step 2) so a reader observed mid
// critical-section is guaranteed to have already incremented begin.
func (s *State) activeReaders(p uint32) int64 {
	var sumEnd, sumBegin int64
	for i := range s.shards {
		sumEnd += int64(s.shards[i].end[p].Load())
	}
	for i := range s.shards {
		sumBegin += int64(s.shards[i].begin[p].Load())
	}
	return sumBegin - sumEnd
}

func (s *State) waitDrain(p uint32) {
	for s.activeReaders(p) != 0 {
		time.Sleep(pollInterval)
	}
}

// AssignPointer and Dereference name the release-store/consume-load
// discipline spec §4.2 calls "the only memory-order contracts tracers
// rely on". atomic.Pointer already provides a strictly stronger
// (sequentially consistent) ordering, so these are thin, documenting
// wrappers rather than new synchronization.
func AssignPointer[T any](p *atomic.Pointer[T], v *T) { p.Store(v) }

func Dereference[T any](p *atomic.Pointer[T]) *T { return p.Load() }
