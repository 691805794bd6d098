// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import (
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/efficios/go-side/internal/rcu"
)

// logger is the package's diagnostic sink (SPEC_FULL.md §1): nop by
// default so a program that never calls SetLogger pays nothing for
// it, never touched from the dispatch fast path.
var logger = zap.NewNop()

// SetLogger installs l as the logger used by the registry and
// statedump engine. Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Option configures the core at Init time. The construction-options
// idiom stands in for the config file a library like this has no use
// for (SPEC_FULL.md §1): the only knob is which logger to use.
type Option func()

// WithLogger returns an Option installing l as the package logger.
func WithLogger(l *zap.Logger) Option {
	return func() { SetLogger(l) }
}

// Init applies opts and brings up core state immediately instead of
// waiting for the first registration call. Calling it is optional:
// the event, tracer and statedump-request registration calls, callback
// attach/detach and RequestStatedump all call ensureInit on their own.
func Init(opts ...Option) {
	ensureInit()
	for _, opt := range opts {
		opt()
	}
}

var (
	initOnce  sync.Once
	finalized atomic.Bool

	globalRCU *rcu.State
)

// ensureInit lazily, idempotently brings up process-wide state on
// first core entry (spec §3.4). It is cheap to call on every public
// entry point: sync.Once makes repeat calls a single atomic load.
func ensureInit() {
	initOnce.Do(func() {
		globalRCU = rcu.New()
		initRegistry()
		initStatedump()
		logger.Debug("side: core initialized")
	})
}

// Teardown runs once: it unregisters any remaining events and
// tracers and marks the library finalized. Afterwards RegisterEvents
// and callback attach return an ErrFinalized error, and every event it
// unregistered has no callbacks left, so calling it dispatches to
// nobody (spec §3.4). It is meant to
// run at process shutdown; most programs never need to call it
// explicitly.
func Teardown() {
	ensureInit()
	if !finalized.CompareAndSwap(false, true) {
		return
	}
	teardownRegistry()
	teardownStatedump()
	logger.Debug("side: core torn down")
}
