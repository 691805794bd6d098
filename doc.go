// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package side is an in-process, user-space instrumentation
// framework: applications declare typed events at compile time, and
// one or more tracers attach callbacks at runtime that receive every
// enabled invocation together with strongly typed argument values.
//
// The package is entirely library-resident: there is no kernel
// component and no separate daemon. Dispatch through a disabled event
// costs one relaxed atomic load and a branch; enabling an event swaps
// in a new, RCU-published callback array so readers never take a
// lock.
package side // import "github.com/efficios/go-side"
