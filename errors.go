// Copyright 2024 The go-side Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package side

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the failures the registration APIs can return.
// Dispatch APIs never return an ErrorKind: an Arg/Type mismatch there
// is a programming error and aborts the process (spec §7).
type ErrorKind uint8

const (
	// ErrorOK is never returned as an error; it exists so the zero
	// value of ErrorKind reads as "no failure" in logs.
	ErrorOK ErrorKind = iota
	// ErrorInvalid covers argument misuse: a nil callback, a
	// variadic callback attached to a fixed event or vice versa,
	// or the per-event callback limit being reached.
	ErrorInvalid
	// ErrorAlreadyExists is returned by attach when the exact
	// (fn, priv) pair is already registered.
	ErrorAlreadyExists
	// ErrorNoMemory signals allocation failure building a new
	// callback array.
	ErrorNoMemory
	// ErrorNotFound is returned by detach when the (fn, priv) pair
	// is not currently attached.
	ErrorNotFound
	// ErrorFinalized is returned once the library has been torn
	// down; a finalized library is indistinguishable to callers
	// from one with no attached callbacks.
	ErrorFinalized
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorOK:
		return "ok"
	case ErrorInvalid:
		return "invalid"
	case ErrorAlreadyExists:
		return "already_exists"
	case ErrorNoMemory:
		return "no_memory"
	case ErrorNotFound:
		return "not_found"
	case ErrorFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by side's registration
// APIs. It carries a Kind so callers can branch on it without string
// matching, and wraps an optional cause via github.com/pkg/errors so
// a stack trace survives to the first log site.
type Error struct {
	Kind ErrorKind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("side: %s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("side: %s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same Kind, so
// callers can write errors.Is(err, side.ErrFinalized).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: errors.WithStack(cause)}
}

// Sentinel errors for the common Is() comparisons; each carries only
// a Kind, so errors.Is(err, ErrNotFound) works regardless of message.
var (
	ErrInvalid      = &Error{Kind: ErrorInvalid, msg: "invalid"}
	ErrAlreadyExists = &Error{Kind: ErrorAlreadyExists, msg: "already exists"}
	ErrNoMemory     = &Error{Kind: ErrorNoMemory, msg: "no memory"}
	ErrNotFound     = &Error{Kind: ErrorNotFound, msg: "not found"}
	ErrFinalized    = &Error{Kind: ErrorFinalized, msg: "finalized"}
)
