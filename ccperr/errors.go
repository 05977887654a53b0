// Copyright 2024 tobyzxj
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ccperr is the single tagged error type shared by the wire codec
// and the DSL front-end. Every failure the agent can observe from either
// subsystem carries one of the Kind values below.
package ccperr

import (
	"errors"
	"fmt"
)

// Kind identifies which failure category produced an Error.
type Kind int

const (
	// Io wraps a failure propagated from the underlying transport.
	Io Kind = iota
	// Utf8 marks a byte-string payload that failed UTF-8 validation.
	Utf8
	// Malformed marks an unknown message tag, a truncated payload, or a
	// length field inconsistent with the variant being decoded.
	Malformed
	// Parse marks syntactically invalid DSL source.
	Parse
	// Reserved marks DSL source that introduces a "__"-prefixed Name.
	Reserved
	// StaticType marks DSL source that violates the conditional-binding
	// rule (a conditional bound to a temp register).
	StaticType
	// Incomplete marks DSL source that ends mid-expression.
	Incomplete
)

var kindNames = map[Kind]string{
	Io:         "Io",
	Utf8:       "Utf8",
	Malformed:  "Malformed",
	Parse:      "Parse",
	Reserved:   "Reserved",
	StaticType: "StaticType",
	Incomplete: "Incomplete",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the unified error value: a Kind tag, a human-readable reason,
// and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind with a formatted reason.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind to an underlying cause, preserving it for errors.As.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Of reports whether err (or anything it wraps) carries the given Kind.
func Of(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
