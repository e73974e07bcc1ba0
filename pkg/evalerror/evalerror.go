// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package evalerror defines the error kinds shared by the expression
// evaluator and the affine solver, following the InternalFailure idiom
// (schema/constraint/failure.go): small typed structs implementing error,
// rather than bare string errors, so callers can distinguish "no progress
// yet" from "genuinely unsatisfiable".
package evalerror

import "fmt"

// Kind classifies an Error.
type Kind int

// Supported kinds, per the error surface in the specification.
const (
	// PreviousValueUnknown means a current-row witness was read before it
	// was set; the fixpoint treats this as transient "no progress yet".
	PreviousValueUnknown Kind = iota
	// ConstraintUnsatisfiable means an identity reduces to a nonzero
	// constant, or bit constraints exclude every solution.
	ConstraintUnsatisfiable
	// Generic wraps any other unsolvable-expression or malformed-query
	// text.
	Generic
)

// Error is the evaluator/solver error type. Its Kind lets the fixpoint
// driver decide whether an error is expected transient noise (most of the
// time) or should be escalated.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// PreviousValueUnknownf constructs a PreviousValueUnknown error for the
// named witness column.
func PreviousValueUnknownf(name string) *Error {
	return &Error{Kind: PreviousValueUnknown, Message: fmt.Sprintf("%s is not yet known", name)}
}

// Unsatisfiable constructs a ConstraintUnsatisfiable error with the given
// detail text.
func Unsatisfiable(detail string) *Error {
	return &Error{Kind: ConstraintUnsatisfiable, Message: detail}
}

// Unsatisfiablef is the fmt.Sprintf-formatted form of Unsatisfiable.
func Unsatisfiablef(format string, args ...any) *Error {
	return Unsatisfiable(fmt.Sprintf(format, args...))
}

// Genericf constructs a Generic error with a formatted message.
func Genericf(format string, args ...any) *Error {
	return &Error{Kind: Generic, Message: fmt.Sprintf(format, args...)}
}

// Wrap re-wraps err (of any kind) with additional leading context, keeping
// its Kind — used when an identity's failure needs the identity's own text
// prepended (mirrors the original generator's "No progress on %s: %s").
func Wrap(context string, err error) *Error {
	if e, ok := err.(*Error); ok {
		return &Error{Kind: e.Kind, Message: fmt.Sprintf("%s:\n    %s", context, e.Message)}
	}

	return &Error{Kind: Generic, Message: fmt.Sprintf("%s:\n    %s", context, err.Error())}
}
