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

// Package field defines the arithmetic contract shared by the two supported
// prime-field parameterizations (a ~254-bit field and a 64-bit field), so
// that the witness generator can be written once and instantiated over
// either.
package field

// Element of a prime-order field. Implementations are immutable value
// types: every operation returns a new Operand rather than mutating the
// receiver, which keeps the affine-expression algebra (which routinely
// aliases the same element across many terms) straightforward to reason
// about.
type Element[Operand any] interface {
	// Add returns x+y.
	Add(y Operand) Operand
	// Sub returns x-y.
	Sub(y Operand) Operand
	// Mul returns x*y.
	Mul(y Operand) Operand
	// Neg returns -x.
	Neg() Operand
	// Double returns 2x.
	Double() Operand
	// Half returns x/2.
	Half() Operand
	// Inverse returns x⁻¹, or the zero element if x is zero.
	Inverse() Operand
	// IsZero reports whether x is the additive identity.
	IsZero() bool
	// Equal reports whether x and y denote the same field element.
	Equal(y Operand) bool
	// Cmp returns -1, 0 or 1 as x is numerically less than, equal to, or
	// greater than y, using the canonical (non-Montgomery) representative.
	// No code in this module calls it; it is never used for arithmetic.
	Cmp(y Operand) int
	// Bytes returns the big-endian canonical encoding of x.
	Bytes() []byte
	// String renders the canonical decimal value of x.
	String() string
	// One returns the multiplicative identity. Defined as a method (rather
	// than a free function) so generic code holding only a value of type
	// Operand, with no named constructor in scope, can still obtain it.
	One() Operand
	// Parse interprets s as a decimal integer literal and reduces it
	// modulo the field's characteristic. The receiver's own value is
	// irrelevant; this exists as a method for the same reason as One.
	Parse(s string) (Operand, error)
}

// FromUint64 constructs operand(s) from a small unsigned integer. Kept as a
// free function per implementation (rather than a method, since it has no
// receiver to dispatch on) mirroring the "New"/"SetUint64" constructors used
// throughout the pack.
type FromUint64[Operand any] func(uint64) Operand
