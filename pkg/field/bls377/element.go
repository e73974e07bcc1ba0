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

// Package bls377 provides the ~254-bit field parameterization, backed by the
// bls12-377 scalar field from gnark-crypto.
package bls377

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Element is a value in the bls12-377 scalar field. It wraps fr.Element
// (which uses an in-place, pointer-receiver API) behind the value-oriented
// field.Element[Element] contract used by the rest of this module.
type Element struct {
	inner fr.Element
}

// Zero is the additive identity.
var Zero = Element{}

// One is the multiplicative identity.
var One = New(1)

// New constructs an Element from a small unsigned integer.
func New(v uint64) Element {
	var e Element
	e.inner.SetUint64(v)
	return e
}

// FromBytes interprets buf as a big-endian encoded field element.
func FromBytes(buf []byte) Element {
	var e Element
	e.inner.SetBytes(buf)
	return e
}

// Add returns x+y.
func (x Element) Add(y Element) Element {
	var z Element
	z.inner.Add(&x.inner, &y.inner)
	return z
}

// Sub returns x-y.
func (x Element) Sub(y Element) Element {
	var z Element
	z.inner.Sub(&x.inner, &y.inner)
	return z
}

// Mul returns x*y.
func (x Element) Mul(y Element) Element {
	var z Element
	z.inner.Mul(&x.inner, &y.inner)
	return z
}

// Neg returns -x.
func (x Element) Neg() Element {
	var z Element
	z.inner.Neg(&x.inner)
	return z
}

// Double returns 2x.
func (x Element) Double() Element {
	var z Element
	z.inner.Double(&x.inner)
	return z
}

// Half returns x/2.
func (x Element) Half() Element {
	var z Element
	z.inner.Set(&x.inner)
	z.inner.Halve()
	return z
}

// Inverse returns x⁻¹, or zero if x is zero.
func (x Element) Inverse() Element {
	var z Element
	if x.inner.IsZero() {
		return z
	}

	z.inner.Inverse(&x.inner)

	return z
}

// IsZero reports whether x is the additive identity.
func (x Element) IsZero() bool {
	return x.inner.IsZero()
}

// Equal reports whether x and y denote the same field element.
func (x Element) Equal(y Element) bool {
	return x.inner.Equal(&y.inner)
}

// Cmp compares the canonical representatives of x and y.
func (x Element) Cmp(y Element) int {
	return x.inner.Cmp(&y.inner)
}

// Bytes returns the big-endian canonical encoding of x.
func (x Element) Bytes() []byte {
	b := x.inner.Bytes()
	return b[:]
}

// String renders the canonical decimal value of x.
func (x Element) String() string {
	return x.inner.String()
}

// One returns the multiplicative identity.
func (x Element) One() Element {
	return One
}

// Parse interprets s as a decimal integer literal, reduced mod the scalar
// field's characteristic.
func (x Element) Parse(s string) (Element, error) {
	var v big.Int
	if _, ok := v.SetString(s, 10); !ok {
		return Element{}, fmt.Errorf("invalid field element literal %q", s)
	}

	var z Element
	z.inner.SetBigInt(&v)

	return z, nil
}
