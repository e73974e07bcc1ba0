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
package goldilocks

import (
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/consensys/go-witgen/pkg/util/assert"
)

func modulus() *big.Int {
	var m big.Int
	m.SetUint64(Modulus)

	return &m
}

func TestElement_AddMatchesBigInt(t *testing.T) {
	m := modulus()

	for range 10000 {
		a := rand.Uint64N(Modulus)
		b := rand.Uint64N(Modulus)

		var i, j big.Int
		i.SetUint64(a).Add(&i, j.SetUint64(b)).Mod(&i, m)

		got := New(a).Add(New(b))

		assert.Equal(t, i.Uint64(), uint64(got))
	}
}

func TestElement_MulMatchesBigInt(t *testing.T) {
	m := modulus()

	for range 10000 {
		a := rand.Uint64N(Modulus)
		b := rand.Uint64N(Modulus)

		var i, j big.Int
		i.SetUint64(a).Mul(&i, j.SetUint64(b)).Mod(&i, m)

		got := New(a).Mul(New(b))

		assert.Equal(t, i.Uint64(), uint64(got))
	}
}

func TestElement_InverseMatchesBigInt(t *testing.T) {
	m := modulus()

	for range 1000 {
		a := rand.Uint64N(Modulus-1) + 1

		var i big.Int
		i.SetUint64(a).ModInverse(&i, m)

		got := New(a).Inverse()

		assert.Equal(t, i.Uint64(), uint64(got), "inverse of %d", a)
	}
}

func TestElement_HalfMatchesBigInt(t *testing.T) {
	m := modulus()

	for range 1000 {
		a := rand.Uint64N(Modulus)

		var i, half big.Int
		half.SetUint64(2).ModInverse(&half, m)
		i.SetUint64(a).Mul(&i, &half).Mod(&i, m)

		halved := New(a).Half()

		assert.Equal(t, i.Uint64(), uint64(halved))
	}
}

func TestElement_NegIsAdditiveInverse(t *testing.T) {
	for range 1000 {
		a := New(rand.Uint64N(Modulus))
		assert.True(t, a.Add(a.Neg()).IsZero())
	}
}

func TestElement_ParseRoundTripsString(t *testing.T) {
	for _, v := range []uint64{0, 1, Modulus - 1, 123456789012345} {
		e := New(v)

		parsed, err := e.Parse(e.String())
		assert.Equal(t, nil, err)
		assert.True(t, parsed.Equal(e))
	}
}

func TestElement_ParseReducesOverflow(t *testing.T) {
	e, err := Zero.Parse("18446744069414584321") // Modulus itself
	assert.Equal(t, nil, err)
	assert.True(t, e.IsZero())
}
