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
package affine

import (
	"testing"

	"github.com/consensys/go-witgen/pkg/field/goldilocks"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func fieldGen() gopter.Gen {
	return gen.UInt64Range(0, goldilocks.Modulus-1).Map(func(v uint64) goldilocks.Element {
		return goldilocks.New(v)
	})
}

// TestAffineExpression_AlgebraicInvariants checks the handful of identities
// the fixpoint solver leans on: that Add/Sub/Neg/MulByConstant behave like
// ordinary field arithmetic on the constant term, regardless of which
// witness ids happen to be attached.
func TestAffineExpression_AlgebraicInvariants(t *testing.T) {
	params := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(params)

	properties.Property("Add is commutative on constants", prop.ForAll(
		func(a, b goldilocks.Element) bool {
			lhs := FromConstant(a).Add(FromConstant(b))
			rhs := FromConstant(b).Add(FromConstant(a))

			av, _ := lhs.ConstantValue()
			bv, _ := rhs.ConstantValue()

			return av.Equal(bv)
		},
		fieldGen(), fieldGen(),
	))

	properties.Property("Sub is the inverse of Add", prop.ForAll(
		func(a, b goldilocks.Element) bool {
			e := FromConstant(a).Add(FromConstant(b)).Sub(FromConstant(b))

			v, ok := e.ConstantValue()
			return ok && v.Equal(a)
		},
		fieldGen(), fieldGen(),
	))

	properties.Property("Neg is involutive", prop.ForAll(
		func(a goldilocks.Element) bool {
			e := FromWitness[goldilocks.Element](0).Add(FromConstant(a))
			twice := e.Neg().Neg()

			return twice.constant.Equal(e.constant) && len(twice.coeffs) == len(e.coeffs)
		},
		fieldGen(),
	))

	properties.Property("MulByConstant distributes over Add", prop.ForAll(
		func(k, a, b goldilocks.Element) bool {
			lhs := FromConstant(a).Add(FromConstant(b)).MulByConstant(k)
			rhs := FromConstant(a).MulByConstant(k).Add(FromConstant(b).MulByConstant(k))

			lv, _ := lhs.ConstantValue()
			rv, _ := rhs.ConstantValue()

			return lv.Equal(rv)
		},
		fieldGen(), fieldGen(), fieldGen(),
	))

	properties.Property("MulByConstant by zero collapses to the zero constant", prop.ForAll(
		func(id uint, a goldilocks.Element) bool {
			e := FromWitness[goldilocks.Element](id % 8).Add(FromConstant(a)).MulByConstant(goldilocks.Zero)

			v, ok := e.ConstantValue()
			return ok && v.IsZero()
		},
		gen.UIntRange(0, 1<<20), fieldGen(),
	))

	properties.TestingRun(t)
}
