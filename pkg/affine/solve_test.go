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

	"github.com/consensys/go-witgen/pkg/bitconstraint"
	"github.com/consensys/go-witgen/pkg/evalerror"
	"github.com/consensys/go-witgen/pkg/field/goldilocks"
	"github.com/consensys/go-witgen/pkg/util/assert"
)

type noConstraints struct{}

func (noConstraints) BitConstraint(uint) (bitconstraint.BitConstraint, bool) {
	return bitconstraint.BitConstraint{}, false
}

func TestSolveWithBitConstraints_SingleTermSolvesForWitness(t *testing.T) {
	// w - 5 = 0  =>  w = 5
	e := FromWitness[goldilocks.Element](3).Sub(FromConstant(goldilocks.New(5)))

	constraints, err := e.SolveWithBitConstraints(noConstraints{})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(constraints))
	assert.Equal(t, Assignment, constraints[0].Kind)
	assert.Equal(t, uint(3), constraints[0].ID)
	assert.True(t, constraints[0].Value.Equal(goldilocks.New(5)))
}

func TestSolveWithBitConstraints_ZeroConstantMakesNoProgress(t *testing.T) {
	e := FromConstant(goldilocks.Zero)

	constraints, err := e.SolveWithBitConstraints(noConstraints{})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(constraints))
}

func TestSolveWithBitConstraints_NonzeroConstantIsUnsatisfiable(t *testing.T) {
	e := FromConstant(goldilocks.New(7))

	_, err := e.SolveWithBitConstraints(noConstraints{})
	if err == nil {
		t.Fatal("expected an unsatisfiability error")
	}

	ee, ok := err.(*evalerror.Error)
	assert.True(t, ok)
	assert.Equal(t, evalerror.ConstraintUnsatisfiable, ee.Kind)
}

type fixedConstraints map[uint]bitconstraint.BitConstraint

func (f fixedConstraints) BitConstraint(id uint) (bitconstraint.BitConstraint, bool) {
	bc, ok := f[id]
	return bc, ok
}

func TestSolveWithBitConstraints_NarrowsFreeTermFromKnownBits(t *testing.T) {
	// byte0 + 256*byte1 - acc = 0, with byte0/byte1 each known to fit in 8
	// bits: acc must fit in 16 bits.
	byte0 := FromWitness[goldilocks.Element](0)
	byte1 := FromWitness[goldilocks.Element](1)
	acc := FromWitness[goldilocks.Element](2)

	sum := byte1.MulByConstant(goldilocks.New(256)).Add(byte0)
	e := sum.Sub(acc)

	bcs := fixedConstraints{
		0: bitconstraint.FromWidth(8),
		1: bitconstraint.FromWidth(8),
	}

	constraints, err := e.SolveWithBitConstraints(bcs)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(constraints))
	assert.Equal(t, BitConstraintLearned, constraints[0].Kind)
	assert.Equal(t, uint(2), constraints[0].ID)
	assert.Equal(t, uint(16), constraints[0].Bit.Width())
}

func TestSolveWithBitConstraints_MultipleUnknownsMakeNoProgress(t *testing.T) {
	a := FromWitness[goldilocks.Element](0)
	b := FromWitness[goldilocks.Element](1)

	e := a.Add(b).Sub(FromConstant(goldilocks.New(10)))

	constraints, err := e.SolveWithBitConstraints(noConstraints{})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(constraints))
}
