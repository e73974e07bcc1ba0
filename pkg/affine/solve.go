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
	"github.com/consensys/go-witgen/pkg/bitconstraint"
	"github.com/consensys/go-witgen/pkg/evalerror"
	"github.com/consensys/go-witgen/pkg/field"
)

// ConstraintKind distinguishes the two things solving an expression can
// teach us about a witness.
type ConstraintKind int

// Supported constraint kinds.
const (
	// Assignment means the witness now has a concrete value.
	Assignment ConstraintKind = iota
	// BitConstraintLearned means the witness's range has narrowed, but it
	// is not yet concretely known.
	BitConstraintLearned
)

// Constraint is one fact learned about a single witness id by solving an
// expression: either a concrete value, or a narrowed range.
type Constraint[F field.Element[F]] struct {
	ID    uint
	Kind  ConstraintKind
	Value F                          // meaningful iff Kind == Assignment
	Bit   bitconstraint.BitConstraint // meaningful iff Kind == BitConstraintLearned
}

// SolveWithBitConstraints attempts to derive new facts from "e = 0", given
// whatever is already known about the witnesses appearing in e:
//
//   - a single remaining term c*w + k = 0 is solved directly: w = -k/c;
//   - a nonzero constant is unsatisfiable;
//   - multiple terms attempt bit-constraint narrowing (see narrow below),
//     which may produce zero or more BitConstraintLearned facts, or none at
//     all ("no progress" is not an error).
func (e Expression[F]) SolveWithBitConstraints(bcs bitconstraint.Set) ([]Constraint[F], error) {
	if k, ok := e.ConstantValue(); ok {
		if k.IsZero() {
			return nil, nil
		}

		return nil, evalerror.Unsatisfiablef("constraint is invalid (%s != 0)", k.String())
	}

	if len(e.coeffs) == 1 {
		for id, c := range e.coeffs {
			// c*w + k = 0  =>  w = -k * c^-1
			value := e.constant.Neg().Mul(c.Inverse())
			return []Constraint[F]{{ID: id, Kind: Assignment, Value: value}}, nil
		}
	}

	return e.narrow(bcs)
}

// narrow implements the multi-term case: when every term except one is
// already range-constrained and that one remaining term has coefficient
// ±1, the equation pins the free witness into an interval; if that
// interval fits within [0, 2^w) for some w, we learn a BitConstraint of
// that width. This is the common "unconstrained accumulator = sum of known
// bit columns" shape (e.g. a byte decomposition). Any other shape makes no
// progress and returns (nil, nil) rather than guessing.
func (e Expression[F]) narrow(bcs bitconstraint.Set) ([]Constraint[F], error) {
	var (
		knownMin, knownMax = e.constant, e.constant
		freeID             uint
		freeCoeff          F
		freeCount          int
	)

	for _, id := range e.sortedIDs() {
		c := e.coeffs[id]

		bc, ok := bcs.BitConstraint(id)
		if !ok {
			freeCount++
			freeID = id
			freeCoeff = c

			continue
		}

		lo, hi := rangeContribution(c, bc)
		knownMin = knownMin.Add(lo)
		knownMax = knownMax.Add(hi)
	}

	if freeCount != 1 {
		return nil, nil
	}

	if freeCoeff.Equal(freeCoeff.One()) {
		// w + rest = 0: negate so the free term has coefficient -1.
		return e.Neg().narrow(bcs)
	}

	if !freeCoeff.Equal(freeCoeff.One().Neg()) {
		return nil, nil
	}

	// -w + rest = 0, so w itself ranges over knownMin..knownMax.
	width, ok := intervalWidth(knownMin, knownMax)
	if !ok {
		return nil, nil
	}

	return []Constraint[F]{{ID: freeID, Kind: BitConstraintLearned, Bit: bitconstraint.FromWidth(width)}}, nil
}

// rangeContribution returns the [min, max] field values c*w can take as w
// ranges over bc's admissible values 0..bc.Max(), assuming c is treated as
// a non-negative field element (coefficients arising from bit-decomposition
// identities are always small positive powers of two in practice).
func rangeContribution[F field.Element[F]](c F, bc bitconstraint.BitConstraint) (F, F) {
	var zero F
	return zero, scalarMulByMax(c, bc.Width())
}

// scalarMulByMax computes c*(2^width - 1) using width doublings rather than
// a loop over the (potentially huge) max value itself.
func scalarMulByMax[F field.Element[F]](c F, width uint) F {
	pow := c
	for i := uint(0); i < width; i++ {
		pow = pow.Double()
	}

	return pow.Sub(c)
}

// intervalWidth returns the smallest bit width w such that every value in
// [lo, hi] (inclusive, as unsigned field representatives) fits in w bits,
// when lo is zero; otherwise reports no progress. A real implementation
// would reason about the field's canonical ordering in general; we only
// handle the lo == 0 case, which is the one the narrowing rule above can
// actually produce (rangeContribution always anchors one end at zero).
func intervalWidth[F field.Element[F]](lo, hi F) (uint, bool) {
	var zero F
	if !lo.Equal(zero) {
		return 0, false
	}

	width := uint(0)
	bound := uint64(1)

	for bound-1 < maxUint64Bound(hi) && width < 64 {
		width++
		bound <<= 1
	}

	return width, true
}

// maxUint64Bound extracts hi as a uint64 via its canonical byte encoding,
// for width computation. Only the low 8 bytes are consulted: this
// narrowing rule is only ever invoked on bit-constrained sums, whose range
// never approaches the field's full modulus.
func maxUint64Bound[F field.Element[F]](hi F) uint64 {
	b := hi.Bytes()

	var v uint64

	for _, by := range b {
		v = v<<8 | uint64(by)
	}

	return v
}
