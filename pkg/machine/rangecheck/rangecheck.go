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

// Package rangecheck implements a Machine that claims plookup identities
// against a named sentinel selector column (e.g. "byte_table",
// "nibble_table") and resolves them by bit-width reasoning rather than by
// consulting a precomputed table — the Machine-side counterpart to
// fixedlookup.FixedLookup, grounded on the Bitwidth range constraint
// (schema/constraint/ranged.Constraint) in the teacher codebase.
package rangecheck

import (
	"github.com/consensys/go-witgen/pkg/affine"
	"github.com/consensys/go-witgen/pkg/bitconstraint"
	"github.com/consensys/go-witgen/pkg/evalerror"
	"github.com/consensys/go-witgen/pkg/field"
	"github.com/consensys/go-witgen/pkg/fixedlookup"
	"github.com/consensys/go-witgen/pkg/pil"
)

// Machine claims any Plookup/Permutation identity whose right-hand side is
// exactly the single fixed column named Selector, and whose left-hand
// tuple has exactly one expression. Matched identities narrow the
// corresponding witness to Bitwidth bits when unknown, and verify
// membership (0 <= v < 2^Bitwidth) when the value is already concrete.
type Machine[F field.Element[F]] struct {
	Selector string
	Bitwidth uint
}

// New constructs a range-check Machine claiming lookups against the named
// sentinel column.
func New[F field.Element[F]](selector string, bitwidth uint) *Machine[F] {
	return &Machine[F]{Selector: selector, Bitwidth: bitwidth}
}

// ProcessPlookup implements machine.Machine.
func (m *Machine[F]) ProcessPlookup(
	_ *pil.FixedData[F],
	_ *fixedlookup.FixedLookup[F],
	_ pil.IdentityKind,
	left []affine.Expression[F],
	right pil.SelectedExpressions,
) *fixedlookup.EvalResult[F] {
	if !m.claims(right) || len(left) != 1 {
		return nil
	}

	e := left[0]

	if v, ok := e.ConstantValue(); ok {
		if !withinBitwidth(v, m.Bitwidth) {
			return fixedlookup.Failed[F](bitwidthError(v, m.Bitwidth))
		}

		return fixedlookup.Ok[F](nil)
	}

	// Only a bare symbolic witness reference (e == 1*w) is narrowed; any
	// other symbolic expression makes no progress.
	id := e.SoleWitnessID()
	if rest, ok := e.Sub(affine.FromWitness[F](id)).ConstantValue(); !ok || !rest.IsZero() {
		return fixedlookup.Ok[F](nil)
	}

	return fixedlookup.Ok[F]([]affine.Constraint[F]{{
		ID:   id,
		Kind: affine.BitConstraintLearned,
		Bit:  bitconstraint.FromWidth(m.Bitwidth),
	}})
}

// WitnessColValues implements machine.Machine. This range-check machine
// owns no witness columns of its own: it only narrows columns owned by
// others.
func (m *Machine[F]) WitnessColValues(_ *pil.FixedData[F]) map[string][]F {
	return nil
}

func (m *Machine[F]) claims(right pil.SelectedExpressions) bool {
	if len(right.Expressions) != 1 {
		return false
	}

	ref, ok := right.Expressions[0].(pil.ColumnRef)

	return ok && !ref.Next && ref.Name == m.Selector
}

func withinBitwidth[F field.Element[F]](v F, bitwidth uint) bool {
	return bitconstraint.FromWidth(bitwidth).Contains(canonicalLowBits(v))
}

// canonicalLowBits extracts the low 8 bytes of v's canonical big-endian
// encoding, sufficient since this machine is only ever asked about values
// that are supposed to fit within (at most) a handful of bits.
func canonicalLowBits[F field.Element[F]](v F) uint64 {
	b := v.Bytes()

	var out uint64
	for _, by := range b {
		out = out<<8 | uint64(by)
	}

	return out
}

func bitwidthError[F field.Element[F]](v F, bitwidth uint) error {
	return evalerror.Unsatisfiablef("%s does not fit in %d bits", v.String(), bitwidth)
}
