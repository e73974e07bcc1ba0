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

// Package affine implements AffineExpression: a symbolic linear combination
// of witness ids over a field, plus the solve_with_bit_constraints
// narrowing step the generator's fixpoint relies on. The expression
// evaluator (pkg/witgen) folds every identity down into one of these before
// the generator ever inspects it.
package affine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/consensys/go-witgen/pkg/bitconstraint"
	"github.com/consensys/go-witgen/pkg/evalerror"
	"github.com/consensys/go-witgen/pkg/field"
)

// Namer resolves a witness id to a display name, for Format.
type Namer interface {
	Name(id uint) string
}

// Expression is a symbolic affine form: sum(coeff[w] * w) + constant, over
// field F. Zero coefficients are never stored, so len(coeffs) == 0 iff the
// expression is a pure constant.
type Expression[F field.Element[F]] struct {
	coeffs   map[uint]F
	constant F
}

// FromConstant builds a non-symbolic expression equal to k.
func FromConstant[F field.Element[F]](k F) Expression[F] {
	return Expression[F]{constant: k}
}

// FromWitness builds the expression "1*w", the symbolic placeholder used
// whenever a witness value is not yet known (the evaluator's "continue with
// a symbolic value" case).
func FromWitness[F field.Element[F]](id uint) Expression[F] {
	var zero F

	return Expression[F]{coeffs: map[uint]F{id: zero.One()}}
}

// IsConstant reports whether this expression has no symbolic terms.
func (e Expression[F]) IsConstant() bool {
	return len(e.coeffs) == 0
}

// ConstantValue returns (k, true) if the expression has no symbolic terms,
// else (zero, false).
func (e Expression[F]) ConstantValue() (F, bool) {
	if e.IsConstant() {
		return e.constant, true
	}

	var zero F

	return zero, false
}

// Add returns e+other.
func (e Expression[F]) Add(other Expression[F]) Expression[F] {
	result := Expression[F]{coeffs: cloneCoeffs(e.coeffs), constant: e.constant.Add(other.constant)}
	for id, c := range other.coeffs {
		result.addTerm(id, c)
	}

	return result
}

// Sub returns e-other.
func (e Expression[F]) Sub(other Expression[F]) Expression[F] {
	return e.Add(other.Neg())
}

// Neg returns -e.
func (e Expression[F]) Neg() Expression[F] {
	neg := make(map[uint]F, len(e.coeffs))
	for id, c := range e.coeffs {
		neg[id] = c.Neg()
	}

	return Expression[F]{coeffs: neg, constant: e.constant.Neg()}
}

// MulByConstant returns k*e. Panics intent is avoided: multiplying by zero
// simply collapses to the zero constant, matching ordinary field algebra.
func (e Expression[F]) MulByConstant(k F) Expression[F] {
	if k.IsZero() {
		var zero F
		return Expression[F]{constant: zero}
	}

	scaled := make(map[uint]F, len(e.coeffs))
	for id, c := range e.coeffs {
		scaled[id] = c.Mul(k)
	}

	return Expression[F]{coeffs: scaled, constant: e.constant.Mul(k)}
}

func (e *Expression[F]) addTerm(id uint, c F) {
	if e.coeffs == nil {
		e.coeffs = map[uint]F{}
	}

	existing, ok := e.coeffs[id]
	if !ok {
		e.coeffs[id] = c
		return
	}

	sum := existing.Add(c)
	if sum.IsZero() {
		delete(e.coeffs, id)
	} else {
		e.coeffs[id] = sum
	}
}

// SoleWitnessID returns the witness id of an expression consisting of a
// single symbolic term (as produced by FromWitness, or by evaluating a bare
// unknown column reference). Callers only invoke this on expressions they
// know came from such a context.
func (e Expression[F]) SoleWitnessID() uint {
	for id := range e.coeffs {
		return id
	}

	panic("SoleWitnessID: expression has no symbolic term")
}

func cloneCoeffs[F field.Element[F]](m map[uint]F) map[uint]F {
	out := make(map[uint]F, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// sortedIDs returns the expression's witness ids in ascending order, for
// deterministic formatting and iteration.
func (e Expression[F]) sortedIDs() []uint {
	ids := make([]uint, 0, len(e.coeffs))
	for id := range e.coeffs {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Format renders the expression using namer to resolve witness ids to
// names, for diagnostics.
func (e Expression[F]) Format(namer Namer) string {
	if e.IsConstant() {
		return e.constant.String()
	}

	var parts []string

	for _, id := range e.sortedIDs() {
		c := e.coeffs[id]
		if c.Equal(c.One()) {
			parts = append(parts, namer.Name(id))
		} else {
			parts = append(parts, fmt.Sprintf("%s * %s", c.String(), namer.Name(id)))
		}
	}

	if !e.constant.IsZero() {
		parts = append(parts, e.constant.String())
	}

	return strings.Join(parts, " + ")
}
