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

// Package witgen is the row-wise constraint-solving engine: it folds PIL
// expressions into AffineExpressions against a two-row window
// (ExpressionEvaluator, SymbolicWitnessEvaluator, EvaluationData) and drives
// the per-row fixpoint that derives concrete witness values (Generator).
package witgen

import (
	"github.com/consensys/go-witgen/pkg/affine"
	"github.com/consensys/go-witgen/pkg/evalerror"
	"github.com/consensys/go-witgen/pkg/field"
	"github.com/consensys/go-witgen/pkg/pil"
)

// RowMode selects how column references are resolved against the two-row
// window (§4.1).
type RowMode int

// Supported row modes.
const (
	// Current: p denotes row next_row-1, p' denotes row next_row.
	Current RowMode = iota
	// Next: p denotes row next_row, p' denotes row next_row+1 (an error if
	// actually dereferenced, since the generator only ever has two rows
	// live at once).
	Next
)

// WitnessColumnEvaluator resolves a witness column id to an AffineExpression
// given whether the reference was the next-row ("primed") form, honoring
// the enclosing RowMode. EvaluationData is the only implementation; the
// interface exists so ExpressionEvaluator/SymbolicWitnessEvaluator need not
// know about the generator's row-buffer representation.
type WitnessColumnEvaluator[F field.Element[F]] interface {
	Value(id uint, next bool) (affine.Expression[F], error)
}

// EvaluationData is the immutable per-evaluate() view over both row
// buffers: pure glue exposing Current/Next to the evaluator, with no
// knowledge of column names or of fixed data.
type EvaluationData[F field.Element[F]] struct {
	CurrentWitnesses []*F
	NextWitnesses    []*F
	Mode             RowMode
}

// Value implements WitnessColumnEvaluator.
func (d *EvaluationData[F]) Value(id uint, next bool) (affine.Expression[F], error) {
	switch {
	case !next && d.Mode == Current:
		// All values in the "current" row should usually be known; the
		// exception is when we start the analysis on the first row.
		if d.CurrentWitnesses[id] == nil {
			return affine.Expression[F]{}, errPreviousValueUnknown
		}

		return affine.FromConstant(*d.CurrentWitnesses[id]), nil
	case (!next && d.Mode == Next) || (next && d.Mode == Current):
		if d.NextWitnesses[id] != nil {
			return affine.FromConstant(*d.NextWitnesses[id]), nil
		}
		// Continue with a symbolic value.
		return affine.FromWitness[F](id), nil
	default:
		// next && d.Mode == Next: "double next" — the next-next row.
		return affine.Expression[F]{}, errDoubleNext
	}
}

// errPreviousValueUnknown is a sentinel carrying no column name;
// SymbolicWitnessEvaluator rewrites it with the name it already knows
// before it escapes this package, since EvaluationData itself has no name
// table to consult.
var errPreviousValueUnknown = evalerror.PreviousValueUnknownf("<unnamed>")

var errDoubleNext = evalerror.Genericf("references the next-next row when evaluating on the current row")

// SymbolicWitnessEvaluator binds (column_name, next?) references: fixed
// columns are read directly from FixedData at the already-resolved
// absolute row; witness columns are delegated to the underlying
// WitnessColumnEvaluator (ordinarily an *EvaluationData), with the
// resulting error re-annotated with the column's name.
type SymbolicWitnessEvaluator[F field.Element[F]] struct {
	fixedData *pil.FixedData[F]
	fixedRow  uint
	witness   WitnessColumnEvaluator[F]
}

// NewSymbolicWitnessEvaluator constructs the evaluator for one evaluate()
// call: fixedRow is the absolute row already resolved from next_row and the
// RowMode (§4.1's "fixed_row" rule).
func NewSymbolicWitnessEvaluator[F field.Element[F]](
	fixedData *pil.FixedData[F],
	fixedRow uint,
	witness WitnessColumnEvaluator[F],
) *SymbolicWitnessEvaluator[F] {
	return &SymbolicWitnessEvaluator[F]{fixedData: fixedData, fixedRow: fixedRow, witness: witness}
}

// Value resolves a (name, next) column reference.
func (s *SymbolicWitnessEvaluator[F]) Value(name string, next bool) (affine.Expression[F], error) {
	if col, ok := s.fixedData.FixedCols[name]; ok {
		return affine.FromConstant(col[s.fixedRow]), nil
	}

	id, ok := s.fixedData.WitnessIDs[name]
	if !ok {
		return affine.Expression[F]{}, evalerror.Genericf("unknown column %q", name)
	}

	v, err := s.witness.Value(id, next)
	if err != nil {
		if ee, ok := err.(*evalerror.Error); ok && ee.Kind == evalerror.PreviousValueUnknown {
			return affine.Expression[F]{}, evalerror.PreviousValueUnknownf(name)
		}

		if err == errDoubleNext {
			return affine.Expression[F]{}, evalerror.Genericf("%s' references the next-next row when evaluating on the current row", name)
		}

		return affine.Expression[F]{}, err
	}

	return v, nil
}

// ExpressionEvaluator recursively folds a pil.Expression into an
// affine.Expression, delegating column reads to a SymbolicWitnessEvaluator.
// Tuple, string, local-variable, and match nodes are rejected here: they
// are legal only in query interpolation (§4.3), never inside an identity.
type ExpressionEvaluator[F field.Element[F]] struct {
	witness *SymbolicWitnessEvaluator[F]
}

// NewExpressionEvaluator constructs an evaluator bound to one
// SymbolicWitnessEvaluator (i.e. one evaluate() call's row window).
func NewExpressionEvaluator[F field.Element[F]](witness *SymbolicWitnessEvaluator[F]) *ExpressionEvaluator[F] {
	return &ExpressionEvaluator[F]{witness: witness}
}

// Evaluate folds expr into an AffineExpression.
func (ev *ExpressionEvaluator[F]) Evaluate(expr pil.Expression) (affine.Expression[F], error) {
	switch e := expr.(type) {
	case pil.Const:
		var zero F

		v, err := zero.Parse(e.Value)
		if err != nil {
			return affine.Expression[F]{}, evalerror.Genericf("invalid constant %q: %v", e.Value, err)
		}

		return affine.FromConstant(v), nil
	case pil.ColumnRef:
		return ev.witness.Value(e.Name, e.Next)
	case pil.BinaryExpr:
		return ev.evaluateBinary(e)
	case pil.Negate:
		inner, err := ev.Evaluate(e.Inner)
		if err != nil {
			return affine.Expression[F]{}, err
		}

		return inner.Neg(), nil
	default:
		return affine.Expression[F]{}, evalerror.Genericf("cannot evaluate %s inside an identity", expr)
	}
}

func (ev *ExpressionEvaluator[F]) evaluateBinary(e pil.BinaryExpr) (affine.Expression[F], error) {
	left, err := ev.Evaluate(e.Left)
	if err != nil {
		return affine.Expression[F]{}, err
	}

	right, err := ev.Evaluate(e.Right)
	if err != nil {
		return affine.Expression[F]{}, err
	}

	switch e.Op {
	case pil.OpAdd:
		return left.Add(right), nil
	case pil.OpSub:
		return left.Sub(right), nil
	case pil.OpMul:
		if lc, ok := left.ConstantValue(); ok {
			return right.MulByConstant(lc), nil
		}

		if rc, ok := right.ConstantValue(); ok {
			return left.MulByConstant(rc), nil
		}

		return affine.Expression[F]{}, evalerror.Genericf("non-affine multiplication in %s", e)
	default:
		return affine.Expression[F]{}, evalerror.Genericf("unsupported operator in %s", e)
	}
}
