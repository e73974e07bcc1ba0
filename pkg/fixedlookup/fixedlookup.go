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

// Package fixedlookup handles plookup/permutation identities whose
// right-hand side is purely fixed (precomputed) columns: "pair lookup"
// style identities such as {a, b} in T, where T is a caller-supplied table.
// It is consulted by the generator before any registered Machine (§4.5).
package fixedlookup

import (
	"fmt"
	"strings"

	"github.com/consensys/go-witgen/pkg/affine"
	"github.com/consensys/go-witgen/pkg/evalerror"
	"github.com/consensys/go-witgen/pkg/field"
	"github.com/consensys/go-witgen/pkg/pil"
)

// EvalResult is the outcome of attempting to process a plookup: either a
// (possibly empty) list of learned constraints, or an error. Shared by
// FixedLookup and every Machine so the generator can treat them uniformly.
type EvalResult[F field.Element[F]] struct {
	Constraints []affine.Constraint[F]
	Err         error
}

// Ok wraps a successful (possibly empty) constraint list.
func Ok[F field.Element[F]](constraints []affine.Constraint[F]) *EvalResult[F] {
	return &EvalResult[F]{Constraints: constraints}
}

// Failed wraps an error encountered while processing a matched lookup.
func Failed[F field.Element[F]](err error) *EvalResult[F] {
	return &EvalResult[F]{Err: err}
}

// table is one fixed-column lookup table: the column names forming its
// tuple, and the Degree rows of concrete values, indexed by row.
type table[F field.Element[F]] struct {
	columns []string
	rows    [][]F
	// index maps a tuple of values to the row at which it first occurs,
	// enabling O(1) reverse lookup (given a full tuple, find its row) for
	// the common fully-known-left case.
	index map[string]int
}

// FixedLookup is the plookup-against-fixed-columns collaborator. It starts
// empty; the caller registers one table per right-hand-side column tuple
// that appears in Plookup/Permutation identities, via RegisterTable.
type FixedLookup[F field.Element[F]] struct {
	tables []table[F]
}

// New constructs an empty FixedLookup; tables are registered with
// RegisterTable as the caller discovers right-hand-side tuples referencing
// only fixed columns.
func New[F field.Element[F]]() *FixedLookup[F] {
	return &FixedLookup[F]{}
}

// RegisterTable adds a fixed lookup table over the named fixed columns,
// read from fixedData. Column i of the table is fixedData.FixedCols[names[i]].
func (fl *FixedLookup[F]) RegisterTable(fixedData *pil.FixedData[F], names []string) {
	degree := int(fixedData.Degree)
	rows := make([][]F, degree)
	index := make(map[string]int, degree)

	for row := 0; row < degree; row++ {
		tuple := make([]F, len(names))
		for i, name := range names {
			tuple[i] = fixedData.FixedCols[name][row]
		}

		rows[row] = tuple

		key := keyOf(tuple)
		if _, exists := index[key]; !exists {
			index[key] = row
		}
	}

	fl.tables = append(fl.tables, table[F]{columns: names, rows: rows, index: index})
}

func keyOf[F field.Element[F]](tuple []F) string {
	key := ""
	for _, v := range tuple {
		key += string(v.Bytes()) + "|"
	}

	return key
}

// ProcessPlookup attempts to resolve identity's left-hand tuple against a
// registered table whose columns match the right-hand expressions' column
// names. Returns nil if no registered table matches the right-hand side at
// all (the generator then falls through to its registered machines).
func (fl *FixedLookup[F]) ProcessPlookup(
	fixedData *pil.FixedData[F],
	kind pil.IdentityKind,
	left []affine.Expression[F],
	right pil.SelectedExpressions,
) *EvalResult[F] {
	names, ok := columnNames(right.Expressions)
	if !ok {
		return nil
	}

	for _, t := range fl.tables {
		if !sameColumns(t.columns, names) {
			continue
		}

		return fl.solveAgainst(t, left)
	}

	return nil
}

func columnNames(exprs []pil.Expression) ([]string, bool) {
	names := make([]string, len(exprs))

	for i, e := range exprs {
		ref, ok := e.(pil.ColumnRef)
		if !ok || ref.Next {
			return nil, false
		}

		names[i] = ref.Name
	}

	return names, true
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// solveAgainst resolves left against table t. If every left expression is
// already a known constant, it looks the tuple up directly. If exactly one
// column is unknown and the rest are known, it scans for the (unique, by
// construction of a well-formed table) matching row and assigns the
// remaining column. Otherwise it reports no progress (nil constraints, no
// error) rather than guessing among several matching rows.
func (fl *FixedLookup[F]) solveAgainst(t table[F], left []affine.Expression[F]) *EvalResult[F] {
	known := make([]F, len(left))
	unknownAt := -1

	for i, e := range left {
		v, ok := e.ConstantValue()
		if ok {
			known[i] = v
			continue
		}

		if unknownAt != -1 {
			// More than one unknown column: cannot resolve by direct
			// lookup.
			return Ok[F](nil)
		}

		unknownAt = i
	}

	if unknownAt == -1 {
		key := keyOf(known)
		if _, ok := t.index[key]; !ok {
			return Failed[F](notInTableError(known))
		}

		return Ok[F](nil)
	}

	for _, row := range t.rows {
		matches := true

		for i, v := range known {
			if i == unknownAt {
				continue
			}

			if !row[i].Equal(v) {
				matches = false
				break
			}
		}

		if matches {
			return Ok[F]([]affine.Constraint[F]{{
				ID:    idOfWitnessTerm(left[unknownAt]),
				Kind:  affine.Assignment,
				Value: row[unknownAt],
			}})
		}
	}

	return Failed[F](notInTableError(known))
}

func idOfWitnessTerm[F field.Element[F]](e affine.Expression[F]) uint {
	return e.SoleWitnessID()
}

func notInTableError[F field.Element[F]](known []F) error {
	parts := make([]string, len(known))
	for i, v := range known {
		parts[i] = v.String()
	}

	return evalerror.Unsatisfiable(fmt.Sprintf("tuple (%s) does not appear in the lookup table", strings.Join(parts, ", ")))
}
