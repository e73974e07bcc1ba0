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
package witgen

import (
	"testing"

	"github.com/consensys/go-witgen/pkg/field/goldilocks"
	"github.com/consensys/go-witgen/pkg/fixedlookup"
	"github.com/consensys/go-witgen/pkg/pil"
	"github.com/google/go-cmp/cmp"
)

// stringRows renders a trace as decimal strings for comparison, so a
// failing diff shows field values as readable numbers.
func stringRows(rows [][]F) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		out[i] = cells
	}

	return out
}

func buildSumGenerator() *Generator[F] {
	cols := []pil.WitnessColumn{
		{ID: 0, Name: "in", Query: pil.LocalVariableReference{Index: 0}},
		{ID: 1, Name: "total"},
	}
	fixedData := pil.NewFixedData[F](4, cols, nil)

	identities := []pil.Identity{
		vanish(sub(colNext("total"), add(col("total"), colNext("in")))),
	}

	answers := map[uint]uint64{0: 7, 1: 8, 2: 2, 3: 0}
	query := func(q string) (F, bool) {
		row, err := goldilocks.Zero.Parse(q)
		if err != nil {
			return goldilocks.Zero, false
		}

		for r, v := range answers {
			if goldilocks.New(uint64(r)).Equal(row) {
				return goldilocks.New(v), true
			}
		}

		return goldilocks.Zero, false
	}

	return NewGenerator[F](fixedData, fixedlookup.New[F](), identities, nil, nil, query)
}

// TestGenerator_IsDeterministic runs the same circuit twice from scratch and
// requires a bit-for-bit identical trace: the fixpoint solver must not
// depend on map iteration order or any other incidental source of
// nondeterminism.
func TestGenerator_IsDeterministic(t *testing.T) {
	genA := buildSumGenerator()
	rowsA := runTrace(t, genA, 4)

	genB := buildSumGenerator()
	rowsB := runTrace(t, genB, 4)

	if diff := cmp.Diff(stringRows(rowsA), stringRows(rowsB)); diff != "" {
		t.Errorf("trace differs across runs of the same circuit (-first +second):\n%s", diff)
	}
}
