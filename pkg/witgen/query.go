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
	"strconv"
	"strings"

	"github.com/consensys/go-witgen/pkg/evalerror"
	"github.com/consensys/go-witgen/pkg/field"
	"github.com/consensys/go-witgen/pkg/pil"
)

// interpolateQuery reduces a witness column's query expression to the
// stable query-string grammar (§6): constants format directly; tuples join
// with ", "; the local variable $0 becomes the decimal row index; string
// literals are JSON-escaped; match expressions select the first matching
// (or wildcard) arm.
func (g *Generator[F]) interpolateQuery(expr pil.Expression) (string, error) {
	if v, err := g.evaluate(expr, Next); err == nil {
		if k, ok := v.ConstantValue(); ok {
			return k.String(), nil
		}
	}

	switch e := expr.(type) {
	case pil.Tuple:
		parts := make([]string, len(e.Items))

		for i, item := range e.Items {
			s, err := g.interpolateQuery(item)
			if err != nil {
				return "", err
			}

			parts[i] = s
		}

		return strings.Join(parts, ", "), nil
	case pil.LocalVariableReference:
		if e.Index != 0 {
			return "", evalerror.Genericf("cannot handle / evaluate %s", expr)
		}

		return strconv.FormatUint(uint64(g.nextRow), 10), nil
	case pil.StringLiteral:
		escaped := strings.ReplaceAll(e.Value, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)

		return `"` + escaped + `"`, nil
	case pil.MatchExpression:
		return g.interpolateMatchExpression(e)
	default:
		return "", evalerror.Genericf("cannot handle / evaluate %s", expr)
	}
}

func (g *Generator[F]) interpolateMatchExpression(e pil.MatchExpression) (string, error) {
	scrutinee, err := g.evaluate(e.Scrutinee, Next)
	if err != nil {
		return "", evalerror.Genericf("cannot handle / evaluate %s: %v", e, err)
	}

	v, ok := scrutinee.ConstantValue()
	if !ok {
		return "", evalerror.Genericf("cannot handle / evaluate %s: match scrutinee not constant", e)
	}

	for _, arm := range e.Arms {
		if arm.Pattern == nil || *arm.Pattern == v.String() {
			return g.interpolateQuery(arm.Value)
		}
	}

	return "", evalerror.Genericf("cannot handle / evaluate %s: no matching arm for value %s", e, v.String())
}

// containsNextWitnessRef reports whether expr contains any reference to a
// witness column in its primed (next-row) form — the sole switch deciding
// which row mode a polynomial identity is evaluated under (§4.3).
func containsNextWitnessRef[F field.Element[F]](fixedData *pil.FixedData[F], expr pil.Expression) bool {
	switch e := expr.(type) {
	case pil.ColumnRef:
		if !e.Next {
			return false
		}

		_, isWitness := fixedData.WitnessIDs[e.Name]

		return isWitness
	case pil.BinaryExpr:
		return containsNextWitnessRef(fixedData, e.Left) || containsNextWitnessRef(fixedData, e.Right)
	case pil.Negate:
		return containsNextWitnessRef(fixedData, e.Inner)
	case pil.Tuple:
		for _, item := range e.Items {
			if containsNextWitnessRef(fixedData, item) {
				return true
			}
		}

		return false
	default:
		return false
	}
}
