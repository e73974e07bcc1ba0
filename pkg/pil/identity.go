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
package pil

import "fmt"

// IdentityKind distinguishes a pure polynomial identity from a lookup or
// permutation relation.
type IdentityKind int

// Supported identity kinds.
const (
	Polynomial IdentityKind = iota
	Plookup
	Permutation
)

// SelectedExpressions is one side of a Plookup/Permutation identity: a
// selector (implicitly 1 when absent) gating a tuple of expressions.
type SelectedExpressions struct {
	Selector    Expression // nil means "always active"
	Expressions []Expression
}

// Identity is a single constraint the generator must satisfy on every row.
// For IdentityKind == Polynomial, Left.Selector carries the polynomial
// itself (not a selector) and Left.Expressions/Right are unused — this
// mirrors the upstream analyzer's own encoding, where a bare polynomial
// identity is represented as a degenerate SelectedExpressions whose
// "selector" slot holds the expression required to vanish. For
// Plookup/Permutation both sides are meaningful in the ordinary sense.
type Identity struct {
	Kind  IdentityKind
	Left  SelectedExpressions
	Right SelectedExpressions
	// Text is the identity's source rendering, used only in diagnostics.
	Text string
}

// String renders the identity the way diagnostics quote it.
func (id Identity) String() string {
	if id.Text != "" {
		return id.Text
	}

	switch id.Kind {
	case Polynomial:
		return fmt.Sprintf("%s = 0", id.Left.Selector)
	default:
		return fmt.Sprintf("%v in %v", id.Left.Expressions, id.Right.Expressions)
	}
}

// Polynomial returns the single expression this identity requires to vanish.
// Valid only when Kind == Polynomial.
func (id Identity) Polynomial() Expression {
	return id.Left.Selector
}
