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
package fixeddata

import (
	"fmt"

	"github.com/consensys/go-witgen/pkg/pil"
)

// ExprDoc is the tagged-union wire form of a pil.Expression. This is a
// serialization of an already-analyzed AST, not a PIL source parser: the
// analyzer producing the AST in the first place remains out of scope
// (§1); this only round-trips the shape pil.Expression already defines.
type ExprDoc struct {
	Kind      string        `json:"kind" cbor:"kind"`
	Value     string        `json:"value,omitempty" cbor:"value,omitempty"`
	Name      string        `json:"name,omitempty" cbor:"name,omitempty"`
	Next      bool          `json:"next,omitempty" cbor:"next,omitempty"`
	Left      *ExprDoc      `json:"left,omitempty" cbor:"left,omitempty"`
	Right     *ExprDoc      `json:"right,omitempty" cbor:"right,omitempty"`
	Inner     *ExprDoc      `json:"inner,omitempty" cbor:"inner,omitempty"`
	Items     []ExprDoc     `json:"items,omitempty" cbor:"items,omitempty"`
	Scrutinee *ExprDoc      `json:"scrutinee,omitempty" cbor:"scrutinee,omitempty"`
	Arms      []MatchArmDoc `json:"arms,omitempty" cbor:"arms,omitempty"`
}

// MatchArmDoc is the wire form of a pil.MatchArm. Pattern == nil denotes
// the wildcard arm.
type MatchArmDoc struct {
	Pattern *string `json:"pattern,omitempty" cbor:"pattern,omitempty"`
	Value   ExprDoc `json:"value" cbor:"value"`
}

// ToExprDoc renders expr as its wire form.
func ToExprDoc(expr pil.Expression) ExprDoc {
	switch e := expr.(type) {
	case pil.Const:
		return ExprDoc{Kind: "const", Value: e.Value}
	case pil.ColumnRef:
		return ExprDoc{Kind: "col", Name: e.Name, Next: e.Next}
	case pil.BinaryExpr:
		left := ToExprDoc(e.Left)
		right := ToExprDoc(e.Right)

		return ExprDoc{Kind: binaryOpKind(e.Op), Left: &left, Right: &right}
	case pil.Negate:
		inner := ToExprDoc(e.Inner)
		return ExprDoc{Kind: "neg", Inner: &inner}
	case pil.Tuple:
		items := make([]ExprDoc, len(e.Items))
		for i, it := range e.Items {
			items[i] = ToExprDoc(it)
		}

		return ExprDoc{Kind: "tuple", Items: items}
	case pil.StringLiteral:
		return ExprDoc{Kind: "string", Value: e.Value}
	case pil.LocalVariableReference:
		return ExprDoc{Kind: "local", Value: fmt.Sprintf("%d", e.Index)}
	case pil.MatchExpression:
		scrutinee := ToExprDoc(e.Scrutinee)
		arms := make([]MatchArmDoc, len(e.Arms))

		for i, arm := range e.Arms {
			arms[i] = MatchArmDoc{Pattern: arm.Pattern, Value: ToExprDoc(arm.Value)}
		}

		return ExprDoc{Kind: "match", Scrutinee: &scrutinee, Arms: arms}
	default:
		panic(fmt.Sprintf("fixeddata: unrecognized expression type %T", expr))
	}
}

func binaryOpKind(op pil.BinaryOp) string {
	switch op {
	case pil.OpAdd:
		return "add"
	case pil.OpSub:
		return "sub"
	case pil.OpMul:
		return "mul"
	default:
		panic(fmt.Sprintf("fixeddata: unrecognized binary operator %v", op))
	}
}

// BuildExpr parses doc back into a pil.Expression.
func BuildExpr(doc ExprDoc) (pil.Expression, error) {
	switch doc.Kind {
	case "const":
		return pil.Const{Value: doc.Value}, nil
	case "col":
		return pil.ColumnRef{Name: doc.Name, Next: doc.Next}, nil
	case "add", "sub", "mul":
		if doc.Left == nil || doc.Right == nil {
			return nil, fmt.Errorf("fixeddata: %q expression missing left/right", doc.Kind)
		}

		left, err := BuildExpr(*doc.Left)
		if err != nil {
			return nil, err
		}

		right, err := BuildExpr(*doc.Right)
		if err != nil {
			return nil, err
		}

		return pil.BinaryExpr{Op: binaryOpFromKind(doc.Kind), Left: left, Right: right}, nil
	case "neg":
		if doc.Inner == nil {
			return nil, fmt.Errorf("fixeddata: neg expression missing inner")
		}

		inner, err := BuildExpr(*doc.Inner)
		if err != nil {
			return nil, err
		}

		return pil.Negate{Inner: inner}, nil
	case "tuple":
		items := make([]pil.Expression, len(doc.Items))

		for i, it := range doc.Items {
			item, err := BuildExpr(it)
			if err != nil {
				return nil, err
			}

			items[i] = item
		}

		return pil.Tuple{Items: items}, nil
	case "string":
		return pil.StringLiteral{Value: doc.Value}, nil
	case "local":
		var index int
		if _, err := fmt.Sscanf(doc.Value, "%d", &index); err != nil {
			return nil, fmt.Errorf("fixeddata: invalid local variable index %q: %w", doc.Value, err)
		}

		return pil.LocalVariableReference{Index: index}, nil
	case "match":
		if doc.Scrutinee == nil {
			return nil, fmt.Errorf("fixeddata: match expression missing scrutinee")
		}

		scrutinee, err := BuildExpr(*doc.Scrutinee)
		if err != nil {
			return nil, err
		}

		arms := make([]pil.MatchArm, len(doc.Arms))

		for i, armDoc := range doc.Arms {
			value, err := BuildExpr(armDoc.Value)
			if err != nil {
				return nil, err
			}

			arms[i] = pil.MatchArm{Pattern: armDoc.Pattern, Value: value}
		}

		return pil.MatchExpression{Scrutinee: scrutinee, Arms: arms}, nil
	default:
		return nil, fmt.Errorf("fixeddata: unrecognized expression kind %q", doc.Kind)
	}
}

func binaryOpFromKind(kind string) pil.BinaryOp {
	switch kind {
	case "add":
		return pil.OpAdd
	case "sub":
		return pil.OpSub
	default:
		return pil.OpMul
	}
}

// SelectedExprsDoc is the wire form of pil.SelectedExpressions.
type SelectedExprsDoc struct {
	Selector    *ExprDoc  `json:"selector,omitempty" cbor:"selector,omitempty"`
	Expressions []ExprDoc `json:"expressions,omitempty" cbor:"expressions,omitempty"`
}

// IdentityDoc is the wire form of a pil.Identity.
type IdentityDoc struct {
	Kind  string           `json:"kind" cbor:"kind"`
	Left  SelectedExprsDoc `json:"left" cbor:"left"`
	Right SelectedExprsDoc `json:"right,omitempty" cbor:"right,omitempty"`
	Text  string           `json:"text,omitempty" cbor:"text,omitempty"`
}

// ToIdentityDoc renders id as its wire form.
func ToIdentityDoc(id pil.Identity) IdentityDoc {
	return IdentityDoc{
		Kind:  identityKindName(id.Kind),
		Left:  toSelectedExprsDoc(id.Left),
		Right: toSelectedExprsDoc(id.Right),
		Text:  id.Text,
	}
}

func toSelectedExprsDoc(se pil.SelectedExpressions) SelectedExprsDoc {
	doc := SelectedExprsDoc{}

	if se.Selector != nil {
		sel := ToExprDoc(se.Selector)
		doc.Selector = &sel
	}

	doc.Expressions = make([]ExprDoc, len(se.Expressions))
	for i, e := range se.Expressions {
		doc.Expressions[i] = ToExprDoc(e)
	}

	return doc
}

func identityKindName(kind pil.IdentityKind) string {
	switch kind {
	case pil.Polynomial:
		return "polynomial"
	case pil.Plookup:
		return "plookup"
	case pil.Permutation:
		return "permutation"
	default:
		panic(fmt.Sprintf("fixeddata: unrecognized identity kind %v", kind))
	}
}

// BuildIdentity parses doc back into a pil.Identity.
func BuildIdentity(doc IdentityDoc) (pil.Identity, error) {
	kind, err := identityKindFromName(doc.Kind)
	if err != nil {
		return pil.Identity{}, err
	}

	left, err := buildSelectedExprs(doc.Left)
	if err != nil {
		return pil.Identity{}, err
	}

	right, err := buildSelectedExprs(doc.Right)
	if err != nil {
		return pil.Identity{}, err
	}

	return pil.Identity{Kind: kind, Left: left, Right: right, Text: doc.Text}, nil
}

func buildSelectedExprs(doc SelectedExprsDoc) (pil.SelectedExpressions, error) {
	se := pil.SelectedExpressions{}

	if doc.Selector != nil {
		sel, err := BuildExpr(*doc.Selector)
		if err != nil {
			return se, err
		}

		se.Selector = sel
	}

	se.Expressions = make([]pil.Expression, len(doc.Expressions))

	for i, exprDoc := range doc.Expressions {
		expr, err := BuildExpr(exprDoc)
		if err != nil {
			return se, err
		}

		se.Expressions[i] = expr
	}

	return se, nil
}

func identityKindFromName(name string) (pil.IdentityKind, error) {
	switch name {
	case "polynomial":
		return pil.Polynomial, nil
	case "plookup":
		return pil.Plookup, nil
	case "permutation":
		return pil.Permutation, nil
	default:
		return 0, fmt.Errorf("fixeddata: unrecognized identity kind %q", name)
	}
}
