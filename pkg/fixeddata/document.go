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

// Package fixeddata (de)serializes the two inputs the ambient CLI feeds a
// Generator: the analyzed circuit's fixed data (§6 "fixed_data" input) and
// a witness-query trace prefix answering a QueryCallback. Field values are
// always carried as decimal strings, the same field-agnostic encoding
// pil.Const uses, so one Document works for either field parameterization.
package fixeddata

import (
	"github.com/consensys/go-witgen/pkg/field"
	"github.com/consensys/go-witgen/pkg/pil"
	"github.com/consensys/go-witgen/pkg/witgen"
)

// WitnessColumn is the wire form of pil.WitnessColumn.
type WitnessColumn struct {
	ID    uint     `json:"id" cbor:"id"`
	Name  string   `json:"name" cbor:"name"`
	Query *ExprDoc `json:"query,omitempty" cbor:"query,omitempty"`
}

// Document is the wire form of everything a Generator needs to run: fixed
// data (§6 "fixed_data" input) and the identity list (§6 "identities"
// input). Fixed-column values are carried as decimal strings (one vector
// per column name), Degree long.
type Document struct {
	Degree      uint                `json:"degree" cbor:"degree"`
	WitnessCols []WitnessColumn     `json:"witness_columns" cbor:"witness_columns"`
	FixedCols   map[string][]string `json:"fixed_columns" cbor:"fixed_columns"`
	Identities  []IdentityDoc       `json:"identities" cbor:"identities"`
}

// ToDocument renders fd and identities as their wire form, for
// serialization.
func ToDocument[F field.Element[F]](fd *pil.FixedData[F], identities []pil.Identity) Document {
	doc := Document{
		Degree:      fd.Degree,
		WitnessCols: make([]WitnessColumn, len(fd.WitnessCols)),
		FixedCols:   make(map[string][]string, len(fd.FixedCols)),
		Identities:  make([]IdentityDoc, len(identities)),
	}

	for i, c := range fd.WitnessCols {
		wc := WitnessColumn{ID: c.ID, Name: c.Name}

		if c.Query != nil {
			q := ToExprDoc(c.Query)
			wc.Query = &q
		}

		doc.WitnessCols[i] = wc
	}

	for name, col := range fd.FixedCols {
		values := make([]string, len(col))
		for i, v := range col {
			values[i] = v.String()
		}

		doc.FixedCols[name] = values
	}

	for i, id := range identities {
		doc.Identities[i] = ToIdentityDoc(id)
	}

	return doc
}

// Build parses doc into a pil.FixedData[F] and its identity list, reducing
// every fixed-column value through F.Parse.
func Build[F field.Element[F]](doc Document) (*pil.FixedData[F], []pil.Identity, error) {
	cols := make([]pil.WitnessColumn, len(doc.WitnessCols))

	for i, c := range doc.WitnessCols {
		wc := pil.WitnessColumn{ID: c.ID, Name: c.Name}

		if c.Query != nil {
			query, err := BuildExpr(*c.Query)
			if err != nil {
				return nil, nil, err
			}

			wc.Query = query
		}

		cols[i] = wc
	}

	var zero F

	fixed := make(map[string][]F, len(doc.FixedCols))

	for name, values := range doc.FixedCols {
		col := make([]F, len(values))

		for i, s := range values {
			v, err := zero.Parse(s)
			if err != nil {
				return nil, nil, err
			}

			col[i] = v
		}

		fixed[name] = col
	}

	identities := make([]pil.Identity, len(doc.Identities))

	for i, idDoc := range doc.Identities {
		id, err := BuildIdentity(idDoc)
		if err != nil {
			return nil, nil, err
		}

		identities[i] = id
	}

	return pil.NewFixedData(doc.Degree, cols, fixed), identities, nil
}

// QueryAnswers is the wire form of a witness-query trace prefix: a fixed
// mapping from the stable query string (§6 grammar) to the decimal value
// it resolves to. Queries absent from Answers resolve to "no answer",
// exactly like a QueryCallback returning false.
type QueryAnswers struct {
	Answers map[string]string `json:"answers" cbor:"answers"`
}

// Trace is the wire form of a computed witness trace: one decimal-string
// vector per witness (and machine-owned) column, Degree long. This is what
// the CLI's generate subcommand writes out (§2.3).
type Trace struct {
	Degree  uint                `json:"degree" cbor:"degree"`
	Columns map[string][]string `json:"columns" cbor:"columns"`
}

// ToTrace assembles rows (row-major, as returned by repeated
// Generator.ComputeNextRow calls) and any machine-owned columns into a
// column-major Trace keyed by column name.
func ToTrace[F field.Element[F]](fd *pil.FixedData[F], rows [][]F, machineCols map[string][]F) Trace {
	columns := make(map[string][]string, len(fd.WitnessCols)+len(machineCols))

	for _, c := range fd.WitnessCols {
		values := make([]string, len(rows))
		for r, row := range rows {
			values[r] = row[c.ID].String()
		}

		columns[c.Name] = values
	}

	for name, col := range machineCols {
		values := make([]string, len(col))
		for i, v := range col {
			values[i] = v.String()
		}

		columns[name] = values
	}

	return Trace{Degree: uint(len(rows)), Columns: columns}
}

// Callback adapts a QueryAnswers document into a witgen.QueryCallback[F].
func Callback[F field.Element[F]](answers QueryAnswers) witgen.QueryCallback[F] {
	return func(query string) (F, bool) {
		var zero F

		s, ok := answers.Answers[query]
		if !ok {
			return zero, false
		}

		v, err := zero.Parse(s)
		if err != nil {
			return zero, false
		}

		return v, true
	}
}
