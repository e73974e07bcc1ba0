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

// WitnessColumn is one unknown column the generator must fill.
type WitnessColumn struct {
	ID    uint
	Name  string
	Query Expression // nil if this column has no witness query
}

// FixedData bundles everything about the analyzed circuit that does not
// change across the generator's lifetime: the witness column list, the
// fixed-column table, and the trace length.
type FixedData[F any] struct {
	// Degree is the trace length; rows are indexed 0..Degree-1 and wrap
	// cyclically.
	Degree uint
	// WitnessCols is the ordered witness column list; WitnessCols[i].ID == i.
	WitnessCols []WitnessColumn
	// WitnessIDs maps a witness column name to its id.
	WitnessIDs map[string]uint
	// FixedCols maps a fixed column name to its Degree-length value vector.
	FixedCols map[string][]F
}

// Name returns the name of witness column i, for diagnostics.
func (fd *FixedData[F]) Name(i uint) string {
	return fd.WitnessCols[i].Name
}

// NewFixedData constructs a FixedData, deriving WitnessIDs from the order of
// cols.
func NewFixedData[F any](degree uint, cols []WitnessColumn, fixed map[string][]F) *FixedData[F] {
	ids := make(map[string]uint, len(cols))
	for _, c := range cols {
		ids[c.Name] = c.ID
	}

	return &FixedData[F]{
		Degree:      degree,
		WitnessCols: cols,
		WitnessIDs:  ids,
		FixedCols:   fixed,
	}
}
