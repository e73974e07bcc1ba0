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

// Package machine defines the pluggable sub-solver capability the
// generator dispatches unresolved Plookup/Permutation identities to, after
// FixedLookup has had first refusal (§4.5, §9 "Pluggable machines").
package machine

import (
	"github.com/consensys/go-witgen/pkg/affine"
	"github.com/consensys/go-witgen/pkg/field"
	"github.com/consensys/go-witgen/pkg/fixedlookup"
	"github.com/consensys/go-witgen/pkg/pil"
)

// Machine is a sub-solver that owns a block of identities it recognizes by
// their right-hand-side shape, and may also contribute its own witness
// columns. Registration order is semantically significant: the first
// machine (in registration order) that claims a lookup wins, mirroring
// FixedLookup's own first-match precedence.
type Machine[F field.Element[F]] interface {
	// ProcessPlookup returns nil if this identity's right-hand side does
	// not belong to this machine. Otherwise it returns a non-nil result
	// reflecting whatever was learned about left (possibly nothing).
	// fixedLookup is passed through so a machine may itself consult the
	// fixed-table lookup while deciding what it can derive.
	ProcessPlookup(
		fixedData *pil.FixedData[F],
		fixedLookup *fixedlookup.FixedLookup[F],
		kind pil.IdentityKind,
		left []affine.Expression[F],
		right pil.SelectedExpressions,
	) *fixedlookup.EvalResult[F]

	// WitnessColValues is invoked once all rows have been processed, to
	// collect any witness columns this machine owns and filled internally
	// rather than via the generator's next/current buffers.
	WitnessColValues(fixedData *pil.FixedData[F]) map[string][]F
}
