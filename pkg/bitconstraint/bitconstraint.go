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

// Package bitconstraint models range constraints on witness values: a
// BitConstraint records which bit positions a witness is still allowed to
// set, narrowing as the generator learns more about it.
package bitconstraint

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// BitConstraint restricts a witness to the set of values expressible using
// only the recorded allowed bit positions. The common case — "w fits in k
// bits" — is the mask with bits 0..k-1 set.
type BitConstraint struct {
	mask *bitset.BitSet
}

// FromWidth constructs the constraint "fits in width bits", i.e. w in
// [0, 2^width).
func FromWidth(width uint) BitConstraint {
	b := bitset.New(width)
	for i := uint(0); i < width; i++ {
		b.Set(i)
	}

	return BitConstraint{mask: b}
}

// FromMask constructs a constraint directly from a set of allowed bit
// positions (not necessarily contiguous from zero).
func FromMask(mask *bitset.BitSet) BitConstraint {
	return BitConstraint{mask: mask.Clone()}
}

// Width returns the smallest width such that every allowed bit lies below
// it, i.e. one more than the highest set bit. A zero-valued BitConstraint
// (no mask) has width 0.
func (b BitConstraint) Width() uint {
	if b.mask == nil {
		return 0
	}

	highest, ok := highestSet(b.mask)
	if !ok {
		return 0
	}

	return highest + 1
}

func highestSet(b *bitset.BitSet) (uint, bool) {
	found := false

	var highest uint

	for i, e := b.NextSet(0); e; i, e = b.NextSet(i + 1) {
		highest = i
		found = true
	}

	return highest, found
}

// Max returns the largest value admitted by this constraint: 2^Width - 1.
func (b BitConstraint) Max() uint64 {
	w := b.Width()
	if w >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << w) - 1
}

// Mask returns the underlying allowed-bit-position set.
func (b BitConstraint) Mask() *bitset.BitSet {
	return b.mask
}

// Intersect combines two constraints on the same witness (e.g. global and
// per-row), keeping only bit positions both admit — the tighter of the two.
func (b BitConstraint) Intersect(other BitConstraint) BitConstraint {
	if b.mask == nil {
		return other
	}

	if other.mask == nil {
		return b
	}

	return BitConstraint{mask: b.mask.Intersection(other.mask)}
}

// Contains reports whether v's bit pattern is a subset of the allowed mask,
// i.e. whether v is a value this constraint permits.
func (b BitConstraint) Contains(v uint64) bool {
	for i := uint(0); i < 64; i++ {
		if v>>i&1 == 1 && (b.mask == nil || !b.mask.Test(i)) {
			return false
		}
	}

	return true
}

// String renders the constraint as a bit width, the common case in
// practice.
func (b BitConstraint) String() string {
	return fmt.Sprintf("[0, 2^%d)", b.Width())
}

// Set is a source of BitConstraints keyed by witness id, combining an
// immutable global table (keyed by name) with mutable per-row learned
// constraints (keyed by id). Global constraints take precedence over
// per-row ones when both are present.
type Set interface {
	// BitConstraint returns the known constraint on witness id, if any.
	BitConstraint(id uint) (BitConstraint, bool)
}
