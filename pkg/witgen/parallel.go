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
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/consensys/go-witgen/pkg/field"
)

// Segment is one independently-solvable row range driven by its own
// Generator — the unit of work RunSegments fans out across goroutines. A
// multi-module PIL typically yields one Segment per module, each owning a
// disjoint slice of witness columns and its own FixedData/identity list.
type Segment[F field.Element[F]] struct {
	Generator *Generator[F]
	FirstRow  uint
	LastRow   uint // inclusive
}

// RunSegments computes every row of every segment concurrently, one
// goroutine per segment, and returns each segment's committed rows in
// order. The per-row fixpoint inside a single Generator remains
// synchronous and single-threaded (§5): only distinct segments, which by
// construction never share witness or fixed columns, run in parallel with
// each other. The first segment to fail cancels ctx for the rest via
// errgroup, and RunSegments returns that error.
func RunSegments[F field.Element[F]](ctx context.Context, segments []Segment[F]) ([][][]F, error) {
	results := make([][][]F, len(segments))

	grp, gctx := errgroup.WithContext(ctx)

	for i := range segments {
		i, seg := i, segments[i]

		grp.Go(func() error {
			rows := make([][]F, 0, seg.LastRow-seg.FirstRow+1)

			for row := seg.FirstRow; row <= seg.LastRow; row++ {
				if err := gctx.Err(); err != nil {
					return err
				}

				committed, err := seg.Generator.ComputeNextRow(row)
				if err != nil {
					return err
				}

				rows = append(rows, committed)
			}

			results[i] = rows

			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
