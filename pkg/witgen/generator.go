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
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-witgen/pkg/affine"
	"github.com/consensys/go-witgen/pkg/bitconstraint"
	"github.com/consensys/go-witgen/pkg/evalerror"
	"github.com/consensys/go-witgen/pkg/field"
	"github.com/consensys/go-witgen/pkg/fixedlookup"
	"github.com/consensys/go-witgen/pkg/machine"
	"github.com/consensys/go-witgen/pkg/pil"
)

// fatalLog is the structured side-channel for the failure dump built in
// fatalError: one chained zerolog event per fatal row, carrying the row,
// the unknown column names and the number of failed identities as discrete
// fields, for consumers that scrape logs rather than parse error strings.
// The failure reasons, bit constraints and values appear only in the
// returned error's text.
var fatalLog = zerolog.New(os.Stderr).With().Timestamp().Logger()

// QueryCallback answers a witness query string with a concrete value, or
// reports it has none (which is valid data, not an error: the fixpoint
// keeps trying to resolve the column from constraints instead).
type QueryCallback[F field.Element[F]] func(query string) (F, bool)

// Generator drives the per-row fixpoint described in §4.3/§4.4: it owns
// the two-row window, dispatches identities to the affine solver and to
// FixedLookup/Machine collaborators, and commits one row at a time.
type Generator[F field.Element[F]] struct {
	fixedData   *pil.FixedData[F]
	fixedLookup *fixedlookup.FixedLookup[F]
	identities  []pil.Identity
	globalBits  map[string]bitconstraint.BitConstraint
	machines    []machine.Machine[F]
	query       QueryCallback[F]

	current            []*F
	next               []*F
	nextBitConstraints []*bitconstraint.BitConstraint
	nextRow            uint
	failureReasons     []string
	progress           bool

	lastReportRow  uint
	lastReportTime time.Time
}

// NewGenerator constructs a Generator ready to compute row 0. machines are
// consulted in the given order, after fixedLookup, whenever an identity's
// right-hand side does not resolve against a registered fixed table.
func NewGenerator[F field.Element[F]](
	fixedData *pil.FixedData[F],
	fixedLookup *fixedlookup.FixedLookup[F],
	identities []pil.Identity,
	globalBitConstraints map[string]bitconstraint.BitConstraint,
	machines []machine.Machine[F],
	query QueryCallback[F],
) *Generator[F] {
	n := len(fixedData.WitnessCols)

	return &Generator[F]{
		fixedData:          fixedData,
		fixedLookup:        fixedLookup,
		identities:         identities,
		globalBits:         globalBitConstraints,
		machines:           machines,
		query:              query,
		current:            make([]*F, n),
		next:               make([]*F, n),
		nextBitConstraints: make([]*bitconstraint.BitConstraint, n),
		lastReportTime:     time.Now(),
	}
}

// witnessBitConstraintSet implements bitconstraint.Set over a Generator's
// state: the immutable global-by-name table takes precedence over the
// per-row by-id constraints learned so far this row.
type witnessBitConstraintSet[F field.Element[F]] struct {
	g *Generator[F]
}

// BitConstraint implements bitconstraint.Set.
func (s witnessBitConstraintSet[F]) BitConstraint(id uint) (bitconstraint.BitConstraint, bool) {
	if bc, ok := s.g.globalBits[s.g.fixedData.Name(id)]; ok {
		return bc, true
	}

	if bc := s.g.nextBitConstraints[id]; bc != nil {
		return *bc, true
	}

	return bitconstraint.BitConstraint{}, false
}

// ComputeNextRow runs the fixpoint for row, committing it and rotating the
// window forward. Row 0 tolerates unsolved identities (defaulting them to
// zero, relying on RecheckWraparound); every later row raises a fatal
// error instead.
func (g *Generator[F]) ComputeNextRow(row uint) ([]F, error) {
	g.nextRow = row

	g.logProgress(row)

	var identityFailed bool

	for {
		g.failureReasons = g.failureReasons[:0]
		g.progress = false
		identityFailed = false

		for _, id := range g.identities {
			if err := g.processIdentity(id); err != nil {
				g.failureReasons = append(g.failureReasons, evalerror.Wrap(id.String(), err).Error())
				identityFailed = true
			}
		}

		if g.query != nil {
			g.processWitnessQueries()
		}

		if !g.progress || g.allNextKnown() {
			break
		}
	}

	if identityFailed {
		if row != 0 {
			return nil, g.fatalError()
		}

		log.Debugf("row 0: identity failures tolerated, deferring to wrap-around recheck")
	}

	return g.commitRow(), nil
}

// ProposeNextRow places a fully-specified candidate row and checks every
// identity against it in a single pass (no fixpoint). On failure it commits
// nothing: current is unchanged and the next-row values and bit constraints
// are cleared.
func (g *Generator[F]) ProposeNextRow(row uint, values []F) bool {
	g.nextRow = row

	for i := range values {
		v := values[i]
		g.next[i] = &v
	}

	for _, id := range g.identities {
		if err := g.processIdentity(id); err != nil {
			g.resetNext()
			return false
		}
	}

	g.commitRow()

	return true
}

// RecheckWraparound re-validates the identities that were deferred under
// row-0 leniency, now that the full trace has been committed and row 0's
// predecessor is the actual last row rather than an unknown. lastRow and
// row0 are the final committed values of row degree-1 and row 0
// respectively.
func (g *Generator[F]) RecheckWraparound(lastRow, row0 []F) error {
	current := make([]*F, len(lastRow))
	next := make([]*F, len(row0))

	for i := range lastRow {
		v := lastRow[i]
		current[i] = &v
	}

	for i := range row0 {
		v := row0[i]
		next[i] = &v
	}

	g.current = current
	g.next = next
	g.nextRow = 0
	g.failureReasons = g.failureReasons[:0]

	var identityFailed bool

	for _, id := range g.identities {
		if err := g.processIdentity(id); err != nil {
			g.failureReasons = append(g.failureReasons, evalerror.Wrap(id.String(), err).Error())
			identityFailed = true
		}
	}

	if identityFailed {
		return g.fatalError()
	}

	return nil
}

// MachineWitnessColValues collects every witness column owned and filled
// internally by a registered machine, after all rows have been processed.
func (g *Generator[F]) MachineWitnessColValues() map[string][]F {
	values := make(map[string][]F)

	for _, m := range g.machines {
		for name, col := range m.WitnessColValues(g.fixedData) {
			values[name] = col
		}
	}

	return values
}

func (g *Generator[F]) processIdentity(id pil.Identity) error {
	if id.Kind == pil.Polynomial {
		return g.processPolynomial(id)
	}

	return g.processLookup(id)
}

func (g *Generator[F]) processPolynomial(id pil.Identity) error {
	expr := id.Polynomial()

	mode := Next
	if containsNextWitnessRef(g.fixedData, expr) {
		mode = Current
	}

	value, err := g.evaluate(expr, mode)
	if err != nil {
		return err
	}

	constraints, err := value.SolveWithBitConstraints(witnessBitConstraintSet[F]{g})
	if err != nil {
		return err
	}

	g.mergeConstraints(constraints)

	return nil
}

func (g *Generator[F]) processLookup(id pil.Identity) error {
	active, known := g.evalSelector(id.Left.Selector)
	if known && !active {
		return nil
	}

	if !known {
		return evalerror.Genericf("selector of %s is not yet known", id)
	}

	left := make([]affine.Expression[F], len(id.Left.Expressions))

	for i, e := range id.Left.Expressions {
		v, err := g.evaluate(e, Next)
		if err != nil {
			return err
		}

		left[i] = v
	}

	result := g.fixedLookup.ProcessPlookup(g.fixedData, id.Kind, left, id.Right)

	for i := 0; result == nil && i < len(g.machines); i++ {
		result = g.machines[i].ProcessPlookup(g.fixedData, g.fixedLookup, id.Kind, left, id.Right)
	}

	if result == nil {
		return evalerror.Genericf("could not find a matching machine for the lookup")
	}

	if result.Err != nil {
		return result.Err
	}

	g.mergeConstraints(result.Constraints)

	return nil
}

// evalSelector resolves a (possibly absent) plookup selector: absent means
// always active; a known non-constant or erroring evaluation is reported
// as "not yet known" rather than propagating the underlying error, per §4.3.
func (g *Generator[F]) evalSelector(selector pil.Expression) (active bool, known bool) {
	if selector == nil {
		return true, true
	}

	v, err := g.evaluate(selector, Next)
	if err != nil {
		return false, false
	}

	k, ok := v.ConstantValue()
	if !ok {
		return false, false
	}

	return !k.IsZero(), true
}

func (g *Generator[F]) processWitnessQueries() {
	for _, col := range g.fixedData.WitnessCols {
		if col.Query == nil || g.next[col.ID] != nil {
			continue
		}

		queryStr, err := g.interpolateQuery(col.Query)
		if err != nil {
			g.failureReasons = append(g.failureReasons, evalerror.Genericf("%s: %v", col.Name, err).Error())
			continue
		}

		v, ok := g.query(queryStr)
		if !ok {
			continue
		}

		g.assign(col.ID, v)
	}
}

func (g *Generator[F]) mergeConstraints(constraints []affine.Constraint[F]) {
	for _, c := range constraints {
		switch c.Kind {
		case affine.Assignment:
			g.assign(c.ID, c.Value)
		case affine.BitConstraintLearned:
			bc := c.Bit
			g.nextBitConstraints[c.ID] = &bc
		}
	}
}

func (g *Generator[F]) assign(id uint, v F) {
	val := v
	g.next[id] = &val
	g.progress = true
}

// evaluate folds expr into an affine expression against the current
// two-row window, resolving fixed-column reads at the row mode's implied
// absolute row (§4.1).
func (g *Generator[F]) evaluate(expr pil.Expression, mode RowMode) (affine.Expression[F], error) {
	fixedRow := g.nextRow
	if mode == Current {
		fixedRow = (g.nextRow + g.fixedData.Degree - 1) % g.fixedData.Degree
	}

	data := &EvaluationData[F]{CurrentWitnesses: g.current, NextWitnesses: g.next, Mode: mode}
	sym := NewSymbolicWitnessEvaluator(g.fixedData, fixedRow, data)
	ev := NewExpressionEvaluator(sym)

	return ev.Evaluate(expr)
}

func (g *Generator[F]) allNextKnown() bool {
	for _, v := range g.next {
		if v == nil {
			return false
		}
	}

	return true
}

func (g *Generator[F]) resetNext() {
	for i := range g.next {
		g.next[i] = nil
		g.nextBitConstraints[i] = nil
	}
}

// commitRow materializes next as a dense row (unknowns default to zero),
// rotates it into current, and clears the per-row buffers.
func (g *Generator[F]) commitRow() []F {
	row := make([]F, len(g.next))
	committed := make([]*F, len(g.next))

	for id, v := range g.next {
		if v != nil {
			row[id] = *v
		}

		committed[id] = &row[id]
	}

	g.current = committed
	g.resetNext()

	log.Tracef("row %d committed: %v", g.nextRow, row)

	return row
}

// logProgress emits a rows/sec report every 1000 rows, reproducing the
// original set_next_row_and_log cadence and rate formula.
func (g *Generator[F]) logProgress(row uint) {
	if row == 0 {
		g.lastReportRow = 0
		g.lastReportTime = time.Now()

		return
	}

	if row < g.lastReportRow+1000 {
		return
	}

	durationMs := time.Since(g.lastReportTime).Milliseconds()

	var rowsPerSecond float64
	if durationMs > 0 {
		rowsPerSecond = 1_000_000 / float64(durationMs)
	}

	percent := float64(row) / float64(g.fixedData.Degree) * 100

	log.Infof("%d/%d rows (%.1f%%), %.0f rows/s", row, g.fixedData.Degree, percent, rowsPerSecond)

	g.lastReportRow = row
	g.lastReportTime = time.Now()
}

// fatalError builds the structured diagnostic described in §4.3 step 3 /
// §7 policy / SPEC_FULL §4: unknown column names, failure reasons, both
// bit-constraint sections, and the sorted current next-row values.
func (g *Generator[F]) fatalError() error {
	unknown := g.unknownColumnNames()

	fatalLog.Error().
		Uint("row", g.nextRow).
		Strs("unknown_columns", unknown).
		Int("failed_identities", len(g.failureReasons)).
		Msg("identity check failed")

	msg := fmt.Sprintf(
		"Identity check failed: the following witness(es) could not be determined: %s\n\n%s\n\n"+
			"Global bit constraints:\n%s\n\nRow bit constraints:\n%s\n\nCurrent values:\n%s\n\n"+
			"Witness generation failed.",
		strings.Join(unknown, ", "),
		strings.Join(g.failureReasons, "\n\n"),
		g.formatGlobalBitConstraints(),
		g.formatRowBitConstraints(),
		g.formatNextValues(),
	)

	return evalerror.Unsatisfiable(msg)
}

func (g *Generator[F]) unknownColumnNames() []string {
	var names []string

	for id, v := range g.next {
		if v == nil {
			names = append(names, g.fixedData.Name(uint(id)))
		}
	}

	return names
}

func (g *Generator[F]) formatGlobalBitConstraints() string {
	names := make([]string, 0, len(g.globalBits))
	for name := range g.globalBits {
		names = append(names, name)
	}

	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("    %s: %s", name, g.globalBits[name].String())
	}

	return strings.Join(lines, "\n")
}

func (g *Generator[F]) formatRowBitConstraints() string {
	var lines []string

	for id, bc := range g.nextBitConstraints {
		if bc == nil {
			continue
		}

		lines = append(lines, fmt.Sprintf("    %s: %s", g.fixedData.Name(uint(id)), bc.String()))
	}

	return strings.Join(lines, "\n")
}

// formatNextValues sorts rows nonzero-first, then zero, then unknown, with
// column id as the tie-break — the original's precise sort key, per
// SPEC_FULL §4.
func (g *Generator[F]) formatNextValues() string {
	type entry struct {
		id  uint
		key int
		txt string
	}

	entries := make([]entry, len(g.next))

	for id, v := range g.next {
		e := entry{id: uint(id)}
		name := g.fixedData.Name(e.id)

		switch {
		case v == nil:
			e.key = 2
			e.txt = fmt.Sprintf("    %s = <unknown>", name)
		case (*v).IsZero():
			e.key = 1
			e.txt = fmt.Sprintf("    %s = %s", name, (*v).String())
		default:
			e.key = 0
			e.txt = fmt.Sprintf("    %s = %s", name, (*v).String())
		}

		entries[id] = e
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}

		return entries[i].id < entries[j].id
	})

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.txt
	}

	return strings.Join(lines, "\n")
}
