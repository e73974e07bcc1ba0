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
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-witgen/pkg/bitconstraint"
	"github.com/consensys/go-witgen/pkg/field"
	"github.com/consensys/go-witgen/pkg/field/bls377"
	"github.com/consensys/go-witgen/pkg/field/goldilocks"
	"github.com/consensys/go-witgen/pkg/fixeddata"
	"github.com/consensys/go-witgen/pkg/fixedlookup"
	"github.com/consensys/go-witgen/pkg/pil"
	"github.com/consensys/go-witgen/pkg/witgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate fixed_data_file...",
	Short: "Compute a witness trace for one or more analyzed PIL modules.",
	Long: `Reads one or more JSON (or CBOR) fixed-data-plus-identity descriptions,
one per independent PIL module, optionally a shared witness-query answer
file, runs a generator per module concurrently, and writes the merged
witness trace as JSON. A single file is the common case; passing several
runs them as disjoint, concurrently-solved segments (§5).`,
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		modules := make([][]byte, len(args))

		for i, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			modules[i] = data
		}

		answers := readAnswers(GetString(cmd, "answers"))

		switch strings.ToLower(GetString(cmd, "field")) {
		case "bls377":
			runGenerate[bls377.Element](modules, GetFlag(cmd, "cbor"), answers, GetString(cmd, "out"))
		case "goldilocks":
			runGenerate[goldilocks.Element](modules, GetFlag(cmd, "cbor"), answers, GetString(cmd, "out"))
		default:
			fmt.Printf("unknown prime field %q\n", GetString(cmd, "field"))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("answers", "", "path to a JSON witness-query answer file")
	generateCmd.Flags().String("out", "", "path to write the computed witness trace (JSON); defaults to stdout")
	generateCmd.Flags().Bool("cbor", false, "read the fixed-data file as CBOR instead of JSON")
}

func readAnswers(path string) fixeddata.QueryAnswers {
	if path == "" {
		return fixeddata.QueryAnswers{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	answers, err := fixeddata.DecodeAnswersJSON(data)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	return answers
}

func runGenerate[F field.Element[F]](modules [][]byte, cborIn bool, answers fixeddata.QueryAnswers, outFile string) {
	var query witgen.QueryCallback[F]
	if answers.Answers != nil {
		query = fixeddata.Callback[F](answers)
	}

	fixedDatas := make([]*pil.FixedData[F], len(modules))
	generators := make([]*witgen.Generator[F], len(modules))

	var segments []witgen.Segment[F]
	var segmentModules []int // module index for each entry in segments

	for i, data := range modules {
		doc, err := decodeDocument(data, cborIn)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fixedData, identities, err := fixeddata.Build[F](doc)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		gen := witgen.NewGenerator[F](
			fixedData,
			fixedlookup.New[F](),
			identities,
			map[string]bitconstraint.BitConstraint{},
			nil,
			query,
		)

		fixedDatas[i] = fixedData
		generators[i] = gen

		// A degree-0 module has no rows to solve; RunSegments has no
		// representation for an empty row range, so it is left out of
		// the concurrent fan-out and handled below as an empty trace.
		if fixedData.Degree > 0 {
			segments = append(segments, witgen.Segment[F]{Generator: gen, FirstRow: 0, LastRow: fixedData.Degree - 1})
			segmentModules = append(segmentModules, i)
		}
	}

	// Each module is an independent PIL segment with its own disjoint
	// witness columns (§5): solve them concurrently, one goroutine per
	// module, then recheck each module's own wrap-around sequentially
	// (cheap relative to the fixpoint itself).
	results, err := witgen.RunSegments[F](context.Background(), segments)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	rowsByModule := make([][][]F, len(modules))
	for j, rows := range results {
		rowsByModule[segmentModules[j]] = rows
	}

	columns := make(map[string][]string)

	var degree uint

	for i, fixedData := range fixedDatas {
		rows := rowsByModule[i]

		if fixedData.Degree > 0 {
			if err := generators[i].RecheckWraparound(rows[fixedData.Degree-1], rows[0]); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}

		trace := fixeddata.ToTrace(fixedData, rows, generators[i].MachineWitnessColValues())
		for name, values := range trace.Columns {
			columns[name] = values
		}

		if trace.Degree > degree {
			degree = trace.Degree
		}
	}

	writeTrace(fixeddata.Trace{Degree: degree, Columns: columns}, outFile)
}

func decodeDocument(data []byte, cborIn bool) (fixeddata.Document, error) {
	if cborIn {
		return fixeddata.DecodeCBOR(data)
	}

	return fixeddata.DecodeJSON(data)
}

func writeTrace(trace fixeddata.Trace, outFile string) {
	out, err := fixeddata.EncodeTraceJSON(trace)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if outFile == "" {
		fmt.Println(string(out))
		return
	}

	if err := os.WriteFile(outFile, out, 0o644); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
