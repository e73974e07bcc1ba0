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
	"encoding/json"

	"github.com/fxamacker/cbor/v2"
)

// EncodeJSON renders doc as JSON, the CLI's default human-inspectable wire
// format (§2.3).
func EncodeJSON(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeJSON parses a Document previously written by EncodeJSON.
func DecodeJSON(data []byte) (Document, error) {
	var doc Document
	err := json.Unmarshal(data, &doc)

	return doc, err
}

// EncodeCBOR renders doc as CBOR, the compact binary alternative (§2.4/§3)
// used when trace files are large enough that JSON's overhead matters.
func EncodeCBOR(doc Document) ([]byte, error) {
	return cbor.Marshal(doc)
}

// DecodeCBOR parses a Document previously written by EncodeCBOR.
func DecodeCBOR(data []byte) (Document, error) {
	var doc Document
	err := cbor.Unmarshal(data, &doc)

	return doc, err
}

// EncodeTraceJSON renders a computed witness trace as JSON, the CLI's
// generate subcommand output format.
func EncodeTraceJSON(trace Trace) ([]byte, error) {
	return json.MarshalIndent(trace, "", "  ")
}

// EncodeAnswersJSON renders a QueryAnswers prefix as JSON.
func EncodeAnswersJSON(answers QueryAnswers) ([]byte, error) {
	return json.MarshalIndent(answers, "", "  ")
}

// DecodeAnswersJSON parses a QueryAnswers prefix previously written by
// EncodeAnswersJSON.
func DecodeAnswersJSON(data []byte) (QueryAnswers, error) {
	var answers QueryAnswers
	err := json.Unmarshal(data, &answers)

	return answers, err
}

// EncodeAnswersCBOR renders a QueryAnswers prefix as CBOR.
func EncodeAnswersCBOR(answers QueryAnswers) ([]byte, error) {
	return cbor.Marshal(answers)
}

// DecodeAnswersCBOR parses a QueryAnswers prefix previously written by
// EncodeAnswersCBOR.
func DecodeAnswersCBOR(data []byte) (QueryAnswers, error) {
	var answers QueryAnswers
	err := cbor.Unmarshal(data, &answers)

	return answers, err
}
