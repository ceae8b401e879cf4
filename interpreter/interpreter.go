// Copyright 2025 NL2Flow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package interpreter

import (
	"sort"
	"strings"

	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/registry"
)

// DefaultThreshold is the minimum similarity score Interpret accepts
const DefaultThreshold = 0.1

// MatchResult is one ranked interpretation of a text command
type MatchResult struct {
	TaskType       string            // task type of the owning module
	Method         string            // matched method name
	Score          float64           // cosine similarity, 0-1
	MatchedExample string            // the example text that won
	Params         map[string]string // extracted parameter values
	Code           string            // call expression with parameters substituted
	Input          string            // the original command
}

// entry is one matchable document: a method example, or a method
// description standing in as a generic example
type entry struct {
	taskType    string
	method      string
	exampleText string
	exampleCode string
}

// Interpreter matches natural-language commands against the documented
// method examples of loaded modules. Load once, then Match/Interpret are
// safe for concurrent use.
type Interpreter struct {
	entries    []entry
	vectorizer *Vectorizer
	vectors    []Vector
}

// New creates an empty interpreter. Call Load or LoadModules before
// matching.
func New() *Interpreter {
	return &Interpreter{}
}

// LoadModules scans the registry and indexes every documented method of
// every module that survived the scan. Returns the number of matchable
// entries indexed.
func (in *Interpreter) LoadModules(reg *registry.Registry) int {
	docs, _ := reg.Scan()
	return in.Load(docs)
}

// Load indexes the given documentation map, replacing any prior index.
// Each method example becomes one matchable entry; each method description
// becomes a fallback entry whose call expression takes no arguments.
func (in *Interpreter) Load(docs map[string]base.Documentation) int {
	in.entries = in.entries[:0]

	// deterministic entry order regardless of map iteration
	taskTypes := make([]string, 0, len(docs))
	for tt := range docs {
		taskTypes = append(taskTypes, tt)
	}
	sort.Strings(taskTypes)

	for _, tt := range taskTypes {
		doc := docs[tt]
		for _, method := range doc.Methods {
			for _, ex := range method.Examples {
				if ex.Text == "" || ex.Code == "" {
					continue
				}
				in.entries = append(in.entries, entry{
					taskType:    tt,
					method:      method.Name,
					exampleText: ex.Text,
					exampleCode: ex.Code,
				})
			}
			if method.Description != "" {
				in.entries = append(in.entries, entry{
					taskType:    tt,
					method:      method.Name,
					exampleText: method.Description,
					exampleCode: method.Name + "()",
				})
			}
		}
	}

	if len(in.entries) == 0 {
		in.vectorizer = nil
		in.vectors = nil
		return 0
	}

	documents := make([]string, len(in.entries))
	for i, e := range in.entries {
		documents[i] = e.exampleText
	}
	in.vectorizer = Fit(documents)
	in.vectors = in.vectorizer.TransformAll()

	return len(in.entries)
}

// Match returns up to topK interpretations of text scoring at or above
// threshold, best first. Each method appears at most once, represented by
// its highest-scoring example.
func (in *Interpreter) Match(text string, threshold float64, topK int) []MatchResult {
	if in.vectorizer == nil || topK <= 0 {
		return nil
	}

	input := in.vectorizer.Transform(text)

	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, len(in.vectors))
	for i, vec := range in.vectors {
		if score := Cosine(input, vec); score >= threshold && score > 0 {
			candidates = append(candidates, scored{i, score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	results := make([]MatchResult, 0, topK)
	seen := make(map[string]struct{})

	for _, cand := range candidates {
		e := in.entries[cand.idx]

		key := e.taskType + "." + e.method
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		params := extractParams(text, e.exampleText)
		results = append(results, MatchResult{
			TaskType:       e.taskType,
			Method:         e.method,
			Score:          cand.score,
			MatchedExample: e.exampleText,
			Params:         params,
			Code:           generateCode(e.exampleCode, params),
			Input:          text,
		})

		if len(results) >= topK {
			break
		}
	}

	return results
}

// Interpret returns the single best interpretation of text, or nil when
// nothing scores above the default threshold
func (in *Interpreter) Interpret(text string) *MatchResult {
	results := in.Match(text, DefaultThreshold, 1)
	if len(results) == 0 {
		return nil
	}
	return &results[0]
}

// ProcessLines interprets each line of a command script. Blank lines and
// lines starting with # yield nil; so do lines scoring below threshold.
func (in *Interpreter) ProcessLines(lines []string, threshold float64) []*MatchResult {
	results := make([]*MatchResult, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			results = append(results, nil)
			continue
		}

		matches := in.Match(line, threshold, 1)
		if len(matches) == 0 {
			results = append(results, nil)
			continue
		}
		results = append(results, &matches[0])
	}
	return results
}
