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
	"math"
	"regexp"
	"strings"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{[^}]+\}\}`)
	nonWordRe     = regexp.MustCompile(`[^\w\s]`)
)

// Vector is a sparse token-weight vector
type Vector map[string]float64

// Vectorizer builds TF-IDF vectors over a fixed document corpus. Fit once
// over the method-example corpus; Transform is then safe for concurrent use.
type Vectorizer struct {
	vocabulary map[string]struct{}
	idf        map[string]float64
	documents  [][]string
}

// tokenize lowercases, strips placeholder markers and punctuation, and
// drops one-character tokens. Placeholders collapse to a shared PARAM token
// so examples with different parameter values still align.
func tokenize(text string) []string {
	text = placeholderRe.ReplaceAllString(text, " PARAM ")
	text = nonWordRe.ReplaceAllString(strings.ToLower(text), " ")

	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Fit builds the vocabulary and inverse document frequencies from the
// given documents
func Fit(documents []string) *Vectorizer {
	v := &Vectorizer{
		vocabulary: make(map[string]struct{}),
		idf:        make(map[string]float64),
		documents:  make([][]string, 0, len(documents)),
	}

	docFreq := make(map[string]int)
	for _, doc := range documents {
		tokens := tokenize(doc)
		v.documents = append(v.documents, tokens)

		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			v.vocabulary[t] = struct{}{}
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}

	numDocs := float64(len(v.documents))
	for token, freq := range docFreq {
		v.idf[token] = math.Log((numDocs+1)/(float64(freq)+1)) + 1
	}

	return v
}

// Transform converts text into a TF-IDF vector over the fitted vocabulary.
// Tokens outside the vocabulary contribute nothing.
func (v *Vectorizer) Transform(text string) Vector {
	return v.vectorize(tokenize(text))
}

// TransformAll returns the vectors of every fitted document, in fit order
func (v *Vectorizer) TransformAll() []Vector {
	vectors := make([]Vector, 0, len(v.documents))
	for _, tokens := range v.documents {
		vectors = append(vectors, v.vectorize(tokens))
	}
	return vectors
}

func (v *Vectorizer) vectorize(tokens []string) Vector {
	if len(tokens) == 0 {
		return Vector{}
	}

	tf := make(map[string]int, len(tokens))
	maxTF := 1
	for _, t := range tokens {
		tf[t]++
		if tf[t] > maxTF {
			maxTF = tf[t]
		}
	}

	vec := make(Vector, len(tf))
	for token, count := range tf {
		if _, ok := v.vocabulary[token]; !ok {
			continue
		}
		idf, ok := v.idf[token]
		if !ok {
			idf = 1.0
		}
		// augmented term frequency, damped so long examples do not dominate
		tfNorm := 0.5 + 0.5*(float64(count)/float64(maxTF))
		vec[token] = tfNorm * idf
	}
	return vec
}

// Cosine computes the cosine similarity of two sparse vectors, 0 when
// either is empty or they share no tokens
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot float64
	for k, av := range a {
		if bv, ok := b[k]; ok {
			dot += av * bv
		}
	}
	if dot == 0 {
		return 0
	}

	var magA, magB float64
	for _, av := range a {
		magA += av * av
	}
	for _, bv := range b {
		magB += bv * bv
	}
	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
