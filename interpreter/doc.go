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

// Package interpreter matches natural-language commands to documented
// module methods and generates call expressions from them.
//
// It indexes the usage examples every module publishes through its
// Describer surface, scores commands against them with TF-IDF cosine
// similarity, extracts parameter values from the command text, and
// substitutes them into the matched example's call expression:
//
//	in := interpreter.New()
//	in.LoadModules(reg)
//
//	if result := in.Interpret("upload report.pdf to bucket invoices"); result != nil {
//		fmt.Println(result.Code) // s3_put_object(bucket='invoices', ...)
//	}
//
// Matching is lexical, not semantic: the {{placeholder}} markers in example
// text both align parameter positions and keep parameter values from
// polluting the similarity vocabulary.
package interpreter
