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

// Package prompt renders module documentation into the text blocks the
// flow compiler embeds in its LLM prompts.
//
//	text := prompt.Context(reg, "s3")
//	if text == "" {
//		// no module documents this task type
//	}
//
// The output is plain text with a fixed section order (heading, metadata
// lines, usage notes, per-method listings), intended for prompt embedding
// rather than machine parsing.
package prompt
