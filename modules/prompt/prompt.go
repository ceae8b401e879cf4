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

package prompt

import (
	"fmt"
	"strings"

	"nl2flow/platform/modules/base"
	"nl2flow/platform/modules/registry"
)

// Context renders the documentation for one task type as prompt text,
// scanning the registry fresh. An unknown task type yields the empty
// string: emptiness, not an error, is the "no documentation available"
// signal consumed by the compiler.
func Context(reg *registry.Registry, taskType string) string {
	docs, _ := reg.Scan()

	doc, ok := docs[taskType]
	if !ok {
		return ""
	}

	return Render(doc)
}

// Render serializes one module's documentation into the fixed-structure
// text block embedded in compiler prompts. Field contents are written
// verbatim, in the order the module's contract methods returned them.
func Render(doc base.Documentation) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("\n## %s Module\n\n", doc.Metadata.Name))
	builder.WriteString(fmt.Sprintf("**Description:** %s\n", doc.Metadata.Description))
	builder.WriteString(fmt.Sprintf("**Task Type:** (%s)\n", doc.Metadata.TaskType))
	builder.WriteString(fmt.Sprintf("**Version:** %s\n\n", doc.Metadata.Version))

	builder.WriteString("### Usage Notes:\n")
	for _, note := range doc.UsageNotes {
		builder.WriteString(fmt.Sprintf("- %s\n", note))
	}

	builder.WriteString("\n### Available Methods:\n")
	for _, method := range doc.Methods {
		builder.WriteString(fmt.Sprintf("\n**%s**\n", method.Name))
		builder.WriteString(fmt.Sprintf("  Description: %s\n", method.Description))
		builder.WriteString("  Parameters:\n")
		for _, param := range method.Parameters {
			builder.WriteString(fmt.Sprintf("    - %s: %s\n", param.Name, param.Description))
		}
		builder.WriteString(fmt.Sprintf("  Returns: %s\n", method.Returns))
		if len(method.Examples) > 0 {
			builder.WriteString("  Examples:\n")
			for _, example := range method.Examples {
				builder.WriteString(fmt.Sprintf("    - %s: %s\n", example.Text, example.Code))
			}
		}
	}

	return builder.String()
}
