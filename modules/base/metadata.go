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

package base

// DefaultVersion is the framework default for modules that do not declare
// their own version.
const DefaultVersion = "1.0.0"

// Metadata identifies an integration module in the catalog. TaskType is the
// key modules are looked up by; the remaining fields feed documentation and
// prompt context.
type Metadata struct {
	Name         string   `json:"name"`
	TaskType     string   `json:"task_type"`
	Description  string   `json:"description"`
	Version      string   `json:"version"`
	Keywords     []string `json:"keywords"`
	Dependencies []string `json:"dependencies"`
}

// NewMetadata builds Metadata with framework defaults applied: version
// DefaultVersion and empty keyword and dependency lists.
func NewMetadata(name, taskType, description string) Metadata {
	return Metadata{
		Name:         name,
		TaskType:     taskType,
		Description:  description,
		Version:      DefaultVersion,
		Keywords:     []string{},
		Dependencies: []string{},
	}
}

// WithVersion returns a copy with the version replaced.
func (m Metadata) WithVersion(version string) Metadata {
	m.Version = version
	return m
}

// WithKeywords returns a copy with the keyword list replaced.
func (m Metadata) WithKeywords(keywords ...string) Metadata {
	m.Keywords = keywords
	return m
}

// WithDependencies returns a copy with the dependency list replaced.
// Dependencies name the vendor SDKs the module drives.
func (m Metadata) WithDependencies(deps ...string) Metadata {
	m.Dependencies = deps
	return m
}

// ToMap serializes the metadata for transport or templating. Every field is
// present in the result: nil collections come out as empty lists and a blank
// version as DefaultVersion.
func (m Metadata) ToMap() map[string]interface{} {
	version := m.Version
	if version == "" {
		version = DefaultVersion
	}
	return map[string]interface{}{
		"name":         m.Name,
		"task_type":    m.TaskType,
		"description":  m.Description,
		"version":      version,
		"keywords":     emptyIfNil(m.Keywords),
		"dependencies": emptyIfNil(m.Dependencies),
	}
}

// Example pairs a natural-language request with the call expression that
// fulfils it. Examples feed prompt context and the interpreter's matching
// corpus; placeholders in Text use the {{name}} convention.
type Example struct {
	Text string `json:"text"`
	Code string `json:"code"`
}

// ToMap serializes the example with both keys always present.
func (e Example) ToMap() map[string]string {
	return map[string]string{
		"text": e.Text,
		"code": e.Code,
	}
}

// Parameter describes one method parameter. Slice order in
// MethodInfo.Parameters is the order parameters are documented and rendered.
type Parameter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MethodInfo documents one callable method of an integration module.
type MethodInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
	Examples    []Example   `json:"examples"`
}

// ToMap serializes the method descriptor. Parameter order is preserved and
// empty collections serialize as empty lists, never null.
func (mi MethodInfo) ToMap() map[string]interface{} {
	params := make([]map[string]string, 0, len(mi.Parameters))
	for _, p := range mi.Parameters {
		params = append(params, map[string]string{
			"name":        p.Name,
			"description": p.Description,
		})
	}
	examples := make([]map[string]string, 0, len(mi.Examples))
	for _, ex := range mi.Examples {
		examples = append(examples, ex.ToMap())
	}
	return map[string]interface{}{
		"name":        mi.Name,
		"description": mi.Description,
		"parameters":  params,
		"returns":     mi.Returns,
		"examples":    examples,
	}
}

// Documentation is the full bundle for one module: identity, usage guidance,
// and the documented method surface.
type Documentation struct {
	Metadata   Metadata     `json:"metadata"`
	UsageNotes []string     `json:"usage_notes"`
	Methods    []MethodInfo `json:"methods"`
}

// ToMap serializes the bundle under exactly three top-level keys:
// "metadata", "usage_notes", and "methods".
func (d Documentation) ToMap() map[string]interface{} {
	methods := make([]map[string]interface{}, 0, len(d.Methods))
	for _, m := range d.Methods {
		methods = append(methods, m.ToMap())
	}
	return map[string]interface{}{
		"metadata":    d.Metadata.ToMap(),
		"usage_notes": emptyIfNil(d.UsageNotes),
		"methods":     methods,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
