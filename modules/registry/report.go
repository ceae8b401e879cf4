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

package registry

import "time"

// Report describes the outcome of one registry scan. Every registered
// module gets exactly one Result, in registration order, whether or not
// it made it into the documentation map.
type Report struct {
	ScanID    string
	StartedAt time.Time
	Duration  time.Duration
	Results   []Result
}

// Result is the outcome of scanning one registered module
type Result struct {
	Module   string // registration name
	TaskType string // empty when the builder failed before metadata was read
	Err      error  // nil when the module entered the documentation map
}

// Ok reports whether the module made it into the scan's documentation map
func (res Result) Ok() bool {
	return res.Err == nil
}

// Succeeded returns the results of modules that entered the map
func (rep *Report) Succeeded() []Result {
	out := make([]Result, 0, len(rep.Results))
	for _, res := range rep.Results {
		if res.Ok() {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the results of modules that were skipped
func (rep *Report) Failed() []Result {
	out := make([]Result, 0)
	for _, res := range rep.Results {
		if !res.Ok() {
			out = append(out, res)
		}
	}
	return out
}
