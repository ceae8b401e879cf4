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

// Package registry maintains the declared catalog of integration modules
// and scans it for documentation.
//
// Modules are registered explicitly, by name, with a Builder that returns
// an unconnected instance:
//
//	reg := registry.New()
//	if err := reg.Register("mysql", func() (base.Describer, error) {
//		return mysql.New(nil), nil
//	}); err != nil {
//		return err
//	}
//
// A scan walks the registrations in order, builds each module, and collects
// its documentation keyed by task type:
//
//	docs, report := reg.Scan()
//	for _, res := range report.Failed() {
//		fmt.Printf("skipped %s: %v\n", res.Module, res.Err)
//	}
//
// Scan is best-effort and never fails: broken modules are reported and
// skipped so that one bad registration cannot hide the rest of the catalog.
// Diagnostics go to stderr, keeping stdout clean for rendered output.
package registry
