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

// Package base defines the contracts and documentation model shared by all
// NL2Flow integration modules.
//
// An integration module wraps one vendor SDK (MySQL, MongoDB, S3, ...) and
// describes itself through the Describer contract: identifying Metadata,
// free-form usage notes, and a MethodInfo descriptor for every method it
// exposes. The registry scans Describers into a catalog keyed by task type,
// and the prompt package renders the resulting Documentation bundles into
// text for code-generating callers.
//
// # Implementing a module
//
// Service-backed modules additionally implement Module, which adds an
// explicit lifecycle around the vendor client:
//
//	mod := mysql.New(cfg)                 // no I/O, Describer works already
//	if err := mod.Connect(ctx); err != nil {
//	    return err                        // pool construction + ping
//	}
//	defer mod.Close(ctx)
//
// Describer methods return static data. They must stay safe to call on an
// unconnected module: the registry introspects modules without connecting
// them.
//
// # Serialization
//
// Every documentation type carries a ToMap method producing plain maps and
// slices for transport or templating. Collections are always present and
// empty when unset, never null, so downstream template code can iterate
// without nil checks.
package base
