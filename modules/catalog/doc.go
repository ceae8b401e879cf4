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

// Package catalog wires every builtin integration module into a registry.
//
// The catalog is a static, compiler-checked list of module constructors:
// the embedding application calls Register once at startup instead of the
// registry discovering modules by naming convention.
//
//	loader, err := config.NewYAMLLoader("modules.yaml")
//	if err != nil {
//		return err
//	}
//	configs, err := loader.Modules()
//	if err != nil {
//		return err
//	}
//
//	reg := registry.New()
//	if err := catalog.Register(reg, catalog.Options{Configs: configs}); err != nil {
//		return err
//	}
//
// Builtins without an enabled config show up in the scan report as skipped
// with ErrNotConfigured, mirroring how the catalog treats a module whose
// backing service is not available in a deployment.
package catalog
