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

// Package sdk provides shared plumbing for NL2Flow integration modules.
//
// Modules that want uniform config access, prefixed logging, connection
// state, and operation metrics embed BaseModule and implement the
// base.Describer methods plus their vendor-specific surface:
//
//	type Module struct {
//	    *sdk.BaseModule
//	    client *s3.Client
//	}
//
//	func New(cfg *base.ModuleConfig) *Module {
//	    return &Module{BaseModule: sdk.NewBaseModule("s3", cfg)}
//	}
//
// # Retry Logic
//
// Connect paths retry transient failures with exponential backoff:
//
//	err := sdk.RetryVoid(ctx, sdk.RetryConfigFor(cfg), func() error {
//	    return client.Ping(ctx)
//	})
//
// # Rate Limiting
//
// HTTP-backed modules can throttle outgoing calls:
//
//	limiter := sdk.NewRateLimiter(50, 10) // 50 calls/second, burst of 10
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//
// # Authentication
//
// Transport authenticates a module's HTTP client with an AuthProvider:
//
//	httpClient := &http.Client{Transport: &sdk.Transport{
//	    Auth: sdk.NewBasicAuth(user, pass),
//	}}
package sdk
