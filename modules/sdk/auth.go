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

package sdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"nl2flow/platform/modules/base"
)

// AuthProvider applies authentication to outgoing HTTP requests made by
// HTTP-backed modules (OpenSearch, Prometheus query API, push gateways).
type AuthProvider interface {
	// Authenticate applies authentication to the given request
	Authenticate(ctx context.Context, req *http.Request) error

	// IsExpired checks if the current credentials have expired
	IsExpired() bool

	// Refresh refreshes the credentials if possible
	Refresh(ctx context.Context) error

	// Type returns the authentication type name
	Type() string
}

// APIKeyLocation specifies where the API key should be placed
type APIKeyLocation int

const (
	// APIKeyInHeader places the API key in a header
	APIKeyInHeader APIKeyLocation = iota
	// APIKeyInQuery places the API key in query parameters
	APIKeyInQuery
)

// APIKeyAuth provides API key authentication
type APIKeyAuth struct {
	apiKey   string
	location APIKeyLocation
	keyName  string
	mu       sync.RWMutex
}

// NewAPIKeyAuth creates a new API key authentication provider
func NewAPIKeyAuth(apiKey string, location APIKeyLocation, keyName string) *APIKeyAuth {
	if keyName == "" {
		keyName = "X-API-Key"
	}
	return &APIKeyAuth{
		apiKey:   apiKey,
		location: location,
		keyName:  keyName,
	}
}

// Authenticate applies the API key to the request
func (a *APIKeyAuth) Authenticate(ctx context.Context, req *http.Request) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.apiKey == "" {
		return fmt.Errorf("API key is not set")
	}

	switch a.location {
	case APIKeyInQuery:
		q := req.URL.Query()
		q.Set(a.keyName, a.apiKey)
		req.URL.RawQuery = q.Encode()
	default:
		req.Header.Set(a.keyName, a.apiKey)
	}

	return nil
}

// IsExpired returns false for API keys as they don't expire automatically
func (a *APIKeyAuth) IsExpired() bool {
	return false
}

// Refresh is a no-op for API keys
func (a *APIKeyAuth) Refresh(ctx context.Context) error {
	return nil
}

// Type returns the authentication type
func (a *APIKeyAuth) Type() string {
	return "api_key"
}

// SetAPIKey updates the API key
func (a *APIKeyAuth) SetAPIKey(apiKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.apiKey = apiKey
}

// BasicAuth provides HTTP Basic authentication
type BasicAuth struct {
	username string
	password string
	mu       sync.RWMutex
}

// NewBasicAuth creates a new Basic authentication provider
func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{
		username: username,
		password: password,
	}
}

// Authenticate applies Basic auth to the request
func (b *BasicAuth) Authenticate(ctx context.Context, req *http.Request) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.username == "" {
		return fmt.Errorf("username is not set")
	}

	req.SetBasicAuth(b.username, b.password)
	return nil
}

// IsExpired returns false for Basic auth
func (b *BasicAuth) IsExpired() bool {
	return false
}

// Refresh is a no-op for Basic auth
func (b *BasicAuth) Refresh(ctx context.Context) error {
	return nil
}

// Type returns the authentication type
func (b *BasicAuth) Type() string {
	return "basic"
}

// BearerTokenAuth provides Bearer token authentication
type BearerTokenAuth struct {
	token     string
	expiresAt time.Time
	mu        sync.RWMutex
}

// NewBearerTokenAuth creates a new Bearer token authentication provider.
// A zero expiresAt means the token never expires.
func NewBearerTokenAuth(token string, expiresAt time.Time) *BearerTokenAuth {
	return &BearerTokenAuth{
		token:     token,
		expiresAt: expiresAt,
	}
}

// Authenticate applies the Bearer token to the request
func (b *BearerTokenAuth) Authenticate(ctx context.Context, req *http.Request) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.token == "" {
		return fmt.Errorf("bearer token is not set")
	}

	req.Header.Set("Authorization", "Bearer "+b.token)
	return nil
}

// IsExpired checks if the token has expired
func (b *BearerTokenAuth) IsExpired() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.expiresAt.IsZero() {
		return false
	}
	return time.Now().After(b.expiresAt)
}

// Refresh is a no-op for static Bearer tokens
func (b *BearerTokenAuth) Refresh(ctx context.Context) error {
	return nil
}

// Type returns the authentication type
func (b *BearerTokenAuth) Type() string {
	return "bearer"
}

// SetToken updates the bearer token
func (b *BearerTokenAuth) SetToken(token string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
	b.expiresAt = expiresAt
}

// Transport is an http.RoundTripper that authenticates outgoing requests
// with an AuthProvider and optionally throttles them with a RateLimiter.
// HTTP-backed modules hand it to their vendor client so every request the
// SDK issues carries credentials.
type Transport struct {
	Base    http.RoundTripper
	Auth    AuthProvider
	Limiter *RateLimiter
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if t.Auth != nil {
		if t.Auth.IsExpired() {
			if err := t.Auth.Refresh(ctx); err != nil {
				return nil, fmt.Errorf("refreshing credentials: %w", err)
			}
		}
		// RoundTrippers must not mutate the caller's request
		req = req.Clone(ctx)
		if err := t.Auth.Authenticate(ctx, req); err != nil {
			return nil, err
		}
	}

	rt := t.Base
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}

// AuthFromConfig builds an AuthProvider from module credentials: a
// bearer_token credential wins, then api_key (sent as an X-Api-Key
// header), then a username/password pair as basic auth. Returns nil when
// no credential is present.
func AuthFromConfig(cfg *base.ModuleConfig) AuthProvider {
	if cfg == nil {
		return nil
	}
	if token := cfg.Credential("bearer_token"); token != "" {
		return NewBearerTokenAuth(token, time.Time{})
	}
	if key := cfg.Credential("api_key"); key != "" {
		return NewAPIKeyAuth(key, APIKeyInHeader, "X-Api-Key")
	}
	if user := cfg.Credential("username"); user != "" {
		return NewBasicAuth(user, cfg.Credential("password"))
	}
	return nil
}
