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
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nl2flow/platform/modules/base"
)

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://example.com/search", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	return req
}

func TestAPIKeyAuthHeader(t *testing.T) {
	auth := NewAPIKeyAuth("secret123", APIKeyInHeader, "")
	req := newRequest(t)

	if err := auth.Authenticate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := req.Header.Get("X-API-Key"); got != "secret123" {
		t.Errorf("expected default header X-API-Key=secret123, got %q", got)
	}
}

func TestAPIKeyAuthQuery(t *testing.T) {
	auth := NewAPIKeyAuth("secret123", APIKeyInQuery, "api_key")
	req := newRequest(t)

	if err := auth.Authenticate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := req.URL.Query().Get("api_key"); got != "secret123" {
		t.Errorf("expected query api_key=secret123, got %q", got)
	}
}

func TestAPIKeyAuthRotation(t *testing.T) {
	auth := NewAPIKeyAuth("old", APIKeyInHeader, "X-Token")
	auth.SetAPIKey("new")

	req := newRequest(t)
	if err := auth.Authenticate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := req.Header.Get("X-Token"); got != "new" {
		t.Errorf("expected rotated key, got %q", got)
	}
}

func TestBasicAuth(t *testing.T) {
	auth := NewBasicAuth("admin", "hunter2")
	req := newRequest(t)

	if err := auth.Authenticate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:hunter2"))
	if got := req.Header.Get("Authorization"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if auth.IsExpired() {
		t.Error("basic auth should never expire")
	}
}

func TestBearerTokenAuth(t *testing.T) {
	auth := NewBearerTokenAuth("tok", time.Time{})
	req := newRequest(t)

	if err := auth.Authenticate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := req.Header.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("expected Bearer tok, got %q", got)
	}
	if auth.IsExpired() {
		t.Error("zero expiry should mean never expires")
	}
}

func TestBearerTokenExpiry(t *testing.T) {
	auth := NewBearerTokenAuth("tok", time.Now().Add(-time.Minute))
	if !auth.IsExpired() {
		t.Error("expected expired token")
	}

	auth.SetToken("tok2", time.Now().Add(time.Hour))
	if auth.IsExpired() {
		t.Error("expected refreshed token to be valid")
	}
}

func TestTransportInjectsAuth(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{
		Transport: &Transport{
			Auth:    NewBearerTokenAuth("transport-token", time.Time{}),
			Limiter: NewRateLimiter(100, 10),
		},
	}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if gotHeader != "Bearer transport-token" {
		t.Errorf("expected injected bearer header, got %q", gotHeader)
	}
}

func TestTransportDoesNotMutateOriginalRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := &Transport{Auth: NewAPIKeyAuth("k", APIKeyInHeader, "X-API-Key")}

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	resp.Body.Close()

	if got := req.Header.Get("X-API-Key"); got != "" {
		t.Errorf("original request mutated: header %q", got)
	}
}

func TestAuthFromConfig(t *testing.T) {
	if got := AuthFromConfig(nil); got != nil {
		t.Errorf("expected nil provider for nil config, got %T", got)
	}
	if got := AuthFromConfig(&base.ModuleConfig{}); got != nil {
		t.Errorf("expected nil provider for empty credentials, got %T", got)
	}

	cases := []struct {
		name     string
		creds    map[string]string
		wantType string
	}{
		{"bearer", map[string]string{"bearer_token": "tok"}, "bearer"},
		{"api key", map[string]string{"api_key": "k"}, "api_key"},
		{"basic", map[string]string{"username": "u", "password": "p"}, "basic"},
		{"bearer wins over basic", map[string]string{"bearer_token": "tok", "username": "u"}, "bearer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := AuthFromConfig(&base.ModuleConfig{Credentials: tc.creds})
			if auth == nil {
				t.Fatal("expected a provider")
			}
			if auth.Type() != tc.wantType {
				t.Errorf("expected provider type %q, got %q", tc.wantType, auth.Type())
			}
		})
	}
}

func TestTransportWithoutAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{}}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
}
