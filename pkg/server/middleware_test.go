// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
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

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
)

func newTestServer(limit rate.Limit, burst int) *Server {
	return &Server{
		config:      NewConfig(),
		rateLimiter: rate.NewLimiter(limit, burst),
	}
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(100, 200)
	provided := uuid.New().String()

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"generates when missing", "", false},
		{"keeps valid uuid", provided, true},
		{"replaces invalid", "invalid-not-a-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
				captured = RequestIDFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/v1/escape", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-Id", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if _, err := uuid.Parse(captured); err != nil {
				t.Fatalf("expected valid UUID, got %q", captured)
			}
			if tt.keep && captured != tt.header {
				t.Errorf("expected request ID %s, got %s", tt.header, captured)
			}
			if !tt.keep && captured == tt.header {
				t.Errorf("expected request ID to be replaced, got %s", captured)
			}
			if got := rec.Header().Get("X-Request-Id"); got != captured {
				t.Errorf("expected X-Request-Id header %s, got %s", captured, got)
			}
		})
	}
}

func TestVersionMiddleware(t *testing.T) {
	s := newTestServer(100, 200)

	tests := []struct {
		name   string
		accept string
		want   string
	}{
		{"no accept header", "", "v1"},
		{"plain json", "application/json", "v1"},
		{"vendor v1", "application/vnd.udjson.v1+json", "v1"},
		{"vendor in list", "text/plain, application/vnd.udjson.v1+json", "v1"},
		{"unknown version", "application/vnd.udjson.v9+json", DefaultAPIVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := s.versionMiddleware(func(w http.ResponseWriter, r *http.Request) {
				captured = APIVersionFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if captured != tt.want {
				t.Errorf("context version = %q, want %q", captured, tt.want)
			}
			if got := rec.Header().Get("X-API-Version"); got != tt.want {
				t.Errorf("X-API-Version = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
		wantCalled bool
	}{
		{"no token configured", "", "", http.StatusOK, true},
		{"no token configured ignores header", "", "anything", http.StatusOK, true},
		{"matching token", "s3cret", "s3cret", http.StatusOK, true},
		{"missing token", "s3cret", "", http.StatusUnauthorized, false},
		{"wrong token", "s3cret", "s3cre", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(100, 200)
			s.config.AuthToken = tt.configured

			called := false
			handler := s.authMiddleware(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/v1/escape", nil)
			if tt.sent != "" {
				req.Header.Set(AuthHeader, tt.sent)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				var resp ErrorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Code != string(cnserrors.ErrCodeUnauthorized) {
					t.Errorf("expected code %s, got %s", cnserrors.ErrCodeUnauthorized, resp.Code)
				}
			}
		})
	}
}

func TestRateLimitMiddleware_AllowsRequests(t *testing.T) {
	s := newTestServer(100, 200)

	called := false
	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/v1/escape", nil))

	if !called {
		t.Error("expected handler to be called")
	}
	for _, h := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("expected %s header", h)
		}
	}
}

func TestRateLimitMiddleware_RejectsWhenExceeded(t *testing.T) {
	s := newTestServer(0, 0)

	called := false
	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/v1/escape", nil))

	if called {
		t.Error("handler should not be called when rate limited")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header when rate limited")
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !resp.Retryable {
		t.Error("expected rate limit error to be retryable")
	}
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	s := newTestServer(100, 200)

	handler := s.panicRecoveryMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("test panic")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/v1/escape", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}

	passthrough := s.panicRecoveryMiddleware(okHandler)
	rec = httptest.NewRecorder()
	passthrough(rec, httptest.NewRequest(http.MethodPost, "/v1/escape", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestLoggingMiddleware_TracksStatusCode(t *testing.T) {
	s := newTestServer(100, 200)

	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusUnprocessableEntity} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			handler := s.loggingMiddleware(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			})

			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodPost, "/v1/escape", nil))

			if rec.Code != status {
				t.Errorf("expected status %d, got %d", status, rec.Code)
			}
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	s := newTestServer(100, 200)

	var hasRequestID, hasAPIVersion bool
	handler := s.withMiddleware("/v1/escape", func(w http.ResponseWriter, r *http.Request) {
		hasRequestID = RequestIDFrom(r.Context()) != ""
		hasAPIVersion = r.Context().Value(contextKeyAPIVersion) != nil
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/v1/escape", nil))

	if !hasRequestID {
		t.Error("expected request ID in context")
	}
	if !hasAPIVersion {
		t.Error("expected API version in context")
	}

	for _, header := range []string{
		"X-Request-Id",
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"X-RateLimit-Reset",
		"X-API-Version",
	} {
		if rec.Header().Get(header) == "" {
			t.Errorf("expected header %s to be set", header)
		}
	}
}

func TestMiddlewareChain_AuthBeforeRateLimit(t *testing.T) {
	s := newTestServer(1, 1)
	s.config.AuthToken = "s3cret"

	handler := s.withMiddleware("/v1/escape", okHandler)

	// unauthenticated requests must not drain the bucket
	for range 3 {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/v1/escape", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/escape", nil)
	req.Header.Set(AuthHeader, "s3cret")
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected request ID on authenticated response")
	}
}
