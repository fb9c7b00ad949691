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

// Package server is the HTTP runtime behind "udjson serve": routing, the
// middleware chain, health probes, Prometheus metrics and graceful shutdown.
// API handlers are supplied by the caller (see pkg/api).
//
// # Usage
//
//	s := server.New(
//	    server.WithName("udjson"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/v1/escape": h.HandleEscape,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// # Middleware
//
// Every API route runs behind, outermost first: metrics, API version
// header, request ID, panic recovery, auth, rate limit, logging.
// /health, /ready and /metrics bypass the chain.
//
// Request ID Tracking:
//
//	Requests may carry an X-Request-Id header (UUID format). A missing or
//	malformed value is replaced with a generated one. The ID is echoed in
//	the X-Request-Id response header and in every error body.
//
// Authentication:
//
//	When Config.AuthToken is set, requests must send the same value in the
//	x-auth-token header or receive 401 UNAUTHORIZED.
//
// Rate Limiting:
//
//	A single token bucket (golang.org/x/time/rate) is shared by all routes.
//	Responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
//	X-RateLimit-Reset. Rejected requests get 429 with Retry-After.
//
// # Error Handling
//
// All errors return a consistent JSON structure:
//
//	{
//	  "code": "ENCODING_ERROR",
//	  "message": "content is not valid UTF-8",
//	  "details": {"offset": 2},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2026-01-12T12:00:00Z",
//	  "retryable": false
//	}
//
// Status codes follow HTTPStatusFromCode.
//
// # Environment
//
//	PORT                      listen port when not set explicitly
//	SHUTDOWN_TIMEOUT_SECONDS  graceful shutdown bound, to match the pod's
//	                          termination grace period
package server
