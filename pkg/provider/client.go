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

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/visa-provisioning/udjson/pkg/defaults"
	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
	"github.com/visa-provisioning/udjson/pkg/payload"
	"github.com/visa-provisioning/udjson/pkg/serializer"
)

const (
	// AuthHeader carries the provider API token.
	AuthHeader = "x-auth-token"

	instancesPath   = "/api/instances"
	maxResponseSize = 1 << 20
	userAgent       = "udjson/1.0"
)

// Option configures a Client.
type Option func(*Client)

// WithAuthToken sets the x-auth-token header value. Empty sends no header.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds each API call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client talks to the provider API.
type Client struct {
	endpoint  *url.URL
	authToken string
	timeout   time.Duration
	http      *http.Client
}

// NewClient returns a client for the API rooted at endpoint,
// e.g. http://localhost:4000.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"provider endpoint must be an http(s) URL", err, map[string]any{"endpoint": endpoint})
	}

	c := &Client{
		endpoint: u,
		timeout:  defaults.ProviderTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = serializer.NewHttpReader(
			serializer.WithTotalTimeout(c.timeout),
			serializer.WithUserAgent(userAgent),
		).Client
	}
	return c, nil
}

// Endpoint returns the API base URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

type createResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateInstance validates req, posts it and returns the new instance ID.
func (c *Client) CreateInstance(ctx context.Context, req *payload.InstanceRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	body, err := req.Body()
	if err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.endpoint.JoinPath(instancesPath).String()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to build provider request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if c.authToken != "" {
		httpReq.Header.Set(AuthHeader, c.authToken)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", transportError(target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", transportError(target, err)
	}

	slog.Debug("provider response",
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", statusError(resp, data)
	}

	var created createResponse
	if err := json.Unmarshal(data, &created); err != nil {
		return "", cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"provider returned an unreadable response", err, map[string]any{"status": resp.StatusCode})
	}
	if created.ID == "" {
		return "", cnserrors.NewWithContext(cnserrors.ErrCodeInternal,
			"provider response has no instance id", map[string]any{"status": resp.StatusCode})
	}

	slog.Info("instance created", "id", created.ID, "name", req.Name)
	return created.ID, nil
}

func statusError(resp *http.Response, data []byte) error {
	var apiErr errorResponse
	_ = json.Unmarshal(data, &apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = apiErr.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = resp.Status
	}

	ctx := map[string]any{"status": resp.StatusCode}
	switch code := resp.StatusCode; {
	case code == http.StatusBadRequest:
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, "provider rejected request: "+msg, ctx)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return cnserrors.NewWithContext(cnserrors.ErrCodeUnauthorized, "provider rejected credentials: "+msg, ctx)
	case code == http.StatusNotFound:
		return cnserrors.NewWithContext(cnserrors.ErrCodeNotFound, "provider endpoint not found: "+msg, ctx)
	case code == http.StatusTooManyRequests:
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			ctx["retryAfter"] = ra
		}
		return cnserrors.NewWithContext(cnserrors.ErrCodeRateLimitExceeded, "provider rate limit exceeded: "+msg, ctx)
	case code >= http.StatusInternalServerError:
		return cnserrors.NewWithContext(cnserrors.ErrCodeUnavailable, "provider unavailable: "+msg, ctx)
	default:
		return cnserrors.NewWithContext(cnserrors.ErrCodeInternal,
			fmt.Sprintf("unexpected provider status %d: %s", code, msg), ctx)
	}
}

func transportError(target string, err error) error {
	ctx := map[string]any{"url": target}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeTimeout, "provider request timed out", err, ctx)
	}
	return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal, "provider request failed", err, ctx)
}
