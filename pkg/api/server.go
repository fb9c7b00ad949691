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

package api

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/visa-provisioning/udjson/pkg/config"
	"github.com/visa-provisioning/udjson/pkg/server"
)

const name = "udjson"

// Routes returns the API handlers keyed by path.
func Routes(h *Handler) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/escape":  h.HandleEscape,
		"/v1/inspect": h.HandleInspect,
	}
}

// NewServer builds the HTTP server for cfg without starting it.
func NewServer(cfg *config.Config, version string) *server.Server {
	if cfg == nil {
		cfg = config.Default()
	}

	sc := server.NewConfig()
	sc.Name = name
	sc.Version = version
	sc.Address = cfg.Server.Address
	sc.Port = cfg.Server.Port
	sc.AuthToken = cfg.Server.AuthToken
	sc.RateLimit = rate.Limit(cfg.Server.RateLimit)
	sc.RateLimitBurst = cfg.Server.RateLimitBurst
	sc.Handlers = Routes(NewHandler(
		WithASCII(cfg.Escape.ASCII),
		WithEscapeHTML(cfg.Escape.EscapeHTML),
		WithEncoding(cfg.Loader.Encoding),
		WithMaxSize(cfg.Loader.MaxSize),
	))

	return server.New(server.WithConfig(sc))
}

// Serve runs the HTTP service until ctx is canceled or the process is
// signaled.
func Serve(ctx context.Context, cfg *config.Config, version string) error {
	s := NewServer(cfg, version)

	slog.Info("starting",
		"name", name,
		"version", version,
		"address", s.Addr(),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}
