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

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/visa-provisioning/udjson/pkg/api"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the escape API as an HTTP service",
		Description: `Serves POST /v1/escape and POST /v1/inspect, plus /health, /ready and
/metrics, until SIGINT or SIGTERM. Escape and loader settings from the
config file become the per-request defaults.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Usage:   "listen address (empty for all interfaces)",
				Sources: cli.EnvVars("UDJSON_ADDRESS"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "listen port",
				Sources: cli.EnvVars("UDJSON_PORT", "PORT"),
			},
			&cli.StringFlag{
				Name:    "auth-token",
				Usage:   "require this value in the x-auth-token header",
				Sources: cli.EnvVars("UDJSON_SERVER_AUTH_TOKEN"),
			},
			&cli.Float64Flag{
				Name:    "rate-limit",
				Usage:   "sustained requests per second",
				Sources: cli.EnvVars("UDJSON_RATE_LIMIT"),
			},
			&cli.IntFlag{
				Name:    "rate-limit-burst",
				Usage:   "token bucket burst size",
				Sources: cli.EnvVars("UDJSON_RATE_LIMIT_BURST"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := *configFrom(ctx)

			cfg.Server.Address = stringSetting(cmd, "address", cfg.Server.Address)
			cfg.Server.AuthToken = stringSetting(cmd, "auth-token", cfg.Server.AuthToken)
			if cmd.IsSet("port") {
				cfg.Server.Port = cmd.Int("port")
			}
			if cmd.IsSet("rate-limit") {
				cfg.Server.RateLimit = cmd.Float64("rate-limit")
			}
			if cmd.IsSet("rate-limit-burst") {
				cfg.Server.RateLimitBurst = cmd.Int("rate-limit-burst")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return api.Serve(ctx, &cfg, version)
		},
	}
}
