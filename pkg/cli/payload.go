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
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/visa-provisioning/udjson/pkg/config"
	"github.com/visa-provisioning/udjson/pkg/payload"
	"github.com/visa-provisioning/udjson/pkg/provider"
	"github.com/visa-provisioning/udjson/pkg/serializer"
)

// SubmitResult is printed by the submit command.
type SubmitResult struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

func (r SubmitResult) String() string {
	return r.ID
}

func requestFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:      "request",
			Aliases:   []string{"f"},
			Usage:     "instance request file (YAML or JSON, path or http(s) URL); flags override its fields",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "instance name",
		},
		&cli.StringFlag{
			Name:  "image",
			Usage: "image ID",
		},
		&cli.StringFlag{
			Name:  "flavour",
			Usage: "flavour ID",
		},
		&cli.StringSliceFlag{
			Name:  "security-group",
			Usage: "security group name (can be repeated)",
		},
		&cli.StringSliceFlag{
			Name:  "metadata",
			Usage: "instance metadata (format: key=value, can be repeated)",
		},
		&cli.BoolFlag{
			Name:  "boot-command",
			Usage: "carry the user-data in bootCommand instead of metadata[\"user-data\"]",
		},
		&cli.BoolFlag{
			Name:  "no-user-data",
			Usage: "do not read a source; send the request as given",
		},
	}, loaderFlags()...)
}

func payloadCmd() *cli.Command {
	return &cli.Command{
		Name:                  "payload",
		EnableShellCompletion: true,
		Usage:                 "Print an instance request with the user-data embedded",
		ArgsUsage:             "[SOURCE]",
		Description: `Builds the provider's instance request body from flags (or --request)
and embeds SOURCE as metadata["user-data"], or as bootCommand with
--boot-command. The request is validated the same way the provider does.

# Examples

  udjson payload --name web-1 --image ubuntu-24.04 --flavour m1.small \
    --security-group default --metadata role=web cloud-init.yaml

Store the request in a ConfigMap:
  udjson payload --request base.yaml --name web-2 --output cm://provisioning/web-2`,
		Flags: append(requestFlags(),
			formatFlag(serializer.FormatJSON),
			outputFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			req, err := buildRequest(ctx, cmd, configFrom(ctx))
			if err != nil {
				return err
			}

			return writeOutput(ctx, cmd, outFormat, req)
		},
	}
}

func submitCmd() *cli.Command {
	return &cli.Command{
		Name:                  "submit",
		EnableShellCompletion: true,
		Usage:                 "Build an instance request and POST it to the provider API",
		ArgsUsage:             "[SOURCE]",
		Description: `Same as "payload", then sends the request to {endpoint}/api/instances and
prints the ID of the created instance.

# Examples

  udjson submit --endpoint https://provider.internal --auth-token "$TOKEN" \
    --name web-1 --image ubuntu-24.04 --flavour m1.small cloud-init.yaml`,
		Flags: append(requestFlags(),
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "provider API base URL",
				Sources: cli.EnvVars("UDJSON_PROVIDER_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "auth-token",
				Usage:   "value of the x-auth-token header",
				Sources: cli.EnvVars("UDJSON_PROVIDER_AUTH_TOKEN"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "provider request timeout",
				Sources: cli.EnvVars("UDJSON_PROVIDER_TIMEOUT"),
			},
			formatFlag(serializer.FormatRaw),
			outputFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			req, err := buildRequest(ctx, cmd, cfg)
			if err != nil {
				return err
			}

			// Open the destination first so a bad --output fails before the
			// instance is created.
			out, err := newOutput(cmd, outFormat)
			if err != nil {
				return err
			}
			defer closeOutput(out)

			timeout := cfg.Provider.Timeout
			if cmd.IsSet("timeout") {
				timeout = cmd.Duration("timeout")
			}

			client, err := provider.NewClient(
				stringSetting(cmd, "endpoint", cfg.Provider.Endpoint),
				provider.WithAuthToken(stringSetting(cmd, "auth-token", cfg.Provider.AuthToken)),
				provider.WithTimeout(timeout),
			)
			if err != nil {
				return err
			}

			id, err := client.CreateInstance(ctx, req)
			if err != nil {
				return err
			}

			slog.Info("instance created", "id", id, "name", req.Name, "endpoint", client.Endpoint())

			return out.Serialize(ctx, SubmitResult{
				ID:       id,
				Name:     req.Name,
				Endpoint: client.Endpoint(),
			})
		},
	}
}

// buildRequest assembles the instance request from --request, flags and
// the user-data source, then validates it.
func buildRequest(ctx context.Context, cmd *cli.Command, cfg *config.Config) (*payload.InstanceRequest, error) {
	req := &payload.InstanceRequest{}
	if path := cmd.String("request"); path != "" {
		loaded, err := serializer.FromFile[payload.InstanceRequest](path)
		if err != nil {
			return nil, fmt.Errorf("failed to load request from %q: %w", path, err)
		}
		req = loaded
	}

	if cmd.IsSet("name") {
		req.Name = cmd.String("name")
	}
	if cmd.IsSet("image") {
		req.ImageID = cmd.String("image")
	}
	if cmd.IsSet("flavour") {
		req.FlavourID = cmd.String("flavour")
	}

	opts := []payload.Option{}
	if groups := cmd.StringSlice("security-group"); len(groups) > 0 {
		opts = append(opts, payload.WithSecurityGroups(groups...))
	}

	metadata, err := parseKeyValues("metadata", cmd.StringSlice("metadata"))
	if err != nil {
		return nil, err
	}
	for _, k := range slices.Sorted(maps.Keys(metadata)) {
		opts = append(opts, payload.WithMetadata(k, metadata[k]))
	}

	if !cmd.Bool("no-user-data") {
		source, err := singleSource(cmd, cfg)
		if err != nil {
			return nil, err
		}
		content, err := newLoader(cmd, cfg).Load(ctx, source)
		if err != nil {
			return nil, err
		}
		if cmd.Bool("boot-command") {
			opts = append(opts, payload.WithBootCommand(content))
		} else {
			opts = append(opts, payload.WithUserData(content))
		}
	}

	for _, opt := range opts {
		opt(req)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
