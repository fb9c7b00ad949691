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

	"github.com/urfave/cli/v3"

	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
	"github.com/visa-provisioning/udjson/pkg/serializer"
	"github.com/visa-provisioning/udjson/pkg/userdata"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "inspect",
		EnableShellCompletion: true,
		Usage:                 "Classify and validate cloud-init user-data",
		ArgsUsage:             "[SOURCE]",
		Description: `Reports which cloud-init handler would receive SOURCE (cloud-config,
script, include, boothook, jinja template, MIME multipart or gzip) together
with its size and line count. #cloud-config bodies must be a YAML mapping;
multipart and gzip payloads are opened and their parts checked.

Problems are reported, not treated as failures, unless --strict is set.`,
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "exit non-zero when problems are found",
			},
			formatFlag(serializer.FormatRaw),
			outputFlag(),
		}, loaderFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			source, err := singleSource(cmd, cfg)
			if err != nil {
				return err
			}

			ld := newLoader(cmd, cfg)
			raw, err := ld.LoadBytes(ctx, source)
			if err != nil {
				return err
			}

			content := string(raw)
			if !userdata.IsCompressed(raw) {
				if content, err = ld.Decode(raw); err != nil {
					return fmt.Errorf("%s: %w", source, err)
				}
			}

			report := userdata.Inspect(content)
			if err := writeOutput(ctx, cmd, outFormat, report); err != nil {
				return err
			}

			if cmd.Bool("strict") && !report.Valid {
				return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
					fmt.Sprintf("%s: %d problem(s) found", source, len(report.Problems)),
					map[string]any{"source": source})
			}
			return nil
		},
	}
}
