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
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/visa-provisioning/udjson/pkg/escape"
	"github.com/visa-provisioning/udjson/pkg/loader"
)

func unescapeCmd() *cli.Command {
	return &cli.Command{
		Name:                  "unescape",
		EnableShellCompletion: true,
		Usage:                 "Decode a JSON string literal back to text",
		ArgsUsage:             "[LITERAL-SOURCE]",
		Description: `Reads a JSON string literal (as produced by "udjson escape") from
LITERAL-SOURCE, or stdin when omitted, and prints the decoded text exactly.

# Examples

  udjson escape cloud-init.yaml | udjson unescape`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:      "output",
				Aliases:   []string{"o"},
				Usage:     "output file path; default is stdout",
				TakesFile: true,
			},
		}, loaderFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)

			args := positionalArgs(cmd)
			if len(args) > 1 {
				return fmt.Errorf("unescape accepts at most one source, got %d", len(args))
			}
			source := loader.StdinURI
			if len(args) == 1 {
				source = args[0]
			}

			literal, err := newLoader(cmd, cfg).Load(ctx, source)
			if err != nil {
				return err
			}

			text, err := escape.Unescape(literal)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}

			if path := cmd.String("output"); path != "" {
				if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				return nil
			}
			_, err = io.WriteString(cmd.Root().Writer, text)
			return err
		},
	}
}
