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

	"github.com/urfave/cli/v3"

	"github.com/visa-provisioning/udjson/pkg/escape"
	"github.com/visa-provisioning/udjson/pkg/serializer"
)

// EscapeResult is one escaped source in structured output formats.
type EscapeResult struct {
	Source  string `json:"source" yaml:"source"`
	Escaped string `json:"escaped" yaml:"escaped"`
	Bytes   int    `json:"bytes" yaml:"bytes"`
}

func escapeFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.BoolFlag{
			Name:    "ascii",
			Value:   true,
			Usage:   "escape non-ASCII characters as \\uXXXX (use --ascii=false to keep UTF-8)",
			Sources: cli.EnvVars("UDJSON_ASCII"),
		},
		&cli.BoolFlag{
			Name:    "escape-html",
			Usage:   "escape <, > and & as \\u003c, \\u003e and \\u0026",
			Sources: cli.EnvVars("UDJSON_ESCAPE_HTML"),
		},
		&cli.BoolFlag{
			Name:  "verify",
			Usage: "decode each literal and fail unless it matches the source text",
		},
		formatFlag(serializer.FormatRaw),
		outputFlag(),
	}, loaderFlags()...)
}

func escapeCmd() *cli.Command {
	return &cli.Command{
		Name:                  "escape",
		EnableShellCompletion: true,
		Usage:                 "Escape user-data as a JSON string literal (default command)",
		ArgsUsage:             "[SOURCE...]",
		Description: `Escapes each SOURCE as a JSON string literal. The literal is printed on a
single line; multiple sources are printed in argument order, one per line.

Sources are read concurrently. Nothing is printed unless every source was
read and escaped.

# Examples

Escape the default source:
  udjson

Escape a rendered Cluster API bootstrap secret:
  udjson escape secret://default/worker-0-bootstrap

Keep UTF-8 and emit JSON:
  udjson escape --ascii=false --format json cloud-init.yaml`,
		Flags:  escapeFlags(),
		Action: runEscape,
	}
}

func runEscape(ctx context.Context, cmd *cli.Command) error {
	cfg := configFrom(ctx)

	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	esc := escape.New(
		escape.WithASCII(boolSetting(cmd, "ascii", cfg.Escape.ASCII)),
		escape.WithEscapeHTML(boolSetting(cmd, "escape-html", cfg.Escape.EscapeHTML)),
	)

	sources := sourcesOrDefault(cmd, cfg)
	texts, err := newLoader(cmd, cfg).LoadAll(ctx, sources)
	if err != nil {
		return err
	}

	results := make([]EscapeResult, len(texts))
	for i, text := range texts {
		lit, err := esc.Escape(text)
		if err != nil {
			return fmt.Errorf("%s: %w", sources[i], err)
		}
		if cmd.Bool("verify") {
			if err := escape.Verify(text, lit); err != nil {
				return fmt.Errorf("%s: %w", sources[i], err)
			}
		}
		results[i] = EscapeResult{Source: sources[i], Escaped: lit, Bytes: len(text)}
	}

	slog.Debug("escaped sources", "count", len(results), "settings", esc.Describe())

	return writeOutput(ctx, cmd, outFormat, escapeOutput(outFormat, results))
}

// escapeOutput shapes results for the format: bare literals for raw,
// a single object for one source, a list otherwise.
func escapeOutput(format serializer.Format, results []EscapeResult) any {
	if format == serializer.FormatRaw {
		lits := make([]string, len(results))
		for i, r := range results {
			lits[i] = r.Escaped
		}
		return lits
	}
	if len(results) == 1 {
		return results[0]
	}
	return results
}
