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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/visa-provisioning/udjson/pkg/config"
	"github.com/visa-provisioning/udjson/pkg/loader"
	"github.com/visa-provisioning/udjson/pkg/serializer"
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:      "output",
		Aliases:   []string{"o"},
		Usage:     "output file path or ConfigMap URI (cm://namespace/name); default is stdout",
		TakesFile: true,
	}
}

func formatFlag(def serializer.Format) cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(def),
		Usage:   fmt.Sprintf("output format (supported values: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

// loaderFlags control how sources are read. Unset flags fall back to the
// config file.
func loaderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "encoding",
			Usage:   "source text encoding, any WHATWG label (e.g. utf-8, windows-1252, utf-16le)",
			Sources: cli.EnvVars("UDJSON_ENCODING"),
		},
		&cli.Int64Flag{
			Name:    "max-size",
			Usage:   "maximum bytes read from a single source",
			Sources: cli.EnvVars("UDJSON_MAX_SIZE"),
		},
		&cli.StringFlag{
			Name:      "kubeconfig",
			Usage:     "kubeconfig for cm:// and secret:// sources (default: $KUBECONFIG, ~/.kube/config, in-cluster)",
			Sources:   cli.EnvVars("KUBECONFIG"),
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:    "keep-cr",
			Usage:   "keep CRLF line endings in file and stdin sources instead of reading them as LF",
			Sources: cli.EnvVars("UDJSON_KEEP_CR"),
		},
	}
}

// local marks flags as not inherited by subcommands.
func local(flags []cli.Flag) []cli.Flag {
	for _, f := range flags {
		switch fl := f.(type) {
		case *cli.StringFlag:
			fl.Local = true
		case *cli.BoolFlag:
			fl.Local = true
		case *cli.Int64Flag:
			fl.Local = true
		}
	}
	return flags
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(strings.ToLower(strings.TrimSpace(cmd.String("format"))))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q (supported values: %s)",
			cmd.String("format"), strings.Join(serializer.SupportedFormats(), ", "))
	}
	return f, nil
}

// newOutput writes to --output when set, otherwise to the command's writer.
func newOutput(cmd *cli.Command, format serializer.Format) (serializer.Serializer, error) {
	if path := strings.TrimSpace(cmd.String("output")); path != "" {
		return serializer.NewFileWriter(format, path)
	}
	return serializer.NewWriter(format, cmd.Root().Writer), nil
}

// writeOutput serializes data and releases the output.
func writeOutput(ctx context.Context, cmd *cli.Command, format serializer.Format, data any) error {
	out, err := newOutput(cmd, format)
	if err != nil {
		return err
	}
	defer closeOutput(out)
	return out.Serialize(ctx, data)
}

func closeOutput(out serializer.Serializer) {
	if closer, ok := out.(serializer.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}
}

// newLoader builds a loader from flags over the config file.
func newLoader(cmd *cli.Command, cfg *config.Config) *loader.Loader {
	opts := []loader.Option{
		loader.WithEncoding(stringSetting(cmd, "encoding", cfg.Loader.Encoding)),
		loader.WithKubeconfig(stringSetting(cmd, "kubeconfig", cfg.Loader.Kubeconfig)),
		loader.WithKeepCR(boolSetting(cmd, "keep-cr", cfg.Loader.KeepCR)),
	}
	if maxSize := int64Setting(cmd, "max-size", cfg.Loader.MaxSize); maxSize > 0 {
		opts = append(opts, loader.WithMaxSize(maxSize))
	}
	if r := cmd.Root().Reader; r != nil {
		opts = append(opts, loader.WithStdin(r))
	}
	return loader.New(opts...)
}

// sourcesOrDefault returns the positional sources, or the configured
// default source when none are given.
func sourcesOrDefault(cmd *cli.Command, cfg *config.Config) []string {
	if args := positionalArgs(cmd); len(args) > 0 {
		return args
	}
	return []string{cfg.Source}
}

// singleSource returns the one positional source, or the configured default.
func singleSource(cmd *cli.Command, cfg *config.Config) (string, error) {
	sources := sourcesOrDefault(cmd, cfg)
	if len(sources) > 1 {
		return "", fmt.Errorf("%s accepts at most one source, got %d", cmd.Name, len(sources))
	}
	return sources[0], nil
}

// parseKeyValues parses repeated key=value flags.
func parseKeyValues(flag string, values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(values))
	for _, kv := range values {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected key=value", flag, kv)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

// The *Setting helpers implement flag > env > config precedence: IsSet is
// true for both an explicit flag and its environment source.

func stringSetting(cmd *cli.Command, flag, fromConfig string) string {
	if cmd.IsSet(flag) {
		return cmd.String(flag)
	}
	return fromConfig
}

func boolSetting(cmd *cli.Command, flag string, fromConfig bool) bool {
	if cmd.IsSet(flag) {
		return cmd.Bool(flag)
	}
	return fromConfig
}

func int64Setting(cmd *cli.Command, flag string, fromConfig int64) int64 {
	if cmd.IsSet(flag) {
		return cmd.Int64(flag)
	}
	return fromConfig
}
