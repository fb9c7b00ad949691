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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/visa-provisioning/udjson/pkg/config"
	"github.com/visa-provisioning/udjson/pkg/logging"
)

const (
	name           = "udjson"
	versionDefault = "dev"
)

// Exit codes returned by Execute.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitCanceled = 2
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

type configKey struct{}

// Execute runs the CLI with os.Args and exits the process. It is called by
// main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(ExitCode(err))
}

// Run executes the command tree with the given arguments and streams.
// Results go to stdout only; logs and errors go to stderr.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.Reader = stdin
	cmd.Writer = stdout
	cmd.ErrWriter = stderr
	return cmd.Run(ctx, shieldStdinArgs(cmd, args))
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	default:
		return ExitError
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Escape cloud-init user-data as a JSON string literal",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		ArgsUsage:             "[SOURCE...]",
		Description: fmt.Sprintf(`Reads cloud-init user-data and prints it as a single-line JSON string
literal, ready to embed in a provisioning API request.

With no arguments the default source (%s, or "source" from the config
file) is escaped. SOURCE may be a file path, file:// URL, "-" for stdin,
an http(s) URL, cm://namespace/name[/key] or secret://namespace/name[/key].

Running %s without a command is the same as "%s escape".`, config.Default().Source, name, name),
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Usage:     fmt.Sprintf("config file (default is $HOME/%s)", config.FileName),
				Sources:   cli.EnvVars("UDJSON_CONFIG"),
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("UDJSON_LOG_LEVEL", "LOG_LEVEL"),
			},
		}, local(escapeFlags())...),
		Before: initRoot,
		Action: runEscape,
		Commands: []*cli.Command{
			escapeCmd(),
			unescapeCmd(),
			inspectCmd(),
			payloadCmd(),
			submitCmd(),
			serveCmd(),
		},
	}
}

// initRoot configures logging and loads the config file once for every
// command.
func initRoot(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logLevel := cmd.String("log-level")
	logging.SetDefaultStructuredLoggerWithLevel(name, version, logLevel)

	cfg, err := config.Resolve(cmd.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", logLevel)

	return context.WithValue(ctx, configKey{}, cfg), nil
}

// configFrom returns the config loaded by initRoot, or the defaults.
func configFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.Default()
}
