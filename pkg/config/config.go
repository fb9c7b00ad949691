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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/visa-provisioning/udjson/pkg/defaults"
	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
	"github.com/visa-provisioning/udjson/pkg/serializer"
)

// FileName is the config file looked up in the home directory.
const FileName = ".udjson.yaml"

// Config is the file-level configuration. Flags and UDJSON_* environment
// variables override any value set here.
type Config struct {
	Source   string         `json:"source" yaml:"source"`
	Escape   EscapeConfig   `json:"escape" yaml:"escape"`
	Loader   LoaderConfig   `json:"loader" yaml:"loader"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}

// EscapeConfig holds escaper options.
type EscapeConfig struct {
	ASCII      bool `json:"ascii" yaml:"ascii"`
	EscapeHTML bool `json:"escapeHTML" yaml:"escapeHTML"`
}

// LoaderConfig holds source loading options.
type LoaderConfig struct {
	MaxSize    int64  `json:"maxSize" yaml:"maxSize"`
	Encoding   string `json:"encoding" yaml:"encoding"`
	Kubeconfig string `json:"kubeconfig" yaml:"kubeconfig"`
	// KeepCR preserves CRLF line endings in file and stdin sources.
	KeepCR bool `json:"keepCR" yaml:"keepCR"`
}

// ProviderConfig holds provider API options.
type ProviderConfig struct {
	Endpoint  string        `json:"endpoint" yaml:"endpoint"`
	AuthToken string        `json:"authToken" yaml:"authToken"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
}

// ServerConfig holds HTTP service options.
type ServerConfig struct {
	Address        string  `json:"address" yaml:"address"`
	Port           int     `json:"port" yaml:"port"`
	AuthToken      string  `json:"authToken" yaml:"authToken"`
	RateLimit      float64 `json:"rateLimit" yaml:"rateLimit"`
	RateLimitBurst int     `json:"rateLimitBurst" yaml:"rateLimitBurst"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Source: defaults.Source,
		Escape: EscapeConfig{
			ASCII:      true,
			EscapeHTML: false,
		},
		Loader: LoaderConfig{
			MaxSize:  defaults.MaxUserDataSize,
			Encoding: defaults.Encoding,
		},
		Provider: ProviderConfig{
			Endpoint: defaults.ProviderEndpoint,
			Timeout:  defaults.ProviderTimeout,
		},
		Server: ServerConfig{
			Port:           defaults.ServerPort,
			RateLimit:      defaults.ServerRateLimit,
			RateLimitBurst: defaults.ServerRateLimitBurst,
		},
	}
}

// DefaultPath returns $HOME/.udjson.yaml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	reader, err := serializer.NewFileReaderAuto(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
				"config file not found", err, map[string]any{"path": path})
		}
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"failed to open config file", err, map[string]any{"path": path})
	}
	defer reader.Close()

	if err := reader.Deserialize(cfg); err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"failed to parse config file", err, map[string]any{"path": path})
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("config loaded", "path", path)
	return cfg, nil
}

// Resolve loads an explicit path, or the default path when it exists, or
// falls back to Default. An explicit path that does not exist is an error.
func Resolve(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path := DefaultPath()
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks ranges that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	switch {
	case c.Loader.MaxSize < 0:
		return invalid("loader.maxSize", "must not be negative")
	case c.Provider.Timeout < 0:
		return invalid("provider.timeout", "must not be negative")
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return invalid("server.port", "must be between 0 and 65535")
	case c.Server.RateLimit < 0:
		return invalid("server.rateLimit", "must not be negative")
	case c.Server.RateLimitBurst < 0:
		return invalid("server.rateLimitBurst", "must not be negative")
	}
	return nil
}

func invalid(field, msg string) error {
	return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
		fmt.Sprintf("invalid config: %s %s", field, msg), map[string]any{"field": field})
}
