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

// Package logging configures log/slog for udjson.
//
// Results (escaped literals, reports, instance requests) go to stdout and
// nothing else does: every log record is a JSON object on stderr, so
//
//	udjson escape cloud-init.yaml > literal.txt
//
// captures only the literal even at debug level.
//
// # Levels
//
// ParseLogLevel accepts debug, info, warn (or warning) and error in any
// case; anything else is info. The CLI takes the level from --log-level,
// then UDJSON_LOG_LEVEL, then LOG_LEVEL. Library callers that pass an
// empty level get LOG_LEVEL.
//
// Debug records carry the source location:
//
//	{"time":"...","level":"DEBUG","source":{"function":"...","file":"...","line":112},
//	 "msg":"escaped sources","module":"udjson","version":"v0.3.0","count":2}
//
// # Usage
//
// The root command installs the default logger before any subcommand runs:
//
//	logging.SetDefaultStructuredLoggerWithLevel("udjson", version, cmd.String("log-level"))
//
// The HTTP server routes net/http's own error log through slog:
//
//	srv.ErrorLog = logging.NewLogLogger(slog.LevelWarn, false)
package logging
