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

// Package cli implements the udjson command-line interface.
//
// # Commands
//
// escape (default) - Escape user-data as a JSON string literal:
//
//	udjson [SOURCE...]
//	udjson escape --ascii=false --format json cloud-init.yaml
//
// With no SOURCE the configured default (userdata.txt) is read. SOURCE may
// be a path, file:// URL, "-" (stdin), http(s) URL, cm://ns/name[/key] or
// secret://ns/name[/key]. Output is one literal per line.
//
// unescape - Decode a literal back to text:
//
//	udjson escape cloud-init.yaml | udjson unescape
//
// inspect - Report the cloud-init kind, size and problems of a source:
//
//	udjson inspect --strict cloud-init.yaml
//
// payload - Print an instance request with the user-data embedded:
//
//	udjson payload --name web-1 --image ubuntu-24.04 --flavour m1.small cloud-init.yaml
//
// submit - Build the request and POST it to the provider API:
//
//	udjson submit --endpoint https://provider.internal --name web-1 ... cloud-init.yaml
//
// serve - Run the HTTP API (see pkg/api):
//
//	udjson serve --port 8080 --auth-token "$TOKEN"
//
// # Global Flags
//
//	--config       Config file (default is $HOME/.udjson.yaml when present)
//	--log-level    Log level: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Output Formats
//
// raw (default for escape, inspect and submit): literals or summaries as
// plain lines. json (default for payload), yaml and table render the
// structured result. --output writes to a file or a ConfigMap
// (cm://namespace/name) instead of stdout.
//
// # Configuration
//
// Precedence, highest first: flags, environment variables, config file,
// defaults. Environment variables:
//
//	UDJSON_CONFIG, UDJSON_LOG_LEVEL (or LOG_LEVEL)
//	UDJSON_ASCII, UDJSON_ESCAPE_HTML, UDJSON_ENCODING, UDJSON_MAX_SIZE, KUBECONFIG
//	UDJSON_PROVIDER_ENDPOINT, UDJSON_PROVIDER_AUTH_TOKEN, UDJSON_PROVIDER_TIMEOUT
//	UDJSON_ADDRESS, UDJSON_PORT (or PORT), UDJSON_SERVER_AUTH_TOKEN,
//	UDJSON_RATE_LIMIT, UDJSON_RATE_LIMIT_BURST
//
// # Exit Codes
//
//	0  Success
//	1  General error (unreadable source, invalid arguments, API failure)
//	2  Context canceled (SIGINT/SIGTERM)
package cli
