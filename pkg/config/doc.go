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

// Package config holds the optional YAML configuration file.
//
// Precedence, highest first: command-line flags, UDJSON_* environment
// variables, the config file, built-in defaults. The file is read from
// --config or $HOME/.udjson.yaml when present:
//
//	source: userdata.txt
//	escape:
//	  ascii: true
//	  escapeHTML: false
//	loader:
//	  maxSize: 1048576
//	  encoding: utf-8
//	  kubeconfig: ""
//	provider:
//	  endpoint: http://localhost:4000
//	  authToken: ""
//	  timeout: 5s
//	server:
//	  address: ""
//	  port: 8080
//	  authToken: ""
//	  rateLimit: 100
//	  rateLimitBurst: 200
//
// Keys left out keep their defaults.
package config
