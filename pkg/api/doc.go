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

// Package api wires the udjson HTTP endpoints into pkg/server.
//
// # Usage
//
//	cfg, _ := config.Resolve("")
//	if err := api.Serve(ctx, cfg, version); err != nil {
//	    return err
//	}
//
// # Endpoints
//
// POST /v1/escape - Escape the request body as a JSON string literal
//
//	Query parameters:
//	  - ascii: true/false - escape non-ASCII as \uXXXX (default from config)
//	  - html: true/false - escape <, > and & (default from config)
//	  - encoding: WHATWG label of the body encoding (default from config)
//
//	Example:
//	  curl --data-binary @userdata.txt "http://localhost:8080/v1/escape?ascii=false"
//	  {"escaped":"\"#cloud-config\\npackages: [nginx]\\n\"","bytes":34}
//
// POST /v1/inspect - Classify and validate the request body as cloud-init user-data
//
//	Example:
//	  curl --data-binary @userdata.txt http://localhost:8080/v1/inspect
//	  {"kind":"cloud-config","size":34,"lines":2,"valid":true}
//
// Bodies larger than the loader max size are rejected with 413.
// Health, readiness and metrics endpoints are provided by pkg/server.
package api
