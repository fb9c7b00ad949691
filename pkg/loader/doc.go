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

// Package loader reads user-data from wherever it lives and returns it as
// UTF-8 text.
//
// Sources are URIs:
//
//	userdata.txt                   local file (relative or absolute)
//	file:///srv/userdata.txt       local file
//	-                              standard input
//	https://config.internal/web-01 fetched with serializer.HttpReader
//	cm://provisioning/web-01       ConfigMap key "user-data"
//	cm://provisioning/web-01/init  ConfigMap key "init"
//	secret://default/web-01        Secret key "value", then "user-data"
//
// Usage:
//
//	l := loader.New(loader.WithMaxSize(512<<10), loader.WithEncoding("windows-1252"))
//	text, err := l.Load(ctx, "cm://provisioning/web-01")
//
// Failures are *errors.StructuredError values: NOT_FOUND for missing
// files, URLs, objects and keys; PERMISSION_DENIED for EACCES and HTTP or
// API server 401/403; ENCODING_ERROR for bytes that do not decode;
// INVALID_REQUEST for malformed URIs and oversized input.
//
// Input is strict UTF-8 by default with a leading BOM removed. Other
// encodings are named by WHATWG label and decoded with golang.org/x/text.
package loader
