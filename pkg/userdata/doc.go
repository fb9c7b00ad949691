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

// Package userdata recognises cloud-init user-data formats and checks that
// a payload will be accepted before it is embedded in an instance request.
//
// Detect looks at the first line only, the way cloud-init chooses a
// handler:
//
//	#cloud-config        cloud-config YAML
//	#!                   script
//	#include             list of URLs
//	#cloud-boothook      boothook
//	## template: jinja   jinja template
//	Content-Type: multipart/...   MIME multipart archive
//	\x1f\x8b             gzip
//
// Inspect adds size and line counts and validates what can be validated
// offline: cloud-config must parse as a YAML mapping (gopkg.in/yaml.v3),
// include lines must be http(s) URLs, multipart archives are split into
// parts and each part is checked by its content type, and gzip payloads
// are decompressed and checked. Nested archives are listed but not
// descended into. Problems are collected in the Report; Inspect never
// fails.
package userdata
