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

// Package defaults provides centralized configuration constants for udjson.
//
// This package defines timeout values, size limits, and other configuration
// defaults used across the codebase. Centralizing these values ensures consistency
// and makes tuning easier.
//
// # Categories
//
//   - Loader timeouts: For reading files, URLs, ConfigMaps and Secrets
//   - Server timeouts: For HTTP server configuration
//   - HTTP client timeouts: For outbound HTTP requests
//   - Provider timeouts: For instance creation calls
//   - Input defaults: Default source path, size cap and encoding
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.LoaderTimeout)
//	defer cancel()
//
// Timeouts should be used with context.WithTimeout and respect parent
// context deadlines when shorter.
package defaults
