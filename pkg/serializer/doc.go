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

// Package serializer writes command results in several formats and reads
// structured files back.
//
// # Supported Formats
//
// Raw:
//   - Strings written verbatim, one per line
//   - Default for escaped user-data so stdout can be piped or pasted directly
//
// JSON:
//   - Indented, HTML characters left unescaped
//   - Suitable for API responses and programmatic consumption
//
// YAML:
//   - gopkg.in/yaml.v3
//   - Used for the config file and instance request output
//
// Table:
//   - Flattened FIELD/VALUE listing for terminals
//   - Write-only
//
// # Destinations
//
// NewFileWriter picks the destination from a path:
//
//	w, err := serializer.NewFileWriter(serializer.FormatYAML, "cm://provisioning/web-01")
//	if err != nil {
//		return err
//	}
//	defer w.(serializer.Closer).Close()
//	err := w.Serialize(ctx, req)
//
// An empty path writes to stdout, a cm://namespace/name URI writes to a
// Kubernetes ConfigMap with server-side apply, anything else is a file.
// A malformed URI or a file that cannot be created is returned as an error
// before anything is written.
//
// # Reading
//
//	cfg, err := serializer.FromFile[config.Config]("/home/ops/.udjson.yaml")
//
// Formats are detected from the extension. http(s) URLs are fetched with
// HttpReader, which is also used directly by pkg/loader for remote
// user-data. Non-200 responses surface as *StatusError so callers can map
// the status code.
//
// # HTTP Responses
//
//	serializer.RespondJSON(w, http.StatusOK, data)
//
// The body is encoded before headers are written so encoding failures
// produce a clean 500.
package serializer
