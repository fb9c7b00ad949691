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

// Package escape converts text into single-line JSON string literals.
//
// The typical input is cloud-init user-data: a multi-line YAML document or
// shell script that has to be placed in a JSON field, such as the
// metadata["user-data"] entry of an instance creation request.
//
// # Output
//
// Escape wraps the text in double quotes and escapes it per RFC 8259 §7:
//
//	line1
//	line2"with quotes"
//
// becomes
//
//	"line1\nline2\"with quotes\""
//
// By default every non-ASCII rune is written as a \uXXXX escape (runes above
// U+FFFF as a UTF-16 surrogate pair) and HTML-significant characters are left
// alone, so the output is plain ASCII. WithASCII(false) passes UTF-8 through
// and WithEscapeHTML(true) escapes <, > and &.
//
// # Errors
//
// Input that is not valid UTF-8 is rejected with an ENCODING_ERROR
// StructuredError whose cause is ErrInvalidUTF8. The encoder never
// substitutes U+FFFD.
//
// # Round trip
//
// Unescape is the inverse of Escape, and Verify checks that a literal decodes
// to the expected text:
//
//	lit, _ := escape.String(data)
//	if err := escape.Verify(data, lit); err != nil { ... }
package escape
