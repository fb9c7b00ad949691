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

package loader

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
	"github.com/visa-provisioning/udjson/pkg/escape"
)

// ErrInvalidEncoding is the cause of ENCODING_ERROR failures.
var ErrInvalidEncoding = errors.New("content is not valid text in the configured encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decoder turns raw source bytes into text. A nil enc means strict UTF-8.
type decoder struct {
	name string
	enc  encoding.Encoding
}

// newDecoder resolves a WHATWG encoding label such as "utf-8",
// "windows-1252" or "utf-16le".
func newDecoder(label string) (*decoder, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return &decoder{name: "utf-8"}, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"unknown encoding", err, map[string]any{"encoding": label})
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	if enc == unicode.UTF8 {
		return &decoder{name: name}, nil
	}
	return &decoder{name: name, enc: enc}, nil
}

// decode returns b as a UTF-8 string. A leading byte order mark is dropped.
func (d *decoder) decode(b []byte) (string, error) {
	if d.enc == nil {
		b = bytes.TrimPrefix(b, utf8BOM)
		if !utf8.Valid(b) {
			return "", cnserrors.WrapWithContext(cnserrors.ErrCodeEncoding,
				"source is not valid UTF-8", ErrInvalidEncoding,
				map[string]any{"offset": escape.InvalidUTF8Offset(b), "encoding": d.name})
		}
		return string(b), nil
	}

	// BOMOverride honours a UTF-8 or UTF-16 BOM over the configured label.
	out, _, err := transform.Bytes(unicode.BOMOverride(d.enc.NewDecoder()), b)
	if err != nil {
		return "", cnserrors.WrapWithContext(cnserrors.ErrCodeEncoding,
			"failed to decode source", errors.Join(ErrInvalidEncoding, err),
			map[string]any{"encoding": d.name})
	}
	return string(out), nil
}
