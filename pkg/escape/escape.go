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

package escape

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
)

var (
	// ErrInvalidUTF8 is the cause reported when input is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

	// ErrRoundTrip is the cause reported when a literal does not decode back
	// to the original text.
	ErrRoundTrip = errors.New("escaped literal does not decode to the original text")
)

const hexDigits = "0123456789abcdef"

// Option configures an Escaper.
type Option func(*Escaper)

// WithASCII controls whether non-ASCII runes are written as \uXXXX escapes
// (true, the default) or passed through as UTF-8.
func WithASCII(ascii bool) Option {
	return func(e *Escaper) {
		e.ascii = ascii
	}
}

// WithEscapeHTML controls whether <, > and & are written as \u003c, \u003e
// and \u0026. Default is false.
func WithEscapeHTML(escapeHTML bool) Option {
	return func(e *Escaper) {
		e.escapeHTML = escapeHTML
	}
}

// Escaper turns arbitrary text into a single-line JSON string literal.
// An Escaper is immutable after New and safe for concurrent use.
type Escaper struct {
	ascii      bool
	escapeHTML bool
}

// New returns an Escaper with the given options applied over the defaults
// (ASCII output, no HTML escaping).
func New(opts ...Option) *Escaper {
	e := &Escaper{
		ascii:      true,
		escapeHTML: false,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ASCII reports whether non-ASCII runes are escaped.
func (e *Escaper) ASCII() bool {
	return e.ascii
}

// EscapeHTML reports whether HTML-significant characters are escaped.
func (e *Escaper) EscapeHTML() bool {
	return e.escapeHTML
}

// String escapes s with the default Escaper.
func String(s string) (string, error) {
	return New().Escape(s)
}

// Escape returns s as a double-quoted JSON string literal.
// The result never contains a literal line break.
func (e *Escaper) Escape(s string) (string, error) {
	out, err := e.EscapeBytes([]byte(s))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EscapeBytes is Escape for byte slices. b must be valid UTF-8.
func (e *Escaper) EscapeBytes(b []byte) ([]byte, error) {
	if !utf8.Valid(b) {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeEncoding,
			"cannot escape content", ErrInvalidUTF8, map[string]any{
				"offset": InvalidUTF8Offset(b),
			})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(e.escapeHTML)
	if err := enc.Encode(string(b)); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to encode string", err)
	}

	// json.Encoder terminates every value with a newline.
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})

	if e.ascii {
		out = toASCII(out)
	}
	return out, nil
}

// toASCII rewrites every non-ASCII rune in an encoded literal as a \uXXXX
// escape, using a UTF-16 surrogate pair above the Basic Multilingual Plane.
func toASCII(lit []byte) []byte {
	n := 0
	for _, c := range lit {
		if c >= utf8.RuneSelf {
			n++
		}
	}
	if n == 0 {
		return lit
	}

	out := make([]byte, 0, len(lit)+n*6)
	for i := 0; i < len(lit); {
		c := lit[i]
		if c < utf8.RuneSelf {
			out = append(out, c)
			i++
			continue
		}

		r, size := utf8.DecodeRune(lit[i:])
		i += size
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			out = appendUnicodeEscape(out, hi)
			out = appendUnicodeEscape(out, lo)
			continue
		}
		out = appendUnicodeEscape(out, r)
	}
	return out
}

func appendUnicodeEscape(dst []byte, r rune) []byte {
	return append(dst, '\\', 'u',
		hexDigits[r>>12&0xF],
		hexDigits[r>>8&0xF],
		hexDigits[r>>4&0xF],
		hexDigits[r&0xF],
	)
}

// InvalidUTF8Offset returns the index of the first byte of b that does not
// start a valid UTF-8 sequence, or -1 when b is valid.
func InvalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// Unescape decodes a JSON string literal produced by Escape (or any other
// conforming encoder). Surrounding whitespace, including a trailing newline,
// is ignored.
func Unescape(literal string) (string, error) {
	trimmed := bytes.TrimSpace([]byte(literal))
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", cnserrors.New(cnserrors.ErrCodeInvalidRequest,
			"input is not a JSON string literal")
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest,
			"failed to decode JSON string literal", err)
	}
	return s, nil
}

// Verify checks that literal decodes back to original.
func Verify(original, literal string) error {
	decoded, err := Unescape(literal)
	if err != nil {
		return err
	}
	if decoded == original {
		return nil
	}
	return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
		"round-trip check failed", ErrRoundTrip, map[string]any{
			"offset": firstDifference(original, decoded),
		})
}

func firstDifference(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// Describe renders the escaper settings for logs.
func (e *Escaper) Describe() string {
	return fmt.Sprintf("ascii=%t escapeHTML=%t", e.ascii, e.escapeHTML)
}
