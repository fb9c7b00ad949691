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

package userdata

import (
	"compress/gzip"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxDecompressed bounds gzip payloads so a small archive cannot expand
// without limit.
const maxDecompressed = 16 << 20

// Part describes one MIME part, or the decompressed body of a gzip payload.
type Part struct {
	Index       int    `json:"index" yaml:"index"`
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	Filename    string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Kind        Kind   `json:"kind" yaml:"kind"`
	Size        int    `json:"size" yaml:"size"`
}

// Report is the result of Inspect.
type Report struct {
	Kind     Kind     `json:"kind" yaml:"kind"`
	Size     int      `json:"size" yaml:"size"`
	Lines    int      `json:"lines" yaml:"lines"`
	Parts    []Part   `json:"parts,omitempty" yaml:"parts,omitempty"`
	Valid    bool     `json:"valid" yaml:"valid"`
	Problems []string `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// String renders a short human summary.
func (r *Report) String() string {
	var b strings.Builder
	status := "valid"
	if !r.Valid {
		status = "invalid"
	}
	fmt.Fprintf(&b, "%s: %s, %d bytes, %d lines", r.Kind, status, r.Size, r.Lines)
	for _, p := range r.Parts {
		fmt.Fprintf(&b, "\n  part %d: %s", p.Index, p.Kind)
		if p.ContentType != "" {
			fmt.Fprintf(&b, " (%s)", p.ContentType)
		}
		if p.Filename != "" {
			fmt.Fprintf(&b, " %s", p.Filename)
		}
		fmt.Fprintf(&b, ", %d bytes", p.Size)
	}
	for _, p := range r.Problems {
		fmt.Fprintf(&b, "\n  problem: %s", p)
	}
	return b.String()
}

func (r *Report) problem(format string, args ...any) {
	r.Valid = false
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Inspect detects the kind of content and checks it the way cloud-init
// would consume it. Problems are reported, never returned as errors.
func Inspect(content string) *Report {
	r := &Report{
		Kind:  Detect(content),
		Size:  len(content),
		Lines: countLines(content),
		Valid: true,
	}

	if strings.TrimSpace(content) == "" {
		r.problem("user-data is empty")
		return r
	}

	r.check(r.Kind, content, "")
	return r
}

func (r *Report) check(kind Kind, content, where string) {
	switch kind {
	case KindCloudConfig:
		if err := validateCloudConfig(content); err != nil {
			r.problem("%s%v", where, err)
		}
	case KindInclude:
		for _, p := range validateInclude(content) {
			r.problem("%s%s", where, p)
		}
	case KindScript:
		if strings.TrimSpace(strings.TrimPrefix(firstLine(content), shebangMark)) == "" {
			r.problem("%sscript has an empty interpreter line", where)
		}
	case KindMultipart:
		if where != "" {
			r.problem("%snested multipart payloads are not inspected", where)
			return
		}
		r.checkMultipart(content)
	case KindGzip:
		if where != "" {
			r.problem("%snested gzip payloads are not inspected", where)
			return
		}
		r.checkGzip(content)
	case KindBoothook, KindJinja:
		// Rendered or executed on the instance; nothing to check here.
	default:
		r.problem("%sunrecognised user-data format; cloud-init will ignore it", where)
	}
}

// validateCloudConfig requires the document to be empty or a YAML mapping.
func validateCloudConfig(content string) error {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return fmt.Errorf("cloud-config is not valid YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("cloud-config must be a YAML mapping (line %d)", root.Line)
	}
	return nil
}

func validateInclude(content string) []string {
	var problems []string
	urls := 0
	for i, line := range strings.Split(body(content), "\n") {
		if isBlankOrComment(line) {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(line))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("include line %d is not an http(s) URL", i+2))
			continue
		}
		urls++
	}
	if urls == 0 && len(problems) == 0 {
		problems = append(problems, "include lists no URLs")
	}
	return problems
}

func (r *Report) checkMultipart(content string) {
	msg, err := mail.ReadMessage(strings.NewReader(content))
	if err != nil {
		r.problem("multipart headers are malformed: %v", err)
		return
	}
	_, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil {
		r.problem("multipart Content-Type is malformed: %v", err)
		return
	}
	boundary := params["boundary"]
	if boundary == "" {
		r.problem("multipart Content-Type has no boundary")
		return
	}

	mr := multipart.NewReader(msg.Body, boundary)
	for i := 1; ; i++ {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.problem("part %d is malformed: %v", i, err)
			return
		}

		data, err := readPart(part)
		if err != nil {
			r.problem("part %d could not be read: %v", i, err)
			continue
		}

		contentType := part.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "text/plain"
		}
		kind := KindForContentType(contentType)
		r.Parts = append(r.Parts, Part{
			Index:       i,
			ContentType: contentType,
			Filename:    part.FileName(),
			Kind:        kind,
			Size:        len(data),
		})

		where := fmt.Sprintf("part %d: ", i)
		if kind == KindUnknown {
			// cloud-init falls back to sniffing the body of text/plain parts.
			kind = Detect(string(data))
		}
		r.check(kind, string(data), where)
	}

	if len(r.Parts) == 0 {
		r.problem("multipart payload has no parts")
	}
}

// readPart returns the decoded body. quoted-printable is decoded by
// mime/multipart itself.
func readPart(part *multipart.Part) ([]byte, error) {
	var rd io.Reader = part
	if strings.EqualFold(part.Header.Get("Content-Transfer-Encoding"), "base64") {
		rd = base64.NewDecoder(base64.StdEncoding, newlineStripper{part})
	}
	return io.ReadAll(rd)
}

// newlineStripper drops CR and LF so wrapped base64 decodes.
type newlineStripper struct {
	r io.Reader
}

func (s newlineStripper) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	out := p[:0]
	for _, c := range p[:n] {
		if c != '\r' && c != '\n' {
			out = append(out, c)
		}
	}
	return len(out), err
}

func (r *Report) checkGzip(content string) {
	zr, err := gzip.NewReader(strings.NewReader(content))
	if err != nil {
		r.problem("gzip payload is corrupt: %v", err)
		return
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, maxDecompressed+1))
	if err != nil {
		r.problem("gzip payload is corrupt: %v", err)
		return
	}
	if len(data) > maxDecompressed {
		r.problem("gzip payload expands beyond %d bytes", maxDecompressed)
		return
	}

	inner := Detect(string(data))
	r.Parts = append(r.Parts, Part{Index: 1, Filename: zr.Name, Kind: inner, Size: len(data)})
	r.check(inner, string(data), "gzip: ")
}
