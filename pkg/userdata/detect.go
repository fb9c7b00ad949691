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
	"mime"
	"net/mail"
	"strings"
)

// Kind is the user-data format cloud-init will pick for a payload.
type Kind string

const (
	KindCloudConfig Kind = "cloud-config"
	KindScript      Kind = "script"
	KindMultipart   Kind = "multipart"
	KindInclude     Kind = "include"
	KindBoothook    Kind = "boothook"
	KindJinja       Kind = "jinja"
	KindGzip        Kind = "gzip"
	KindUnknown     Kind = "unknown"
)

const (
	gzipMagic        = "\x1f\x8b"
	cloudConfigMark  = "#cloud-config"
	includeMark      = "#include"
	boothookMark     = "#cloud-boothook"
	shebangMark      = "#!"
	jinjaMark        = "## template: jinja"
	multipartPrefix  = "multipart/"
	contentTypeField = "content-type:"
	mimeVersionField = "mime-version:"
)

// contentTypes maps MIME part types to kinds, as understood by cloud-init.
var contentTypes = map[string]Kind{
	"text/cloud-config":   KindCloudConfig,
	"text/x-shellscript":  KindScript,
	"text/x-include-url":  KindInclude,
	"text/cloud-boothook": KindBoothook,
	"text/jinja2":         KindJinja,
	"application/gzip":    KindGzip,
	"application/x-gzip":  KindGzip,
}

// KindForContentType returns the kind of a MIME part type, or KindUnknown.
func KindForContentType(contentType string) Kind {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if k, ok := contentTypes[mediaType]; ok {
		return k
	}
	if strings.HasPrefix(mediaType, multipartPrefix) {
		return KindMultipart
	}
	return KindUnknown
}

// IsCompressed reports whether raw starts with the gzip magic bytes. Such
// content must be inspected as-is rather than decoded as text.
func IsCompressed(raw []byte) bool {
	return strings.HasPrefix(string(raw), gzipMagic)
}

// Detect classifies content by its first line, the way cloud-init does.
func Detect(content string) Kind {
	if strings.HasPrefix(content, gzipMagic) {
		return KindGzip
	}

	first := firstLine(content)
	lower := strings.ToLower(first)
	switch {
	case strings.HasPrefix(first, cloudConfigMark):
		return KindCloudConfig
	case strings.HasPrefix(first, boothookMark):
		return KindBoothook
	case strings.HasPrefix(first, includeMark):
		return KindInclude
	case strings.HasPrefix(lower, jinjaMark):
		return KindJinja
	case strings.HasPrefix(first, shebangMark):
		return KindScript
	case strings.HasPrefix(lower, contentTypeField), strings.HasPrefix(lower, mimeVersionField):
		if isMultipart(content) {
			return KindMultipart
		}
	}
	return KindUnknown
}

func firstLine(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	return strings.TrimRight(line, "\r")
}

func isMultipart(content string) bool {
	msg, err := mail.ReadMessage(strings.NewReader(content))
	if err != nil {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, multipartPrefix)
}

// countLines counts newline-terminated lines plus a trailing partial line.
func countLines(content string) int {
	n := strings.Count(content, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// body returns content without its first line.
func body(content string) string {
	_, rest, found := strings.Cut(content, "\n")
	if !found {
		return ""
	}
	return rest
}

func isBlankOrComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}
