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

package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/visa-provisioning/udjson/pkg/defaults"
	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
	"github.com/visa-provisioning/udjson/pkg/escape"
	"github.com/visa-provisioning/udjson/pkg/loader"
	"github.com/visa-provisioning/udjson/pkg/serializer"
	"github.com/visa-provisioning/udjson/pkg/server"
	"github.com/visa-provisioning/udjson/pkg/userdata"
)

// EscapeResponse is the body returned by POST /v1/escape.
type EscapeResponse struct {
	Escaped string `json:"escaped" yaml:"escaped"`
	Bytes   int    `json:"bytes" yaml:"bytes"`
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithASCII sets the default for the ascii query parameter.
func WithASCII(ascii bool) HandlerOption {
	return func(h *Handler) {
		h.ascii = ascii
	}
}

// WithEscapeHTML sets the default for the html query parameter.
func WithEscapeHTML(escapeHTML bool) HandlerOption {
	return func(h *Handler) {
		h.escapeHTML = escapeHTML
	}
}

// WithEncoding sets the default body encoding.
func WithEncoding(label string) HandlerOption {
	return func(h *Handler) {
		if label != "" {
			h.encoding = label
		}
	}
}

// WithMaxSize caps request bodies.
func WithMaxSize(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxSize = n
		}
	}
}

// Handler serves the escape and inspect endpoints.
type Handler struct {
	ascii      bool
	escapeHTML bool
	encoding   string
	maxSize    int64
	loader     *loader.Loader
}

// NewHandler returns a Handler with ASCII output, no HTML escaping and
// UTF-8 bodies unless overridden.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		ascii:    true,
		encoding: defaults.Encoding,
		maxSize:  defaults.MaxUserDataSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.loader = loader.New(loader.WithEncoding(h.encoding), loader.WithMaxSize(h.maxSize))
	return h
}

// HandleEscape escapes the raw request body.
func (h *Handler) HandleEscape(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}

	q := r.URL.Query()
	ascii, err := boolParam(q.Get("ascii"), h.ascii)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid query", map[string]any{"param": "ascii"})
		return
	}
	escapeHTML, err := boolParam(q.Get("html"), h.escapeHTML)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid query", map[string]any{"param": "html"})
		return
	}

	raw, ok := h.readBody(w, r)
	if !ok {
		return
	}

	text, err := h.loaderFor(q.Get("encoding")).Decode(raw)
	if err != nil {
		escapeRequests.WithLabelValues(resultError).Inc()
		server.WriteErrorFromErr(w, r, err, "failed to decode request body", nil)
		return
	}

	lit, err := escape.New(escape.WithASCII(ascii), escape.WithEscapeHTML(escapeHTML)).Escape(text)
	if err != nil {
		escapeRequests.WithLabelValues(resultError).Inc()
		server.WriteErrorFromErr(w, r, err, "failed to escape request body", nil)
		return
	}

	escapeRequests.WithLabelValues(resultOK).Inc()
	escapeInputBytes.Observe(float64(len(raw)))

	slog.Debug("escaped request body",
		"requestID", server.RequestIDFrom(r.Context()),
		"bytes", len(raw),
		"ascii", ascii,
		"escapeHTML", escapeHTML)

	serializer.RespondJSON(w, http.StatusOK, EscapeResponse{
		Escaped: lit,
		Bytes:   len(raw),
	})
}

// HandleInspect reports the cloud-init kind and validity of the request body.
func (h *Handler) HandleInspect(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}

	raw, ok := h.readBody(w, r)
	if !ok {
		return
	}

	content := string(raw)
	if !userdata.IsCompressed(raw) {
		text, err := h.loaderFor(r.URL.Query().Get("encoding")).Decode(raw)
		if err != nil {
			server.WriteErrorFromErr(w, r, err, "failed to decode request body", nil)
			return
		}
		content = text
	}

	report := userdata.Inspect(content)
	inspectRequests.WithLabelValues(string(report.Kind), strconv.FormatBool(report.Valid)).Inc()

	serializer.RespondJSON(w, http.StatusOK, report)
}

// readBody reads at most maxSize bytes, writing the error response itself
// when it returns false.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := http.MaxBytesReader(w, r.Body, h.maxSize)
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			server.WriteError(w, r, http.StatusRequestEntityTooLarge, cnserrors.ErrCodeInvalidRequest,
				"request body exceeds size limit", false, map[string]any{"limit": h.maxSize})
			return nil, false
		}
		server.WriteError(w, r, http.StatusBadRequest, cnserrors.ErrCodeInvalidRequest,
			"failed to read request body", false, map[string]any{"error": err.Error()})
		return nil, false
	}
	return raw, true
}

// loaderFor returns the shared loader, or a new one when the request names
// its own encoding.
func (h *Handler) loaderFor(encoding string) *loader.Loader {
	if encoding == "" || encoding == h.encoding {
		return h.loader
	}
	return loader.New(loader.WithEncoding(encoding), loader.WithMaxSize(h.maxSize))
}

func allowPost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	server.WriteError(w, r, http.StatusMethodNotAllowed, cnserrors.ErrCodeMethodNotAllowed,
		"Method not allowed", false, map[string]any{"method": r.Method})
	return false
}

func boolParam(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
			"expected true or false", err, map[string]any{"value": v})
	}
	return b, nil
}
