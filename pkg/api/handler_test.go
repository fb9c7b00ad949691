package api

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visa-provisioning/udjson/pkg/config"
	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
	"github.com/visa-provisioning/udjson/pkg/server"
	"github.com/visa-provisioning/udjson/pkg/userdata"
)

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandleEscape(t *testing.T) {
	tests := []struct {
		name  string
		query string
		body  string
		want  string
	}{
		{
			name: "quotes and newline",
			body: "line1\nline2\"with quotes\"",
			want: `"line1\nline2\"with quotes\""`,
		},
		{
			name: "empty body",
			body: "",
			want: `""`,
		},
		{
			name: "ascii default",
			body: "café",
			want: `"caf\u00e9"`,
		},
		{
			name:  "ascii disabled",
			query: "?ascii=false",
			body:  "café",
			want:  "\"café\"",
		},
		{
			name: "html kept by default",
			body: "<a&b>",
			want: `"<a&b>"`,
		},
		{
			name:  "html escaped",
			query: "?html=true",
			body:  "<a&b>",
			want:  `"\u003ca\u0026b\u003e"`,
		},
		{
			name:  "latin1 body",
			query: "?encoding=latin1",
			body:  "caf\xe9",
			want:  `"caf\u00e9"`,
		},
	}

	h := NewHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/escape"+tt.query, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.HandleEscape(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decodeJSON[EscapeResponse](t, rec)
			assert.Equal(t, tt.want, resp.Escaped)
			assert.Equal(t, len(tt.body), resp.Bytes)

			var roundTrip string
			require.NoError(t, json.Unmarshal([]byte(resp.Escaped), &roundTrip))
			assert.NotContains(t, resp.Escaped, "\n")
		})
	}
}

func TestHandleEscape_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		query      string
		body       string
		maxSize    int64
		wantStatus int
		wantCode   cnserrors.ErrorCode
	}{
		{
			name:       "wrong method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   cnserrors.ErrCodeMethodNotAllowed,
		},
		{
			name:       "invalid utf-8",
			method:     http.MethodPost,
			body:       "ab\xc3(",
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   cnserrors.ErrCodeEncoding,
		},
		{
			name:       "bad bool",
			method:     http.MethodPost,
			query:      "?ascii=maybe",
			body:       "x",
			wantStatus: http.StatusBadRequest,
			wantCode:   cnserrors.ErrCodeInvalidRequest,
		},
		{
			name:       "unknown encoding",
			method:     http.MethodPost,
			query:      "?encoding=klingon",
			body:       "x",
			wantStatus: http.StatusBadRequest,
			wantCode:   cnserrors.ErrCodeInvalidRequest,
		},
		{
			name:       "too large",
			method:     http.MethodPost,
			body:       "0123456789",
			maxSize:    4,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   cnserrors.ErrCodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(WithMaxSize(tt.maxSize))
			req := httptest.NewRequest(tt.method, "/v1/escape"+tt.query, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.HandleEscape(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeJSON[server.ErrorResponse](t, rec)
			assert.Equal(t, string(tt.wantCode), resp.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestHandleEscape_HandlerDefaults(t *testing.T) {
	h := NewHandler(WithASCII(false), WithEscapeHTML(true))

	req := httptest.NewRequest(http.MethodPost, "/v1/escape", strings.NewReader("é<"))
	rec := httptest.NewRecorder()
	h.HandleEscape(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[EscapeResponse](t, rec)
	assert.Equal(t, "\"é\\u003c\"", resp.Escaped)
}

func TestHandleInspect(t *testing.T) {
	h := NewHandler()

	t.Run("cloud-config", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/inspect",
			strings.NewReader("#cloud-config\npackages:\n  - nginx\n"))
		rec := httptest.NewRecorder()
		h.HandleInspect(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		report := decodeJSON[userdata.Report](t, rec)
		assert.Equal(t, userdata.KindCloudConfig, report.Kind)
		assert.True(t, report.Valid)
		assert.Equal(t, 3, report.Lines)
	})

	t.Run("invalid cloud-config", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/inspect",
			strings.NewReader("#cloud-config\n- just\n- a list\n"))
		rec := httptest.NewRecorder()
		h.HandleInspect(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		report := decodeJSON[userdata.Report](t, rec)
		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Problems)
	})

	t.Run("gzip is not decoded as text", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte("#!/bin/sh\necho hi\n"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/inspect", &buf)
		rec := httptest.NewRecorder()
		h.HandleInspect(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		report := decodeJSON[userdata.Report](t, rec)
		assert.Equal(t, userdata.KindGzip, report.Kind)
		require.Len(t, report.Parts, 1)
		assert.Equal(t, userdata.KindScript, report.Parts[0].Kind)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/inspect", strings.NewReader("\xff\xfe\xfd"))
		rec := httptest.NewRecorder()
		h.HandleInspect(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleInspect(rec, httptest.NewRequest(http.MethodPut, "/v1/inspect", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	})
}

func TestRoutes(t *testing.T) {
	routes := Routes(NewHandler())
	assert.Len(t, routes, 2)
	assert.NotNil(t, routes["/v1/escape"])
	assert.NotNil(t, routes["/v1/inspect"])
}

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Address = "127.0.0.1"
	cfg.Server.Port = 18181

	s := NewServer(cfg, "1.0.0")
	assert.Equal(t, "127.0.0.1:18181", s.Addr())

	assert.NotNil(t, NewServer(nil, "dev"))
}
