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

package serializer

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type escapeResponse struct {
	Escaped string `json:"escaped"`
	Bytes   int    `json:"bytes"`
}

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name   string
		status int
		data   any
		want   string
	}{
		{
			name:   "created",
			status: http.StatusCreated,
			data:   escapeResponse{Escaped: `"a\nb"`, Bytes: 3},
			want:   `{"escaped":"\"a\\nb\"","bytes":3}`,
		},
		{
			name:   "html characters are not escaped",
			status: http.StatusOK,
			data:   map[string]string{"escaped": "<a&b>"},
			want:   `{"escaped":"<a&b>"}`,
		},
		{
			name:   "nil",
			status: http.StatusOK,
			data:   nil,
			want:   `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondJSON(w, tt.status, tt.data)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, strings.TrimSpace(w.Body.String()))
		})
	}
}

func TestRespondJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()

	// channels cannot be marshaled; headers must not be written first
	RespondJSON(w, http.StatusOK, make(chan int))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Body.String())
}

func TestNewHttpReader_Defaults(t *testing.T) {
	reader := NewHttpReader()
	require.NotNil(t, reader)
	require.NotNil(t, reader.Client)
	assert.Equal(t, HttpReaderUserAgent, reader.UserAgent)
	assert.Equal(t, HttpReaderDefaultTimeout, reader.Client.Timeout)
	assert.Zero(t, reader.MaxBodySize)
}

func TestNewHttpReader_WithOptions(t *testing.T) {
	reader := NewHttpReader(
		WithUserAgent("TestAgent/1.0"),
		WithTotalTimeout(10*time.Second),
		WithConnectTimeout(2*time.Second),
		WithMaxBodySize(1024),
	)

	assert.Equal(t, "TestAgent/1.0", reader.UserAgent)
	assert.Equal(t, int64(1024), reader.MaxBodySize)
	assert.Equal(t, 10*time.Second, reader.Client.Timeout)

	tr, ok := reader.Client.Transport.(*http.Transport)
	require.True(t, ok, "expected *http.Transport")
	assert.Equal(t, uint16(tls.VersionTLS12), tr.TLSClientConfig.MinVersion)
	assert.NotNil(t, tr.Proxy)
}

func TestNewHttpReader_EmptyUserAgent(t *testing.T) {
	reader := NewHttpReader(WithUserAgent(""))
	assert.Equal(t, HttpReaderUserAgent, reader.UserAgent)
}

func TestNewHttpReader_WithCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 5 * time.Second}
	reader := NewHttpReader(WithClient(custom))

	assert.Same(t, custom, reader.Client)
	assert.Equal(t, 5*time.Second, reader.Client.Timeout)
}

func TestHttpReader_Read(t *testing.T) {
	body := "#cloud-config\nhostname: web-01\n"

	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/userdata":
			w.Write([]byte(body))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	t.Run("success", func(t *testing.T) {
		data, err := NewHttpReader(WithUserAgent("probe/1")).Read(server.URL + "/userdata")
		require.NoError(t, err)
		assert.Equal(t, body, string(data))
		assert.Equal(t, "probe/1", userAgent)
	})

	for path, code := range map[string]int{
		"/missing":   http.StatusNotFound,
		"/forbidden": http.StatusForbidden,
		"/broken":    http.StatusInternalServerError,
	} {
		t.Run(path, func(t *testing.T) {
			_, err := NewHttpReader().Read(server.URL + path)
			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr), "expected *StatusError, got %v", err)
			assert.Equal(t, code, statusErr.StatusCode)
		})
	}

	t.Run("at size limit", func(t *testing.T) {
		data, err := NewHttpReader(WithMaxBodySize(int64(len(body)))).Read(server.URL + "/userdata")
		require.NoError(t, err)
		assert.Equal(t, body, string(data))
	})

	t.Run("over size limit", func(t *testing.T) {
		_, err := NewHttpReader(WithMaxBodySize(int64(len(body) - 1))).Read(server.URL + "/userdata")
		assert.ErrorIs(t, err, ErrBodyTooLarge)
	})
}

func TestHttpReader_Read_InvalidInput(t *testing.T) {
	reader := NewHttpReader()

	_, err := reader.Read("")
	require.Error(t, err)
	assert.Equal(t, "url is empty", err.Error())

	_, err = reader.Read("not-a-valid-url")
	assert.Error(t, err)
}

func TestHttpReader_ReadWithContext_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHttpReader().ReadWithContext(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHttpReader_Read_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, escapeResponse{Escaped: `"x"`, Bytes: 1})
	}))
	defer server.Close()

	data, err := NewHttpReader().Read(server.URL)
	require.NoError(t, err)

	var got escapeResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 1, got.Bytes)
}
