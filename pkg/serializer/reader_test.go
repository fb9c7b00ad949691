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
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
	}{
		{"config.json", FormatJSON},
		{"CONFIG.JSON", FormatJSON},
		{"config.yaml", FormatYAML},
		{"config.yml", FormatYAML},
		{"/home/ops/.udjson.YAML", FormatYAML},
		{"output.table", FormatTable},
		{"output.txt", FormatTable},
		{"file.unknown", FormatJSON},
		{"filename", FormatJSON},
		{"", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatFromPath(tt.path))
		})
	}
}

func TestNewReader(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr string
	}{
		{name: "json", format: FormatJSON},
		{name: "yaml", format: FormatYAML},
		{name: "table", format: FormatTable, wantErr: "does not support deserialization"},
		{name: "raw", format: FormatRaw, wantErr: "does not support deserialization"},
		{name: "unknown", format: Format("xml"), wantErr: "unknown format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewReader(tt.format, strings.NewReader("{}"))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, reader.format)
		})
	}
}

func TestReader_Deserialize(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		input   string
		want    testConfig
		wantErr bool
	}{
		{
			name:   "json",
			format: FormatJSON,
			input:  `{"name":"web-01","value":3}`,
			want:   testConfig{Name: "web-01", Value: 3},
		},
		{
			name:   "yaml",
			format: FormatYAML,
			input:  "name: web-01\nvalue: 3\n",
			want:   testConfig{Name: "web-01", Value: 3},
		},
		{
			name:   "unicode survives",
			format: FormatJSON,
			input:  `{"name":"café \"quoted\"","value":0}`,
			want:   testConfig{Name: "café \"quoted\""},
		},
		{
			name:    "invalid json",
			format:  FormatJSON,
			input:   `{"name":`,
			wantErr: true,
		},
		{
			name:    "type mismatch",
			format:  FormatYAML,
			input:   "value: [1, 2]\n",
			wantErr: true,
		},
		{
			name:    "empty input",
			format:  FormatJSON,
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewReader(tt.format, strings.NewReader(tt.input))
			require.NoError(t, err)

			var got testConfig
			err = reader.Deserialize(&got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_NilChecks(t *testing.T) {
	var nilReader *Reader
	assert.Error(t, nilReader.Deserialize(&testConfig{}))
	assert.NoError(t, nilReader.Close())

	reader, err := NewReader(FormatJSON, nil)
	require.NoError(t, err)
	assert.Error(t, reader.Deserialize(&testConfig{}))
}

func TestNewFileReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\nvalue: 7\n"), 0o600))

	reader, err := NewFileReaderAuto(path)
	require.NoError(t, err)

	var got testConfig
	require.NoError(t, reader.Deserialize(&got))
	assert.Equal(t, testConfig{Name: "from-file", Value: 7}, got)

	require.NoError(t, reader.Close())
	require.NoError(t, reader.Close(), "second close is a no-op")

	_, err = NewFileReader(FormatJSON, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = NewFileReader(FormatTable, path)
	assert.Error(t, err)
}

func TestNewFileReader_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cfg.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"name":"remote","value":1}`))
	}))
	defer server.Close()

	got, err := FromFile[testConfig](server.URL + "/cfg.json")
	require.NoError(t, err)
	assert.Equal(t, "remote", got.Name)

	_, err = FromFile[testConfig](server.URL + "/nope.json")
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"a","value":1}`), 0o600))

	got, err := FromFile[testConfig](jsonPath)
	require.NoError(t, err)
	assert.Equal(t, &testConfig{Name: "a", Value: 1}, got)

	_, err = FromFile[testConfig](filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("name: [unterminated"), 0o600))
	_, err = FromFile[testConfig](badPath)
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	want := []testConfig{{Name: "a", Value: 1}, {Name: "<b&c>", Value: 2}}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(format, &buf).Serialize(context.Background(), want))

			reader, err := NewReader(format, &buf)
			require.NoError(t, err)

			var got []testConfig
			require.NoError(t, reader.Deserialize(&got))
			assert.Equal(t, want, got)
		})
	}
}
