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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    Source
		wantErr bool
	}{
		{name: "relative path", uri: "userdata.txt", want: Source{Kind: KindFile, Path: "userdata.txt"}},
		{name: "absolute path", uri: " /srv/cloud-init/web.yaml ", want: Source{Kind: KindFile, Path: "/srv/cloud-init/web.yaml"}},
		{name: "file uri", uri: "file:///srv/userdata.txt", want: Source{Kind: KindFile, Path: "/srv/userdata.txt"}},
		{name: "file uri localhost", uri: "file://localhost/srv/userdata.txt", want: Source{Kind: KindFile, Path: "/srv/userdata.txt"}},
		{name: "file uri remote host", uri: "file://fileserver/srv/userdata.txt", wantErr: true},
		{name: "file uri without path", uri: "file://", wantErr: true},
		{name: "stdin", uri: "-", want: Source{Kind: KindStdin}},
		{name: "http", uri: "http://config.internal/web-01", want: Source{Kind: KindHTTP, URL: "http://config.internal/web-01"}},
		{name: "https", uri: "https://config.internal/web-01", want: Source{Kind: KindHTTP, URL: "https://config.internal/web-01"}},
		{name: "http without host", uri: "http://", wantErr: true},
		{
			name: "configmap default key",
			uri:  "cm://provisioning/web-01",
			want: Source{Kind: KindConfigMap, Namespace: "provisioning", Name: "web-01", Key: "user-data"},
		},
		{
			name: "configmap explicit key",
			uri:  "cm://provisioning/web-01/cloud-config",
			want: Source{Kind: KindConfigMap, Namespace: "provisioning", Name: "web-01", Key: "cloud-config", KeyExplicit: true},
		},
		{
			name: "secret default key",
			uri:  "secret://default/web-01-bootstrap",
			want: Source{Kind: KindSecret, Namespace: "default", Name: "web-01-bootstrap", Key: "value"},
		},
		{name: "configmap missing name", uri: "cm://provisioning", wantErr: true},
		{name: "configmap empty namespace", uri: "cm:///web-01", wantErr: true},
		{name: "secret empty key", uri: "secret://ns/name/", wantErr: true},
		{name: "secret nested key", uri: "secret://ns/name/a/b", wantErr: true},
		{name: "unsupported scheme", uri: "s3://bucket/userdata", wantErr: true},
		{name: "empty", uri: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSource(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, cnserrors.ErrCodeInvalidRequest, cnserrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			tt.want.raw = got.raw
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSource_String(t *testing.T) {
	src, err := ParseSource("  cm://provisioning/web-01 ")
	require.NoError(t, err)
	assert.Equal(t, "cm://provisioning/web-01", src.String())
}
