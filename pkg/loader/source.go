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
	"fmt"
	"net/url"
	"strings"

	"github.com/visa-provisioning/udjson/pkg/defaults"
	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
)

// Kind identifies where a Source reads from.
type Kind string

const (
	KindFile      Kind = "file"
	KindStdin     Kind = "stdin"
	KindHTTP      Kind = "http"
	KindConfigMap Kind = "configmap"
	KindSecret    Kind = "secret"
)

const (
	// StdinURI selects standard input.
	StdinURI = "-"

	fileScheme      = "file://"
	configMapScheme = "cm://"
	secretScheme    = "secret://"
)

// Source is a parsed input URI.
type Source struct {
	Kind Kind
	// Path is set for KindFile.
	Path string
	// URL is set for KindHTTP.
	URL string
	// Namespace, Name and Key are set for KindConfigMap and KindSecret.
	Namespace string
	Name      string
	Key       string
	// KeyExplicit is false when Key was filled in from the default.
	KeyExplicit bool

	raw string
}

// String returns the URI the Source was parsed from.
func (s Source) String() string {
	return s.raw
}

// ParseSource classifies uri. Accepted forms:
//
//	path/to/file, file:///abs/path
//	-
//	http://host/path, https://host/path
//	cm://namespace/name[/key]
//	secret://namespace/name[/key]
func ParseSource(uri string) (Source, error) {
	trimmed := strings.TrimSpace(uri)
	src := Source{raw: trimmed}

	switch {
	case trimmed == "":
		return src, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "source is empty")

	case trimmed == StdinURI:
		src.Kind = KindStdin
		return src, nil

	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		u, err := url.Parse(trimmed)
		if err != nil || u.Host == "" {
			return src, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
				"invalid URL", err, map[string]any{"source": trimmed})
		}
		src.Kind = KindHTTP
		src.URL = trimmed
		return src, nil

	case strings.HasPrefix(trimmed, fileScheme):
		u, err := url.Parse(trimmed)
		if err != nil {
			return src, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
				"invalid file URI", err, map[string]any{"source": trimmed})
		}
		if u.Host != "" && u.Host != "localhost" {
			return src, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				"file URI must not name a remote host", map[string]any{"source": trimmed})
		}
		if u.Path == "" {
			return src, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				"file URI has no path", map[string]any{"source": trimmed})
		}
		src.Kind = KindFile
		src.Path = u.Path
		return src, nil

	case strings.HasPrefix(trimmed, configMapScheme):
		src.Kind = KindConfigMap
		return parseObjectRef(src, strings.TrimPrefix(trimmed, configMapScheme), defaults.ConfigMapKey)

	case strings.HasPrefix(trimmed, secretScheme):
		src.Kind = KindSecret
		return parseObjectRef(src, strings.TrimPrefix(trimmed, secretScheme), defaults.SecretKey)

	case strings.Contains(trimmed, "://"):
		return src, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"unsupported source scheme", map[string]any{"source": trimmed})

	default:
		src.Kind = KindFile
		src.Path = trimmed
		return src, nil
	}
}

func parseObjectRef(src Source, ref, defaultKey string) (Source, error) {
	parts := strings.SplitN(ref, "/", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return src, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("expected %s://namespace/name[/key]", src.scheme()),
			map[string]any{"source": src.raw})
	}

	src.Namespace = strings.TrimSpace(parts[0])
	src.Name = strings.TrimSpace(parts[1])
	src.Key = defaultKey
	if len(parts) == 3 {
		key := strings.TrimSpace(parts[2])
		if key == "" || strings.Contains(key, "/") {
			return src, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
				"invalid data key", map[string]any{"source": src.raw})
		}
		src.Key = key
		src.KeyExplicit = true
	}
	return src, nil
}

func (s Source) scheme() string {
	if s.Kind == KindSecret {
		return strings.TrimSuffix(secretScheme, "://")
	}
	return strings.TrimSuffix(configMapScheme, "://")
}
