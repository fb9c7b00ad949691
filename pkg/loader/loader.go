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
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/visa-provisioning/udjson/pkg/defaults"
	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
	"github.com/visa-provisioning/udjson/pkg/k8s/client"
	"github.com/visa-provisioning/udjson/pkg/serializer"
	"golang.org/x/sync/errgroup"
)

// Option configures a Loader.
type Option func(*Loader)

// WithMaxSize caps the number of bytes read from any one source.
// Zero or negative disables the cap.
func WithMaxSize(n int64) Option {
	return func(l *Loader) {
		l.maxSize = n
	}
}

// WithEncoding sets the WHATWG label of the input encoding.
func WithEncoding(label string) Option {
	return func(l *Loader) {
		l.encoding = label
	}
}

// WithStdin replaces os.Stdin as the reader behind the "-" source.
func WithStdin(r io.Reader) Option {
	return func(l *Loader) {
		l.stdin = r
	}
}

// WithHTTPReader sets the reader used for http(s) sources.
func WithHTTPReader(r *serializer.HttpReader) Option {
	return func(l *Loader) {
		l.http = r
	}
}

// WithKubeClient sets the client used for cm:// and secret:// sources.
func WithKubeClient(c client.Interface) Option {
	return func(l *Loader) {
		l.kube = c
	}
}

// WithKeepCR keeps carriage returns in file and stdin sources. By default
// CRLF and lone CR line endings are read as LF.
func WithKeepCR(keep bool) Option {
	return func(l *Loader) {
		l.keepCR = keep
	}
}

// WithTimeout bounds each Load call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithKubeconfig sets the kubeconfig used when no client was injected.
func WithKubeconfig(path string) Option {
	return func(l *Loader) {
		l.kubeconfig = path
	}
}

// Loader reads user-data from files, stdin, URLs and Kubernetes objects.
// Every call opens and releases its own resources.
type Loader struct {
	maxSize    int64
	encoding   string
	keepCR     bool
	timeout    time.Duration
	stdin      io.Reader
	http       *serializer.HttpReader
	kube       client.Interface
	kubeconfig string
}

// New returns a Loader with the given options applied over the defaults.
func New(opts ...Option) *Loader {
	l := &Loader{
		maxSize:  defaults.MaxUserDataSize,
		encoding: defaults.Encoding,
		stdin:    os.Stdin,
		timeout:  defaults.LoaderTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.http == nil {
		l.http = serializer.NewHttpReader(
			serializer.WithTotalTimeout(defaults.LoaderTimeout),
			serializer.WithMaxBodySize(l.maxSize),
		)
	}
	return l
}

// MaxSize returns the configured per-source byte limit.
func (l *Loader) MaxSize() int64 {
	return l.maxSize
}

// Load reads the source named by uri and returns its text.
func (l *Loader) Load(ctx context.Context, uri string) (string, error) {
	src, err := ParseSource(uri)
	if err != nil {
		return "", err
	}
	return l.LoadSource(ctx, src)
}

// LoadSource reads an already parsed source.
func (l *Loader) LoadSource(ctx context.Context, src Source) (string, error) {
	dec, err := newDecoder(l.encoding)
	if err != nil {
		return "", err
	}

	start := time.Now()
	raw, err := l.readWithTimeout(ctx, src)
	if err != nil {
		return "", err
	}

	text, err := dec.decode(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", src, err)
	}
	if !l.keepCR && (src.Kind == KindFile || src.Kind == KindStdin) {
		text = normalizeNewlines(text)
	}

	slog.Debug("source loaded",
		"source", src.String(),
		"kind", src.Kind,
		"bytes", len(raw),
		"encoding", dec.name,
		"duration", time.Since(start))

	return text, nil
}

// LoadBytes reads the source named by uri without decoding it, for content
// that may be binary such as gzip-compressed user-data.
func (l *Loader) LoadBytes(ctx context.Context, uri string) ([]byte, error) {
	src, err := ParseSource(uri)
	if err != nil {
		return nil, err
	}
	return l.readWithTimeout(ctx, src)
}

// LoadAll reads every uri concurrently and returns the texts in argument
// order. The first failure cancels the remaining reads.
func (l *Loader) LoadAll(ctx context.Context, uris []string) ([]string, error) {
	sources := make([]Source, len(uris))
	stdin := 0
	for i, uri := range uris {
		src, err := ParseSource(uri)
		if err != nil {
			return nil, err
		}
		if src.Kind == KindStdin {
			stdin++
		}
		sources[i] = src
	}
	if stdin > 1 {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "standard input may be given only once")
	}

	results := make([]string, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			text, err := l.LoadSource(gctx, src)
			if err != nil {
				return err
			}
			results[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Decode converts bytes received out of band, such as an HTTP request
// body, using the configured encoding and size limit.
func (l *Loader) Decode(b []byte) (string, error) {
	if err := l.checkSize(int64(len(b)), "request body"); err != nil {
		return "", err
	}
	dec, err := newDecoder(l.encoding)
	if err != nil {
		return "", err
	}
	return dec.decode(b)
}

// readWithTimeout applies the loader timeout. Network sources observe it;
// files and stdin are read to completion.
func (l *Loader) readWithTimeout(ctx context.Context, src Source) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.read(ctx, src)
}

// normalizeNewlines reads CRLF and lone CR line endings as LF.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	switch src.Kind {
	case KindFile:
		return l.readFile(src.Path)
	case KindStdin:
		return l.readStream(l.stdin, "standard input")
	case KindHTTP:
		return l.readHTTP(ctx, src)
	case KindConfigMap, KindSecret:
		return l.readKube(ctx, src)
	default:
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, fmt.Sprintf("unsupported source kind %q", src.Kind))
	}
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fileError(path, err)
	}
	if info.IsDir() {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			"source is a directory", map[string]any{"path": path})
	}
	if err := l.checkSize(info.Size(), path); err != nil {
		return nil, err
	}

	return l.readStream(f, path)
}

// readStream reads at most maxSize+1 bytes so an oversized stream is
// detected without buffering all of it.
func (l *Loader) readStream(r io.Reader, name string) ([]byte, error) {
	if r == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInternal, name+" is not available")
	}
	if l.maxSize > 0 {
		r = io.LimitReader(r, l.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fileError(name, err)
	}
	if err := l.checkSize(int64(len(data)), name); err != nil {
		return nil, err
	}
	return data, nil
}

func (l *Loader) checkSize(n int64, name string) error {
	if l.maxSize > 0 && n > l.maxSize {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("%s exceeds the %d byte limit", name, l.maxSize),
			map[string]any{"source": name, "limit": l.maxSize})
	}
	return nil
}

func fileError(path string, err error) error {
	ctx := map[string]any{"path": path}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound, "file not found", err, ctx)
	case errors.Is(err, fs.ErrPermission):
		return cnserrors.WrapWithContext(cnserrors.ErrCodePermissionDenied, "permission denied", err, ctx)
	default:
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal, "failed to read file", err, ctx)
	}
}

func (l *Loader) readHTTP(ctx context.Context, src Source) ([]byte, error) {
	data, err := l.http.ReadWithContext(ctx, src.URL)
	if err != nil {
		return nil, httpError(src.URL, err)
	}
	if err := l.checkSize(int64(len(data)), src.URL); err != nil {
		return nil, err
	}
	return data, nil
}

func httpError(url string, err error) error {
	ctx := map[string]any{"url": url}

	var statusErr *serializer.StatusError
	if errors.As(err, &statusErr) {
		ctx["status"] = statusErr.StatusCode
		switch statusErr.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			return cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound, "remote source not found", err, ctx)
		case http.StatusUnauthorized, http.StatusForbidden:
			return cnserrors.WrapWithContext(cnserrors.ErrCodePermissionDenied, "remote source denied access", err, ctx)
		}
	}

	var netErr net.Error
	switch {
	case errors.Is(err, serializer.ErrBodyTooLarge):
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest, "remote source too large", err, ctx)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return cnserrors.WrapWithContext(cnserrors.ErrCodeTimeout, "remote source timed out", err, ctx)
	default:
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal, "failed to fetch remote source", err, ctx)
	}
}
