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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/visa-provisioning/udjson/pkg/defaults"
	"github.com/visa-provisioning/udjson/pkg/k8s/client"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"
)

const (
	// ConfigMapURIScheme prefixes output destinations that are Kubernetes ConfigMaps.
	ConfigMapURIScheme = "cm://"

	// ConfigMapFieldManager owns the fields written by ConfigMapWriter.
	ConfigMapFieldManager = "udjson"

	configMapDataPrefix = "payload"
)

// ConfigMapOption configures a ConfigMapWriter.
type ConfigMapOption func(*ConfigMapWriter)

// WithConfigMapClient sets the Kubernetes client used for the write.
// Without it the client is discovered from the kubeconfig.
func WithConfigMapClient(c client.Interface) ConfigMapOption {
	return func(w *ConfigMapWriter) {
		w.client = c
	}
}

// WithConfigMapKubeconfig sets an explicit kubeconfig path.
func WithConfigMapKubeconfig(path string) ConfigMapOption {
	return func(w *ConfigMapWriter) {
		w.kubeconfig = path
	}
}

// ConfigMapWriter writes serialized data to a Kubernetes ConfigMap.
// The ConfigMap is created if it doesn't exist, or updated if it does.
type ConfigMapWriter struct {
	namespace  string
	name       string
	format     Format
	kubeconfig string
	client     client.Interface
}

// NewConfigMapWriter creates a new ConfigMapWriter that writes to the specified
// namespace and ConfigMap name in the given format.
func NewConfigMapWriter(namespace, name string, format Format, opts ...ConfigMapOption) *ConfigMapWriter {
	w := &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    normalize(format),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Serialize writes data to the ConfigMap. The ConfigMap will have:
//   - data.payload.{json|yaml|txt}: the serialized content
//   - data.format: the format used
//   - data.timestamp: RFC 3339 time of the write
func (w *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	k8s := w.client
	authInfo := "injected"
	if k8s == nil {
		c, config, err := client.ForKubeconfig(w.kubeconfig)
		if err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
		k8s = c
		authInfo = client.AuthMethod(config)
	}

	slog.Info("configmap operation",
		"namespace", w.namespace,
		"name", w.name,
		"auth_method", authInfo,
		"format", w.format)

	content, err := marshal(w.format, data)
	if err != nil {
		return fmt.Errorf("failed to serialize payload: %w", err)
	}

	configMap := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":       "udjson",
			"app.kubernetes.io/managed-by": ConfigMapFieldManager,
		}).
		WithData(map[string]string{
			ConfigMapDataKey(w.format): string(content),
			"format":                   string(w.format),
			"timestamp":                time.Now().UTC().Format(time.RFC3339),
		})

	// Server-side apply is an atomic create-or-update; Force takes
	// ownership from earlier field managers.
	_, err = k8s.CoreV1().ConfigMaps(w.namespace).Apply(
		writeCtx,
		configMap,
		metav1.ApplyOptions{
			FieldManager: ConfigMapFieldManager,
			Force:        true,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}

	return nil
}

// Close is a no-op for ConfigMapWriter as there are no resources to release.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// ConfigMapDataKey is the data key ConfigMapWriter stores content under.
func ConfigMapDataKey(format Format) string {
	return configMapDataPrefix + "." + format.Extension()
}

// parseConfigMapURI parses a ConfigMap URI in the format cm://namespace/name
// and returns the namespace and name components.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	path := strings.TrimPrefix(uri, ConfigMapURIScheme)

	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}

	namespace = strings.TrimSpace(parts[0])
	name = strings.TrimSpace(parts[1])

	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot be empty")
	}
	if strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name cannot contain '/'")
	}

	return namespace, name, nil
}
