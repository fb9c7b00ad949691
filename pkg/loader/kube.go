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
	"fmt"
	"log/slog"

	"github.com/visa-provisioning/udjson/pkg/defaults"
	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
	"github.com/visa-provisioning/udjson/pkg/k8s/client"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func (l *Loader) kubeClient() (client.Interface, error) {
	if l.kube != nil {
		return l.kube, nil
	}
	c, config, err := client.ForKubeconfig(l.kubeconfig)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to get kubernetes client", err)
	}
	slog.Debug("kubernetes client ready", "auth_method", client.AuthMethod(config))
	return c, nil
}

func (l *Loader) readKube(ctx context.Context, src Source) ([]byte, error) {
	k8s, err := l.kubeClient()
	if err != nil {
		return nil, err
	}

	readCtx, cancel := context.WithTimeout(ctx, defaults.LoaderK8sTimeout)
	defer cancel()

	var data map[string][]byte
	switch src.Kind {
	case KindConfigMap:
		cm, err := k8s.CoreV1().ConfigMaps(src.Namespace).Get(readCtx, src.Name, metav1.GetOptions{})
		if err != nil {
			return nil, kubeError(src, err)
		}
		data = make(map[string][]byte, len(cm.Data)+len(cm.BinaryData))
		for k, v := range cm.BinaryData {
			data[k] = v
		}
		for k, v := range cm.Data {
			data[k] = []byte(v)
		}
	case KindSecret:
		secret, err := k8s.CoreV1().Secrets(src.Namespace).Get(readCtx, src.Name, metav1.GetOptions{})
		if err != nil {
			return nil, kubeError(src, err)
		}
		data = secret.Data
	default:
		return nil, cnserrors.New(cnserrors.ErrCodeInternal, fmt.Sprintf("%s is not a kubernetes source", src))
	}

	value, ok := data[src.Key]
	if !ok && !src.KeyExplicit && src.Key != defaults.ConfigMapKey {
		// Secrets written by hand often use the ConfigMap key.
		value, ok = data[defaults.ConfigMapKey]
	}
	if !ok {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound,
			fmt.Sprintf("%s %s/%s has no key %q", src.Kind, src.Namespace, src.Name, src.Key),
			map[string]any{"source": src.String(), "key": src.Key})
	}
	if err := l.checkSize(int64(len(value)), src.String()); err != nil {
		return nil, err
	}
	return value, nil
}

func kubeError(src Source, err error) error {
	ctx := map[string]any{"source": src.String(), "namespace": src.Namespace, "name": src.Name}
	switch {
	case apierrors.IsNotFound(err):
		return cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
			fmt.Sprintf("%s %s/%s not found", src.Kind, src.Namespace, src.Name), err, ctx)
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		return cnserrors.WrapWithContext(cnserrors.ErrCodePermissionDenied,
			fmt.Sprintf("access to %s %s/%s denied", src.Kind, src.Namespace, src.Name), err, ctx)
	case apierrors.IsTimeout(err), apierrors.IsServerTimeout(err):
		return cnserrors.WrapWithContext(cnserrors.ErrCodeTimeout,
			fmt.Sprintf("reading %s %s/%s timed out", src.Kind, src.Namespace, src.Name), err, ctx)
	default:
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			fmt.Sprintf("failed to read %s %s/%s", src.Kind, src.Namespace, src.Name), err, ctx)
	}
}
