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

// Package client provides Kubernetes client discovery for udjson.
//
// The loader reads user-data from ConfigMaps and Secrets, and the serializer
// can write results back to a ConfigMap. Both obtain their client here.
//
// # Cached Client
//
// GetKubeClient builds a client on first use and returns the same instance
// afterwards:
//
//	clientset, config, err := client.GetKubeClient()
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//	cm, err := clientset.CoreV1().ConfigMaps("provisioning").Get(ctx, "web-01", metav1.GetOptions{})
//
// # Custom Kubeconfig Path
//
// ForKubeconfig returns the cached client for an empty path and builds a new
// one for an explicit path:
//
//	clientset, _, err := client.ForKubeconfig("/path/to/kubeconfig")
//
// # Discovery Order
//
//  1. Explicit path argument
//  2. KUBECONFIG environment variable
//  3. ~/.kube/config, when it exists
//  4. In-cluster service account
//
// # Testing
//
// Interface is an alias for kubernetes.Interface, so tests inject
// k8s.io/client-go/kubernetes/fake clientsets wherever a client is accepted.
package client
