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

package defaults

// Input defaults.
const (
	// Source is the user-data path read when no source is given.
	Source = "userdata.txt"

	// MaxUserDataSize caps the bytes read from any single source (1 MiB).
	MaxUserDataSize int64 = 1 << 20

	// Encoding is the input encoding assumed when none is configured.
	Encoding = "utf-8"
)

// Kubernetes source defaults.
const (
	// ConfigMapKey is the data key read from cm:// sources without an explicit key.
	ConfigMapKey = "user-data"

	// SecretKey is the data key read from secret:// sources without an explicit key.
	// Cluster API bootstrap providers store rendered user-data under "value".
	SecretKey = "value"
)

// Provider defaults.
const (
	// ProviderEndpoint is the provider API base URL.
	ProviderEndpoint = "http://localhost:4000"

	// UserDataMetadataKey is the instance metadata key carrying user-data.
	UserDataMetadataKey = "user-data"
)

// Server defaults.
const (
	// ServerPort is the default listen port for the HTTP service.
	ServerPort = 8080

	// ServerRateLimit is the sustained request rate in requests per second.
	ServerRateLimit = 100

	// ServerRateLimitBurst is the token bucket burst size.
	ServerRateLimitBurst = 200
)
