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

// Package provider is a client for the cloud provider API that creates
// instances from a payload.InstanceRequest.
//
//	c, err := provider.NewClient("http://localhost:4000", provider.WithAuthToken(token))
//	id, err := c.CreateInstance(ctx, req)
//
// The request is validated locally first. Responses map onto structured
// error codes:
//
//	400 {"error": ...}   INVALID_REQUEST
//	401, 403             UNAUTHORIZED
//	404                  NOT_FOUND
//	429                  RATE_LIMIT_EXCEEDED
//	5xx                  SERVICE_UNAVAILABLE
//	timeouts             TIMEOUT
//	other failures       INTERNAL
package provider
