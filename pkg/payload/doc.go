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

// Package payload models the instance-creation request that carries
// escaped user-data to the provider API.
//
//	req := payload.New("web-01", "ubuntu-24.04", "m1.small",
//		payload.WithSecurityGroups("default", "web"),
//		payload.WithUserData(text),
//	)
//	if err := req.Validate(); err != nil {
//		return err
//	}
//
// Field names match what the provider accepts: name, imageId, flavourId,
// securityGroups, metadata and bootCommand. bootCommand is always
// serialized because the provider requires the key.
package payload
