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

package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/visa-provisioning/udjson/pkg/defaults"
	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
)

// InstanceRequest is the body of POST /api/instances on the provider API.
type InstanceRequest struct {
	Name           string            `json:"name" yaml:"name"`
	ImageID        string            `json:"imageId" yaml:"imageId"`
	FlavourID      string            `json:"flavourId" yaml:"flavourId"`
	SecurityGroups []string          `json:"securityGroups,omitempty" yaml:"securityGroups,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	// BootCommand must be present in the body even when empty.
	BootCommand string `json:"bootCommand" yaml:"bootCommand"`
}

// Option configures an InstanceRequest.
type Option func(*InstanceRequest)

// WithSecurityGroups appends security group names.
func WithSecurityGroups(groups ...string) Option {
	return func(r *InstanceRequest) {
		r.SecurityGroups = append(r.SecurityGroups, groups...)
	}
}

// WithMetadata sets one metadata entry.
func WithMetadata(key, value string) Option {
	return func(r *InstanceRequest) {
		if r.Metadata == nil {
			r.Metadata = make(map[string]string)
		}
		r.Metadata[key] = value
	}
}

// WithUserData stores content under metadata["user-data"].
func WithUserData(content string) Option {
	return WithMetadata(defaults.UserDataMetadataKey, content)
}

// WithBootCommand sets the boot command. OpenStack providers pass it to
// the instance as base64 user_data.
func WithBootCommand(cmd string) Option {
	return func(r *InstanceRequest) {
		r.BootCommand = cmd
	}
}

// New builds a request. Call Validate before sending it.
func New(name, imageID, flavourID string, opts ...Option) *InstanceRequest {
	r := &InstanceRequest{
		Name:      name,
		ImageID:   imageID,
		FlavourID: flavourID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UserData returns metadata["user-data"], or "" when unset.
func (r *InstanceRequest) UserData() string {
	return r.Metadata[defaults.UserDataMetadataKey]
}

// Validate applies the provider's schema: name, imageId and flavourId are
// required non-empty strings, and security groups and metadata values may
// not be empty. The first violation is returned as INVALID_REQUEST.
func (r *InstanceRequest) Validate() error {
	if r == nil {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "instance request is nil")
	}

	required := []struct {
		field string
		value string
	}{
		{"name", r.Name},
		{"imageId", r.ImageID},
		{"flavourId", r.FlavourID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid(f.field, fmt.Sprintf("%q is not allowed to be empty", f.field))
		}
	}

	for i, g := range r.SecurityGroups {
		if strings.TrimSpace(g) == "" {
			field := fmt.Sprintf("securityGroups[%d]", i)
			return invalid(field, fmt.Sprintf("%q is not allowed to be empty", field))
		}
	}

	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "" {
			return invalid("metadata", "metadata keys are not allowed to be empty")
		}
		if r.Metadata[k] == "" {
			field := "metadata." + k
			return invalid(field, fmt.Sprintf("%q is not allowed to be empty", field))
		}
	}

	return nil
}

func invalid(field, msg string) error {
	return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, msg, map[string]any{"field": field})
}

// Body returns the compact JSON sent to the provider.
func (r *InstanceRequest) Body() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInternal, "failed to encode instance request", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
