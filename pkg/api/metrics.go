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

package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	escapeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "udjson_escape_requests_total",
			Help: "Total number of escape requests by result",
		},
		[]string{"result"},
	)

	escapeInputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "udjson_escape_input_bytes",
			Help:    "Size of escaped request bodies in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8), // 256B .. 4MiB
		},
	)

	inspectRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "udjson_inspect_requests_total",
			Help: "Total number of inspect requests by detected kind and validity",
		},
		[]string{"kind", "valid"},
	)
)
