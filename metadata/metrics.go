// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelResult = "result"
	LabelState  = "state"
)

var (
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinerank",
		Subsystem: "metadata",
		Name:      "cache_requests_total",
	}, []string{LabelResult})
	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinerank",
		Subsystem: "metadata",
		Name:      "provider_calls_total",
	}, []string{LabelResult})
	ProviderSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cinerank",
		Subsystem: "metadata",
		Name:      "provider_seconds",
		Buckets:   prometheus.DefBuckets,
	})
	EnrichSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cinerank",
		Subsystem: "metadata",
		Name:      "enrich_seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BreakerStateVec = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cinerank",
		Subsystem: "metadata",
		Name:      "breaker_state",
	}, []string{LabelState})
)
