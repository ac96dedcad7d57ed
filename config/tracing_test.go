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


package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestTracingConfig(t *testing.T) {
	config := GetDefaultConfig().Tracing
	provider, err := config.NewTracerProvider()
	assert.NoError(t, err)
	assert.IsType(t, noop.TracerProvider{}, provider)

	config.EnableTracing = true
	for _, exporter := range []string{"zipkin", "otlp", "otlphttp"} {
		config.Exporter = exporter
		config.CollectorEndpoint = "localhost:4317"
		if exporter == "zipkin" {
			config.CollectorEndpoint = "http://localhost:9411/api/v2/spans"
		}
		for _, sampler := range []string{"always", "never", "ratio"} {
			config.Sampler = sampler
			provider, err = config.NewTracerProvider()
			assert.NoError(t, err)
			assert.IsType(t, &tracesdk.TracerProvider{}, provider)
		}
	}

	config.Exporter = "jaeger"
	_, err = config.NewTracerProvider()
	assert.Error(t, err)
}
