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
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("config.toml.template")
	assert.NoError(t, err)
	// [model]
	assert.Equal(t, "data", config.Model.Dir)
	assert.Equal(t, "meta.json", config.Model.Meta)
	assert.Equal(t, "factors.bin", config.Model.Factors)
	assert.Equal(t, "item_ids.json", config.Model.ItemIds)
	assert.Equal(t, "links.csv", config.Model.Links)
	assert.Equal(t, "popular.json", config.Model.Popular)
	assert.False(t, config.Model.S3.UseSSL)
	// [ranking]
	assert.Equal(t, 500, config.Ranking.PoolSize)
	assert.Equal(t, 2000, config.Ranking.MaxPoolSize)
	assert.Equal(t, 100, config.Ranking.EnrichLimit)
	assert.Equal(t, 8, config.Ranking.EnrichJobs)
	// [tmdb]
	assert.Empty(t, config.TMDB.APIKey)
	assert.Equal(t, "https://api.themoviedb.org/3", config.TMDB.BaseURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/", config.TMDB.ImageBaseURL)
	assert.Equal(t, "w500", config.TMDB.PosterSize)
	assert.Equal(t, "w1280", config.TMDB.BackdropSize)
	assert.Equal(t, 10*time.Second, config.TMDB.Timeout)
	assert.Equal(t, 40.0, config.TMDB.RateLimit)
	assert.Equal(t, int64(20), config.TMDB.Burst)
	// [cache]
	assert.Equal(t, "memory://", config.Cache.Store)
	assert.Zero(t, config.Cache.Capacity)
	// [server]
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 8087, config.Server.Port)
	// [tracing]
	assert.False(t, config.Tracing.EnableTracing)
	assert.Equal(t, "otlp", config.Tracing.Exporter)
	assert.Equal(t, "http://localhost:4317", config.Tracing.CollectorEndpoint)
	assert.Equal(t, "always", config.Tracing.Sampler)
	assert.Equal(t, 1.0, config.Tracing.Ratio)
}

func TestSetDefault(t *testing.T) {
	config, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
}

type environmentVariable struct {
	key   string
	value string
}

func TestBindEnv(t *testing.T) {
	variables := []environmentVariable{
		{"CINERANK_MODEL_DIR", "s3://bucket/model"},
		{"CINERANK_S3_ENDPOINT", "<endpoint>"},
		{"CINERANK_S3_ACCESS_KEY_ID", "<access_key_id>"},
		{"CINERANK_S3_SECRET_ACCESS_KEY", "<secret_access_key>"},
		{"TMDB_API_KEY", "<tmdb_api_key>"},
		{"CINERANK_CACHE_STORE", "redis://127.0.0.1:6379/0"},
		{"CINERANK_SERVER_HOST", "<server_host>"},
		{"CINERANK_SERVER_PORT", "123"},
		{"CINERANK_SERVER_API_KEY", "<server_api_key>"},
	}
	for _, variable := range variables {
		t.Setenv(variable.key, variable.value)
	}

	config, err := LoadConfig("config.toml.template")
	assert.NoError(t, err)
	assert.Equal(t, "s3://bucket/model", config.Model.Dir)
	assert.Equal(t, "<endpoint>", config.Model.S3.Endpoint)
	assert.Equal(t, "<access_key_id>", config.Model.S3.AccessKeyID)
	assert.Equal(t, "<secret_access_key>", config.Model.S3.SecretAccessKey)
	assert.Equal(t, "<tmdb_api_key>", config.TMDB.APIKey)
	assert.Equal(t, "redis://127.0.0.1:6379/0", config.Cache.Store)
	assert.Equal(t, "<server_host>", config.Server.Host)
	assert.Equal(t, 123, config.Server.Port)
	assert.Equal(t, "<server_api_key>", config.Server.APIKey)

	// the prefixed variable wins over the plain one
	t.Setenv("CINERANK_TMDB_API_KEY", "<prefixed>")
	config, err = LoadConfig("config.toml.template")
	assert.NoError(t, err)
	assert.Equal(t, "<prefixed>", config.TMDB.APIKey)
}

func TestValidate(t *testing.T) {
	config := GetDefaultConfig()
	assert.NoError(t, config.Validate())

	config.Ranking.PoolSize = 0
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Ranking.MaxPoolSize = config.Ranking.PoolSize - 1
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Ranking.EnrichJobs = 0
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.TMDB.BaseURL = "not a url"
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Cache.Store = ""
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Tracing.Exporter = "jaeger"
	assert.Error(t, config.Validate())

	config = GetDefaultConfig()
	config.Tracing.Ratio = 2
	assert.Error(t, config.Validate())
}
