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
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for cinerank.
type Config struct {
	Model   ModelConfig   `mapstructure:"model"`
	Ranking RankingConfig `mapstructure:"ranking"`
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Server  ServerConfig  `mapstructure:"server"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// ModelConfig locates the catalog artifacts produced by offline training.
type ModelConfig struct {
	Dir     string   `mapstructure:"dir" validate:"required"`
	Meta    string   `mapstructure:"meta" validate:"required"`
	Factors string   `mapstructure:"factors" validate:"required"`
	ItemIds string   `mapstructure:"item_ids" validate:"required"`
	Links   string   `mapstructure:"links" validate:"required"`
	Popular string   `mapstructure:"popular"`
	S3      S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type RankingConfig struct {
	// PoolSize is the default number of ranked items returned.
	PoolSize int `mapstructure:"pool_size" validate:"gt=0"`
	// MaxPoolSize caps the pool size requested by clients.
	MaxPoolSize int `mapstructure:"max_pool_size" validate:"gtefield=PoolSize"`
	// EnrichLimit is the number of head items enriched with metadata.
	EnrichLimit int `mapstructure:"enrich_limit" validate:"gte=0"`
	// EnrichJobs is the number of metadata calls in flight per request.
	EnrichJobs int `mapstructure:"enrich_jobs" validate:"gt=0"`
}

type TMDBConfig struct {
	// APIKey is the provider credential. Enrichment is skipped if it is empty.
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url" validate:"url"`
	ImageBaseURL string        `mapstructure:"image_base_url" validate:"url"`
	PosterSize   string        `mapstructure:"poster_size" validate:"required"`
	BackdropSize string        `mapstructure:"backdrop_size" validate:"required"`
	Language     string        `mapstructure:"language"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit    float64       `mapstructure:"rate_limit" validate:"gt=0"`
	Burst        int64         `mapstructure:"burst" validate:"gt=0"`
}

type CacheConfig struct {
	Store string `mapstructure:"store" validate:"required"`
	// Capacity bounds the in-memory cache. Zero means unbounded.
	Capacity uint64 `mapstructure:"capacity"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	APIKey string `mapstructure:"api_key"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	EnableTracing     bool    `mapstructure:"enable_tracing"`
	Exporter          string  `mapstructure:"exporter" validate:"oneof=otlp otlphttp zipkin"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	Sampler           string  `mapstructure:"sampler" validate:"oneof=always never ratio"`
	Ratio             float64 `mapstructure:"ratio" validate:"gte=0,lte=1"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Dir:     "data",
			Meta:    "meta.json",
			Factors: "factors.bin",
			ItemIds: "item_ids.json",
			Links:   "links.csv",
			Popular: "popular.json",
		},
		Ranking: RankingConfig{
			PoolSize:    500,
			MaxPoolSize: 2000,
			EnrichLimit: 100,
			EnrichJobs:  8,
		},
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p/",
			PosterSize:   "w500",
			BackdropSize: "w1280",
			Language:     "en-US",
			Timeout:      10 * time.Second,
			RateLimit:    40,
			Burst:        20,
		},
		Cache: CacheConfig{
			Store: "memory://",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8087,
		},
		Tracing: TracingConfig{
			Exporter: "otlp",
			Sampler:  "always",
			Ratio:    1,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [model]
	v.SetDefault("model.dir", defaultConfig.Model.Dir)
	v.SetDefault("model.meta", defaultConfig.Model.Meta)
	v.SetDefault("model.factors", defaultConfig.Model.Factors)
	v.SetDefault("model.item_ids", defaultConfig.Model.ItemIds)
	v.SetDefault("model.links", defaultConfig.Model.Links)
	v.SetDefault("model.popular", defaultConfig.Model.Popular)
	v.SetDefault("model.s3.use_ssl", defaultConfig.Model.S3.UseSSL)
	// [ranking]
	v.SetDefault("ranking.pool_size", defaultConfig.Ranking.PoolSize)
	v.SetDefault("ranking.max_pool_size", defaultConfig.Ranking.MaxPoolSize)
	v.SetDefault("ranking.enrich_limit", defaultConfig.Ranking.EnrichLimit)
	v.SetDefault("ranking.enrich_jobs", defaultConfig.Ranking.EnrichJobs)
	// [tmdb]
	v.SetDefault("tmdb.base_url", defaultConfig.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base_url", defaultConfig.TMDB.ImageBaseURL)
	v.SetDefault("tmdb.poster_size", defaultConfig.TMDB.PosterSize)
	v.SetDefault("tmdb.backdrop_size", defaultConfig.TMDB.BackdropSize)
	v.SetDefault("tmdb.language", defaultConfig.TMDB.Language)
	v.SetDefault("tmdb.timeout", defaultConfig.TMDB.Timeout)
	v.SetDefault("tmdb.rate_limit", defaultConfig.TMDB.RateLimit)
	v.SetDefault("tmdb.burst", defaultConfig.TMDB.Burst)
	// [cache]
	v.SetDefault("cache.store", defaultConfig.Cache.Store)
	v.SetDefault("cache.capacity", defaultConfig.Cache.Capacity)
	// [server]
	v.SetDefault("server.host", defaultConfig.Server.Host)
	v.SetDefault("server.port", defaultConfig.Server.Port)
	// [tracing]
	v.SetDefault("tracing.enable_tracing", defaultConfig.Tracing.EnableTracing)
	v.SetDefault("tracing.exporter", defaultConfig.Tracing.Exporter)
	v.SetDefault("tracing.sampler", defaultConfig.Tracing.Sampler)
	v.SetDefault("tracing.ratio", defaultConfig.Tracing.Ratio)
}

type configBinding struct {
	key  string
	envs []string
}

var bindings = []configBinding{
	{"model.dir", []string{"CINERANK_MODEL_DIR"}},
	{"model.s3.endpoint", []string{"CINERANK_S3_ENDPOINT"}},
	{"model.s3.access_key_id", []string{"CINERANK_S3_ACCESS_KEY_ID"}},
	{"model.s3.secret_access_key", []string{"CINERANK_S3_SECRET_ACCESS_KEY"}},
	{"tmdb.api_key", []string{"CINERANK_TMDB_API_KEY", "TMDB_API_KEY"}},
	{"cache.store", []string{"CINERANK_CACHE_STORE"}},
	{"server.host", []string{"CINERANK_SERVER_HOST"}},
	{"server.port", []string{"CINERANK_SERVER_PORT"}},
	{"server.api_key", []string{"CINERANK_SERVER_API_KEY"}},
	{"tracing.collector_endpoint", []string{"CINERANK_TRACING_COLLECTOR_ENDPOINT"}},
}

// LoadConfig loads configuration from a TOML file. Environment variables override
// values in the file. An empty path loads defaults and environment variables only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	for _, binding := range bindings {
		args := append([]string{binding.key}, binding.envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

func (config *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(config)
}
