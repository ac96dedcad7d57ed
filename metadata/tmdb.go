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
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorse-io/cinerank/base/log"
	"github.com/gorse-io/cinerank/common/parallel"
	"github.com/gorse-io/cinerank/config"
	"github.com/juju/errors"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var ErrNoCredential = errors.New("metadata provider credential is not set")

const (
	breakerTimeout   = 30 * time.Second
	breakerThreshold = 5
)

// TMDB is a client of The Movie Database API. Requests are throttled by a token
// bucket and guarded by a circuit breaker.
type TMDB struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	language string
	limiter  parallel.RateLimiter
	breaker  *gobreaker.CircuitBreaker[*Movie]
}

func NewTMDB(cfg config.TMDBConfig) *TMDB {
	BreakerStateVec.WithLabelValues(gobreaker.StateClosed.String()).Set(1)
	return &TMDB{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		limiter:  parallel.NewRateLimiter(cfg.RateLimit, cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker[*Movie](gobreaker.Settings{
			Name:    "tmdb",
			Timeout: breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerThreshold
			},
			IsSuccessful: func(err error) bool {
				// a missing movie says nothing about the health of the provider
				return err == nil || errors.Is(err, errors.NotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				BreakerStateVec.WithLabelValues(from.String()).Set(0)
				BreakerStateVec.WithLabelValues(to.String()).Set(1)
				log.Logger().Warn("circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

// Movie gets details and credits of a movie.
func (t *TMDB) Movie(ctx context.Context, externalId int) (*Movie, error) {
	if t.apiKey == "" {
		return nil, ErrNoCredential
	}
	ctx, span := otel.Tracer("metadata").Start(ctx, "TMDB.Movie")
	defer span.End()
	span.SetAttributes(attribute.Int("external_id", externalId))
	movie, err := t.breaker.Execute(func() (*Movie, error) {
		return t.movie(ctx, externalId)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return movie, err
}

func (t *TMDB) movie(ctx context.Context, externalId int) (*Movie, error) {
	if err := parallel.Wait(ctx, t.limiter, 1); err != nil {
		return nil, errors.Trace(err)
	}
	endpoint := t.baseURL + "/movie/" + strconv.Itoa(externalId)
	query := url.Values{}
	query.Set("api_key", t.apiKey)
	query.Set("append_to_response", "credits")
	if t.language != "" {
		query.Set("language", t.language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		// hide the credential in the query
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = endpoint
		}
		return nil, errors.Trace(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFoundf("movie %d", externalId)
	} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	var movie Movie
	if err = json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return nil, errors.Annotatef(err, "decode movie %d", externalId)
	}
	return &movie, nil
}
