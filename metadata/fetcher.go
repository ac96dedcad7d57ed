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
	"strconv"
	"time"

	"github.com/gorse-io/cinerank/base/log"
	"github.com/gorse-io/cinerank/config"
	"github.com/gorse-io/cinerank/storage/cache"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher fetches movie metadata through a cache. Each external id is fetched from the
// provider once: concurrent lookups of a missing id share a single call, and the first
// successful result is stored forever. Failures are not stored.
type Fetcher struct {
	provider Provider
	cache    cache.Database
	images   Images
	language string
	enabled  bool
	group    singleflight.Group
}

func NewFetcher(provider Provider, db cache.Database, cfg config.TMDBConfig) *Fetcher {
	return &Fetcher{
		provider: provider,
		cache:    db,
		images:   NewImages(cfg),
		language: cfg.Language,
		enabled:  cfg.APIKey != "",
	}
}

// Enabled reports whether the provider credential is set.
func (f *Fetcher) Enabled() bool {
	return f.enabled
}

// Fetch returns the metadata of a movie. The returned entry is shared and must not be
// modified. If the caller gives up, the provider call still completes and its result
// is cached.
func (f *Fetcher) Fetch(ctx context.Context, externalId int) (*Entry, error) {
	if !f.enabled {
		return nil, ErrNoCredential
	}
	key := cache.Key("movie", strconv.Itoa(externalId), f.language)
	if entry, err := f.lookup(ctx, key); err == nil {
		CacheRequestsTotal.WithLabelValues("hit").Inc()
		return entry, nil
	} else if !errors.Is(err, cache.ErrObjectNotExist) {
		log.Logger().Warn("failed to read metadata cache", zap.String("key", key), zap.Error(err))
	}
	CacheRequestsTotal.WithLabelValues("miss").Inc()
	ch := f.group.DoChan(key, func() (any, error) {
		return f.fetch(context.WithoutCancel(ctx), key, externalId)
	})
	select {
	case <-ctx.Done():
		return nil, errors.Trace(ctx.Err())
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*Entry), nil
	}
}

func (f *Fetcher) fetch(ctx context.Context, key string, externalId int) (*Entry, error) {
	// another call may have finished between the lookup and this call
	if entry, err := f.lookup(ctx, key); err == nil {
		return entry, nil
	}
	start := time.Now()
	movie, err := f.provider.Movie(ctx, externalId)
	ProviderSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		ProviderCallsTotal.WithLabelValues("failure").Inc()
		log.Logger().Warn("failed to fetch metadata", zap.Int("external_id", externalId), zap.Error(err))
		return nil, errors.Trace(err)
	}
	ProviderCallsTotal.WithLabelValues("success").Inc()
	entry := Normalize(movie, f.images)
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, errors.Trace(err)
	}
	stored, err := f.cache.SetIfAbsent(ctx, key, data)
	if err != nil {
		log.Logger().Warn("failed to write metadata cache", zap.String("key", key), zap.Error(err))
		return entry, nil
	}
	var winner Entry
	if err = json.Unmarshal(stored, &winner); err != nil {
		return entry, nil
	}
	return &winner, nil
}

func (f *Fetcher) lookup(ctx context.Context, key string) (*Entry, error) {
	data, err := f.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, errors.Annotatef(err, "decode %s", key)
	}
	return &entry, nil
}
