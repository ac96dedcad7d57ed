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

package logics

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/cinerank/base/log"
	"github.com/gorse-io/cinerank/common/heap"
	"github.com/gorse-io/cinerank/config"
	"github.com/gorse-io/cinerank/metadata"
	"github.com/gorse-io/cinerank/model"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	ModePersonalized = "personalized"
	ModePopular      = "popular"
)

// ModelLoader provides the loaded model store.
type ModelLoader interface {
	Load(ctx context.Context) (*model.Store, error)
}

// Item is a ranked item. Metadata is nil outside the enrichment window or if the
// lookup failed.
type Item struct {
	Rank       int             `json:"rank"`
	ItemId     int             `json:"item_id"`
	ExternalId *int            `json:"external_id"`
	Score      float32         `json:"score"`
	Metadata   *metadata.Entry `json:"metadata"`
}

type Result struct {
	Mode     string `json:"mode"`
	Count    int    `json:"count"`
	Accepted int    `json:"accepted"`
	PoolSize int    `json:"pool_size"`
	Enriched int    `json:"enriched"`
	Items    []Item `json:"items"`
}

// Ranker ranks the catalog for a set of ratings.
type Ranker struct {
	loader   ModelLoader
	enricher *metadata.Enricher
	cfg      config.RankingConfig
}

func NewRanker(loader ModelLoader, enricher *metadata.Enricher, cfg config.RankingConfig) *Ranker {
	return &Ranker{loader: loader, enricher: enricher, cfg: cfg}
}

// PoolSize returns the number of items ranked for a requested size. A size that is not
// positive falls back to the default.
func (r *Ranker) PoolSize(n int) int {
	if n <= 0 {
		n = r.cfg.PoolSize
	}
	return min(n, r.cfg.MaxPoolSize)
}

// Rank ranks items for raw rating records. Rated items never appear in the result.
// Without any valid rating, popular items are returned instead. Only the head of
// the pool is enriched with metadata.
func (r *Ranker) Rank(ctx context.Context, raw []any, n int) (*Result, error) {
	ctx, span := otel.Tracer("logics").Start(ctx, "Rank")
	defer span.End()
	store, err := r.loader.Load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ratings := NormalizeRatings(raw)
	exclude := mapset.NewThreadUnsafeSet(lo.Map(ratings, func(rating Rating, _ int) int {
		return rating.ItemId
	})...)
	k := r.PoolSize(n)

	var (
		mode     string
		selected []heap.Elem[int, float32]
	)
	if len(ratings) == 0 {
		mode = ModePopular
		selected = SelectPopular(store, k, exclude)
	} else {
		mode = ModePersonalized
		start := time.Now()
		vector := BuildUserVector(store, ratings)
		scores := Score(store, vector)
		scoreTime := time.Since(start)
		ScoreSeconds.Observe(scoreTime.Seconds())
		start = time.Now()
		selected = SelectTopK(store, scores, k, exclude)
		selectTime := time.Since(start)
		SelectSeconds.Observe(selectTime.Seconds())
		log.Logger().Debug("rank items",
			zap.Int("ratings", len(ratings)),
			zap.Int("pool_size", k),
			zap.Duration("score_time", scoreTime),
			zap.Duration("select_time", selectTime))
	}

	items := make([]Item, len(selected))
	externalIds := make([]int, len(selected))
	for i, elem := range selected {
		items[i] = Item{Rank: i + 1, ItemId: elem.Value, Score: elem.Weight}
		if externalId, ok := store.ExternalIdOf(elem.Value); ok {
			items[i].ExternalId = lo.ToPtr(externalId)
			externalIds[i] = externalId
		}
	}
	span.SetAttributes(
		attribute.String("mode", mode),
		attribute.Int("ratings", len(ratings)),
		attribute.Int("pool_size", k))
	enriched := 0
	for i, entry := range r.enricher.Enrich(ctx, externalIds, r.cfg.EnrichLimit) {
		if entry != nil {
			items[i].Metadata = entry
			enriched++
		}
	}
	RankRequestsTotal.WithLabelValues(mode).Inc()
	return &Result{
		Mode:     mode,
		Count:    len(items),
		Accepted: len(ratings),
		PoolSize: k,
		Enriched: enriched,
		Items:    items,
	}, nil
}
