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
	"time"

	"github.com/gorse-io/cinerank/base/log"
	"github.com/gorse-io/cinerank/common/parallel"
	"go.uber.org/zap"
)

// Enricher fetches metadata for the head of a ranked list.
type Enricher struct {
	fetcher *Fetcher
	jobs    int
}

func NewEnricher(fetcher *Fetcher, jobs int) *Enricher {
	return &Enricher{fetcher: fetcher, jobs: jobs}
}

// Enrich fetches metadata of the first limit external ids with at most jobs calls in
// flight. The i-th result belongs to the i-th external id. A result is nil if the id
// is not positive or the lookup failed. Nothing is fetched without a credential.
func (e *Enricher) Enrich(ctx context.Context, externalIds []int, limit int) []*Entry {
	head := externalIds[:max(0, min(limit, len(externalIds)))]
	entries := make([]*Entry, len(head))
	if !e.fetcher.Enabled() || len(head) == 0 {
		return entries
	}
	start := time.Now()
	parallel.ForEach(head, e.jobs, func(i int, externalId int) {
		if externalId <= 0 {
			return
		}
		entry, err := e.fetcher.Fetch(ctx, externalId)
		if err != nil {
			log.Logger().Debug("skip metadata", zap.Int("external_id", externalId), zap.Error(err))
			return
		}
		entries[i] = entry
	})
	EnrichSeconds.Observe(time.Since(start).Seconds())
	return entries
}
