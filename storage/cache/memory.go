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

package cache

import (
	"context"

	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
)

// Memory is a database in process memory. Entries never expire, but the least
// recently used entries are evicted once capacity is reached.
type Memory struct {
	cache *ttlcache.Cache[string, []byte]
}

func NewMemory(capacity uint64) *Memory {
	var opts []ttlcache.Option[string, []byte]
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](capacity))
	}
	return &Memory{cache: ttlcache.New(opts...)}
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	item := m.cache.Get(key)
	if item == nil {
		return nil, errors.Annotate(ErrObjectNotExist, key)
	}
	return item.Value(), nil
}

func (m *Memory) SetIfAbsent(_ context.Context, key string, value []byte) ([]byte, error) {
	item, _ := m.cache.GetOrSet(key, value)
	return item.Value(), nil
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	return m.cache.Len()
}
