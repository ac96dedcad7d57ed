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

	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
)

// Redis cache storage.
type Redis struct {
	client *redis.Client
}

// Close redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get returns a value from Redis.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Annotate(ErrObjectNotExist, key)
		}
		return nil, errors.Trace(err)
	}
	return val, nil
}

// SetIfAbsent stores a value by SETNX and reads back the winner if the key exists.
func (r *Redis) SetIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error) {
	ok, err := r.client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if ok {
		return value, nil
	}
	return r.Get(ctx, key)
}
