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
	"strings"

	"github.com/gorse-io/cinerank/storage"
	"github.com/juju/errors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

var ErrObjectNotExist = errors.NotFoundf("object")

// Database is a key-value store where the first write of a key wins.
type Database interface {
	Close() error
	// Get returns the value of a key or ErrObjectNotExist.
	Get(ctx context.Context, key string) ([]byte, error)
	// SetIfAbsent stores a value unless the key exists. It returns the value held
	// by the key after the call.
	SetIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error)
}

// Key joins key segments.
func Key(keys ...string) string {
	return strings.Join(keys, "/")
}

// Open a connection to a database. Capacity bounds the number of entries held by the
// memory database, zero means unbounded.
func Open(path string, capacity uint64) (Database, error) {
	switch {
	case strings.HasPrefix(path, storage.MemoryPrefix):
		return NewMemory(capacity), nil
	case strings.HasPrefix(path, storage.RedisPrefix) || strings.HasPrefix(path, storage.RedissPrefix):
		opt, err := redis.ParseURL(path)
		if err != nil {
			return nil, errors.Trace(err)
		}
		client := redis.NewClient(opt)
		if err = redisotel.InstrumentTracing(client); err != nil {
			return nil, errors.Trace(err)
		}
		return &Redis{client: client}, nil
	case strings.HasPrefix(path, storage.MongoPrefix) || strings.HasPrefix(path, storage.MongoSrvPrefix):
		database := new(MongoDB)
		var err error
		opts := options.Client().ApplyURI(path)
		opts.Monitor = otelmongo.NewMonitor()
		if database.client, err = mongo.Connect(context.Background(), opts); err != nil {
			return nil, errors.Trace(err)
		}
		// parse DSN and extract database name
		if cs, err := connstring.ParseAndValidate(path); err != nil {
			return nil, errors.Trace(err)
		} else {
			database.dbName = cs.Database
		}
		if database.dbName == "" {
			database.dbName = "cinerank"
		}
		return database, nil
	}
	return nil, errors.Errorf("unknown database: %s", path)
}
