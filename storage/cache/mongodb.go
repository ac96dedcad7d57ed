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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const valuesCollection = "values"

type MongoDB struct {
	client *mongo.Client
	dbName string
}

func (m *MongoDB) Close() error {
	return m.client.Disconnect(context.Background())
}

func (m *MongoDB) Get(ctx context.Context, key string) ([]byte, error) {
	c := m.client.Database(m.dbName).Collection(valuesCollection)
	r := c.FindOne(ctx, bson.M{"_id": bson.M{"$eq": key}})
	if err := r.Err(); errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Annotate(ErrObjectNotExist, key)
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	var doc struct {
		Value []byte `bson:"value"`
	}
	if err := r.Decode(&doc); err != nil {
		return nil, errors.Trace(err)
	}
	return doc.Value, nil
}

// SetIfAbsent inserts the value by an upsert that only writes on insert, so an existing
// value is never overwritten.
func (m *MongoDB) SetIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error) {
	c := m.client.Database(m.dbName).Collection(valuesCollection)
	_, err := c.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$setOnInsert": bson.M{"value": value}},
		options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, errors.Trace(err)
	}
	return m.Get(ctx, key)
}

// Purge drops all values.
func (m *MongoDB) Purge() error {
	return m.client.Database(m.dbName).Collection(valuesCollection).Drop(context.Background())
}
