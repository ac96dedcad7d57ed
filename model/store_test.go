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

package model

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewStore(t *testing.T) {
	factors := []float32{1, 0, 0, 1, 0.5, 0.5}
	store, err := NewStore(3, 2, factors, []int{10, 20, 30}, map[int]int{10: 100, 30: 300}, []int{30, 99, 10})
	assert.NoError(t, err)
	assert.Equal(t, 3, store.Rows())
	assert.Equal(t, 2, store.Cols())
	assert.Equal(t, []float32{0, 1}, store.VectorAt(1))
	assert.Equal(t, 2, cap(store.VectorAt(1)))
	assert.Equal(t, 30, store.ItemIdAt(2))

	i, ok := store.IndexOf(20)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = store.IndexOf(99)
	assert.False(t, ok)

	externalId, ok := store.ExternalIdOf(30)
	assert.True(t, ok)
	assert.Equal(t, 300, externalId)
	_, ok = store.ExternalIdOf(20)
	assert.False(t, ok)

	// unknown popular items are dropped
	assert.Equal(t, []int{30, 10}, store.Popular())
}

func TestNewStoreInvalid(t *testing.T) {
	_, err := NewStore(0, 2, nil, nil, nil, nil)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = NewStore(2, 2, []float32{1, 2, 3}, []int{1, 2}, nil, nil)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = NewStore(2, 1, []float32{1, 2}, []int{1}, nil, nil)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = NewStore(2, 1, []float32{1, 2}, []int{7, 7}, nil, nil)
	assert.True(t, errors.Is(err, errors.NotValid))
}
