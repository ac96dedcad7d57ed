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
	"github.com/juju/errors"
)

// Store holds an immutable latent factor model: one factor vector per catalog item,
// the item id of every row and the external id of every item that has one. A Store
// is never mutated after construction and is safe for concurrent reads.
type Store struct {
	rows        int
	cols        int
	factors     []float32
	itemIds     []int
	index       map[int]int
	externalIds map[int]int
	popular     []int
}

// NewStore creates a store from a row-major factor matrix. itemIds[i] is the item id of
// row i. Popular item ids that are not in the catalog are dropped.
func NewStore(rows, cols int, factors []float32, itemIds []int, externalIds map[int]int, popular []int) (*Store, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.NotValidf("shape %dx%d", rows, cols)
	}
	if len(factors) != rows*cols {
		return nil, errors.NotValidf("factor matrix of %d values for shape %dx%d", len(factors), rows, cols)
	}
	if len(itemIds) != rows {
		return nil, errors.NotValidf("%d item ids for %d rows", len(itemIds), rows)
	}
	index := make(map[int]int, rows)
	for i, itemId := range itemIds {
		if j, exist := index[itemId]; exist {
			return nil, errors.NotValidf("item %d at rows %d and %d", itemId, j, i)
		}
		index[itemId] = i
	}
	if externalIds == nil {
		externalIds = make(map[int]int)
	}
	knownPopular := make([]int, 0, len(popular))
	for _, itemId := range popular {
		if _, exist := index[itemId]; exist {
			knownPopular = append(knownPopular, itemId)
		}
	}
	return &Store{
		rows:        rows,
		cols:        cols,
		factors:     factors,
		itemIds:     itemIds,
		index:       index,
		externalIds: externalIds,
		popular:     knownPopular,
	}, nil
}

// Rows returns the number of catalog items.
func (s *Store) Rows() int {
	return s.rows
}

// Cols returns the latent dimensionality.
func (s *Store) Cols() int {
	return s.cols
}

// VectorAt returns a read-only view of the factor vector of row i.
func (s *Store) VectorAt(i int) []float32 {
	begin := i * s.cols
	end := begin + s.cols
	return s.factors[begin:end:end]
}

func (s *Store) ItemIdAt(i int) int {
	return s.itemIds[i]
}

func (s *Store) IndexOf(itemId int) (int, bool) {
	i, ok := s.index[itemId]
	return i, ok
}

func (s *Store) ExternalIdOf(itemId int) (int, bool) {
	id, ok := s.externalIds[itemId]
	return id, ok
}

// Popular returns item ids ordered by popularity. Empty if no popularity list was loaded.
func (s *Store) Popular() []int {
	return s.popular
}
