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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/cinerank/common/heap"
	"github.com/gorse-io/cinerank/model"
)

// SelectTopK selects the k items with the highest scores, skipping excluded item ids.
// Items are returned in descending order of score. The order of equal scores is
// undefined.
func SelectTopK(store *model.Store, scores []float32, k int, exclude mapset.Set[int]) []heap.Elem[int, float32] {
	filter := heap.NewTopKFilter[int, float32](k)
	for i, score := range scores {
		itemId := store.ItemIdAt(i)
		if exclude != nil && exclude.Contains(itemId) {
			continue
		}
		filter.Push(itemId, score)
	}
	return filter.PopAll()
}

// SelectPopular selects the first k popular items, skipping excluded item ids. Items
// are taken in catalog order if the store has no popularity list. Scores are zero.
func SelectPopular(store *model.Store, k int, exclude mapset.Set[int]) []heap.Elem[int, float32] {
	if k <= 0 {
		return nil
	}
	candidates := store.Popular()
	if len(candidates) == 0 {
		candidates = make([]int, store.Rows())
		for i := range candidates {
			candidates[i] = store.ItemIdAt(i)
		}
	}
	selected := make([]heap.Elem[int, float32], 0, min(k, len(candidates)))
	for _, itemId := range candidates {
		if len(selected) >= k {
			break
		}
		if exclude != nil && exclude.Contains(itemId) {
			continue
		}
		selected = append(selected, heap.Elem[int, float32]{Value: itemId})
	}
	return selected
}
