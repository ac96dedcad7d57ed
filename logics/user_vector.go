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
	"github.com/chewxy/math32"
	"github.com/gorse-io/cinerank/common/floats"
	"github.com/gorse-io/cinerank/model"
)

// NeutralRating is the midpoint of the rating scale.
const NeutralRating = 3.0

// BuildUserVector builds a preference vector as the average of rated item vectors
// weighted by centered ratings. Unknown items and neutral ratings are skipped. If
// nothing contributes, the zero vector is returned.
func BuildUserVector(store *model.Store, ratings []Rating) []float32 {
	vector := make([]float32, store.Cols())
	var denominator float32
	for _, rating := range ratings {
		i, ok := store.IndexOf(rating.ItemId)
		if !ok {
			continue
		}
		w := float32(rating.Rating - NeutralRating)
		if w == 0 {
			continue
		}
		denominator += math32.Abs(w)
		floats.MulConstAdd(store.VectorAt(i), w, vector)
	}
	if denominator > 0 {
		floats.DivConst(vector, denominator)
	}
	return vector
}

// Score computes the inner product between the user vector and every item vector.
func Score(store *model.Store, vector []float32) []float32 {
	scores := make([]float32, store.Rows())
	for i := range scores {
		scores[i] = floats.Dot(store.VectorAt(i), vector)
	}
	return scores
}
