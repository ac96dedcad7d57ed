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
	"math"

	"github.com/spf13/cast"
)

const (
	MinRating = 1.0
	MaxRating = 5.0
)

var itemKeys = []string{"movieId", "itemId", "item_id", "id"}

// Rating is a validated (item, rating) pair.
type Rating struct {
	ItemId int
	Rating float64
}

// NormalizeRatings converts raw rating records into validated ratings. A record is
// either an object with an item key and a "rating" key or an [item, rating] array.
// Item ids are truncated toward zero. Malformed records and ratings outside
// [MinRating, MaxRating] are dropped. Duplicates are kept.
func NormalizeRatings(raw []any) []Rating {
	ratings := make([]Rating, 0, len(raw))
	for _, record := range raw {
		var rawId, rawRating any
		switch r := record.(type) {
		case map[string]any:
			for _, key := range itemKeys {
				if v, ok := r[key]; ok {
					rawId = v
					break
				}
			}
			rawRating = r["rating"]
		case []any:
			if len(r) != 2 {
				continue
			}
			rawId, rawRating = r[0], r[1]
		default:
			continue
		}
		itemId, ok := toNumber(rawId)
		if !ok {
			continue
		}
		rating, ok := toNumber(rawRating)
		if !ok || rating < MinRating || rating > MaxRating {
			continue
		}
		ratings = append(ratings, Rating{ItemId: int(math.Trunc(itemId)), Rating: rating})
	}
	return ratings
}

func toNumber(v any) (float64, bool) {
	switch v.(type) {
	case nil, bool:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
