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
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

var testImages = Images{
	BaseURL:      "https://image.tmdb.org/t/p/",
	PosterSize:   "w500",
	BackdropSize: "w1280",
}

func TestNormalize(t *testing.T) {
	movie := &Movie{
		Id:               862,
		Title:            lo.ToPtr("Toy Story"),
		Overview:         lo.ToPtr("Led by Woody, Andy's toys live happily in his room."),
		ReleaseDate:      lo.ToPtr("1995-10-30"),
		Runtime:          lo.ToPtr(81),
		OriginalLanguage: lo.ToPtr("en"),
		Genres:           []Genre{{16, "Animation"}, {0, ""}, {35, "Comedy"}},
		PosterPath:       lo.ToPtr("/uXDfjJbdP4ijW5hWSBrPrlKpxab.jpg"),
		Credits: &Credits{
			Cast: []CastMember{
				{Name: "Tom Hanks"}, {Name: "Tim Allen"}, {Name: "Don Rickles"},
				{Name: "Jim Varney"}, {Name: "Wallace Shawn"}, {Name: "John Ratzenberger"},
			},
			Crew: []CrewMember{
				{Name: "Pete Docter", Job: "Screenplay"},
				{Name: "John Lasseter", Job: "Director"},
				{Name: "Ash Brannon", Job: "Director"},
			},
		},
	}
	entry := Normalize(movie, testImages)
	assert.Equal(t, "Toy Story", entry.Title)
	assert.Equal(t, 1995, entry.Year)
	assert.Equal(t, "John Lasseter", entry.Director)
	assert.Equal(t, []string{"Tom Hanks", "Tim Allen", "Don Rickles", "Jim Varney", "Wallace Shawn"}, entry.Cast)
	assert.Equal(t, 81, entry.Runtime)
	assert.Equal(t, "en", entry.OriginalLanguage)
	assert.Equal(t, []string{"Animation", "Comedy"}, entry.Genres)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/uXDfjJbdP4ijW5hWSBrPrlKpxab.jpg", entry.PosterURL)
	assert.Empty(t, entry.BackdropURL)
}

func TestNormalizeEmpty(t *testing.T) {
	entry := Normalize(&Movie{ReleaseDate: lo.ToPtr("19"), BackdropPath: lo.ToPtr("")}, testImages)
	assert.Equal(t, &Entry{}, entry)
}
