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
	"strconv"

	"github.com/gorse-io/cinerank/config"
	"github.com/samber/lo"
)

const (
	directorJob = "Director"
	castSize    = 5
)

// Images builds artwork URLs from provider path fragments.
type Images struct {
	BaseURL      string
	PosterSize   string
	BackdropSize string
}

func NewImages(cfg config.TMDBConfig) Images {
	return Images{
		BaseURL:      cfg.ImageBaseURL,
		PosterSize:   cfg.PosterSize,
		BackdropSize: cfg.BackdropSize,
	}
}

func (images Images) url(size string, path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	return images.BaseURL + size + *path
}

// Normalize converts a provider response into an entry.
func Normalize(movie *Movie, images Images) *Entry {
	entry := &Entry{
		Title:            lo.FromPtr(movie.Title),
		Overview:         lo.FromPtr(movie.Overview),
		Runtime:          lo.FromPtr(movie.Runtime),
		OriginalLanguage: lo.FromPtr(movie.OriginalLanguage),
		PosterURL:        images.url(images.PosterSize, movie.PosterPath),
		BackdropURL:      images.url(images.BackdropSize, movie.BackdropPath),
	}
	// release year
	if date := lo.FromPtr(movie.ReleaseDate); len(date) >= 4 {
		if year, err := strconv.Atoi(date[:4]); err == nil {
			entry.Year = year
		}
	}
	// genres in provider order
	for _, genre := range movie.Genres {
		if genre.Name != "" {
			entry.Genres = append(entry.Genres, genre.Name)
		}
	}
	if movie.Credits != nil {
		// the first director in provider order
		if director, ok := lo.Find(movie.Credits.Crew, func(member CrewMember) bool {
			return member.Job == directorJob
		}); ok {
			entry.Director = director.Name
		}
		for _, member := range movie.Credits.Cast {
			if len(entry.Cast) >= castSize {
				break
			}
			if member.Name != "" {
				entry.Cast = append(entry.Cast, member.Name)
			}
		}
	}
	return entry
}
