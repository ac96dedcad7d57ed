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
	"context"
)

// Provider looks up movie metadata by external id.
type Provider interface {
	Movie(ctx context.Context, externalId int) (*Movie, error)
}

// Movie is the provider response. Every field is optional.
type Movie struct {
	Id               int      `json:"id"`
	Title            *string  `json:"title"`
	Overview         *string  `json:"overview"`
	ReleaseDate      *string  `json:"release_date"`
	Runtime          *int     `json:"runtime"`
	OriginalLanguage *string  `json:"original_language"`
	Genres           []Genre  `json:"genres"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	Credits          *Credits `json:"credits"`
}

type Genre struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Entry is the normalized metadata of a movie.
type Entry struct {
	Title            string   `json:"title"`
	Overview         string   `json:"overview,omitempty"`
	Year             int      `json:"year,omitempty"`
	Director         string   `json:"director,omitempty"`
	Cast             []string `json:"cast,omitempty"`
	Runtime          int      `json:"runtime,omitempty"`
	OriginalLanguage string   `json:"original_language,omitempty"`
	Genres           []string `json:"genres,omitempty"`
	PosterURL        string   `json:"poster_url,omitempty"`
	BackdropURL      string   `json:"backdrop_url,omitempty"`
}
