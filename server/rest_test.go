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

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/gorse-io/cinerank/base/log"
	"github.com/gorse-io/cinerank/common/mock"
	"github.com/gorse-io/cinerank/config"
	"github.com/gorse-io/cinerank/logics"
	"github.com/gorse-io/cinerank/metadata"
	"github.com/gorse-io/cinerank/model"
	"github.com/gorse-io/cinerank/storage/cache"
	"github.com/juju/errors"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const apiKey = "test_api_key"

type mockLoader struct {
	store *model.Store
	err   error
}

func (l *mockLoader) Load(context.Context) (*model.Store, error) {
	if l.err != nil {
		return nil, errors.Trace(l.err)
	}
	return l.store, nil
}

func (l *mockLoader) Loaded() bool {
	return l.store != nil
}

type ServerTestSuite struct {
	suite.Suite
	RestServer
	tmdb    *mock.TMDBServer
	loader  *mockLoader
	handler *restful.Container
}

func (suite *ServerTestSuite) SetupSuite() {
	suite.tmdb = mock.NewTMDBServer()
	go func() {
		_ = suite.tmdb.Start()
	}()
	suite.tmdb.Ready()
	suite.tmdb.AddMovie(862, map[string]any{
		"id":           862,
		"title":        "Toy Story",
		"release_date": "1995-10-30",
		"credits": map[string]any{
			"crew": []map[string]any{{"name": "John Lasseter", "job": "Director"}},
		},
	})
	suite.tmdb.AddMovie(8844, map[string]any{"id": 8844, "title": "Jumanji"})
}

func (suite *ServerTestSuite) TearDownSuite() {
	suite.NoError(suite.tmdb.Close())
}

func (suite *ServerTestSuite) SetupTest() {
	// catalog: 1=[1,0] 2=[0,1] 3=[1,1]
	store, err := model.NewStore(3, 2, []float32{1, 0, 0, 1, 1, 1}, []int{1, 2, 3},
		map[int]int{1: 862, 2: 8844, 3: 15602}, []int{3, 1, 2})
	suite.NoError(err)
	suite.loader = &mockLoader{store: store}
	suite.setup(suite.tmdb.APIKey())
}

func (suite *ServerTestSuite) setup(tmdbKey string) {
	suite.Config = config.GetDefaultConfig()
	suite.Config.Server.APIKey = apiKey
	suite.Config.TMDB.BaseURL = suite.tmdb.BaseURL()
	suite.Config.TMDB.APIKey = tmdbKey
	fetcher := metadata.NewFetcher(metadata.NewTMDB(suite.Config.TMDB), cache.NewMemory(0), suite.Config.TMDB)
	suite.Loader = suite.loader
	suite.Fetcher = fetcher
	suite.Ranker = logics.NewRanker(suite.loader, metadata.NewEnricher(fetcher, 2), suite.Config.Ranking)
	suite.WebService = new(restful.WebService)
	suite.CreateWebService()
	suite.handler = suite.Container()
}

func decode(v any) func(*http.Response, *http.Request) error {
	return func(res *http.Response, _ *http.Request) error {
		return json.NewDecoder(res.Body).Decode(v)
	}
}

func (suite *ServerTestSuite) TestRecommend() {
	t := suite.T()
	var resp RecommendResponse
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", apiKey).
		JSON(`{"ratings": [{"movieId": 1, "rating": 5}, {"movieId": 2, "rating": 9}]}`).
		Expect(t).
		Status(http.StatusOK).
		HeaderPresent(log.RequestIdHeader).
		Assert(decode(&resp)).
		End()
	suite.True(resp.Success)
	if suite.NotNil(resp.Result) {
		suite.Equal(logics.ModePersonalized, resp.Mode)
		suite.Equal(1, resp.Accepted)
		suite.Equal(2, resp.Count)
		// 15602 is unknown to the provider
		suite.Equal(1, resp.Enriched)
		suite.Equal(3, resp.Items[0].ItemId)
		suite.Equal(float32(1), resp.Items[0].Score)
		suite.Equal(2, resp.Items[1].ItemId)
		suite.Equal(float32(0), resp.Items[1].Score)
		if suite.NotNil(resp.Items[1].Metadata) {
			suite.Equal("Jumanji", resp.Items[1].Metadata.Title)
		}
	}
}

func (suite *ServerTestSuite) TestRecommendBareArray() {
	t := suite.T()
	var resp RecommendResponse
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", apiKey).
		Header(log.RequestIdHeader, "request-1").
		QueryParams(map[string]string{"n": "1"}).
		JSON(`[[1, 5]]`).
		Expect(t).
		Status(http.StatusOK).
		Header(log.RequestIdHeader, "request-1").
		Assert(decode(&resp)).
		End()
	if suite.NotNil(resp.Result) {
		suite.Equal(1, resp.PoolSize)
		suite.Equal(1, resp.Count)
		suite.Equal(3, resp.Items[0].ItemId)
	}
}

func (suite *ServerTestSuite) TestRecommendPopular() {
	t := suite.T()
	var resp RecommendResponse
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", apiKey).
		JSON(`{"ratings": []}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(decode(&resp)).
		End()
	if suite.NotNil(resp.Result) {
		suite.Equal(logics.ModePopular, resp.Mode)
		suite.Equal(0, resp.Accepted)
		suite.Equal([]int{3, 1, 2}, []int{resp.Items[0].ItemId, resp.Items[1].ItemId, resp.Items[2].ItemId})
		if suite.NotNil(resp.Items[1].Metadata) {
			suite.Equal("Toy Story", resp.Items[1].Metadata.Title)
			suite.Equal("John Lasseter", resp.Items[1].Metadata.Director)
			suite.Equal(1995, resp.Items[1].Metadata.Year)
		}
	}
}

func (suite *ServerTestSuite) TestRecommendBadRequest() {
	t := suite.T()
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", apiKey).
		JSON(`{"ratings": 5}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", apiKey).
		JSON(`{"ratings": [`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", apiKey).
		QueryParams(map[string]string{"n": "ten"}).
		JSON(`[]`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func (suite *ServerTestSuite) TestRecommendUnavailable() {
	t := suite.T()
	suite.loader.err = model.ErrModelUnavailable
	var resp ErrorResponse
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		Header("X-API-Key", apiKey).
		JSON(`[]`).
		Expect(t).
		Status(http.StatusServiceUnavailable).
		Assert(decode(&resp)).
		End()
	suite.False(resp.Success)
	suite.Equal(model.ErrModelUnavailable.Error(), resp.Error)
}

func (suite *ServerTestSuite) TestAuth() {
	t := suite.T()
	apitest.New().
		Handler(suite.handler).
		Post("/api/recommend").
		JSON(`[]`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	apitest.New().
		Handler(suite.handler).
		Get("/api/movie/862").
		Header("X-API-Key", "wrong").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
	// health checks are public
	apitest.New().
		Handler(suite.handler).
		Get("/api/health/live").
		Expect(t).
		Status(http.StatusOK).
		End()
}

func (suite *ServerTestSuite) TestGetMovie() {
	t := suite.T()
	var entry metadata.Entry
	apitest.New().
		Handler(suite.handler).
		Get("/api/movie/862").
		Header("X-API-Key", apiKey).
		Expect(t).
		Status(http.StatusOK).
		Assert(decode(&entry)).
		End()
	suite.Equal("Toy Story", entry.Title)
	suite.Equal("John Lasseter", entry.Director)
	apitest.New().
		Handler(suite.handler).
		Get("/api/movie/1").
		Header("X-API-Key", apiKey).
		Expect(t).
		Status(http.StatusNotFound).
		End()
	apitest.New().
		Handler(suite.handler).
		Get("/api/movie/abc").
		Header("X-API-Key", apiKey).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func (suite *ServerTestSuite) TestGetMovieWithoutCredential() {
	t := suite.T()
	suite.setup("")
	apitest.New().
		Handler(suite.handler).
		Get("/api/movie/862").
		Header("X-API-Key", apiKey).
		Expect(t).
		Status(http.StatusServiceUnavailable).
		End()
}

func (suite *ServerTestSuite) TestHealth() {
	t := suite.T()
	apitest.New().
		Handler(suite.handler).
		Get("/api/health/ready").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"ready": true}`).
		End()
	suite.loader.store = nil
	apitest.New().
		Handler(suite.handler).
		Get("/api/health/ready").
		Expect(t).
		Status(http.StatusServiceUnavailable).
		Body(`{"ready": false}`).
		End()
	apitest.New().
		Handler(suite.handler).
		Get("/api/health/live").
		Expect(t).
		Status(http.StatusOK).
		End()
}

func (suite *ServerTestSuite) TestDocsAndMetrics() {
	t := suite.T()
	apitest.New().
		Handler(suite.handler).
		Get("/apidocs.json").
		Expect(t).
		Status(http.StatusOK).
		End()
	apitest.New().
		Handler(suite.handler).
		Get("/metrics").
		Expect(t).
		Status(http.StatusOK).
		End()
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestParseRatings(t *testing.T) {
	ratings, err := parseRatings([]byte("  "))
	assert.NoError(t, err)
	assert.Nil(t, ratings)
	ratings, err = parseRatings([]byte(`{}`))
	assert.NoError(t, err)
	assert.Nil(t, ratings)
	ratings, err = parseRatings([]byte(`{"ratings": [[1, 5]]}`))
	assert.NoError(t, err)
	assert.Len(t, ratings, 1)
	_, err = parseRatings([]byte(`"ratings"`))
	assert.True(t, errors.Is(err, errors.NotValid))
}
