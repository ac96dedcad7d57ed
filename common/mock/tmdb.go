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

package mock

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/emicklei/go-restful/v3"
	"go.uber.org/atomic"
)

// TMDBServer is a fake movie metadata provider.
type TMDBServer struct {
	listener   net.Listener
	httpServer *http.Server
	apiKey     string
	ready      chan struct{}

	mu     sync.Mutex
	movies map[int]any
	calls  map[int]int
	total  atomic.Int64
	fail   atomic.Bool
	delay  atomic.Duration
}

func NewTMDBServer() *TMDBServer {
	s := &TMDBServer{
		apiKey: "tmdb",
		ready:  make(chan struct{}),
		movies: make(map[int]any),
		calls:  make(map[int]int),
	}
	ws := new(restful.WebService)
	ws.Path("/3").
		Produces(restful.MIME_JSON)
	ws.Route(ws.GET("/movie/{movie-id}").
		Param(ws.PathParameter("movie-id", "TMDB id of the movie").DataType("integer")).
		Param(ws.QueryParameter("api_key", "API key").DataType("string")).
		To(s.movie))
	container := restful.NewContainer()
	container.Add(ws)
	s.httpServer = &http.Server{Handler: container}
	return s
}

func (s *TMDBServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	close(s.ready)
	return s.httpServer.Serve(s.listener)
}

func (s *TMDBServer) BaseURL() string {
	return fmt.Sprintf("http://%s/3", s.listener.Addr().String())
}

func (s *TMDBServer) APIKey() string {
	return s.apiKey
}

func (s *TMDBServer) Ready() {
	<-s.ready
}

func (s *TMDBServer) Close() error {
	return s.httpServer.Close()
}

// AddMovie adds a movie. The movie is served as JSON.
func (s *TMDBServer) AddMovie(id int, movie any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies[id] = movie
}

// Fail makes every request fail with 500 if fail is true.
func (s *TMDBServer) Fail(fail bool) {
	s.fail.Store(fail)
}

// Delay holds every response for d.
func (s *TMDBServer) Delay(d time.Duration) {
	s.delay.Store(d)
}

// Calls returns the number of requests for a movie.
func (s *TMDBServer) Calls(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

// TotalCalls returns the number of requests.
func (s *TMDBServer) TotalCalls() int {
	return int(s.total.Load())
}

func (s *TMDBServer) movie(req *restful.Request, resp *restful.Response) {
	if req.QueryParameter("api_key") != s.apiKey {
		_ = resp.WriteErrorString(http.StatusUnauthorized, "invalid api key")
		return
	}
	id, err := strconv.Atoi(req.PathParameter("movie-id"))
	if err != nil {
		_ = resp.WriteError(http.StatusBadRequest, err)
		return
	}
	s.total.Inc()
	s.mu.Lock()
	s.calls[id]++
	movie, exist := s.movies[id]
	s.mu.Unlock()
	if d := s.delay.Load(); d > 0 {
		time.Sleep(d)
	}
	if s.fail.Load() {
		_ = resp.WriteErrorString(http.StatusInternalServerError, "internal error")
		return
	}
	if !exist {
		_ = resp.WriteErrorString(http.StatusNotFound, "movie not found")
		return
	}
	_ = resp.WriteEntity(movie)
}
