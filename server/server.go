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
	"fmt"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/gorse-io/cinerank/base/log"
	"github.com/gorse-io/cinerank/config"
	"github.com/gorse-io/cinerank/logics"
	"github.com/gorse-io/cinerank/metadata"
	"github.com/gorse-io/cinerank/model"
	"github.com/gorse-io/cinerank/storage/blob"
	"github.com/gorse-io/cinerank/storage/cache"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Server wires the model, the metadata cache and the ranker behind the REST API.
type Server struct {
	RestServer
	cache      cache.Database
	httpServer *http.Server
}

// NewServer creates a server from configuration. Nothing is loaded until Serve.
func NewServer(cfg *config.Config) (*Server, error) {
	store, err := blob.Open(cfg.Model.Dir, cfg.Model.S3)
	if err != nil {
		return nil, errors.Trace(err)
	}
	db, err := cache.Open(cfg.Cache.Store, cfg.Cache.Capacity)
	if err != nil {
		return nil, errors.Annotatef(err, "open cache %s", log.RedactURL(cfg.Cache.Store))
	}
	loader := model.NewLoader(store, cfg.Model)
	fetcher := metadata.NewFetcher(metadata.NewTMDB(cfg.TMDB), db, cfg.TMDB)
	if !fetcher.Enabled() {
		log.Logger().Warn("metadata provider credential is not set, enrichment is disabled")
	}
	s := &Server{
		RestServer: RestServer{
			Config:     cfg,
			Loader:     loader,
			Ranker:     logics.NewRanker(loader, metadata.NewEnricher(fetcher, cfg.Ranking.EnrichJobs), cfg.Ranking),
			Fetcher:    fetcher,
			WebService: new(restful.WebService),
		},
		cache: db,
	}
	s.CreateWebService()
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: s.Container(),
	}
	return s, nil
}

// Serve loads the model in background and serves HTTP until Shutdown.
func (s *Server) Serve() error {
	go func() {
		// a failed load is retried by the next request
		if _, err := s.Loader.Load(context.Background()); err != nil {
			log.Logger().Error("failed to warm up model", zap.Error(err))
		}
	}()
	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s", s.httpServer.Addr)),
		zap.String("model", s.Config.Model.Dir),
		zap.String("cache", log.RedactURL(s.Config.Cache.Store)))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Trace(err)
	}
	return nil
}

// Shutdown stops the HTTP server and closes the cache.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(s.cache.Close())
}
