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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/gorse-io/cinerank/base/log"
	"github.com/gorse-io/cinerank/config"
	"github.com/gorse-io/cinerank/logics"
	"github.com/gorse-io/cinerank/metadata"
	"github.com/gorse-io/cinerank/model"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/emicklei/go-restful/otelrestful"
	"go.uber.org/zap"
)

const (
	apiDocsPath = "/apidocs.json"
	metricsPath = "/metrics"
)

// ModelLoader provides the model store and reports whether it has been loaded.
type ModelLoader interface {
	logics.ModelLoader
	Loaded() bool
}

// RestServer implements a REST-ful API server.
type RestServer struct {
	Config     *config.Config
	Loader     ModelLoader
	Ranker     *logics.Ranker
	Fetcher    *metadata.Fetcher
	WebService *restful.WebService
}

type RecommendRequest struct {
	Ratings []any `json:"ratings" description:"rating records as {\"movieId\": 1, \"rating\": 5} or [1, 5]"`
}

type RecommendResponse struct {
	Success bool `json:"success"`
	*logics.Result
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type HealthStatus struct {
	Ready bool `json:"ready"`
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(LogFilter)

	// Rank movies
	ws.Route(ws.POST("/recommend").To(s.recommend).
		Doc("Rank movies for ratings. Popular movies are returned if no rating is valid.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Filter(s.auth).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.QueryParameter("n", "number of ranked movies").DataType("integer")).
		Reads(RecommendRequest{}).
		Returns(http.StatusOK, "OK", RecommendResponse{}).
		Returns(http.StatusServiceUnavailable, "model unavailable", ErrorResponse{}).
		Writes(RecommendResponse{}))
	// Get movie metadata
	ws.Route(ws.GET("/movie/{external-id}").To(s.getMovie).
		Doc("Get metadata of a movie.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"metadata"}).
		Filter(s.auth).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("external-id", "TMDB id of the movie").DataType("integer")).
		Returns(http.StatusOK, "OK", metadata.Entry{}).
		Returns(http.StatusBadRequest, "malformed external id", ErrorResponse{}).
		Returns(http.StatusNotFound, "movie not found", ErrorResponse{}).
		Returns(http.StatusBadGateway, "metadata provider failed", ErrorResponse{}).
		Returns(http.StatusServiceUnavailable, "metadata provider credential is not set", ErrorResponse{}).
		Writes(metadata.Entry{}))
	// Health checks
	ws.Route(ws.GET("/health/live").To(s.checkLive).
		Doc("Probe liveness.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Writes(HealthStatus{}))
	ws.Route(ws.GET("/health/ready").To(s.checkReady).
		Doc("Probe readiness. Ready once the model is loaded.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Returns(http.StatusOK, "OK", HealthStatus{}).
		Returns(http.StatusServiceUnavailable, "model not loaded", HealthStatus{}).
		Writes(HealthStatus{}))
}

// Container registers the web service, API docs and metrics in a new container.
func (s *RestServer) Container() *restful.Container {
	container := restful.NewContainer()
	container.Filter(otelrestful.OTelFilter("cinerank"))
	container.Filter(RequestIdFilter)
	container.Add(s.WebService)
	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     apiDocsPath,
	}))
	container.Handle(metricsPath, promhttp.Handler())
	return container
}

// RequestIdFilter tags every response with the request id sent by the client or a new one.
func RequestIdFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	requestId := req.HeaderParameter(log.RequestIdHeader)
	if requestId == "" {
		requestId = uuid.NewString()
	}
	resp.Header().Set(log.RequestIdHeader, requestId)
	chain.ProcessFilter(req, resp)
}

func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)
	RequestsTotal.WithLabelValues(req.SelectedRoutePath(), strconv.Itoa(resp.StatusCode())).Inc()
	if req.Request.URL.Path != "/api/health/live" && req.Request.URL.Path != "/api/health/ready" {
		log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL.Path),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *RestServer) auth(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	if s.Config.Server.APIKey == "" || req.HeaderParameter("X-API-Key") == s.Config.Server.APIKey {
		chain.ProcessFilter(req, resp)
		return
	}
	log.ResponseLogger(resp).Error("unauthorized", zap.String("path", req.Request.URL.Path))
	Error(resp, http.StatusUnauthorized, errors.New("unauthorized"))
}

// ParseInt parses an integer query parameter. The fallback is used if the parameter is absent.
func ParseInt(request *restful.Request, name string, fallback int) (value int, err error) {
	valueString := request.QueryParameter(name)
	if valueString == "" {
		return fallback, nil
	}
	value, err = strconv.Atoi(valueString)
	if err != nil {
		return 0, errors.NotValidf("%s=%q", name, valueString)
	}
	return value, nil
}

// parseRatings reads rating records from {"ratings": [...]} or a bare array. An empty
// body has no ratings.
func parseRatings(body []byte) ([]any, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.NewNotValid(err, "request body")
	}
	switch p := payload.(type) {
	case []any:
		return p, nil
	case map[string]any:
		switch ratings := p["ratings"].(type) {
		case nil:
			return nil, nil
		case []any:
			return ratings, nil
		}
		return nil, errors.NotValidf("ratings")
	}
	return nil, errors.NotValidf("request body")
}

func (s *RestServer) recommend(request *restful.Request, response *restful.Response) {
	start := time.Now()
	n, err := ParseInt(request, "n", 0)
	if err != nil {
		BadRequest(response, err)
		return
	}
	body, err := io.ReadAll(request.Request.Body)
	if err != nil {
		BadRequest(response, errors.Trace(err))
		return
	}
	ratings, err := parseRatings(body)
	if err != nil {
		BadRequest(response, err)
		return
	}
	result, err := s.Ranker.Rank(request.Request.Context(), ratings, n)
	if err != nil {
		if errors.Is(err, model.ErrModelUnavailable) {
			log.ResponseLogger(response).Error("model unavailable", zap.Error(err))
			Error(response, http.StatusServiceUnavailable, model.ErrModelUnavailable)
			return
		}
		InternalServerError(response, err)
		return
	}
	RecommendSeconds.Observe(time.Since(start).Seconds())
	Ok(response, RecommendResponse{Success: true, Result: result})
}

func (s *RestServer) getMovie(request *restful.Request, response *restful.Response) {
	start := time.Now()
	externalId, err := strconv.Atoi(request.PathParameter("external-id"))
	if err != nil || externalId <= 0 {
		BadRequest(response, errors.NotValidf("external id %q", request.PathParameter("external-id")))
		return
	}
	entry, err := s.Fetcher.Fetch(request.Request.Context(), externalId)
	if err != nil {
		switch {
		case errors.Is(err, metadata.ErrNoCredential):
			Error(response, http.StatusServiceUnavailable, err)
		case errors.Is(err, errors.NotFound):
			Error(response, http.StatusNotFound, errors.NotFoundf("movie %d", externalId))
		default:
			log.ResponseLogger(response).Warn("metadata unavailable", zap.Int("external_id", externalId), zap.Error(err))
			Error(response, http.StatusBadGateway, errors.Errorf("metadata of movie %d is unavailable", externalId))
		}
		return
	}
	GetMovieSeconds.Observe(time.Since(start).Seconds())
	Ok(response, entry)
}

func (s *RestServer) checkLive(_ *restful.Request, response *restful.Response) {
	Ok(response, HealthStatus{Ready: s.Loader.Loaded()})
}

func (s *RestServer) checkReady(_ *restful.Request, response *restful.Response) {
	if !s.Loader.Loaded() {
		if err := response.WriteHeaderAndJson(http.StatusServiceUnavailable, HealthStatus{}, restful.MIME_JSON); err != nil {
			log.ResponseLogger(response).Error("failed to write json", zap.Error(err))
		}
		return
	}
	Ok(response, HealthStatus{Ready: true})
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	Error(response, http.StatusBadRequest, err)
}

// InternalServerError returns a internal server error.
func InternalServerError(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("internal server error", zap.Error(err))
	Error(response, http.StatusInternalServerError, err)
}

// Error sends an error as JSON to the client.
func Error(response *restful.Response, status int, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err = response.WriteHeaderAndJson(status, ErrorResponse{Error: err.Error()}, restful.MIME_JSON); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content any) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteAsJson(content); err != nil {
		log.ResponseLogger(response).Error("failed to write json", zap.Error(err))
	}
}
