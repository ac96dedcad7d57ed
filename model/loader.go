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

package model

import (
	"context"
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorse-io/cinerank/base/log"
	"github.com/gorse-io/cinerank/common/floats"
	"github.com/gorse-io/cinerank/config"
	"github.com/gorse-io/cinerank/storage/blob"
	"github.com/juju/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrModelUnavailable is returned when the catalog artifacts can't be loaded.
var ErrModelUnavailable = errors.New("model unavailable")

const maxOpenTries = 3

// Loader loads the model store exactly once. Concurrent callers of Load before the
// first success share a single load. A failed load is not remembered, so the next
// caller tries again.
type Loader struct {
	blob  blob.Store
	cfg   config.ModelConfig
	group singleflight.Group
	store *atomic.Pointer[Store]
	loads atomic.Int64
}

func NewLoader(store blob.Store, cfg config.ModelConfig) *Loader {
	return &Loader{
		blob:  store,
		cfg:   cfg,
		store: atomic.NewPointer[Store](nil),
	}
}

// Load returns the model store, loading it on first use.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	if s := l.store.Load(); s != nil {
		return s, nil
	}
	v, err, _ := l.group.Do("model", func() (any, error) {
		if s := l.store.Load(); s != nil {
			return s, nil
		}
		start := time.Now()
		s, err := l.load(ctx)
		if err != nil {
			log.Logger().Error("failed to load model", zap.String("dir", l.cfg.Dir), zap.Error(err))
			return nil, err
		}
		l.store.Store(s)
		log.Logger().Info("load model",
			zap.Int("rows", s.Rows()),
			zap.Int("cols", s.Cols()),
			zap.Int("external_ids", len(s.externalIds)),
			zap.Int("popular", len(s.popular)),
			zap.Duration("elapsed", time.Since(start)))
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	return v.(*Store), nil
}

// Loaded reports whether the store has been loaded.
func (l *Loader) Loaded() bool {
	return l.store.Load() != nil
}

type metadata struct {
	Rows *int `json:"rows"`
	Cols *int `json:"cols"`
}

func (l *Loader) load(ctx context.Context) (*Store, error) {
	l.loads.Inc()
	// load shape
	var meta metadata
	if err := l.readJSON(ctx, l.cfg.Meta, &meta); err != nil {
		return nil, errors.Trace(err)
	}
	if meta.Rows == nil || meta.Cols == nil {
		return nil, errors.NotValidf("%s without rows or cols", l.cfg.Meta)
	}
	rows, cols := *meta.Rows, *meta.Cols
	if rows <= 0 || cols <= 0 {
		return nil, errors.NotValidf("shape %dx%d", rows, cols)
	}
	// load factors
	factors, err := l.readFactors(ctx, rows, cols)
	if err != nil {
		return nil, errors.Trace(err)
	}
	// load item ids
	var itemIds []int
	if err = l.readJSON(ctx, l.cfg.ItemIds, &itemIds); err != nil {
		return nil, errors.Trace(err)
	}
	if len(itemIds) != rows {
		return nil, errors.NotValidf("%s with %d ids for %d rows", l.cfg.ItemIds, len(itemIds), rows)
	}
	// load links
	externalIds, err := l.readLinks(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	// load popular items
	var popular []int
	if l.cfg.Popular != "" {
		if err = l.readJSON(ctx, l.cfg.Popular, &popular); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, errors.Trace(err)
			}
			log.Logger().Warn("popular items not found, fall back to catalog order", zap.String("name", l.cfg.Popular))
			popular = nil
		}
	}
	return NewStore(rows, cols, factors, itemIds, externalIds, popular)
}

// open a blob, retrying transient failures.
func (l *Loader) open(ctx context.Context, name string) (io.ReadCloser, error) {
	return backoff.Retry(ctx, func() (io.ReadCloser, error) {
		r, err := l.blob.Open(ctx, name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return r, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(maxOpenTries))
}

func (l *Loader) readJSON(ctx context.Context, name string, v any) error {
	r, err := l.open(ctx, name)
	if err != nil {
		return err
	}
	defer r.Close()
	if err = json.NewDecoder(r).Decode(v); err != nil {
		return errors.Annotatef(err, "decode %s", name)
	}
	return nil
}

func (l *Loader) readFactors(ctx context.Context, rows, cols int) ([]float32, error) {
	r, err := l.open(ctx, l.cfg.Factors)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Annotatef(err, "read %s", l.cfg.Factors)
	}
	if expected := rows * cols * 4; len(data) != expected {
		return nil, errors.NotValidf("%s of %d bytes for shape %dx%d (expect %d bytes)",
			l.cfg.Factors, len(data), rows, cols, expected)
	}
	factors := make([]float32, rows*cols)
	for i := range factors {
		factors[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	if !floats.IsFinite(factors) {
		return nil, errors.NotValidf("%s with non-finite values", l.cfg.Factors)
	}
	return factors, nil
}

// readLinks reads a MovieLens links file (movieId,imdbId,tmdbId). Items with an empty
// or malformed tmdbId have no external id.
func (l *Loader) readLinks(ctx context.Context) (map[int]int, error) {
	r, err := l.open(ctx, l.cfg.Links)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Annotatef(err, "read header of %s", l.cfg.Links)
	}
	itemColumn, externalColumn := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "movieId":
			itemColumn = i
		case "tmdbId":
			externalColumn = i
		}
	}
	if itemColumn < 0 || externalColumn < 0 {
		return nil, errors.NotValidf("%s header %v", l.cfg.Links, header)
	}
	externalIds := make(map[int]int)
	for lineNumber := 2; ; lineNumber++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Annotatef(err, "read line %d of %s", lineNumber, l.cfg.Links)
		}
		if len(record) <= max(itemColumn, externalColumn) {
			return nil, errors.NotValidf("line %d of %s", lineNumber, l.cfg.Links)
		}
		itemId, err := strconv.Atoi(strings.TrimSpace(record[itemColumn]))
		if err != nil {
			return nil, errors.NotValidf("movieId %q at line %d of %s", record[itemColumn], lineNumber, l.cfg.Links)
		}
		externalId, err := strconv.Atoi(strings.TrimSpace(record[externalColumn]))
		if err != nil || externalId <= 0 {
			continue
		}
		externalIds[itemId] = externalId
	}
	return externalIds, nil
}
