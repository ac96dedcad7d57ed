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

package blob

import (
	"context"
	"io"
	"strings"

	"github.com/gorse-io/cinerank/config"
	"github.com/gorse-io/cinerank/storage"
	"github.com/juju/errors"
)

// Store reads named blobs from a directory-like location.
type Store interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Open creates a blob store for dir. Directories prefixed by s3:// are read from
// S3 compatible storage, anything else from the local file system.
func Open(dir string, cfg config.S3Config) (Store, error) {
	if strings.HasPrefix(dir, storage.S3Prefix) {
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(dir, storage.S3Prefix), "/")
		if bucket == "" {
			return nil, errors.Errorf("missing bucket in %s", dir)
		}
		return NewS3(cfg, bucket, prefix)
	}
	return NewPOSIX(dir), nil
}
