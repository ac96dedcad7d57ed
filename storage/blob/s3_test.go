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
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/gorse-io/cinerank/config"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

var (
	endpoint        = os.Getenv("S3_ENDPOINT")
	accessKeyID     = os.Getenv("S3_ACCESS_KEY_ID")
	secretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
)

func TestS3(t *testing.T) {
	if endpoint == "" || accessKeyID == "" || secretAccessKey == "" {
		t.Skip("S3 environment variables are not set, skipping S3 tests")
	}
	ctx := context.Background()

	// create client
	client, err := NewS3(config.S3Config{
		Endpoint:        endpoint,
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
	}, "cinerank-test", "model")
	assert.NoError(t, err)

	// create bucket if not exists
	exists, err := client.BucketExists(ctx, client.bucket)
	assert.NoError(t, err)
	if !exists {
		err = client.MakeBucket(ctx, client.bucket, minio.MakeBucketOptions{})
		assert.NoError(t, err)
	}

	// write a temp file
	content := []byte(`{"rows": 1, "cols": 1}`)
	_, err = client.PutObject(ctx, client.bucket, "model/meta.json", bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{})
	assert.NoError(t, err)

	// read the file
	r, err := client.Open(ctx, "meta.json")
	assert.NoError(t, err)
	data, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, content, data)
	assert.NoError(t, r.Close())

	// missing file
	_, err = client.Open(ctx, "missing.json")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
