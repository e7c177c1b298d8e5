package s3

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equidadeplus/equidade_backend/config"
)

func TestObjectKey(t *testing.T) {
	owner := uuid.MustParse("0190c7a4-0000-7000-8000-000000000001")
	key := ObjectKey("evolutions", owner, "Laudo Final.PDF")

	re := regexp.MustCompile(`^evolutions/0190c7a4-0000-7000-8000-000000000001/[0-9a-f-]{36}\.pdf$`)
	assert.Regexp(t, re, key)
	assert.NotEqual(t, key, ObjectKey("evolutions", owner, "Laudo Final.PDF"))
	assert.False(t, strings.HasSuffix(ObjectKey("x", owner, "noext"), "."))
}

func TestNew(t *testing.T) {
	_, err := New(config.S3Config{})
	assert.Error(t, err, "bucket is required")

	c, err := New(config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		Bucket:          "attachments",
		MaxUploadMB:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2<<20), c.MaxUploadBytes())

	url, err := c.PresignDownload(context.Background(), "evolutions/a/b.pdf")
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/attachments/evolutions/a/b.pdf")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
