package storage

import (
	"alcyxob/routine-progress/internal/config"
	"alcyxob/routine-progress/internal/logger"
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Presigning is computed locally, so no S3 endpoint needs to be reachable.
func TestPresignedDownloadURLUsesPathStyleEndpoint(t *testing.T) {
	store, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "exports",
	}, logger.NewNop())
	require.NoError(t, err)

	raw, err := store.GeneratePresignedDownloadURL(context.Background(), "exports/abc/history.csv", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/exports/exports/abc/history.csv"), u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://localhost:9000", endpointURL("http://localhost:9000", true))
}
