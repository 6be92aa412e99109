package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinioStore_InvalidEndpoint(t *testing.T) {
	_, err := NewMinioStore("http://minio:9000/path", "key", "secret", false)
	assert.Error(t, err)
}

// Presigning is computed locally and needs no running server.
func TestPresignedURL_SignsObjectPath(t *testing.T) {
	store, err := NewMinioStore("minio.local:9000", "access", "secret-key", false)
	require.NoError(t, err)

	u, err := store.PresignedURL(context.Background(), "reports", "r1/2026-03-14.csv", 15*time.Minute)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(u, "http://minio.local:9000/reports/r1/2026-03-14.csv?"), u)
	assert.Contains(t, u, "X-Amz-Signature=")
	assert.Contains(t, u, "X-Amz-Expires=900")
}
