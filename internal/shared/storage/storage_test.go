package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-build/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutEndpoint(t *testing.T) {
	s, err := New(config.MinIOConfig{})
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	_, err = s.PutBytes(context.Background(), "x", []byte("a"), "text/plain")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = s.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, s.EnsureBucket(context.Background()), ErrNotConfigured)
}

func TestNewWithEndpoint(t *testing.T) {
	s, err := New(config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.True(t, s.Enabled())
}

func TestObjectName(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	name := ObjectName("imports", "c1", "bids.CSV", now)
	assert.True(t, strings.HasPrefix(name, "imports/c1/2026/01/10/"), name)
	assert.True(t, strings.HasSuffix(name, ".CSV"), name)
	assert.Len(t, name, len("imports/c1/2026/01/10/")+8+4)
}
