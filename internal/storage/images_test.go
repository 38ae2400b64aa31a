package storage_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchbox/internal/config"
	svcErr "github.com/oggyb/matchbox/internal/errors"
	"github.com/oggyb/matchbox/internal/storage"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Bucket = "matchbox-test"
	cfg.Storage.Region = "us-east-1"
	cfg.Storage.Endpoint = "http://localhost:9000"
	cfg.Storage.AccessKeyID = "AKIDEXAMPLE"
	cfg.Storage.SecretAccessKey = "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY"
	cfg.Storage.PresignTTL = 10 * time.Minute
	return cfg
}

func TestNewImageStore_DisabledWithoutBucket(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Bucket = ""

	store := storage.NewImageStore(cfg)
	assert.Nil(t, store)

	_, err := store.PresignUpload(context.Background(), "u1", "image/png")
	assert.ErrorIs(t, err, svcErr.ErrExternal)
}

func TestPresignUpload(t *testing.T) {
	store := storage.NewImageStore(testConfig())
	require.NotNil(t, store)

	up, err := store.PresignUpload(context.Background(), "u1", "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(up.Key, "profile-images/u1/"))
	assert.True(t, strings.HasSuffix(up.Key, ".jpg"))
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), up.ExpiresAt, time.Minute)

	put, err := url.Parse(up.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", put.Host)
	assert.Equal(t, "/matchbox-test/"+up.Key, put.Path, "path-style addressing")
	assert.NotEmpty(t, put.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "600", put.Query().Get("X-Amz-Expires"))

	view, err := url.Parse(up.ViewURL)
	require.NoError(t, err)
	assert.Equal(t, put.Path, view.Path)
}

func TestPresignUpload_Validation(t *testing.T) {
	store := storage.NewImageStore(testConfig())

	_, err := store.PresignUpload(context.Background(), "u1", "application/pdf")
	assert.ErrorIs(t, err, svcErr.ErrValidation)

	_, err = store.PresignUpload(context.Background(), "", "image/png")
	assert.ErrorIs(t, err, svcErr.ErrValidation)
}
