package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadSettingsDefaults(t *testing.T) {
	settings := loadSettings(lookupFrom(map[string]string{}))
	assert.Equal(t, "8080", settings.Port)
	assert.Equal(t, FaceBackendRemote, settings.FaceBackend)
	assert.Equal(t, EmbeddingStoreMongo, settings.EmbeddingStore)
	assert.Equal(t, 30*time.Second, settings.FaceTimeout)
	assert.Equal(t, 2, settings.FaceRetries)
	assert.Equal(t, time.Hour, settings.EmbeddingTTL)
	assert.True(t, settings.StoreStills)
	assert.Equal(t, int64(20), settings.AttemptLimit)
	assert.Equal(t, 10*time.Minute, settings.AttemptLimitWindow)
}

func TestLoadSettingsOverrides(t *testing.T) {
	settings := loadSettings(lookupFrom(map[string]string{
		"PORT":                 "9000",
		"FACE_BACKEND":         "local",
		"FACE_SERVICE_TIMEOUT": "5s",
		"EMBEDDING_STORE":      "pgvector",
		"PGVECTOR_URL":         "postgres://localhost/faces",
		"STORE_STILLS":         "false",
		"ATTEMPT_LIMIT":        "0",
		"ATTEMPT_RETENTION":    "90s",
	}))
	assert.Equal(t, "9000", settings.Port)
	assert.Equal(t, FaceBackendLocal, settings.FaceBackend)
	assert.Equal(t, 5*time.Second, settings.FaceTimeout)
	assert.Equal(t, EmbeddingStorePGVector, settings.EmbeddingStore)
	assert.Equal(t, "postgres://localhost/faces", settings.PGVectorURL)
	assert.False(t, settings.StoreStills)
	assert.Equal(t, int64(0), settings.AttemptLimit)
	assert.Equal(t, 90*time.Second, settings.AttemptRetention)
}
