package config

import (
	"os"
	"time"

	"github.com/spf13/cast"
)

// FaceBackend selects who compares face descriptors.
type FaceBackend string

const (
	FaceBackendRemote FaceBackend = "remote"
	FaceBackendLocal  FaceBackend = "local"
)

// EmbeddingStore selects where enrollments live.
type EmbeddingStore string

const (
	EmbeddingStoreMongo    EmbeddingStore = "mongo"
	EmbeddingStorePGVector EmbeddingStore = "pgvector"
)

// Settings are the process level switches read from the environment.
type Settings struct {
	Port string

	FaceBackend    FaceBackend
	FaceServiceURL string
	FaceServiceKey string
	FaceTimeout    time.Duration
	FaceRetries    int

	EmbeddingStore EmbeddingStore
	EmbeddingTTL   time.Duration
	PGVectorURL    string

	JournalPath string
	GeoIPPath   string
	StoreStills bool

	AttemptLimit       int64
	AttemptLimitWindow time.Duration
	AttemptRetention   time.Duration
}

func LoadSettings() Settings {
	return loadSettings(os.LookupEnv)
}

func loadSettings(lookup lookupFunc) Settings {
	env := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}
	return Settings{
		Port:               env("PORT", "8080"),
		FaceBackend:        FaceBackend(env("FACE_BACKEND", string(FaceBackendRemote))),
		FaceServiceURL:     env("FACE_SERVICE_URL", "http://localhost:5000"),
		FaceServiceKey:     env("FACE_SERVICE_API_KEY", ""),
		FaceTimeout:        cast.ToDuration(env("FACE_SERVICE_TIMEOUT", "30s")),
		FaceRetries:        cast.ToInt(env("FACE_SERVICE_RETRIES", "2")),
		EmbeddingStore:     EmbeddingStore(env("EMBEDDING_STORE", string(EmbeddingStoreMongo))),
		EmbeddingTTL:       cast.ToDuration(env("EMBEDDING_CACHE_TTL", "1h")),
		PGVectorURL:        env("PGVECTOR_URL", ""),
		JournalPath:        env("JOURNAL_PATH", ""),
		GeoIPPath:          env("GEOIP_DB_PATH", ""),
		StoreStills:        cast.ToBool(env("STORE_STILLS", "true")),
		AttemptLimit:       cast.ToInt64(env("ATTEMPT_LIMIT", "20")),
		AttemptLimitWindow: cast.ToDuration(env("ATTEMPT_LIMIT_WINDOW", "10m")),
		AttemptRetention:   cast.ToDuration(env("ATTEMPT_RETENTION", "10m")),
	}
}
