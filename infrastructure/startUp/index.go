package startup

import (
	"context"
	"fmt"
	"time"

	"mruput.io/application/repository"
	"mruput.io/application/services/verification"
	attendance_usecases "mruput.io/application/usecases/attendance"
	"mruput.io/infrastructure/auth"
	"mruput.io/infrastructure/biometric"
	"mruput.io/infrastructure/config"
	"mruput.io/infrastructure/database"
	"mruput.io/infrastructure/database/connection/datastore"
	"mruput.io/infrastructure/database/repository/cache"
	"mruput.io/infrastructure/enrollment"
	fileupload "mruput.io/infrastructure/file_upload"
	"mruput.io/infrastructure/ipresolver"
	"mruput.io/infrastructure/logger"
	messagequeue "mruput.io/infrastructure/message_queue"
	"mruput.io/infrastructure/recordsink"
)

// Settings holds the environment read at startup so the server can reuse it.
var Settings config.Settings

var (
	pgStore *enrollment.PGVectorStore
	journal *recordsink.Journal
)

// Used to start services such as loggers, databases, queues, etc.
func StartServices() {
	logger.InitializeLogger()
	Settings = config.LoadSettings()
	database.SetUpDatabase()
	logger.RequestMetricMonitor.Init()
	fileupload.InitialiseFileUploader()
	if Settings.GeoIPPath != "" {
		if err := ipresolver.IPResolverInstance.ConnectToDB(Settings.GeoIPPath); err != nil {
			logger.Warning("geoip database unavailable, records will carry no ip location", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
	}
	messagequeue.Connect()
	auth.InitialiseTokenVerifier()

	policy, err := config.LoadPolicy()
	if err != nil {
		panic(fmt.Sprintf("invalid verification policy - %s", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := biometric.InitialiseBiometricService(ctx, biometric.Options{
		Backend: string(Settings.FaceBackend),
		BaseURL: Settings.FaceServiceURL,
		APIKey:  Settings.FaceServiceKey,
		Timeout: Settings.FaceTimeout,
		Retries: Settings.FaceRetries,
	}); err != nil {
		panic(fmt.Sprintf("could not start face service - %s", err))
	}

	enrollment.EnrollmentStore = startEnrollmentStore(ctx)

	orchestrator := &verification.Orchestrator{
		Policy:      policy,
		Faces:       biometric.FaceService,
		Enrollments: enrollment.EnrollmentStore,
		Sink:        startRecordSink(),
	}
	attendance_usecases.Attendance = attendance_usecases.NewService(
		orchestrator,
		attendance_usecases.RepositoryOffices{},
		attendance_usecases.CacheAttemptLimiter{Max: Settings.AttemptLimit, Window: Settings.AttemptLimitWindow},
		Settings.AttemptRetention,
	)
	logger.Info("attendance verification ready", logger.LoggerOptions{
		Key:  "faceBackend",
		Data: Settings.FaceBackend,
	}, logger.LoggerOptions{
		Key:  "embeddingStore",
		Data: Settings.EmbeddingStore,
	})
}

func startEnrollmentStore(ctx context.Context) enrollment.Store {
	if Settings.EmbeddingStore == config.EmbeddingStorePGVector {
		store, err := enrollment.NewPGVectorStore(ctx, Settings.PGVectorURL)
		if err != nil {
			panic(fmt.Sprintf("could not connect to pgvector - %s", err))
		}
		pgStore = store
		return store
	}
	return &enrollment.MongoStore{
		Repo:  repository.FaceEnrollmentRepo(),
		Cache: cache.Cache,
		TTL:   Settings.EmbeddingTTL,
	}
}

// startRecordSink writes to the sqlite journal when JOURNAL_PATH is set and
// to the task queue otherwise.
func startRecordSink() verification.RecordSink {
	if Settings.JournalPath != "" {
		j, err := recordsink.OpenJournal(Settings.JournalPath)
		if err != nil {
			panic(fmt.Sprintf("could not open journal - %s", err))
		}
		journal = j
		return j
	}
	return &recordsink.QueueSink{
		Broker:      messagequeue.TaskQueue,
		Resolver:    ipresolver.IPResolverInstance,
		StoreStills: Settings.StoreStills,
	}
}

// Used to clean up after services that have been shutdown.
func CleanUpServices() {
	if attendance_usecases.Attendance != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		attendance_usecases.Attendance.Shutdown(ctx)
		cancel()
	}
	if auth.Verifier != nil {
		auth.Verifier.Close()
	}
	if pgStore != nil {
		pgStore.Close()
	}
	if journal != nil {
		journal.Close()
	}
	messagequeue.StopQueue()
	datastore.CleanUp()
	logger.Sync()
}
