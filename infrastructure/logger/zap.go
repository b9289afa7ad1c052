package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a no-op until InitializeLogger runs so packages can log from tests.
var Logger = zap.NewNop()

func InitializeLogger() {
	level := zapcore.InfoLevel
	if err := level.Set(os.Getenv("LOG_LEVEL")); err != nil {
		level = zapcore.InfoLevel
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if os.Getenv("ENV") == "development" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	built, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	Logger = built
}

// Sync flushes buffered entries. Called on shutdown.
func Sync() {
	_ = Logger.Sync()
}
