package env

import (
	"os"

	"github.com/joho/godotenv"

	"mruput.io/infrastructure/logger"
)

// LoadEnv reads .env (or the file named by ENV_FILE) into the process
// environment. Variables already set win over the file.
func LoadEnv() {
	file := os.Getenv("ENV_FILE")
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil {
		logger.Info("error loading env variables", logger.LoggerOptions{
			Key:  "file",
			Data: file,
		})
	}
}
