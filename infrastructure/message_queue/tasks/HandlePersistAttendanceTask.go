package queue_tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"

	"mruput.io/application/repository"
	"mruput.io/entities"
	fileupload "mruput.io/infrastructure/file_upload"
	"mruput.io/infrastructure/logger"
	mq_types "mruput.io/infrastructure/message_queue/types"
)

var HandlePersistAttendanceTaskName mq_types.Queues = "persist_attendance"

type PersistAttendancePayload struct {
	Record           entities.AttendanceRecord
	Still            []byte
	StillContentType string
}

// StillBlobName is where the still of an attempt is kept.
func StillBlobName(record *entities.AttendanceRecord) string {
	return fmt.Sprintf("attendance/%s/%s.jpg", record.UserID, record.AttemptID)
}

// HandlePersistAttendanceTask stores a decided attempt. Retries are safe: a
// record that already exists for the attempt counts as persisted.
func HandlePersistAttendanceTask(ctx context.Context, t *asynq.Task) error {
	var payload PersistAttendancePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Error("an error occured while unmarshalling attendance queue payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	record := payload.Record

	if len(payload.Still) > 0 && fileupload.FileUploader != nil {
		name := StillBlobName(&record)
		contentType := payload.StillContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		exists, err := fileupload.FileUploader.CheckFileExists(name)
		if err != nil {
			logger.Warning("could not check for an earlier still upload", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
		if !exists {
			if err := fileupload.FileUploader.UploadFile(ctx, name, payload.Still, contentType); err != nil {
				return err
			}
		}
		record.StillBlob = &name
	}

	_, err := repository.AttendanceRecordRepo().CreateOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			logger.Info("attendance record already persisted", logger.LoggerOptions{
				Key:  "attemptID",
				Data: record.AttemptID,
			})
			return nil
		}
		return err
	}
	logger.Info("attendance record persisted", logger.LoggerOptions{
		Key:  "attemptID",
		Data: record.AttemptID,
	}, logger.LoggerOptions{
		Key:  "outcome",
		Data: record.Outcome,
	})
	return nil
}
