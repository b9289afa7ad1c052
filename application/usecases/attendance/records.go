package attendance_usecases

import (
	"context"

	"mruput.io/application/repository"
	"mruput.io/entities"
	fileupload "mruput.io/infrastructure/file_upload"
	"mruput.io/infrastructure/logger"
)

const defaultHistoryLimit int64 = 20

// ListAttendanceRecords pages through an employee's records, newest first.
func ListAttendanceRecords(ctx context.Context, userID string, limit int64, lastID *string) ([]entities.AttendanceRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	records, err := repository.AttendanceRecordRepo().FindManyPaginated(ctx, map[string]interface{}{
		"userID": userID,
	}, limit, lastID, -1)
	if err != nil {
		return nil, err
	}
	if records == nil {
		return []entities.AttendanceRecord{}, nil
	}
	for i := range *records {
		signStillURL(&(*records)[i])
	}
	return *records, nil
}

// signStillURL attaches a short lived link to the still the identity check
// used, when one was kept.
func signStillURL(record *entities.AttendanceRecord) {
	if record.StillBlob == nil || fileupload.FileUploader == nil {
		return
	}
	url, err := fileupload.FileUploader.GenerateDownloadURL(*record.StillBlob)
	if err != nil {
		logger.Warning("could not sign still url", logger.LoggerOptions{
			Key:  "attemptID",
			Data: record.AttemptID,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return
	}
	record.StillURL = url
}
