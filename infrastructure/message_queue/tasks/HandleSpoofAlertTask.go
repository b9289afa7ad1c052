package queue_tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"mruput.io/application/repository"
	"mruput.io/entities"
	"mruput.io/infrastructure/logger"
	"mruput.io/infrastructure/messaging/emails"
	mq_types "mruput.io/infrastructure/message_queue/types"
)

var HandleSpoofAlertTaskName mq_types.Queues = "spoof_alert"

type SpoofAlertPayload struct {
	Record entities.AttendanceRecord
}

// HandleSpoofAlertTask mails the office supervisors, plus SPOOF_ALERT_EMAIL,
// about an attempt made with a mocked location.
func HandleSpoofAlertTask(ctx context.Context, t *asynq.Task) error {
	var payload SpoofAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Error("an error occured while unmarshalling spoof alert payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	record := payload.Record

	officeName := record.OfficeID
	recipients := []string{}
	if record.OfficeID != "" {
		office, err := repository.OfficeLocationRepo().FindByID(ctx, record.OfficeID)
		if err != nil {
			return err
		}
		if office != nil {
			officeName = office.Name
			recipients = append(recipients, office.SupervisorEmails...)
		}
	}
	if fallback := os.Getenv("SPOOF_ALERT_EMAIL"); fallback != "" {
		recipients = append(recipients, fallback)
	}
	if len(recipients) == 0 {
		logger.Warning("spoof attempt detected but nobody to alert", logger.LoggerOptions{
			Key:  "attemptID",
			Data: record.AttemptID,
		})
		return nil
	}

	opts := spoofAlertOpts(&record, officeName)
	failed := []string{}
	for _, to := range recipients {
		alert := AlertEmailPayload{
			To:        to,
			Subject:   spoofAlertSubject,
			Template:  "spoof_alert",
			AttemptID: record.AttemptID,
			Data:      opts,
		}
		if err := deliverAlert(alert); err != nil {
			failed = append(failed, to)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to send spoof alert to %s", strings.Join(failed, ", "))
	}
	return nil
}

const spoofAlertSubject = "Percobaan absensi dengan lokasi palsu"

// deliverAlert queues one email per recipient so a failing address is retried
// on its own. Without a broker the email is sent inline.
func deliverAlert(alert AlertEmailPayload) error {
	if Broker == nil {
		if !emails.EmailService.SendEmail(alert.To, alert.Subject, alert.Template, alert.Data) {
			return fmt.Errorf("failed to send email to %s", alert.To)
		}
		return nil
	}
	raw, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	return Broker.Enqueue(mq_types.QueueTask{
		Name:     HandleEmailDeliveryTaskName,
		Payload:  raw,
		Priority: mq_types.Low,
		MaxRetry: 5,
	})
}

func spoofAlertOpts(record *entities.AttendanceRecord, officeName string) map[string]any {
	opts := map[string]any{
		"UserID":     record.UserID,
		"AttemptID":  record.AttemptID,
		"OfficeName": officeName,
		"DecidedAt":  record.DecidedAt.Format(time.RFC1123),
		"Latitude":   "-",
		"Longitude":  "-",
		"Device":     "-",
		"IPAddress":  "-",
	}
	if record.Location != nil {
		opts["Latitude"] = record.Location.Latitude
		opts["Longitude"] = record.Location.Longitude
	}
	if record.Device != nil {
		opts["Device"] = strings.TrimSpace(record.Device.Browser + " " + record.Device.OS)
	}
	if record.IP != nil {
		opts["IPAddress"] = record.IP.Address
	}
	return opts
}
