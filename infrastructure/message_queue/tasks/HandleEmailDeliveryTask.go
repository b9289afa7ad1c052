package queue_tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"mruput.io/infrastructure/logger"
	"mruput.io/infrastructure/messaging/emails"
	mq_types "mruput.io/infrastructure/message_queue/types"
)

var HandleEmailDeliveryTaskName mq_types.Queues = "send_alert_email"

// Broker lets tasks enqueue follow up tasks. It is set when the queue connects.
var Broker mq_types.TaskQueueBroker

// AlertEmailPayload is one alert email to one supervisor.
type AlertEmailPayload struct {
	To        string
	Subject   string
	Template  string
	AttemptID string
	Data      map[string]any
}

func HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload AlertEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Error("an error occured while unmarshalling alert email payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.To == "" {
		return fmt.Errorf("%w: alert email has no recipient", asynq.SkipRetry)
	}
	if !emails.EmailService.SendEmail(payload.To, payload.Subject, payload.Template, payload.Data) {
		logger.Error("failed to send alert email", logger.LoggerOptions{
			Key:  "attemptID",
			Data: payload.AttemptID,
		}, logger.LoggerOptions{
			Key:  "templateName",
			Data: payload.Template,
		})
		return fmt.Errorf("failed to send alert email for attempt %s", payload.AttemptID)
	}
	return nil
}
