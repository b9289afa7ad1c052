package recordsink

import (
	"context"
	"encoding/json"
	"net/http"

	"mruput.io/application/services/verification"
	"mruput.io/application/utils"
	"mruput.io/infrastructure/ipresolver/types"
	queue_tasks "mruput.io/infrastructure/message_queue/tasks"
	mq_types "mruput.io/infrastructure/message_queue/types"
)

// QueueSink hands decided attempts to the task queue. The persist task writes
// the record and the still; a spoof alert task follows mocked attempts.
type QueueSink struct {
	Broker      mq_types.TaskQueueBroker
	Resolver    types.IPResolver
	StoreStills bool
}

func (s *QueueSink) Record(ctx context.Context, record *verification.Record) error {
	entity := ToEntity(record, s.Resolver)

	persist := queue_tasks.PersistAttendancePayload{Record: entity}
	if s.StoreStills && len(record.Still) > 0 {
		persist.Still = record.Still
		persist.StillContentType = http.DetectContentType(record.Still)
		if format, _, err := utils.ImageFormat(record.Still); err == nil {
			persist.StillContentType = utils.ContentType(format)
		}
	}
	raw, err := json.Marshal(persist)
	if err != nil {
		return err
	}
	if err := s.Broker.Enqueue(mq_types.QueueTask{
		Name:     queue_tasks.HandlePersistAttendanceTaskName,
		Payload:  raw,
		Priority: mq_types.High,
		MaxRetry: 10,
	}); err != nil {
		return err
	}

	if !entity.SpoofFlagged {
		return nil
	}
	alert, err := json.Marshal(queue_tasks.SpoofAlertPayload{Record: entity})
	if err != nil {
		return err
	}
	return s.Broker.Enqueue(mq_types.QueueTask{
		Name:     queue_tasks.HandleSpoofAlertTaskName,
		Payload:  alert,
		Priority: mq_types.Medium,
		MaxRetry: 5,
	})
}
