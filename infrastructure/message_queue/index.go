package messagequeue

import (
	"mruput.io/infrastructure/message_queue/asynq"
	queue_tasks "mruput.io/infrastructure/message_queue/tasks"
	mq_types "mruput.io/infrastructure/message_queue/types"
)

var broker = &asynq.AsynqBroker{}

var TaskQueue mq_types.TaskQueueBroker = broker

// Connect lets the API enqueue tasks without running the worker.
func Connect() {
	broker.Connect()
	queue_tasks.Broker = broker
}

func StartQueue() {
	TaskQueue.Start()
}

func StopQueue() {
	broker.Shutdown()
}
