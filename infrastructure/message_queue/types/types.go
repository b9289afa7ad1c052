package mq_types

import "time"

type TaskQueueBroker interface {
	Start()
	Enqueue(task QueueTask) error
}

type Queues string

type QueueTask struct {
	Name      Queues
	Payload   []byte
	Priority  TaskPriority
	ProcessIn time.Duration
	TimeOut   time.Duration
	MaxRetry  int
}

type TaskPriority string

const (
	Low    TaskPriority = "low"
	Medium TaskPriority = "medium"
	High   TaskPriority = "high"
)
