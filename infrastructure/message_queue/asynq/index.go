package asynq

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"mruput.io/infrastructure/logger"
	queue_tasks "mruput.io/infrastructure/message_queue/tasks"
	mq_types "mruput.io/infrastructure/message_queue/types"
)

var ErrBrokerNotStarted = errors.New("task queue not started")

type AsynqBroker struct {
	Client *asynq.Client
	server *asynq.Server
}

func redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
}

// Connect prepares the client side so tasks can be enqueued before the
// worker is running.
func (aq *AsynqBroker) Connect() {
	if aq.Client == nil {
		aq.Client = asynq.NewClient(redisOpt())
	}
}

// Start runs the worker and blocks until it stops.
func (aq *AsynqBroker) Start() {
	aq.Connect()

	aq.server = asynq.NewServer(
		redisOpt(),
		asynq.Config{
			Concurrency: 50,
			Queues: map[string]int{
				string(mq_types.High):   7,
				string(mq_types.Medium): 2,
				string(mq_types.Low):    1,
			},
			Logger: asynqLogger{},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(string(queue_tasks.HandlePersistAttendanceTaskName), queue_tasks.HandlePersistAttendanceTask)
	mux.HandleFunc(string(queue_tasks.HandleSpoofAlertTaskName), queue_tasks.HandleSpoofAlertTask)
	mux.HandleFunc(string(queue_tasks.HandleEmailDeliveryTaskName), queue_tasks.HandleEmailDeliveryTask)

	if err := aq.server.Run(mux); err != nil {
		logger.Error("task queue stopped", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
}

func (aq *AsynqBroker) Shutdown() {
	if aq.server != nil {
		aq.server.Shutdown()
	}
	if aq.Client != nil {
		aq.Client.Close()
	}
}

func (aq *AsynqBroker) Enqueue(task mq_types.QueueTask) error {
	if aq.Client == nil {
		return ErrBrokerNotStarted
	}
	if task.TimeOut == 0 {
		task.TimeOut = time.Minute
	}
	if task.MaxRetry == 0 {
		task.MaxRetry = 10
	}
	if task.Priority == "" {
		task.Priority = mq_types.Medium
	}
	_, err := aq.Client.Enqueue(asynq.NewTask(string(task.Name), task.Payload),
		asynq.ProcessIn(task.ProcessIn),
		asynq.MaxRetry(task.MaxRetry),
		asynq.Timeout(task.TimeOut),
		asynq.Queue(string(task.Priority)))
	if err != nil {
		logger.Error("could not enqueue task", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "task",
			Data: task.Name,
		})
	}
	return err
}

type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { logger.Debug(sprint(args)) }
func (asynqLogger) Info(args ...interface{}) { logger.Info(sprint(args)) }
func (asynqLogger) Warn(args ...interface{}) { logger.Warning(sprint(args)) }
func (asynqLogger) Error(args ...interface{}) { logger.Error(sprint(args)) }
func (asynqLogger) Fatal(args ...interface{}) { logger.Error(sprint(args)) }

func sprint(args []interface{}) string {
	return fmt.Sprint(args...)
}
