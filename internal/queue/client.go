package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vitohq/docintel/internal/config"
)

type Client struct {
	client          *asynq.Client
	maxRetry        int
	completedMaxAge time.Duration
}

func NewClient(cfg config.RedisConfig, worker config.WorkerConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		maxRetry:        worker.MaxRetry,
		completedMaxAge: worker.CompletedMaxAge,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueDocumentProcess submits a job for processing and returns its id.
// The payload's job id is used as the task id, so a duplicate enqueue
// while the job is pending or in-flight is a logged no-op.
func (c *Client) EnqueueDocumentProcess(payload DocumentProcessPayload) (string, error) {
	if err := payload.Validate(); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeDocumentProcess, data)
	_, err = c.client.Enqueue(task,
		asynq.Queue(QueueName),
		asynq.TaskID(payload.JobID),
		asynq.MaxRetry(c.maxRetry),
		asynq.Retention(c.completedMaxAge),
		asynq.Timeout(10*time.Minute),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		slog.Info("job already enqueued, skipping duplicate", "job_id", payload.JobID)
		return payload.JobID, nil
	}
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeDocumentProcess, err)
	}

	return payload.JobID, nil
}
