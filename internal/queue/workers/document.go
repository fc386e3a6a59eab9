package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/vitohq/docintel/internal/document"
	"github.com/vitohq/docintel/internal/queue"
)

// DocumentWorker adapts the pipeline processor to the queue. A returned
// error tells the queue to apply its retry/backoff policy; nil marks the
// task done.
type DocumentWorker struct {
	processor *document.Processor
}

func NewDocumentWorker(processor *document.Processor) *DocumentWorker {
	return &DocumentWorker{processor: processor}
}

func (w *DocumentWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	return w.processor.Process(ctx, payload)
}
