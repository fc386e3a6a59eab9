package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Notifier fans a lifecycle event out to every active endpoint the
// tenant has registered for it. It satisfies the audit Emitter contract
// so it can be composed with the database-backed emitter.
type Notifier struct {
	dispatcher *Dispatcher
}

func NewNotifier(dispatcher *Dispatcher) *Notifier {
	return &Notifier{dispatcher: dispatcher}
}

type eventEnvelope struct {
	Event     string           `json:"event"`
	TenantID  string           `json:"tenant_id"`
	JobID     string           `json:"job_id"`
	Metadata  map[string]int64 `json:"metadata,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

func (n *Notifier) Emit(ctx context.Context, tenantID, jobID, event string, metadata map[string]int64) error {
	rows, err := n.dispatcher.db.Query(ctx,
		`SELECT id, url, secret FROM webhook_endpoints
		 WHERE tenant_id = $1 AND is_active AND $2 = ANY(events)`,
		tenantID, event,
	)
	if err != nil {
		return fmt.Errorf("query webhook endpoints: %w", err)
	}
	defer rows.Close()

	payload, err := json.Marshal(eventEnvelope{
		Event:     event,
		TenantID:  tenantID,
		JobID:     jobID,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	for rows.Next() {
		var id, url, secret string
		if err := rows.Scan(&id, &url, &secret); err != nil {
			return fmt.Errorf("scan webhook endpoint: %w", err)
		}
		n.dispatcher.enqueue(deliveryRequest{
			endpointID: id,
			url:        url,
			secret:     secret,
			event:      event,
			payload:    payload,
		})
	}
	return rows.Err()
}
