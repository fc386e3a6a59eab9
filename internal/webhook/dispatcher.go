// Package webhook delivers job lifecycle notifications to
// tenant-registered endpoints. Payloads mirror audit events: event name,
// ids, counts and durations only — extracted content never leaves the
// pipeline through this path.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Dispatcher struct {
	db         *pgxpool.Pool
	httpClient *http.Client
	deliveries chan deliveryRequest
	closeOnce  sync.Once
	done       chan struct{}
}

type deliveryRequest struct {
	endpointID string
	url        string
	secret     string
	event      string
	payload    []byte
}

func NewDispatcher(db *pgxpool.Pool) *Dispatcher {
	d := &Dispatcher{
		db: db,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		deliveries: make(chan deliveryRequest, 1000),
		done:       make(chan struct{}),
	}
	go d.processLoop()
	return d
}

// Close stops accepting deliveries and blocks until everything already
// queued has been attempted. Call it after the worker has drained, so
// nothing enqueues concurrently.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.deliveries) })
	<-d.done
}

func (d *Dispatcher) enqueue(req deliveryRequest) {
	select {
	case d.deliveries <- req:
	default:
		slog.Warn("webhook delivery queue full, dropping", "endpoint_id", req.endpointID, "event", req.event)
	}
}

func (d *Dispatcher) processLoop() {
	for req := range d.deliveries {
		d.deliver(req)
	}
	close(d.done)
}

func (d *Dispatcher) deliver(req deliveryRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	signature := sign(req.payload, req.secret)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", req.url, bytes.NewReader(req.payload))
	if err != nil {
		slog.Error("webhook request creation failed", "error", err)
		return
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Webhook-Event", req.event)
	httpReq.Header.Set("X-Webhook-Signature", signature)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("webhook delivery failed", "error", err, "endpoint_id", req.endpointID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Warn("webhook received non-success response", "status", resp.StatusCode, "endpoint_id", req.endpointID)
	}
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
