package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arogyanet/hospital-registry/config"
	"github.com/arogyanet/hospital-registry/pkg/metrics"
)

const (
	EventHospitalCreated = "hospital_created"
	EventHospitalUpdated = "hospital_updated"
)

type EventData struct {
	ExternalID string     `json:"externalId"`
	Name       string     `json:"name"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

// Publisher dispatches domain events best-effort. Implementations must never
// block the caller and never surface delivery failures.
type Publisher interface {
	Publish(event Event)
}

// NopPublisher drops every event. Used when no notification service is
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// Dispatcher delivers events to the downstream notification service from a
// background worker. The buffer decouples the response path from delivery:
// Publish never blocks, a full buffer drops the event with a warning, and
// delivery failures are logged and swallowed. No retries, no ordering
// guarantee beyond the channel itself.
type Dispatcher struct {
	endpoint   string
	serviceKey string
	client     *http.Client
	log        *zap.Logger
	collector  *metrics.Collector
	events     chan Event
	done       chan struct{}

	// mu orders Publish against Shutdown: once closed is set the events
	// channel may be closed, so sends are no longer safe.
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(cfg config.NotifierConfig, serviceKey string, collector *metrics.Collector, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		endpoint:   cfg.BaseURL + "/events",
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: cfg.Timeout},
		log:        log,
		collector:  collector,
		events:     make(chan Event, cfg.BufferSize),
		done:       make(chan struct{}),
	}
	go d.worker()
	return d
}

// Publish enqueues an event for async delivery. If the buffer is full, or the
// dispatcher has already been shut down, the event is dropped with a warning.
func (d *Dispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("notifier shut down, dropping event",
			zap.String("event", event.Event),
			zap.String("external_id", event.Data.ExternalID),
		)
		return
	}

	select {
	case d.events <- event:
	default:
		if d.collector != nil {
			d.collector.NotificationsDropped.Inc()
		}
		d.log.Warn("notification buffer full, dropping event",
			zap.String("event", event.Event),
			zap.String("external_id", event.Data.ExternalID),
		)
	}
}

// Shutdown stops intake, waits for the worker to drain the buffer, and is
// safe to call more than once.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.events)
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-time.After(10 * time.Second):
		d.log.Warn("notifier shutdown timed out; some events may be lost")
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for event := range d.events {
		if err := d.deliver(event); err != nil {
			if d.collector != nil {
				d.collector.NotificationsFailed.Inc()
			}
			d.log.Error("failed to deliver notification",
				zap.String("event", event.Event),
				zap.String("external_id", event.Data.ExternalID),
				zap.Error(err),
			)
			continue
		}
		if d.collector != nil {
			d.collector.NotificationsDelivered.Inc()
		}
	}
}

func (d *Dispatcher) deliver(event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.serviceKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification service returned %d", resp.StatusCode)
	}

	return nil
}
