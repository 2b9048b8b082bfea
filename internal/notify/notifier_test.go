package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arogyanet/hospital-registry/config"
)

func newTestDispatcher(baseURL string) *Dispatcher {
	return NewDispatcher(config.NotifierConfig{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		BufferSize: 16,
	}, "shared-service-key", nil, zap.NewNop())
}

func TestDispatcherDelivers(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Event
		auths    []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var event Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("decoding event: %v", err)
		}
		mu.Lock()
		received = append(received, event)
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := newTestDispatcher(srv.URL)

	now := time.Now()
	d.Publish(Event{
		Event: EventHospitalCreated,
		Data:  EventData{ExternalID: "abc-123", Name: "Apollo Hospital", CreatedAt: &now},
	})
	d.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(received))
	}
	if received[0].Event != EventHospitalCreated || received[0].Data.ExternalID != "abc-123" {
		t.Errorf("unexpected event: %+v", received[0])
	}
	if auths[0] != "Bearer shared-service-key" {
		t.Errorf("unexpected auth header %q", auths[0])
	}
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	var calls int
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := newTestDispatcher(srv.URL)

	// Publish must not block or surface the downstream failure; the event is
	// delivered once and abandoned.
	d.Publish(Event{Event: EventHospitalUpdated, Data: EventData{ExternalID: "abc-123"}})
	d.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly one attempt (no retries), got %d", calls)
	}
}

func TestDispatcherUnreachableEndpoint(t *testing.T) {
	d := NewDispatcher(config.NotifierConfig{
		BaseURL:    "http://127.0.0.1:1",
		Timeout:    200 * time.Millisecond,
		BufferSize: 4,
	}, "shared-service-key", nil, zap.NewNop())

	d.Publish(Event{Event: EventHospitalCreated, Data: EventData{ExternalID: "abc-123"}})
	d.Shutdown()
	// Reaching here without a panic or a hang is the contract.
}

func TestDispatcherPublishAfterShutdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := newTestDispatcher(srv.URL)
	d.Shutdown()

	// A late caller racing graceful shutdown must get the drop path, not a
	// send on a closed channel.
	d.Publish(Event{Event: EventHospitalCreated, Data: EventData{ExternalID: "abc-123"}})
	d.Shutdown() // repeat shutdown is a no-op
}

func TestNopPublisher(t *testing.T) {
	NopPublisher{}.Publish(Event{Event: EventHospitalCreated})
}
