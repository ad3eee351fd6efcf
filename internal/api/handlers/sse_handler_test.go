package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/api/handlers"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
)

// MockEventBus for testing
type MockEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan *entities.BusinessEvent
	published   []*entities.BusinessEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.BusinessEvent),
		published:   make([]*entities.BusinessEvent, 0),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.BusinessEvent) error {
	m.mu.Lock()
	m.published = append(m.published, event)
	channels := append([]chan *entities.BusinessEvent(nil), m.subscribers[channel]...)
	m.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BusinessEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.BusinessEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	subs := m.subscribers
	m.subscribers = make(map[string][]chan *entities.BusinessEvent)
	m.mu.Unlock()
	for _, channels := range subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	return nil
}

func (m *MockEventBus) PublishedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.published)
}

func TestSSEHandler_StreamBusinessUpdates(t *testing.T) {
	eventBus := NewMockEventBus()
	handler := handlers.NewSSEHandler(eventBus)

	t.Run("should establish SSE connection", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/businesses/biz_001", nil)
		req.SetPathValue("id", "biz_001")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamBusinessUpdates(w, req)
			close(done)
		}()

		// Wait a bit for connection to establish
		time.Sleep(100 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		result := w.Result()
		if result.Header.Get("Content-Type") != "text/event-stream" {
			t.Errorf("Expected Content-Type text/event-stream, got %s", result.Header.Get("Content-Type"))
		}
		if result.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("Expected Cache-Control no-cache, got %s", result.Header.Get("Cache-Control"))
		}
	})

	t.Run("should receive business events", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/businesses/biz_002", nil)
		req.SetPathValue("id", "biz_002")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamBusinessUpdates(w, req)
			close(done)
		}()

		// Wait for connection
		time.Sleep(100 * time.Millisecond)

		// Publish event
		event := entities.NewBusinessEvent(
			"biz_002",
			entities.BusinessEventTypeRatingUpdate,
			map[string]interface{}{"average_rating": 4.5},
		)

		channel := providers.GetBusinessChannel("biz_002")
		eventBus.Publish(context.Background(), channel, event)

		// Wait for event to be sent
		time.Sleep(200 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		if eventBus.PublishedCount() == 0 {
			t.Error("Expected event to be published")
		}
		if !strings.Contains(w.Body.String(), "event: rating_update") {
			t.Error("Expected rating_update event in stream body")
		}
	})

	t.Run("should return error for missing business ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/stream/businesses/", nil)
		w := httptest.NewRecorder()

		handler.StreamBusinessUpdates(w, req)

		result := w.Result()
		if result.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", result.StatusCode)
		}
	})
}

func TestSSEHandler_StreamAllUpdates(t *testing.T) {
	eventBus := NewMockEventBus()
	handler := handlers.NewSSEHandler(eventBus)

	t.Run("should establish global SSE connection", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/businesses", nil)
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamAllUpdates(w, req)
			close(done)
		}()
		time.Sleep(100 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		result := w.Result()
		if result.Header.Get("Content-Type") != "text/event-stream" {
			t.Errorf("Expected Content-Type text/event-stream, got %s", result.Header.Get("Content-Type"))
		}
	})

	t.Run("should filter events by type", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/businesses?types=status_change", nil)
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamAllUpdates(w, req)
			close(done)
		}()
		time.Sleep(100 * time.Millisecond)

		matching := entities.NewBusinessEvent(
			"biz_010",
			entities.BusinessEventTypeStatusChange,
			map[string]interface{}{"status": "VERIFIED"},
		)
		ignored := entities.NewBusinessEvent(
			"biz_011",
			entities.BusinessEventTypeProfileUpdate,
			map[string]interface{}{"name": "New Name"},
		)

		eventBus.Publish(context.Background(), providers.EventChannelBusinessUpdates, matching)
		eventBus.Publish(context.Background(), providers.EventChannelBusinessUpdates, ignored)

		time.Sleep(200 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		body := w.Body.String()
		if !strings.Contains(body, "event: status_change") {
			t.Error("Expected status_change event in stream body")
		}
		if strings.Contains(body, "event: profile_update") {
			t.Error("Did not expect profile_update event in filtered stream")
		}
	})

	t.Run("should track connected clients", func(t *testing.T) {
		if count := handler.GetClientCount(); count != 0 {
			t.Errorf("Expected 0 connected clients, got %d", count)
		}
	})
}
