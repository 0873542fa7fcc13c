package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/RYGhub/ryglfg/internal/domain"
)

type staticWebhookSource struct {
	hooks []domain.Webhook
}

func (s *staticWebhookSource) All(ctx context.Context) ([]domain.Webhook, error) {
	return s.hooks, nil
}

type capture struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (c *capture) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, body)
		c.mu.Unlock()
	}
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies)
}

func TestBroadcastReachesEveryWebhook(t *testing.T) {
	first := &capture{}
	second := &capture{}
	srvA := httptest.NewServer(first.handler())
	defer srvA.Close()
	srvB := httptest.NewServer(second.handler())
	defer srvB.Close()

	source := &staticWebhookSource{hooks: []domain.Webhook{
		{WID: 1, URL: srvA.URL, Format: domain.FormatRYGLFG},
		{WID: 2, URL: srvB.URL, Format: domain.FormatRYGLFG},
	}}
	svc := NewNotificationService(source, nil)

	svc.broadcast(context.Background(), map[string]string{"type": "test"})
	svc.drain(t)

	if first.count() != 1 || second.count() != 1 {
		t.Fatalf("expected one delivery each, got %d and %d", first.count(), second.count())
	}

	var payload map[string]string
	if err := json.Unmarshal(first.bodies[0], &payload); err != nil {
		t.Fatalf("undecodable body: %v", err)
	}
	if payload["type"] != "test" {
		t.Fatalf("expected type test, got %s", payload["type"])
	}
}

func TestBroadcastSurvivesFailingEndpoint(t *testing.T) {
	working := &capture{}
	srv := httptest.NewServer(working.handler())
	defer srv.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	source := &staticWebhookSource{hooks: []domain.Webhook{
		{WID: 1, URL: "http://127.0.0.1:1/unreachable", Format: domain.FormatRYGLFG},
		{WID: 2, URL: broken.URL, Format: domain.FormatRYGLFG},
		{WID: 3, URL: srv.URL, Format: domain.FormatRYGLFG},
	}}
	svc := NewNotificationService(source, nil)

	svc.broadcast(context.Background(), map[string]string{"type": "test"})
	svc.drain(t)

	if working.count() != 1 {
		t.Fatalf("expected the healthy endpoint to still receive the event, got %d", working.count())
	}
}

func TestTestDeliversSynchronously(t *testing.T) {
	received := &capture{}
	srv := httptest.NewServer(received.handler())
	defer srv.Close()

	svc := NewNotificationService(&staticWebhookSource{}, nil)
	hook := domain.Webhook{WID: 1, URL: srv.URL, Format: domain.FormatRYGLFG}

	if err := svc.Test(context.Background(), hook, map[string]string{"type": "test"}); err != nil {
		t.Fatalf("test delivery failed: %v", err)
	}
	if received.count() != 1 {
		t.Fatalf("expected one delivery, got %d", received.count())
	}
}

func TestTestReportsConnectionError(t *testing.T) {
	svc := NewNotificationService(&staticWebhookSource{}, nil)
	hook := domain.Webhook{WID: 1, URL: "http://127.0.0.1:1/unreachable", Format: domain.FormatRYGLFG}

	if err := svc.Test(context.Background(), hook, map[string]string{"type": "test"}); err == nil {
		t.Fatalf("expected delivery error")
	}
}

// drain waits for in-flight deliveries by taking the whole semaphore.
func (s *NotificationService) drain(t *testing.T) {
	t.Helper()
	if err := s.sem.Acquire(context.Background(), maxConcurrentDeliveries); err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	s.sem.Release(maxConcurrentDeliveries)
}
