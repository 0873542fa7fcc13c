package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/RYGhub/ryglfg/internal/domain"
)

const (
	deliveryTimeout         = 10 * time.Second
	maxConcurrentDeliveries = 16
	notifierUserAgent       = "ryglfg"
)

// WebhookSource yields the currently registered webhooks.
type WebhookSource interface {
	All(ctx context.Context) ([]domain.Webhook, error)
}

// NotificationService fans event payloads out to every registered
// webhook. Deliveries are best-effort: they run detached from the
// triggering request, failures are logged and swallowed, and no webhook
// can block another or the API itself.
type NotificationService struct {
	webhooks WebhookSource
	signal   *SignalService
	client   *http.Client
	sem      *semaphore.Weighted
}

func NewNotificationService(webhooks WebhookSource, signal *SignalService) *NotificationService {
	return &NotificationService{
		webhooks: webhooks,
		signal:   signal,
		client:   newDeliveryClient(),
		sem:      semaphore.NewWeighted(maxConcurrentDeliveries),
	}
}

func newDeliveryClient() *http.Client {
	return &http.Client{
		Timeout:   deliveryTimeout,
		Transport: userAgentTransport{},
	}
}

type userAgentTransport struct{}

func (userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", notifierUserAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// Dispatch sends the payload to every webhook registered at call time,
// plus the realtime signal when one is configured. It returns
// immediately; the caller's transaction has already committed and its
// outcome must not depend on delivery.
func (s *NotificationService) Dispatch(ctx context.Context, payload any) {
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic during notification dispatch", slog.Any("panic", r))
			}
		}()
		s.broadcast(bgCtx, payload)
	}()
}

func (s *NotificationService) broadcast(ctx context.Context, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode notification payload",
			slog.String("error", err.Error()))
		return
	}

	hooks, err := s.webhooks.All(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load webhooks for dispatch",
			slog.String("error", err.Error()))
		return
	}

	for _, hook := range hooks {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}
		go func(hook domain.Webhook) {
			defer s.sem.Release(1)
			s.deliver(ctx, hook, body)
		}(hook)
	}

	if s.signal != nil {
		if err := s.signal.Publish(ctx, body); err != nil {
			slog.WarnContext(ctx, "failed to publish realtime event",
				slog.String("error", err.Error()))
		}
	}
}

func (s *NotificationService) deliver(ctx context.Context, hook domain.Webhook, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		slog.WarnContext(ctx, "failed to build webhook request",
			slog.String("url", hook.URL),
			slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "webhook delivery failed",
			slog.String("url", hook.URL),
			slog.String("error", err.Error()))
		return
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode >= 400 {
		slog.WarnContext(ctx, "webhook endpoint rejected delivery",
			slog.String("url", hook.URL),
			slog.Int("status", res.StatusCode))
	}
}

// Test synchronously posts the test payload to a single webhook, so the
// caller can tell whether the endpoint is reachable.
func (s *NotificationService) Test(ctx context.Context, hook domain.Webhook, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	return nil
}
