package usecase

import (
	"context"

	"github.com/RYGhub/ryglfg"
	"github.com/RYGhub/ryglfg/guard"
	"github.com/RYGhub/ryglfg/internal/domain"
)

// WebhookRepository defines storage operations for webhooks.
type WebhookRepository interface {
	All(ctx context.Context) ([]domain.Webhook, error)
	Get(ctx context.Context, wid int64) (domain.Webhook, error)
	Create(ctx context.Context, url string, format domain.WebhookFormat) (domain.Webhook, error)
	Delete(ctx context.Context, wid int64) error
}

// WebhookTester delivers a payload to a single webhook synchronously.
type WebhookTester interface {
	Test(ctx context.Context, hook domain.Webhook, payload any) error
}

type WebhookUsecase struct {
	repo   WebhookRepository
	tester WebhookTester
}

func NewWebhookUsecase(repo WebhookRepository, tester WebhookTester) *WebhookUsecase {
	return &WebhookUsecase{repo: repo, tester: tester}
}

func (uc *WebhookUsecase) List(ctx context.Context, actor guard.Subject) ([]domain.Webhook, error) {
	if d := guard.Check(actor, guard.ReadWebhooks, "", false); !d.Allowed {
		return nil, denied(d)
	}
	return uc.repo.All(ctx)
}

func (uc *WebhookUsecase) Create(ctx context.Context, actor guard.Subject, url string, format domain.WebhookFormat) (domain.Webhook, error) {
	if d := guard.Check(actor, guard.CreateWebhooks, "", false); !d.Allowed {
		return domain.Webhook{}, denied(d)
	}
	return uc.repo.Create(ctx, url, format)
}

func (uc *WebhookUsecase) Delete(ctx context.Context, actor guard.Subject, wid int64) error {
	if d := guard.Check(actor, guard.DeleteWebhooks, "", false); !d.Allowed {
		return denied(d)
	}
	return uc.repo.Delete(ctx, wid)
}

// Test posts the test payload to one webhook so an operator can verify
// the endpoint is reachable.
func (uc *WebhookUsecase) Test(ctx context.Context, actor guard.Subject, wid int64) error {
	if d := guard.Check(actor, guard.TestWebhooks, "", false); !d.Allowed {
		return denied(d)
	}

	hook, err := uc.repo.Get(ctx, wid)
	if err != nil {
		return err
	}

	if hook.Format != domain.FormatRYGLFG {
		return nil
	}
	return uc.tester.Test(ctx, hook, ryglfg.TestEvent{Type: "test"})
}
