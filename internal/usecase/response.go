package usecase

import (
	"context"

	"github.com/RYGhub/ryglfg"
	"github.com/RYGhub/ryglfg/guard"
	"github.com/RYGhub/ryglfg/internal/domain"
)

type ResponseUsecase struct {
	repo     AnnouncementRepository
	notifier Notifier
}

func NewResponseUsecase(repo AnnouncementRepository, notifier Notifier) *ResponseUsecase {
	return &ResponseUsecase{repo: repo, notifier: notifier}
}

// Answer records or replaces the acting subject's response to an
// announcement. The returned flag is true when the response is new.
func (uc *ResponseUsecase) Answer(ctx context.Context, actor guard.Subject, user string, aid int64, choice domain.ResponseChoice) (domain.Response, domain.Announcement, bool, error) {
	actingAs := guard.ActingAs(actor, user)
	if d := guard.Check(actor, guard.AnswerLFG, actingAs, false); !d.Allowed {
		return domain.Response{}, domain.Announcement{}, false, denied(d)
	}

	response, announcement, created, err := uc.repo.UpsertResponse(ctx, aid, actingAs, choice)
	if err != nil {
		return domain.Response{}, domain.Announcement{}, false, err
	}

	tag := "change"
	if created {
		tag = "new"
	}
	uc.notifier.Dispatch(ctx, ryglfg.ResponseEvent{
		What:  "answer",
		Type:  tag,
		Event: ryglfg.NewResponseFull(response, announcement),
	})

	return response, announcement, created, nil
}
