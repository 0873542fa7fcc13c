package usecase

import (
	"context"

	"github.com/RYGhub/ryglfg"
	"github.com/RYGhub/ryglfg/guard"
	"github.com/RYGhub/ryglfg/internal/domain"
)

// AnnouncementRepository defines storage operations for announcements
// and their responses.
type AnnouncementRepository interface {
	Create(ctx context.Context, creator string, draft domain.AnnouncementDraft) (domain.Announcement, error)
	Get(ctx context.Context, aid int64) (domain.Announcement, error)
	List(ctx context.Context, filter domain.AnnouncementFilter) ([]domain.Announcement, error)
	Update(ctx context.Context, aid int64, draft domain.AnnouncementDraft) (domain.Announcement, error)
	Delete(ctx context.Context, aid int64) error
	Transition(ctx context.Context, aid int64, action domain.Action, closer string) (domain.Announcement, error)
	UpsertResponse(ctx context.Context, aid int64, participant string, choice domain.ResponseChoice) (domain.Response, domain.Announcement, bool, error)
}

// Notifier delivers an event payload to whatever sinks are registered.
// Dispatch must not block and its outcome never affects the caller.
type Notifier interface {
	Dispatch(ctx context.Context, payload any)
}

type AnnouncementUsecase struct {
	repo     AnnouncementRepository
	notifier Notifier
}

func NewAnnouncementUsecase(repo AnnouncementRepository, notifier Notifier) *AnnouncementUsecase {
	return &AnnouncementUsecase{repo: repo, notifier: notifier}
}

func denied(d guard.Decision) error {
	return domain.PermissionError{Scope: string(d.Missing)}
}

func (uc *AnnouncementUsecase) List(ctx context.Context, actor guard.Subject, filter domain.AnnouncementFilter) ([]domain.Announcement, error) {
	if d := guard.Check(actor, guard.ReadLFG, "", false); !d.Allowed {
		return nil, denied(d)
	}
	return uc.repo.List(ctx, filter)
}

func (uc *AnnouncementUsecase) Get(ctx context.Context, actor guard.Subject, aid int64) (domain.Announcement, error) {
	if d := guard.Check(actor, guard.ReadLFG, "", false); !d.Allowed {
		return domain.Announcement{}, denied(d)
	}
	return uc.repo.Get(ctx, aid)
}

// Create posts a new announcement. The acting subject becomes the
// creator, which needs the sudo tier when it is not the caller itself.
func (uc *AnnouncementUsecase) Create(ctx context.Context, actor guard.Subject, user string, draft domain.AnnouncementDraft) (domain.Announcement, error) {
	actingAs := guard.ActingAs(actor, user)
	if d := guard.Check(actor, guard.CreateLFG, actingAs, false); !d.Allowed {
		return domain.Announcement{}, denied(d)
	}

	announcement, err := uc.repo.Create(ctx, actingAs, draft)
	if err != nil {
		return domain.Announcement{}, err
	}

	uc.notifier.Dispatch(ctx, ryglfg.AnnouncementEvent{
		Type:  "create",
		Event: ryglfg.NewAnnouncementFull(announcement),
	})

	return announcement, nil
}

// Edit replaces the editable fields. Editing someone else's
// announcement needs the sudo tier; editing a closed one needs admin.
func (uc *AnnouncementUsecase) Edit(ctx context.Context, actor guard.Subject, aid int64, draft domain.AnnouncementDraft) (domain.Announcement, error) {
	if d := guard.Check(actor, guard.EditLFG, "", false); !d.Allowed {
		return domain.Announcement{}, denied(d)
	}

	current, err := uc.repo.Get(ctx, aid)
	if err != nil {
		return domain.Announcement{}, err
	}

	if d := guard.Check(actor, guard.EditLFG, current.CreatorID, current.State.Closed()); !d.Allowed {
		return domain.Announcement{}, denied(d)
	}

	return uc.repo.Update(ctx, aid, draft)
}

// Delete is quiet by design: no notification fires and deleting an
// absent announcement succeeds.
func (uc *AnnouncementUsecase) Delete(ctx context.Context, actor guard.Subject, aid int64) error {
	if d := guard.Check(actor, guard.DeleteLFG, "", false); !d.Allowed {
		return denied(d)
	}
	return uc.repo.Delete(ctx, aid)
}

func (uc *AnnouncementUsecase) Start(ctx context.Context, actor guard.Subject, user string, aid int64) (domain.Announcement, error) {
	return uc.transition(ctx, actor, user, aid, guard.StartLFG, domain.ActionStart)
}

func (uc *AnnouncementUsecase) Cancel(ctx context.Context, actor guard.Subject, user string, aid int64) (domain.Announcement, error) {
	return uc.transition(ctx, actor, user, aid, guard.CancelLFG, domain.ActionCancel)
}

func (uc *AnnouncementUsecase) transition(ctx context.Context, actor guard.Subject, user string, aid int64, scope guard.Scope, action domain.Action) (domain.Announcement, error) {
	actingAs := guard.ActingAs(actor, user)
	if d := guard.Check(actor, scope, actingAs, false); !d.Allowed {
		return domain.Announcement{}, denied(d)
	}

	current, err := uc.repo.Get(ctx, aid)
	if err != nil {
		return domain.Announcement{}, err
	}

	// Closing someone else's announcement needs the admin tier.
	if d := guard.Check(actor, scope, actingAs, actingAs != current.CreatorID); !d.Allowed {
		return domain.Announcement{}, denied(d)
	}

	updated, err := uc.repo.Transition(ctx, aid, action, actingAs)
	if err != nil {
		return domain.Announcement{}, err
	}

	uc.notifier.Dispatch(ctx, ryglfg.AnnouncementEvent{
		Type:  string(action),
		Event: ryglfg.NewAnnouncementFull(updated),
	})

	return updated, nil
}
