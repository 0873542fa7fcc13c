package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/RYGhub/ryglfg"
	"github.com/RYGhub/ryglfg/guard"
	"github.com/RYGhub/ryglfg/internal/domain"
)

func TestAnswerNewThenChange(t *testing.T) {
	repo := newMockAnnouncementRepo()
	notifier := &mockNotifier{}
	uc := NewResponseUsecase(repo, notifier)

	creator := member("create:lfg")
	a, _ := NewAnnouncementUsecase(repo, notifier).Create(context.Background(), creator, "", domain.AnnouncementDraft{})

	actor := member("answer:lfg")
	response, _, created, err := uc.Answer(context.Background(), actor, "", a.AID, domain.ChoiceAccepted)
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if !created {
		t.Fatalf("first answer should be new")
	}
	if response.Choice != domain.ChoiceAccepted {
		t.Fatalf("expected ACCEPTED, got %s", response.Choice)
	}

	ev := notifier.dispatched[len(notifier.dispatched)-1].(ryglfg.ResponseEvent)
	if ev.What != "answer" || ev.Type != "new" {
		t.Fatalf("expected answer/new envelope, got %s/%s", ev.What, ev.Type)
	}

	response, _, created, err = uc.Answer(context.Background(), actor, "", a.AID, domain.ChoiceDeclined)
	if err != nil {
		t.Fatalf("second answer failed: %v", err)
	}
	if created {
		t.Fatalf("second answer should be a change")
	}
	if response.Choice != domain.ChoiceDeclined {
		t.Fatalf("expected DECLINED, got %s", response.Choice)
	}

	ev = notifier.dispatched[len(notifier.dispatched)-1].(ryglfg.ResponseEvent)
	if ev.What != "answer" || ev.Type != "change" {
		t.Fatalf("expected answer/change envelope, got %s/%s", ev.What, ev.Type)
	}
}

func TestAnswerForOtherNeedsSudo(t *testing.T) {
	repo := newMockAnnouncementRepo()
	uc := NewResponseUsecase(repo, &mockNotifier{})

	creator := member("create:lfg")
	a, _ := NewAnnouncementUsecase(repo, &mockNotifier{}).Create(context.Background(), creator, "", domain.AnnouncementDraft{})

	bob := guard.Subject{ID: "auth0|bob", Permissions: []string{"answer:lfg"}}
	_, _, _, err := uc.Answer(context.Background(), bob, "auth0|carol", a.AID, domain.ChoiceAccepted)
	var perm domain.PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if perm.Scope != "answer:lfg_sudo" {
		t.Fatalf("expected missing scope answer:lfg_sudo, got %s", perm.Scope)
	}

	bob.Permissions = append(bob.Permissions, "answer:lfg_sudo")
	response, _, created, err := uc.Answer(context.Background(), bob, "auth0|carol", a.AID, domain.ChoiceAccepted)
	if err != nil {
		t.Fatalf("sudo answer failed: %v", err)
	}
	if !created || response.PartecipantID != "auth0|carol" {
		t.Fatalf("expected new response recorded for auth0|carol")
	}
}

func TestAnswerMissingAnnouncement(t *testing.T) {
	repo := newMockAnnouncementRepo()
	uc := NewResponseUsecase(repo, &mockNotifier{})

	_, _, _, err := uc.Answer(context.Background(), member("answer:lfg"), "", 42, domain.ChoiceUndecided)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
