package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RYGhub/ryglfg/internal/domain"
	"github.com/RYGhub/ryglfg/internal/infra/database/models"
)

type AnnouncementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Create(ctx context.Context, creator string, draft domain.AnnouncementDraft) (domain.Announcement, error) {
	record := models.Announcement{
		Title:         draft.Title,
		Description:   draft.Description,
		OpeningTime:   draft.OpeningTime,
		AutostartTime: draft.AutostartTime,
		CreatorID:     creator,
		State:         string(domain.LookingForGroup),
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return domain.Announcement{}, err
	}

	return toDomainAnnouncement(record), nil
}

func (r *AnnouncementRepository) Get(ctx context.Context, aid int64) (domain.Announcement, error) {
	var record models.Announcement
	err := r.db.WithContext(ctx).Preload("Responses").
		Where("aid = ?", aid).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Announcement{}, domain.NotFoundError{Resource: "announcement"}
	}
	if err != nil {
		return domain.Announcement{}, err
	}

	return toDomainAnnouncement(record), nil
}

func (r *AnnouncementRepository) List(ctx context.Context, filter domain.AnnouncementFilter) ([]domain.Announcement, error) {
	query := r.db.WithContext(ctx).Model(&models.Announcement{}).Preload("Responses")
	if filter.State != nil {
		query = query.Where("state = ?", string(*filter.State))
	}

	var records []models.Announcement
	err := query.
		Order("autostart_time").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	announcements := make([]domain.Announcement, 0, len(records))
	for _, record := range records {
		announcements = append(announcements, toDomainAnnouncement(record))
	}
	return announcements, nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, aid int64, draft domain.AnnouncementDraft) (domain.Announcement, error) {
	var updated models.Announcement

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.Announcement
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("aid = ?", aid).
			Take(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "announcement"}
		}
		if err != nil {
			return err
		}

		err = tx.Model(&record).Updates(map[string]any{
			"title":          draft.Title,
			"description":    draft.Description,
			"opening_time":   draft.OpeningTime,
			"autostart_time": draft.AutostartTime,
			"editing_time":   time.Now(),
		}).Error
		if err != nil {
			return err
		}

		return tx.Preload("Responses").Where("aid = ?", aid).Take(&updated).Error
	})
	if err != nil {
		return domain.Announcement{}, err
	}

	return toDomainAnnouncement(updated), nil
}

// Delete is idempotent: removing an absent announcement is a no-op.
func (r *AnnouncementRepository) Delete(ctx context.Context, aid int64) error {
	return r.db.WithContext(ctx).Delete(&models.Announcement{}, "aid = ?", aid).Error
}

// Transition moves the announcement through the lifecycle table. The
// read-validate-write section runs under a row lock so two concurrent
// transitions on the same announcement cannot both succeed.
func (r *AnnouncementRepository) Transition(ctx context.Context, aid int64, action domain.Action, closer string) (domain.Announcement, error) {
	var updated models.Announcement

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.Announcement
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("aid = ?", aid).
			Take(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "announcement"}
		}
		if err != nil {
			return err
		}

		next, err := domain.NextState(domain.AnnouncementState(record.State), action)
		if err != nil {
			return err
		}

		now := time.Now()
		err = tx.Model(&record).Updates(map[string]any{
			"state":        string(next),
			"closer_id":    closer,
			"closure_time": now,
			"editing_time": now,
		}).Error
		if err != nil {
			return err
		}

		return tx.Preload("Responses").Where("aid = ?", aid).Take(&updated).Error
	})
	if err != nil {
		return domain.Announcement{}, err
	}

	return toDomainAnnouncement(updated), nil
}

// UpsertResponse creates or replaces the participant's answer. The
// returned flag is true when a new response row was created.
func (r *AnnouncementRepository) UpsertResponse(ctx context.Context, aid int64, participant string, choice domain.ResponseChoice) (domain.Response, domain.Announcement, bool, error) {
	var (
		response     models.Response
		announcement models.Announcement
		created      bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("aid = ?", aid).Take(&announcement).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "announcement"}
		}
		if err != nil {
			return err
		}

		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("aid = ? AND partecipant_id = ?", aid, participant).
			Take(&response).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response = models.Response{
				AID:           aid,
				PartecipantID: participant,
				Choice:        string(choice),
			}
			if err := tx.Create(&response).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			if err := tx.Model(&response).Updates(map[string]any{
				"choice":       string(choice),
				"editing_time": time.Now(),
			}).Error; err != nil {
				return err
			}
		}

		return tx.Where("aid = ? AND partecipant_id = ?", aid, participant).
			Take(&response).Error
	})
	if err != nil {
		return domain.Response{}, domain.Announcement{}, false, err
	}

	return toDomainResponse(response), toDomainAnnouncement(announcement), created, nil
}

func toDomainAnnouncement(record models.Announcement) domain.Announcement {
	responses := make([]domain.Response, 0, len(record.Responses))
	for _, response := range record.Responses {
		responses = append(responses, toDomainResponse(response))
	}

	return domain.Announcement{
		AID:           record.AID,
		Title:         record.Title,
		Description:   record.Description,
		OpeningTime:   record.OpeningTime,
		AutostartTime: record.AutostartTime,
		CreatorID:     record.CreatorID,
		State:         domain.AnnouncementState(record.State),
		CreationTime:  record.CreationTime,
		EditingTime:   record.EditingTime,
		CloserID:      record.CloserID,
		ClosureTime:   record.ClosureTime,
		Responses:     responses,
	}
}

func toDomainResponse(record models.Response) domain.Response {
	return domain.Response{
		AID:           record.AID,
		PartecipantID: record.PartecipantID,
		Choice:        domain.ResponseChoice(record.Choice),
		PostingTime:   record.PostingTime,
		EditingTime:   record.EditingTime,
	}
}
