package ryglfg

import (
	"github.com/RYGhub/ryglfg/internal/domain"
)

// NewAnnouncementBasic builds the wire view of an announcement without
// its responses.
func NewAnnouncementBasic(announcement domain.Announcement) AnnouncementBasic {
	return AnnouncementBasic{
		AnnouncementEditable: AnnouncementEditable{
			Title:         announcement.Title,
			Description:   announcement.Description,
			OpeningTime:   announcement.OpeningTime,
			AutostartTime: announcement.AutostartTime,
		},
		AID:          announcement.AID,
		CreatorID:    announcement.CreatorID,
		State:        string(announcement.State),
		CreationTime: announcement.CreationTime,
		EditingTime:  announcement.EditingTime,
		CloserID:     announcement.CloserID,
		ClosureTime:  announcement.ClosureTime,
	}
}

func NewAnnouncementFull(announcement domain.Announcement) AnnouncementFull {
	responses := make([]ResponseBasic, 0, len(announcement.Responses))
	for _, response := range announcement.Responses {
		responses = append(responses, NewResponseBasic(response))
	}
	return AnnouncementFull{
		AnnouncementBasic: NewAnnouncementBasic(announcement),
		Responses:         responses,
	}
}

func NewResponseBasic(response domain.Response) ResponseBasic {
	return ResponseBasic{
		ResponseEditable: ResponseEditable{
			Choice: string(response.Choice),
		},
		AID:           response.AID,
		PartecipantID: response.PartecipantID,
		PostingTime:   response.PostingTime,
		EditingTime:   response.EditingTime,
	}
}

func NewResponseFull(response domain.Response, announcement domain.Announcement) ResponseFull {
	return ResponseFull{
		ResponseBasic: NewResponseBasic(response),
		Announcement:  NewAnnouncementBasic(announcement),
	}
}

func NewWebhookFull(webhook domain.Webhook) WebhookFull {
	return WebhookFull{
		WebhookEditable: WebhookEditable{
			URL:    webhook.URL,
			Format: string(webhook.Format),
		},
		WID: webhook.WID,
	}
}
