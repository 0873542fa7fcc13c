package ryglfg

import (
	"time"
)

// AnnouncementEditable is the set of announcement fields a client may set.
type AnnouncementEditable struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	OpeningTime   time.Time `json:"opening_time"`
	AutostartTime time.Time `json:"autostart_time"`
}

// AnnouncementBasic is an announcement without its responses.
type AnnouncementBasic struct {
	AnnouncementEditable
	AID          int64      `json:"aid"`
	CreatorID    string     `json:"creator_id"`
	State        string     `json:"state"`
	CreationTime time.Time  `json:"creation_time"`
	EditingTime  time.Time  `json:"editing_time"`
	CloserID     *string    `json:"closer_id"`
	ClosureTime  *time.Time `json:"closure_time"`
}

// AnnouncementFull is the denormalized view sent to clients and webhooks.
type AnnouncementFull struct {
	AnnouncementBasic
	Responses []ResponseBasic `json:"responses"`
}

type ResponseEditable struct {
	Choice string `json:"choice"`
}

// ResponseBasic keeps the original wire spelling of "partecipant".
type ResponseBasic struct {
	ResponseEditable
	AID           int64     `json:"aid"`
	PartecipantID string    `json:"partecipant_id"`
	PostingTime   time.Time `json:"posting_time"`
	EditingTime   time.Time `json:"editing_time"`
}

type ResponseFull struct {
	ResponseBasic
	Announcement AnnouncementBasic `json:"announcement"`
}

type WebhookEditable struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

type WebhookFull struct {
	WebhookEditable
	WID int64 `json:"wid"`
}

// AnnouncementEvent is the webhook envelope for create/start/cancel.
type AnnouncementEvent struct {
	Type  string           `json:"type"`
	Event AnnouncementFull `json:"event"`
}

// ResponseEvent is the webhook envelope for answers. Type is "new" for a
// first answer and "change" for an edited one.
type ResponseEvent struct {
	What  string       `json:"what"`
	Type  string       `json:"type"`
	Event ResponseFull `json:"event"`
}

// TestEvent is the body sent by the webhook test endpoint.
type TestEvent struct {
	Type string `json:"type"`
}

// Claims is what the /auth endpoint echoes back to the caller.
type Claims struct {
	Subject     string   `json:"sub"`
	Permissions []string `json:"permissions"`
}
