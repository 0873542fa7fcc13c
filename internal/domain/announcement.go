package domain

import "time"

// Announcement is a "Looking For Group" event posting.
type Announcement struct {
	AID           int64
	Title         string
	Description   string
	OpeningTime   time.Time
	AutostartTime time.Time
	CreatorID     string
	State         AnnouncementState
	CreationTime  time.Time
	EditingTime   time.Time
	CloserID      *string
	ClosureTime   *time.Time
	Responses     []Response
}

// AnnouncementDraft is the mutable portion of an announcement, used for
// both creation and full-replace edits.
type AnnouncementDraft struct {
	Title         string
	Description   string
	OpeningTime   time.Time
	AutostartTime time.Time
}

// AnnouncementFilter narrows and pages a listing. State nil means any.
type AnnouncementFilter struct {
	State  *AnnouncementState
	Limit  int
	Offset int
}

// Response is a participant's answer to an announcement. At most one
// exists per (announcement, participant) pair.
type Response struct {
	AID           int64
	PartecipantID string
	Choice        ResponseChoice
	PostingTime   time.Time
	EditingTime   time.Time
}

type ResponseChoice string

const (
	ChoiceAccepted  ResponseChoice = "ACCEPTED"
	ChoiceDeclined  ResponseChoice = "DECLINED"
	ChoiceUndecided ResponseChoice = "UNDECIDED"
)

func (c ResponseChoice) Valid() bool {
	switch c {
	case ChoiceAccepted, ChoiceDeclined, ChoiceUndecided:
		return true
	}
	return false
}
