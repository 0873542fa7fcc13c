package models

import (
	"time"
)

type Announcement struct {
	AID           int64      `json:"aid" gorm:"primaryKey;autoIncrement"`
	Title         string     `json:"title" gorm:"type:text;not null"`
	Description   string     `json:"description" gorm:"type:text;not null"`
	OpeningTime   time.Time  `json:"opening_time" gorm:"type:timestamp with time zone;not null"`
	AutostartTime time.Time  `json:"autostart_time" gorm:"type:timestamp with time zone;not null;index"`
	CreatorID     string     `json:"creator_id" gorm:"type:text;not null;index"`
	State         string     `json:"state" gorm:"type:text;not null;default:'LOOKING_FOR_GROUP';index"`
	CreationTime  time.Time  `json:"creation_time" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	EditingTime   time.Time  `json:"editing_time" gorm:"autoUpdateTime"`
	CloserID      *string    `json:"closer_id" gorm:"type:text"`
	ClosureTime   *time.Time `json:"closure_time" gorm:"type:timestamp with time zone"`
	Responses     []Response `json:"responses" gorm:"foreignKey:AID;references:AID;constraint:OnDelete:CASCADE;"`
}

type Response struct {
	AID           int64     `json:"aid" gorm:"primaryKey;autoIncrement:false"`
	PartecipantID string    `json:"partecipant_id" gorm:"type:text;primaryKey"`
	Choice        string    `json:"choice" gorm:"type:text;not null"`
	PostingTime   time.Time `json:"posting_time" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	EditingTime   time.Time `json:"editing_time" gorm:"autoUpdateTime"`
}

type Webhook struct {
	WID    int64  `json:"wid" gorm:"primaryKey;autoIncrement"`
	URL    string `json:"url" gorm:"type:text;not null"`
	Format string `json:"format" gorm:"type:text;not null;default:'ryglfg'"`
}
