package models

import "time"

// OpeningTime is one stored time range for one weekday. StartTime and EndTime
// are either both set ("HH:MM" or "HH:MM:SS") or both nil, which marks the
// weekday as closed. Rows are never updated in place, admins delete and
// re-add blocks.
type OpeningTime struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Weekday  string  `gorm:"size:3;not null" json:"weekday"`
	Category *string `gorm:"size:100" json:"category"`

	StartTime *string `gorm:"size:8" json:"start_time"`
	EndTime   *string `gorm:"size:8" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
}
