package models

import "time"

// Logo stores the site logo as base64 so mails can embed it without a second
// round trip. Single row, replaced on upload.
type Logo struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Data string `gorm:"type:text;not null" json:"data"`

	UpdatedAt time.Time `json:"updated_at"`
}
