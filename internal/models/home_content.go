package models

import "time"

// HomeContent is the single hero block of the landing page. The table holds
// at most one row; creation of a second row is rejected at the handler level.
type HomeContent struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ImagePath   string `gorm:"size:255" json:"image_path"`
	WelcomeText string `gorm:"type:text" json:"welcome_text"`
	WelcomeLink string `gorm:"size:512" json:"welcome_link"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
