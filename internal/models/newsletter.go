package models

import "time"

type Newsletter struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Title    string    `gorm:"size:200;not null" json:"title"`
	SendDate time.Time `json:"send_date"`
	IsSent   bool      `gorm:"default:false" json:"is_sent"`

	Sections []NewsletterSection `gorm:"constraint:OnDelete:CASCADE;" json:"sections,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewsletterSection struct {
	ID uint `gorm:"primaryKey" json:"id"`

	NewsletterID uint   `gorm:"index;not null" json:"newsletter_id"`
	Subtitle     string `gorm:"size:200" json:"subtitle"`

	// Image is a base64 PNG data URL, downscaled on intake so newsletter
	// mails stay small.
	Image string `gorm:"type:text" json:"image"`
	Text  string `gorm:"type:text" json:"text"`
	Link  string `gorm:"size:512" json:"link"`
}

type NewsletterSubscriber struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Email     string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Type      string `gorm:"size:50" json:"type"`

	UnsubscribeToken string     `gorm:"size:64;index" json:"-"`
	SubscribedAt     time.Time  `json:"subscribed_at"`
	UnsubscribedAt   *time.Time `json:"unsubscribed_at"`
}
