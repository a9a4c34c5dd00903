package models

import "time"

type GalleryImage struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ImagePath string `gorm:"size:255;not null" json:"image_path"`

	CreatedAt time.Time `json:"created_at"`
}
