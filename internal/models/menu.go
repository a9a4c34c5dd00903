package models

import "time"

// MenuCard is a named, optionally time-bounded menu variant ("Speisekarte",
// "Sommerkarte", ...). PdfPath is only set after at least one successful
// generation; LastGeneratedAt drives the staleness check of the PDF
// regeneration scheduler.
type MenuCard struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name              string     `gorm:"size:100;not null" json:"name"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	IncludeInMainMenu bool       `gorm:"default:false" json:"include_in_main_menu"`

	PdfPath         *string    `gorm:"size:255" json:"pdf_path"`
	LastGeneratedAt *time.Time `json:"last_generated_at"`

	Categories []MenuCategory `gorm:"constraint:OnDelete:CASCADE;" json:"categories,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MenuCategory struct {
	ID uint `gorm:"primaryKey" json:"id"`

	MenuCardID uint   `gorm:"index;not null" json:"menu_card_id"`
	Name       string `gorm:"size:100;not null" json:"name"`

	Items []MenuItem `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE;" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MenuItem struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CategoryID uint `gorm:"index;not null" json:"category_id"`

	// Number is the printed ordinal on the card; assigned max+1 within the
	// category when not provided.
	Number      int     `json:"number"`
	Title       string  `gorm:"size:150;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`

	ActiveFrom *time.Time `json:"active_from"`
	ActiveTo   *time.Time `json:"active_to"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
