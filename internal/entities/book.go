package entities

import "time"

// Book is a single catalog record. Title and author are required; genre and
// year are free-form and optional.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"index;size:512;not null" json:"title"`
	Author    string    `gorm:"index;size:256;not null" json:"author"`
	Genre     string    `gorm:"size:128" json:"genre,omitempty"`
	Year      string    `gorm:"size:16" json:"year,omitempty"` // Text so LIKE search works on every driver
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}
