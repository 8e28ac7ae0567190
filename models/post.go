package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is the aggregate root for a piece of content: it exclusively owns its
// ordered MediaFile collection and its Comments. The author relation is an
// owning-side foreign key; a user's post list is a derived query.
type Post struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     uint        `gorm:"index;not null" json:"user_id"`
	Title      string      `gorm:"size:255;not null" json:"title"`
	Caption    string      `gorm:"type:text" json:"caption"`
	CreatedAt  time.Time   `json:"created_at"`
	User       User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	MediaFiles []MediaFile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"media_files"`
	Comments   []Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// BeforeCreate assigns the creation timestamp at persistence time.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return nil
}
