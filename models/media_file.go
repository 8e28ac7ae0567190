package models

// MediaType distinguishes stored photos from videos.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// MediaFile is a stored-file reference owned by exactly one post. Position is
// dense and zero-based within the post's collection, assigned in append order.
type MediaFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_media_post_position" json:"post_id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"`
	MediaType MediaType `gorm:"size:16;not null" json:"media_type"`
	Position  int       `gorm:"not null;uniqueIndex:idx_media_post_position" json:"position"`
}
