package controllers

import (
	"time"

	"github.com/pixfeed/pixfeed/models"
)

// MediaFileDTO is the client-facing shape of one stored media file.
type MediaFileDTO struct {
	ID        uint             `json:"id"`
	FileURL   string           `json:"fileUrl"`
	MediaType models.MediaType `json:"mediaType"`
	Position  int              `json:"position"`
}

// PostDTO is the client-facing shape of a post with its ordered media.
type PostDTO struct {
	ID             uint           `json:"id"`
	Title          string         `json:"title"`
	Caption        string         `json:"caption"`
	CreatedDate    time.Time      `json:"createdDate"`
	AuthorID       uint           `json:"authorId"`
	AuthorUsername string         `json:"authorUsername"`
	MediaFiles     []MediaFileDTO `json:"mediaFiles"`
}

// CommentDTO is the client-facing shape of a comment.
type CommentDTO struct {
	ID             uint      `json:"id"`
	Message        string    `json:"message"`
	CreatedDate    time.Time `json:"createdDate"`
	PostID         uint      `json:"postId"`
	AuthorID       uint      `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
}

// DTOMapper converts persisted records into response shapes. Stored relative
// file paths become retrievable URLs under the file-serving route.
type DTOMapper struct {
	filePrefix string
}

// NewDTOMapper creates a mapper using prefix as the file route segment,
// e.g. "/api/files/".
func NewDTOMapper(prefix string) *DTOMapper {
	return &DTOMapper{filePrefix: prefix}
}

// MediaFileDTO maps one media record.
func (m *DTOMapper) MediaFileDTO(media models.MediaFile) MediaFileDTO {
	return MediaFileDTO{
		ID:        media.ID,
		FileURL:   m.filePrefix + media.FilePath,
		MediaType: media.MediaType,
		Position:  media.Position,
	}
}

// PostDTO maps a post with its author and media collection.
func (m *DTOMapper) PostDTO(post *models.Post) PostDTO {
	mediaDTOs := make([]MediaFileDTO, 0, len(post.MediaFiles))
	for _, media := range post.MediaFiles {
		mediaDTOs = append(mediaDTOs, m.MediaFileDTO(media))
	}
	return PostDTO{
		ID:             post.ID,
		Title:          post.Title,
		Caption:        post.Caption,
		CreatedDate:    post.CreatedAt,
		AuthorID:       post.UserID,
		AuthorUsername: post.User.Username,
		MediaFiles:     mediaDTOs,
	}
}

// PostDTOs maps a slice of posts, never returning nil so empty feeds encode
// as [] rather than null.
func (m *DTOMapper) PostDTOs(posts []models.Post) []PostDTO {
	dtos := make([]PostDTO, 0, len(posts))
	for i := range posts {
		dtos = append(dtos, m.PostDTO(&posts[i]))
	}
	return dtos
}

// CommentDTO maps one comment.
func (m *DTOMapper) CommentDTO(comment *models.Comment) CommentDTO {
	return CommentDTO{
		ID:             comment.ID,
		Message:        comment.Message,
		CreatedDate:    comment.CreatedAt,
		PostID:         comment.PostID,
		AuthorID:       comment.UserID,
		AuthorUsername: comment.User.Username,
	}
}

// CommentDTOs maps a slice of comments, never returning nil.
func (m *DTOMapper) CommentDTOs(comments []models.Comment) []CommentDTO {
	dtos := make([]CommentDTO, 0, len(comments))
	for i := range comments {
		dtos = append(dtos, m.CommentDTO(&comments[i]))
	}
	return dtos
}
