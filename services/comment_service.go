package services

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pixfeed/pixfeed/models"
)

// MaxCommentLength bounds a single comment message.
const MaxCommentLength = 2000

// CommentService creates, lists and deletes comments scoped to posts and users.
type CommentService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// NewCommentService creates a CommentService.
func NewCommentService(db *gorm.DB, log *zap.SugaredLogger) *CommentService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CommentService{db: db, log: log}
}

// CreateComment persists a comment linking author and post. Blank messages
// fail with ErrEmptyMessage; overly long ones are truncated to the bound.
func (s *CommentService) CreateComment(author *models.User, post *models.Post, message string) (*models.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len(message) > MaxCommentLength {
		message = message[:MaxCommentLength]
	}

	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  author.ID,
		Message: message,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}
	comment.User = *author
	s.log.Infow("comment created", "comment_id", comment.ID, "post_id", post.ID, "user_id", author.ID)
	return comment, nil
}

// GetCommentsByPost returns a post's comments, newest first.
func (s *CommentService) GetCommentsByPost(post *models.Post) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Preload("User").
		Where("post_id = ?", post.ID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// GetCommentsByUser returns a user's comments, newest first.
func (s *CommentService) GetCommentsByUser(user *models.User) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Preload("User").
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// CountByPost returns how many comments a post has.
func (s *CommentService) CountByPost(post *models.Post) (int64, error) {
	var n int64
	err := s.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&n).Error
	return n, err
}

// DeleteComment removes one comment by id.
func (s *CommentService) DeleteComment(id uint) error {
	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if err := s.db.Delete(&comment).Error; err != nil {
		return err
	}
	s.log.Infow("comment deleted", "comment_id", id, "post_id", comment.PostID)
	return nil
}
