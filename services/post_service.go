package services

import (
	"errors"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pixfeed/pixfeed/models"
)

// MaxMediaFilesPerPost caps the media collection of a single post.
const MaxMediaFilesPerPost = 20

// MediaUpload is one entry of a multipart upload. A nil entry, a zero Size or
// a nil Content marks a placeholder that is skipped without counting against
// the non-empty requirement.
type MediaUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

func (u *MediaUpload) empty() bool {
	return u == nil || u.Size == 0 || u.Content == nil
}

// PostService orchestrates the post aggregate: the post record plus its
// ordered media collection are committed in a single transaction.
type PostService struct {
	db    *gorm.DB
	store *MediaStore
	log   *zap.SugaredLogger
}

// NewPostService creates a PostService.
func NewPostService(db *gorm.DB, store *MediaStore, log *zap.SugaredLogger) *PostService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PostService{db: db, store: store, log: log}
}

// CreatePost validates the upload set, persists the post, then classifies,
// stores and attaches each non-empty file in input order with dense zero-based
// positions. The whole aggregate commits atomically: a failure on any file
// rolls back every database write. Files already copied to the media store by
// a rolled-back call are left behind for the orphan sweeper.
func (s *PostService) CreatePost(author *models.User, title, caption string, uploads []*MediaUpload) (*models.Post, error) {
	if len(uploads) > MaxMediaFilesPerPost {
		return nil, ErrTooManyMediaFiles
	}
	if len(uploads) == 0 {
		return nil, ErrEmptyMediaSet
	}

	post := &models.Post{
		UserID:  author.ID,
		Title:   title,
		Caption: caption,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}

		for _, up := range uploads {
			if up.empty() {
				continue
			}
			kind, err := ClassifyMedia(up.Filename)
			if err != nil {
				return err
			}
			stored, err := s.store.Store(up.Content, up.Filename, kind)
			if err != nil {
				return err
			}
			if len(post.MediaFiles) >= MaxMediaFilesPerPost {
				return ErrTooManyMediaFiles
			}
			media := models.MediaFile{
				PostID:    post.ID,
				FilePath:  stored,
				MediaType: kind,
				Position:  len(post.MediaFiles),
			}
			if err := tx.Create(&media).Error; err != nil {
				return err
			}
			post.MediaFiles = append(post.MediaFiles, media)
		}

		if len(post.MediaFiles) == 0 {
			return ErrNoValidMediaFiles
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	post.User = *author
	s.log.Infow("post created", "post_id", post.ID, "user_id", author.ID, "media_count", len(post.MediaFiles))
	return post, nil
}

// GetAllPosts returns the feed, newest first.
func (s *PostService) GetAllPosts() ([]models.Post, error) {
	var posts []models.Post
	err := s.withAssociations(s.db).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// GetPostsByUser returns a user's posts, newest first.
func (s *PostService) GetPostsByUser(user *models.User) ([]models.Post, error) {
	var posts []models.Post
	err := s.withAssociations(s.db).
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// GetPostByID loads one post with its author and ordered media.
func (s *PostService) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := s.withAssociations(s.db).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// CountByUser returns how many posts a user has created.
func (s *PostService) CountByUser(user *models.User) (int64, error) {
	var n int64
	err := s.db.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&n).Error
	return n, err
}

// DeletePost removes a post together with its media records and comments in
// one transaction. The cascade is applied in the application so it holds on
// every driver. Stored files are removed best-effort after commit.
func (s *PostService) DeletePost(id uint) error {
	var media []models.MediaFile

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if err := tx.Where("post_id = ?", id).Find(&media).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.MediaFile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return err
	}

	for _, m := range media {
		if err := s.store.Remove(m.FilePath); err != nil {
			s.log.Warnw("failed to remove media file", "path", m.FilePath, "error", err)
		}
	}
	s.log.Infow("post deleted", "post_id", id, "media_count", len(media))
	return nil
}

func (s *PostService) withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("MediaFiles", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}
