package services

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pixfeed/pixfeed/models"
	"github.com/pixfeed/pixfeed/utils"
)

// UserService registers users and resolves them for the other services.
type UserService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// NewUserService creates a UserService.
func NewUserService(db *gorm.DB, log *zap.SugaredLogger) *UserService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &UserService{db: db, log: log}
}

// CreateUser registers a new account with a bcrypt password hash. A username
// that is already taken fails with ErrUsernameTaken.
func (s *UserService) CreateUser(username, password string) (*models.User, error) {
	var existing models.User
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	s.log.Infow("user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// FindByUsername looks a user up by exact username.
func (s *UserService) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByID looks a user up by primary key.
func (s *UserService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
