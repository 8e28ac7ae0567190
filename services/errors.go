package services

import "errors"

// Business errors raised by the service layer. Controllers translate them to
// HTTP status codes at the boundary; nothing below the boundary knows about
// status codes.
var (
	ErrEmptyMediaSet        = errors.New("post must contain at least one media file")
	ErrTooManyMediaFiles    = errors.New("too many media files: at most 20 per post")
	ErrNoValidMediaFiles    = errors.New("no valid media files in upload")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidFilename      = errors.New("filename has no extension")
	ErrStorage              = errors.New("storage write failed")

	ErrPostNotFound    = errors.New("post not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrUsernameTaken = errors.New("username already exists")
	ErrEmptyMessage  = errors.New("comment message cannot be empty")
)
