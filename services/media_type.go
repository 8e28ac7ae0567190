package services

import (
	"fmt"
	"strings"

	"github.com/pixfeed/pixfeed/models"
)

var photoExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {}, "webp": {},
}

var videoExtensions = map[string]struct{}{
	"mp4": {}, "avi": {}, "mov": {}, "wmv": {}, "flv": {}, "webm": {},
}

// ClassifyMedia maps a filename to a media kind by its extension. Filenames
// without an extension fail with ErrInvalidFilename; extensions outside the
// photo and video sets fail with ErrUnsupportedMediaType.
func ClassifyMedia(filename string) (models.MediaType, error) {
	ext := fileExtension(filename)
	if ext == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	if _, ok := photoExtensions[ext]; ok {
		return models.MediaPhoto, nil
	}
	if _, ok := videoExtensions[ext]; ok {
		return models.MediaVideo, nil
	}
	return "", fmt.Errorf("%w: .%s", ErrUnsupportedMediaType, ext)
}

// fileExtension returns the lower-cased substring after the last dot, without
// the dot. Empty when the name has no dot or ends with one.
func fileExtension(filename string) string {
	dot := strings.LastIndexByte(filename, '.')
	if dot < 0 || dot == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[dot+1:])
}
