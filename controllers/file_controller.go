package controllers

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pixfeed/pixfeed/services"
	"github.com/pixfeed/pixfeed/utils"
)

// FileController serves stored media back to clients, translating a stored
// relative path into bytes with an inferred content type.
type FileController struct {
	store *services.MediaStore
}

// NewFileController creates a FileController.
func NewFileController(store *services.MediaStore) *FileController {
	return &FileController{store: store}
}

// Serve responds with the file addressed by the wildcard path, or 404 when
// the path does not resolve to an existing file inside the store.
func (f *FileController) Serve(ctx *gin.Context) {
	rel := strings.TrimPrefix(ctx.Param("filepath"), "/")

	full, err := f.store.Resolve(rel)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, "file not found")
		return
	}

	ctx.Header("Content-Type", contentTypeFor(rel))
	ctx.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(rel)))
	ctx.File(full)
}

// contentTypeFor maps a file extension to the MIME type browsers need to
// render photos and videos inline.
func contentTypeFor(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "webp":
		return "image/webp"
	case "mp4":
		return "video/mp4"
	case "avi":
		return "video/x-msvideo"
	case "mov":
		return "video/quicktime"
	case "wmv":
		return "video/x-ms-wmv"
	case "flv":
		return "video/x-flv"
	case "webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
