package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pixfeed/pixfeed/services"
	"github.com/pixfeed/pixfeed/utils"
)

const (
	feedCacheKey          = "cache:posts:feed"
	postDetailCachePrefix = "cache:post:detail:"
	userPostsCachePrefix  = "cache:user:posts:"
)

// PostController manages the post aggregate endpoints.
type PostController struct {
	posts          *services.PostService
	users          *services.UserService
	mapper         *DTOMapper
	maxUploadBytes int64
}

// NewPostController creates a PostController.
func NewPostController(posts *services.PostService, users *services.UserService, mapper *DTOMapper, maxUploadMB int) *PostController {
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &PostController{
		posts:          posts,
		users:          users,
		mapper:         mapper,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// CreatePost accepts a multipart form with title, caption, authorId and a
// mediaFiles[] array, and commits the whole aggregate in one step.
func (p *PostController) CreatePost(ctx *gin.Context) {
	title := utils.Sanitize(strings.TrimSpace(ctx.PostForm("title")))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, "title cannot be empty")
		return
	}
	caption := utils.Sanitize(ctx.PostForm("caption"))

	authorID, err := parseID(ctx.PostForm("authorId"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid authorId")
		return
	}
	author, err := p.users.FindByID(authorID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid multipart form")
		return
	}
	headers := form.File["mediaFiles"]

	uploads := make([]*services.MediaUpload, 0, len(headers))
	for _, fh := range headers {
		if fh == nil || fh.Size == 0 {
			// Placeholder entry, skipped by the service but kept so the
			// raw array length is validated as submitted.
			uploads = append(uploads, nil)
			continue
		}
		if fh.Size > p.maxUploadBytes {
			utils.Error(ctx, http.StatusBadRequest,
				fmt.Sprintf("file %s exceeds the %dMB limit", fh.Filename, p.maxUploadBytes>>20))
			return
		}
		f, err := fh.Open()
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, "unreadable file in upload")
			return
		}
		defer f.Close()
		uploads = append(uploads, &services.MediaUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		})
	}

	post, err := p.posts.CreatePost(author, title, caption, uploads)
	if err != nil {
		p.respondCreateError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(feedCacheKey)
	utils.InvalidateByPrefix(userPostsCachePrefix + strconv.FormatUint(uint64(author.ID), 10))

	ctx.JSON(http.StatusCreated, p.mapper.PostDTO(post))
}

func (p *PostController) respondCreateError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTooManyMediaFiles),
		errors.Is(err, services.ErrEmptyMediaSet),
		errors.Is(err, services.ErrNoValidMediaFiles),
		errors.Is(err, services.ErrUnsupportedMediaType),
		errors.Is(err, services.ErrInvalidFilename):
		utils.Error(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrStorage):
		if utils.Sugar != nil {
			utils.Sugar.Errorw("media storage failure", "error", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to store media files")
	default:
		utils.Internal(ctx, err)
	}
}

// ListPosts returns the feed, newest first. Internal failures degrade to an
// empty feed rather than an error page.
func (p *PostController) ListPosts(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(feedCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.posts.GetAllPosts()
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorw("failed to load feed", "error", err)
		}
		ctx.JSON(http.StatusOK, []PostDTO{})
		return
	}

	dtos := p.mapper.PostDTOs(posts)
	if b, err := json.Marshal(dtos); err == nil {
		utils.CacheSetBytes(feedCacheKey, b, time.Hour)
	}
	ctx.JSON(http.StatusOK, dtos)
}

// GetPost returns a single post by id.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid post id")
		return
	}

	cacheKey := postDetailCachePrefix + strconv.FormatUint(uint64(id), 10)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	post, err := p.posts.GetPostByID(id)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			utils.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}

	dto := p.mapper.PostDTO(post)
	utils.CacheSetJSON(cacheKey, dto, time.Hour)
	ctx.JSON(http.StatusOK, dto)
}

// ListUserPosts returns one user's posts, newest first.
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	userID, err := parseID(ctx.Param("userId"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := p.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}

	posts, err := p.posts.GetPostsByUser(user)
	if err != nil {
		utils.Internal(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, p.mapper.PostDTOs(posts))
}

// DeletePost removes a post and cascades to its media and comments.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := p.posts.DeletePost(id); err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			utils.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}

	utils.InvalidateByPrefix(feedCacheKey)
	utils.InvalidateByPrefix(postDetailCachePrefix + strconv.FormatUint(uint64(id), 10))
	utils.InvalidateByPrefix(userPostsCachePrefix)

	ctx.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
