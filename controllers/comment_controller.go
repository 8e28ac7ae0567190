package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pixfeed/pixfeed/models"
	"github.com/pixfeed/pixfeed/services"
	"github.com/pixfeed/pixfeed/utils"
)

// CommentController manages comment endpoints.
type CommentController struct {
	comments *services.CommentService
	posts    *services.PostService
	users    *services.UserService
	mapper   *DTOMapper
}

// NewCommentController creates a CommentController.
func NewCommentController(comments *services.CommentService, posts *services.PostService, users *services.UserService, mapper *DTOMapper) *CommentController {
	return &CommentController{comments: comments, posts: posts, users: users, mapper: mapper}
}

// CreateComment links an author comment to a post.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		Message  string `json:"message"`
		AuthorID uint   `json:"authorId" binding:"required"`
		PostID   uint   `json:"postId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	author, err := c.users.FindByID(req.AuthorID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}
	post, err := c.posts.GetPostByID(req.PostID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			utils.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}

	comment, err := c.comments.CreateComment(author, post, utils.Sanitize(req.Message))
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			utils.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}

	utils.InvalidateByPrefix(postDetailCachePrefix + strconv.FormatUint(uint64(post.ID), 10))

	ctx.JSON(http.StatusCreated, c.mapper.CommentDTO(comment))
}

// ListByPost returns a post's comments, newest first.
func (c *CommentController) ListByPost(ctx *gin.Context) {
	post, ok := c.resolvePost(ctx)
	if !ok {
		return
	}
	comments, err := c.comments.GetCommentsByPost(post)
	if err != nil {
		utils.Internal(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.mapper.CommentDTOs(comments))
}

// CountByPost returns how many comments a post has.
func (c *CommentController) CountByPost(ctx *gin.Context) {
	post, ok := c.resolvePost(ctx)
	if !ok {
		return
	}
	count, err := c.comments.CountByPost(post)
	if err != nil {
		utils.Internal(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"postId": post.ID, "commentCount": count})
}

// ListByUser returns a user's comments, newest first.
func (c *CommentController) ListByUser(ctx *gin.Context) {
	userID, err := parseID(ctx.Param("userId"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := c.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}
	comments, err := c.comments.GetCommentsByUser(user)
	if err != nil {
		utils.Internal(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.mapper.CommentDTOs(comments))
}

// DeleteComment removes one comment by id.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid comment id")
		return
	}
	if err := c.comments.DeleteComment(id); err != nil {
		if errors.Is(err, services.ErrCommentNotFound) {
			utils.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

func (c *CommentController) resolvePost(ctx *gin.Context) (*models.Post, bool) {
	postID, err := parseID(ctx.Param("postId"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid post id")
		return nil, false
	}
	post, err := c.posts.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			utils.Error(ctx, http.StatusNotFound, err.Error())
			return nil, false
		}
		utils.Internal(ctx, err)
		return nil, false
	}
	return post, true
}
