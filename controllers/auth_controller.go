package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pixfeed/pixfeed/services"
	"github.com/pixfeed/pixfeed/utils"
)

// AuthController handles registration and login.
type AuthController struct {
	users *services.UserService
}

// NewAuthController creates an AuthController.
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// Register creates a local account with a bcrypt-hashed password.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Password string `json:"password" binding:"required,min=6,max=72"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, "username cannot be empty")
		return
	}

	user, err := a.users.CreateUser(username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			utils.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}
		utils.Internal(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"userId":   user.ID,
		"username": user.Username,
	})
}

// Login verifies credentials against the stored hash.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := a.users.FindByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, "invalid username or password")
			return
		}
		utils.Internal(ctx, err)
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "invalid username or password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"userId":   user.ID,
		"username": user.Username,
	})
}
