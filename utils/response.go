package utils

import "github.com/gin-gonic/gin"

// Error writes the uniform failure body with the given status code.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

// Internal logs the underlying error and answers with a generic 500 body so
// internal details never reach an untrusted caller.
func Internal(ctx *gin.Context, err error) {
	if Sugar != nil {
		Sugar.Errorw("internal error", "path", ctx.Request.URL.Path, "error", err)
	}
	Error(ctx, 500, "internal server error")
}
