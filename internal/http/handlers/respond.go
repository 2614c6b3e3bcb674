package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/todovault/todovault/internal/http/middlewares"
)

// Every response body carries a human-readable message; existing clients
// inspect the text, so the wording is part of the contract even where the
// status code now tells the same story.

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusNotFound, message)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondMessage(ctx, http.StatusConflict, message)
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"message":   message,
		"requestId": requestIDFrom(ctx),
		"details":   details,
	})
}

func RespondInternal(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"message":   message,
		"requestId": requestIDFrom(ctx),
	})
}
