package controllers

import (
	"errors"

	"fanhub/tools"

	"github.com/gin-gonic/gin"
)

func RespondError(c *gin.Context, msg string, code int) {
	if code >= 500 {
		tools.CaptureErrorWithExtra(errors.New(msg), "path", c.Request.URL.Path)
	}
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(201, payload)
}
