package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/autoimport/internal/dto"
)

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, dto.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}
