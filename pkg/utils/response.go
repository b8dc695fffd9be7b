package utils

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse writes a JSON error body. Used by the API routes and by
// middleware that rejects a request before any page can be rendered.
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	response := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		response["data"] = data
	}
	c.JSON(status, response)
}
