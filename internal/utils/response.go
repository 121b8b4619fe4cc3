package utils

import "github.com/gin-gonic/gin"

// Error writes the JSON error envelope used by every route handler.
func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}
