package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

func respond(c *gin.Context, status int, success bool, message string, data interface{}) {
	c.JSON(status, Response{
		Success:   success,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	respond(c, status, true, message, data)
}

func respondError(c *gin.Context, status int, message string) {
	respond(c, status, false, message, nil)
}

func respondErrorData(c *gin.Context, status int, message string, data interface{}) {
	respond(c, status, false, message, data)
}

func abortWith(c *gin.Context, status int, message string) {
	c.Abort()
	respondError(c, status, message)
}
