package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
)

// JSON sends a success payload as-is. The API contract is flat JSON,
// callers shape the body themselves.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// Message sends a {"message": ...} body at the given status.
func Message(c *gin.Context, status int, message string) {
	JSON(c, status, gin.H{"message": message})
}

// Created responds with HTTP 201 and a message body.
func Created(c *gin.Context, message string) {
	Message(c, http.StatusCreated, message)
}

// Error converts any error to its typed form and writes {"message": ...}
// at the mapped status. Internal root causes are never echoed to clients.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, gin.H{"message": appErr.Message})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
