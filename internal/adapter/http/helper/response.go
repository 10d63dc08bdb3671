package helper

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todolist/internal/core/domain"
	"todolist/internal/core/model/response"
)

func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, response.ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func SendBadRequestError(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

func SendInternalError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTodoNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// SendServiceError answers 404 for missing todos and 500 with message for
// everything else.
func SendServiceError(c *gin.Context, err error, message string) {
	status := StatusFor(err)

	if status == http.StatusNotFound {
		SendNotFoundError(c, domain.ErrTodoNotFound.Error())
		return
	}

	SendError(c, status, message)
}

func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// SendActionResult answers a form action: JSON for clients that accept it,
// a 303 back to location otherwise.
func SendActionResult(c *gin.Context, result response.ActionResult, location string) {
	if WantsJSON(c) || location == "" {
		c.JSON(http.StatusOK, result)
		return
	}

	c.Redirect(http.StatusSeeOther, location)
}

func SendActionError(c *gin.Context, statusCode int, message string) {
	if WantsJSON(c) {
		c.JSON(statusCode, response.ActionResult{Success: false, Error: message})
		return
	}

	c.String(statusCode, message)
}
