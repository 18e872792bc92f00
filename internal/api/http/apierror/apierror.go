// Package apierror renders error responses for the gin handlers.
package apierror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sciome/bmdexpress-web/internal/apperr"
)

// Response is the JSON error body returned by every endpoint.
type Response struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(err error) int {
	switch apperr.Kind(err) {
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrValidation, apperr.ErrDecode:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Write aborts the request with the status derived from err.
func Write(c *gin.Context, err error) {
	Abort(c, StatusFor(err), err.Error())
}

// Abort aborts the request with status and message.
func Abort(c *gin.Context, status int, message string) {
	if status >= http.StatusInternalServerError {
		_ = c.Error(errors.New(message))
	}
	c.AbortWithStatusJSON(status, Response{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
		Path:    c.Request.URL.Path,
	})
}
