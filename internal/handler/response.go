package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"donate/internal/gateway"
	"donate/internal/repository"
	"donate/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Internal failures are logged in detail but surfaced generically: storage
// and configuration state never leaks to the caller.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		log.Printf("internal error: %s %s: %v", c.Request.Method, c.FullPath(), err)
		if errors.Is(err, gateway.ErrMissingCredentials) {
			c.JSON(code, ErrorResponse{Error: "gateway unavailable"})
			return
		}
		c.JSON(code, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPayerRef),
		errors.Is(err, service.ErrInvalidDonationID),
		errors.Is(err, service.ErrInvalidDonationAmount),
		errors.Is(err, service.ErrInvalidStatusUpdate),
		errors.Is(err, gateway.ErrInvalidAmount):
		return http.StatusBadRequest

	// Signature failure on the inbound channel
	case errors.Is(err, gateway.ErrSignatureMismatch):
		return http.StatusUnauthorized

	// Conflict errors
	case errors.Is(err, service.ErrDonationCompleted):
		return http.StatusConflict

	// Default to internal server error (includes missing credentials,
	// which must read as a generic gateway failure to the caller)
	default:
		return http.StatusInternalServerError
	}
}
