package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/sentio/internal/models"
)

// WriteError writes the standard error body
func WriteError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"status": "error",
		"error":  message,
	})
}

// WriteFailure maps a service error onto an HTTP status
func WriteFailure(c *gin.Context, err error) {
	WriteError(c, StatusFor(err), err.Error())
}

// StatusFor returns the HTTP status for a service error
func StatusFor(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, models.ErrInvalidFilter), errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAlertNotFound), errors.Is(err, models.ErrWatchlistEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrWatchlistEntryExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// QueryInt parses an integer query parameter, returning fallback when absent
// or malformed.
func QueryInt(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// QueryList splits a comma separated query parameter, dropping blanks
func QueryList(c *gin.Context, name string) []string {
	var out []string
	for _, part := range strings.Split(c.Query(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
