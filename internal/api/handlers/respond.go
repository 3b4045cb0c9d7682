package handlers

import (
	"errors"
	"net/http"

	"github.com/brunogcp/SafeGuard/internal/apperr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps classified failures onto status codes. Unclassified
// errors are logged and surfaced as a bare 500; classified ones expose only
// their message, never the wrapped cause.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var status int
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindInvalid:
		status = http.StatusBadRequest
	case apperr.KindUnavailable:
		status = http.StatusServiceUnavailable
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	msg := err.Error()
	var e *apperr.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	c.JSON(status, gin.H{"error": msg})
}
