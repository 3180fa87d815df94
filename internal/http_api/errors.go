package http_api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fracta-city/fracta/internal/models"
)

// statusOf maps an application error kind to its HTTP status.
func statusOf(kind models.ErrorKind) int {
	switch kind {
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindUnauthenticated:
		return http.StatusUnauthorized
	case models.KindAuthorization:
		return http.StatusForbidden
	case models.KindCapacityExceeded, models.KindStateConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err. Internal details never reach the client.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var appErr *models.Error
	if !errors.As(err, &appErr) {
		kind := models.KindOf(err)
		appErr = &models.Error{Kind: kind, Message: string(kind), Err: err}
	}
	status := statusOf(appErr.Kind)

	body := gin.H{
		"success": false,
		"error":   appErr.Message,
		"kind":    appErr.Kind,
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		body["error"] = "internal server error"
	}
	if len(appErr.Codes) > 0 {
		body["codes"] = appErr.Codes
		body["reasons"] = appErr.Reasons
	}
	if appErr.Retryable() {
		body["retryable"] = true
	}
	c.JSON(status, body)
}

func (s *HTTPServer) badRequest(c *gin.Context, err error) {
	s.logger.Debug("Invalid request body", "error", err)
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request body: " + err.Error(),
		"kind":    models.KindValidation,
	})
}
