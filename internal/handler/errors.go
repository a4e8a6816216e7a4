package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/api"
	"go.uber.org/zap"
)

// writeError maps a service error onto the HTTP error body. Unknown errors
// are logged and reported as INTERNAL_ERROR without details.
func writeError(c *gin.Context, logger *zap.Logger, err error, action string) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, service.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("failed to "+action,
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("user_id", c.GetString("user_id")),
		)
		c.JSON(status, api.ErrorResponse{
			Code:    code,
			Message: "Failed to " + action,
		})
		return
	}

	logger.Debug("request rejected",
		zap.String("code", code),
		zap.String("action", action),
		zap.Error(err),
	)
	c.JSON(status, api.ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

// badRequest reports a malformed body or parameter
func badRequest(c *gin.Context, message string, err error) {
	body := api.ErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
	if err != nil {
		body.Details = stringPtr(err.Error())
	}
	c.JSON(http.StatusBadRequest, body)
}
