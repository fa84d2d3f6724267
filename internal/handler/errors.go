package handler

import (
	"errors"
	"net/http"
	"strconv"

	"parley-chat/internal/services"
	"parley-chat/internal/transport/httpdto"
	parley_errors "parley-chat/pkg/errors"
	"parley-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps a service error onto the response envelope. Internal
// errors are logged and rendered without detail.
func writeError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.GetGlobalLogger().WithContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, httpdto.NewErrorResponse("internal server error", "INTERNAL_ERROR"))
		return
	}
	if fields := parley_errors.FieldErrors(err); fields != nil {
		c.JSON(status, httpdto.NewFieldErrorResponse("the given data was invalid", "VALIDATION_FAILED", fields))
		return
	}
	c.JSON(status, httpdto.NewErrorResponse(err.Error(), errorCode(err, status)))
}

func writeInvalidRequest(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, httpdto.NewFieldErrorResponse("invalid request", "INVALID_REQUEST", fields))
}

func errorCode(err error, status int) string {
	if errors.Is(err, parley_errors.ErrInvalidOperation) {
		return "INVALID_OPERATION"
	}
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// currentUserID reads the id stored by the auth middleware.
func currentUserID(c *gin.Context) (int64, bool) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	}
	return userID, ok
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("not found", "NOT_FOUND"))
		return 0, false
	}
	return id, true
}
