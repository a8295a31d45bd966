package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/notification"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// sentinelCode maps a known sentinel error to an API error code
func sentinelCode(err error) (string, bool) {
	switch {
	case errors.Is(err, distribution.ErrDestinationNotFound),
		errors.Is(err, distribution.ErrSyncRecordNotFound),
		errors.Is(err, distribution.ErrVariantNotFound),
		errors.Is(err, distribution.ErrAssignmentNotFound),
		errors.Is(err, distribution.ErrOverrideNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		return dto.ErrCodeNotFound, true
	case errors.Is(err, distribution.ErrDestinationDisconnected),
		errors.Is(err, distribution.ErrNoClientForDestination):
		return dto.ErrCodeDestinationDisconnected, true
	case errors.Is(err, distribution.ErrNegativeQuantity):
		return dto.ErrCodeInvalidInput, true
	case errors.Is(err, distribution.ErrRemoteAuthFailed):
		return dto.ErrCodeRemoteAuthFailed, true
	case errors.Is(err, distribution.ErrRemoteRateLimited):
		return dto.ErrCodeRemoteRateLimited, true
	case errors.Is(err, distribution.ErrRemoteRequestFailed),
		errors.Is(err, distribution.ErrRemoteProductNotFound),
		errors.Is(err, distribution.ErrRemoteInvalidResponse):
		return dto.ErrCodeRemoteFailed, true
	}
	return "", false
}

// HandleError converts domain and sentinel errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, domainErr.Message, requestID))
		return
	}

	if code, ok := sentinelCode(err); ok {
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, err.Error(), requestID))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
