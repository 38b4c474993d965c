// Package handler implements the HTTP handlers of the sync engine API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/shipdesk/backend/internal/domain/shared"
	"github.com/shipdesk/backend/internal/interfaces/http/dto"
	"github.com/shipdesk/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessPage sends one page of a listing
func (h *BaseHandler) SuccessPage(c *gin.Context, data any, page, count int) {
	c.JSON(http.StatusOK, dto.NewPageResponse(data, page, count))
}

// Accepted sends a 202 response for work handed off to the background queue
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
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

// ServiceUnavailable sends a 503 response
func (h *BaseHandler) ServiceUnavailable(c *gin.Context, code, message string) {
	h.Error(c, http.StatusServiceUnavailable, code, message)
}

// BindError answers a failed ShouldBind call: validator errors get field details,
// anything else (malformed JSON, wrong types) is a plain 400.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		middleware.HandleValidationError(c, err)
		return
	}
	h.BadRequest(c, "Malformed request: "+err.Error())
}

// HandleError converts errors to HTTP responses. Domain errors map to the status of
// their code; client errors carry the full message, server-side ones only the
// domain message. Anything else is a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		message := domainErr.Message
		if status < http.StatusInternalServerError {
			message = err.Error()
		}
		h.Error(c, status, code, message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
