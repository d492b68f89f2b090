// Package handler holds the gin handlers for the public, supporter, admin
// and webhook routes.
package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	appshared "github.com/treeofhope/backend/internal/application/shared"
	"github.com/treeofhope/backend/internal/domain/shared"
	"github.com/treeofhope/backend/internal/infrastructure/logger"
	"github.com/treeofhope/backend/internal/interfaces/http/dto"
	"github.com/treeofhope/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler carries the response and binding helpers shared by handlers
type BaseHandler struct{}

func requestID(c *gin.Context) string {
	if id := c.GetString(logger.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

func (h *BaseHandler) actor(c *gin.Context) appshared.Actor {
	return middleware.GetActor(c)
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// ErrorWithCode writes an error envelope with the status mapped from code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, requestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", requestID(c), details))
}

// HandleError answers a service error. Domain errors keep their code and
// message; server-side failures are logged and anything unrecognised
// becomes a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	log := logger.L(c.Request.Context())

	var de *shared.DomainError
	if !errors.As(err, &de) {
		log.Error("Unhandled error", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}

	code := dto.FromDomainCode(de.Code)
	if dto.GetHTTPStatus(code) >= http.StatusInternalServerError {
		log.Error("Request failed", zap.String("code", de.Code), zap.Error(err))
	}
	h.ErrorWithCode(c, code, de.Message)
}

// bindJSON decodes and validates the body, answering 400 or 413 when it
// cannot. An empty body is validated as a zero value.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return false
	}
	if details := dto.ValidationDetails(err); details != nil {
		h.ValidationError(c, details)
		return false
	}
	h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, "Invalid JSON: "+err.Error())
	return false
}

func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	err := c.ShouldBindQuery(req)
	if err == nil {
		return true
	}
	if details := dto.ValidationDetails(err); details != nil {
		h.ValidationError(c, details)
	} else {
		h.BadRequest(c, "Invalid query parameters")
	}
	return false
}

func (h *BaseHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeValidation, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
