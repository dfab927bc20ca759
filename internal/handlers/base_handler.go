package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/utils"
)

// BaseHandler carries the pieces every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// LogRequest logs request-scoped information with the request id attached.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "request_id", c.GetString("request_id"), "path", c.FullPath())
	h.logger.Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "request_id", c.GetString("request_id"), "path", c.FullPath())
	h.logger.Error(msg, args...)
}

// parseIDParam reads a positive numeric path parameter. Zero means the
// response has already been written.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// currentUserID returns the authenticated user's id or writes a 401.
func (h *BaseHandler) currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return userID.(string), true
}

// handleServiceError maps service sentinels onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	// Not found
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrTeacherNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Teacher not found"})
	case errors.Is(err, services.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Transaction not found"})
	case errors.Is(err, services.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Category not found"})
	case errors.Is(err, services.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Course not found"})
	case errors.Is(err, services.ErrVideoNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Course video not found"})

	// Conflicts
	case errors.Is(err, services.ErrAlreadyTeacher):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "User is already a teacher"})
	case errors.Is(err, services.ErrAlreadyHasRole):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "User already has this role"})
	case errors.Is(err, services.ErrRoleConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Role changed concurrently, retry"})
	case errors.Is(err, services.ErrSlugTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Name is already in use"})
	case errors.Is(err, services.ErrCategoryInUse):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Category still has courses"})
	case errors.Is(err, services.ErrAlreadySubscribed):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Subscription is already active"})

	// Access
	case errors.Is(err, services.ErrSubscriptionRequired):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Message: "Active subscription required"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden - insufficient permissions"})

	// Generic
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: "File upload failed"})

	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
