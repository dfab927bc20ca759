package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/utils"
)

type TeacherHandler struct {
	BaseHandler
	service services.RoleService
}

func NewTeacherHandler(service services.RoleService, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== TEACHER ENDPOINTS =====

// PromoteTeacher promotes an existing user, looked up by email, to teacher
// @Summary Promote user to teacher
// @Description Move a student to the teacher role and create their teacher record
// @Tags teachers
// @Accept json
// @Produce json
// @Success 201 {object} services.TeacherResponse
// @Failure 400 {object} ErrorResponse "Validation failed or user is not a student"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 409 {object} ErrorResponse "User is already a teacher"
// @Router /teachers [post]
func (h *TeacherHandler) PromoteTeacher(c *gin.Context) {
	h.LogRequest(c, "Promoting user to teacher")

	var req services.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	teacher, err := h.service.PromoteToTeacher(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, teacher)
}

// DemoteTeacher demotes a teacher back to student
// @Summary Demote teacher
// @Description Remove the teacher record and return the user to the student role
// @Tags teachers
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Teacher not found"
// @Failure 409 {object} ErrorResponse "Role changed concurrently"
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) DemoteTeacher(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Demoting teacher", "teacher_id", id)

	if err := h.service.DemoteTeacher(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: fmt.Sprintf("teacher %d demoted", id),
	})
}

// GetTeacher returns a single teacher
// @Summary Get teacher
// @Tags teachers
// @Produce json
// @Success 200 {object} services.TeacherResponse
// @Failure 404 {object} ErrorResponse "Teacher not found"
// @Router /teachers/{id} [get]
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	teacher, err := h.service.GetTeacher(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, teacher)
}

// ListTeachers returns all teachers
// @Summary List teachers
// @Tags teachers
// @Produce json
// @Success 200 {object} services.TeacherListResponse
// @Router /teachers [get]
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.service.ListTeachers(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, teachers)
}
