package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	service services.CourseService
	roles   services.RoleService
}

func NewCourseHandler(service services.CourseService, roles services.RoleService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		roles:       roles,
	}
}

// ===== COURSE MANAGEMENT ENDPOINTS =====

// CreateCourse creates a new course
// @Summary Create course
// @Description Create a course with an optional thumbnail upload (multipart field "thumbnail")
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 409 {object} ErrorResponse "Slug already taken"
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	h.LogRequest(c, "Creating course")

	var req services.CreateCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	// Teachers always publish under their own teacher record, whatever
	// the request body claims.
	teacherID, ok := h.scopedTeacherID(c)
	if !ok {
		return
	}
	if teacherID != nil {
		req.TeacherID = *teacherID
	}

	thumbnail, err := formFileUpload(c, "thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid thumbnail upload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.service.Create(c.Request.Context(), &req, thumbnail)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GetCourse returns a single course by ID
// @Summary Get course
// @Tags courses
// @Produce json
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.loadScopedCourse(c, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if course == nil {
		return
	}

	c.JSON(http.StatusOK, course)
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse "Course not found"
// @Failure 409 {object} ErrorResponse "Slug already taken"
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Updating course", "course_id", id)

	if course, err := h.loadScopedCourse(c, id); err != nil {
		h.handleServiceError(c, err)
		return
	} else if course == nil {
		return
	}

	var req services.UpdateCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	thumbnail, err := formFileUpload(c, "thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid thumbnail upload",
			Details: err.Error(),
		})
		return
	}

	course, err := h.service.Update(c.Request.Context(), id, &req, thumbnail)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse deletes a course
// @Summary Delete course
// @Tags courses
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Deleting course", "course_id", id)

	if course, err := h.loadScopedCourse(c, id); err != nil {
		h.handleServiceError(c, err)
		return
	} else if course == nil {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: fmt.Sprintf("course %d deleted", id),
	})
}

// ListCourses lists courses for the admin area. Teachers only see their
// own courses; owners see everything and may filter by teacher/category.
// @Summary List courses
// @Tags courses
// @Produce json
// @Param category_id query int false "Filter by category"
// @Param teacher_id query int false "Filter by teacher (owner only)"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filters := repositories.CourseFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid category_id parameter"})
			return
		}
		categoryID := uint(id)
		filters.CategoryID = &categoryID
	}
	if v := c.Query("teacher_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid teacher_id parameter"})
			return
		}
		teacherID := uint(id)
		filters.TeacherID = &teacherID
	}

	page, size := paginationParams(c)
	filters.Limit = size
	filters.Offset = (page - 1) * size

	teacherID, ok := h.scopedTeacherID(c)
	if !ok {
		return
	}
	if teacherID != nil {
		filters.TeacherID = teacherID
	}

	courses, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// ===== COURSE VIDEO ENDPOINTS =====

// AddVideo attaches a video to a course
// @Summary Add course video
// @Tags courses
// @Accept json
// @Produce json
// @Success 201 {object} models.CourseVideo
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{id}/videos [post]
func (h *CourseHandler) AddVideo(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	h.LogRequest(c, "Adding course video", "course_id", courseID)

	if course, err := h.loadScopedCourse(c, courseID); err != nil {
		h.handleServiceError(c, err)
		return
	} else if course == nil {
		return
	}

	var req services.CreateCourseVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	video, err := h.service.AddVideo(c.Request.Context(), courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, video)
}

// UpdateVideo updates a course video
// @Summary Update course video
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} models.CourseVideo
// @Failure 404 {object} ErrorResponse "Video not found"
// @Router /courses/videos/{id} [put]
func (h *CourseHandler) UpdateVideo(c *gin.Context) {
	videoID := h.parseIDParam(c, "id")
	if videoID == 0 {
		return
	}

	var req services.UpdateCourseVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	video, err := h.service.UpdateVideo(c.Request.Context(), videoID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// DeleteVideo removes a course video
// @Summary Delete course video
// @Tags courses
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Video not found"
// @Router /courses/videos/{id} [delete]
func (h *CourseHandler) DeleteVideo(c *gin.Context) {
	videoID := h.parseIDParam(c, "id")
	if videoID == 0 {
		return
	}

	if err := h.service.DeleteVideo(c.Request.Context(), videoID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: fmt.Sprintf("video %d deleted", videoID),
	})
}

// ===== LEARNING ENDPOINTS =====

// Learn opens the learning page for a course, enrolling the caller on
// first visit. Students need an active subscription; teachers and the
// owner pass the gate unconditionally.
// @Summary Learn course
// @Tags learning
// @Produce json
// @Success 200 {object} services.LearnResponse
// @Failure 402 {object} ErrorResponse "Subscription required"
// @Failure 404 {object} ErrorResponse "Course or video not found"
// @Router /learning/{slug} [get]
func (h *CourseHandler) Learn(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	slug := c.Param("slug")

	var videoID *uint
	if v := c.Param("video_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid video_id parameter"})
			return
		}
		parsed := uint(id)
		videoID = &parsed
	}

	h.LogRequest(c, "Opening learning page", "user_id", userID, "slug", slug)

	lesson, err := h.service.Learn(c.Request.Context(), userID, slug, videoID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// ===== SCOPING HELPERS =====

// scopedTeacherID resolves the caller's teacher record when the caller is
// a teacher; owners are unscoped and get nil. The false return means a
// response has already been written.
func (h *CourseHandler) scopedTeacherID(c *gin.Context) (*uint, bool) {
	role, err := GetUserRoleFromContext(c)
	if err != nil || role != models.RoleTeacher {
		return nil, true
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return nil, false
	}

	teacher, err := h.roles.GetTeacherByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return nil, false
	}
	return &teacher.ID, true
}

// loadScopedCourse fetches a course and verifies ownership for teacher
// callers. Courses outside the caller's scope surface as 404, not 403,
// so teachers cannot probe each other's catalogs. A nil course with a
// nil error means the response has already been written.
func (h *CourseHandler) loadScopedCourse(c *gin.Context, courseID uint) (*services.CourseResponse, error) {
	course, err := h.service.GetByID(c.Request.Context(), courseID)
	if err != nil {
		return nil, err
	}

	teacherID, ok := h.scopedTeacherID(c)
	if !ok {
		return nil, nil
	}
	if teacherID != nil && course.TeacherID != *teacherID {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Course not found"})
		return nil, nil
	}

	return course, nil
}

// paginationParams reads page/size query params with sane bounds.
func paginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
