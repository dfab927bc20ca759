package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/utils"
)

// FrontHandler serves the public catalog: no authentication required,
// though course details pick up enrollment state when a token is present.
type FrontHandler struct {
	BaseHandler
	courses    services.CourseService
	categories services.CategoryService
}

func NewFrontHandler(courses services.CourseService, categories services.CategoryService, logger utils.Logger) *FrontHandler {
	return &FrontHandler{
		BaseHandler: NewBaseHandler(logger),
		courses:     courses,
		categories:  categories,
	}
}

// ===== PUBLIC CATALOG ENDPOINTS =====

// Index returns the front page payload: all categories plus the latest courses
// @Summary Front page
// @Tags catalog
// @Produce json
// @Router / [get]
func (h *FrontHandler) Index(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	latest, err := h.courses.List(c.Request.Context(), repositories.CourseFilters{
		Limit:     9,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories":     categories.Categories,
		"latest_courses": latest.Courses,
	})
}

// CourseDetails returns a course's public detail page by slug
// @Summary Course details
// @Description Course detail page with videos and keypoints. With a valid token, is_enrolled reflects the caller's enrollment.
// @Tags catalog
// @Produce json
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /courses/{slug} [get]
func (h *FrontHandler) CourseDetails(c *gin.Context) {
	slug := c.Param("slug")

	var userID *string
	if id, exists := c.Get("user_id"); exists {
		if s, ok := id.(string); ok {
			userID = &s
		}
	}

	course, err := h.courses.Details(c.Request.Context(), slug, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// CategoryCourses lists the courses under a category slug
// @Summary Courses by category
// @Tags catalog
// @Produce json
// @Success 200 {object} services.CourseListResponse
// @Failure 404 {object} ErrorResponse "Category not found"
// @Router /categories/{slug} [get]
func (h *FrontHandler) CategoryCourses(c *gin.Context) {
	slug := c.Param("slug")

	courses, err := h.courses.ListByCategory(c.Request.Context(), slug)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// Pricing returns the subscription offer
// @Summary Pricing page
// @Tags catalog
// @Produce json
// @Router /pricing [get]
func (h *FrontHandler) Pricing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"price":    models.SubscriptionPrice,
		"currency": "IDR",
		"period":   "monthly",
	})
}
