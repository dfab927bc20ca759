package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/utils"
)

type CategoryHandler struct {
	BaseHandler
	service services.CategoryService
}

func NewCategoryHandler(service services.CategoryService, logger utils.Logger) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== CATEGORY ENDPOINTS =====

// CreateCategory creates a new course category
// @Summary Create category
// @Description Create a category with an optional icon upload (multipart field "icon")
// @Tags categories
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} services.CategoryResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 409 {object} ErrorResponse "Slug already taken"
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	h.LogRequest(c, "Creating category")

	var req services.CreateCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	icon, err := formFileUpload(c, "icon")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid icon upload",
			Details: err.Error(),
		})
		return
	}

	category, err := h.service.Create(c.Request.Context(), &req, icon)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// GetCategory returns a single category with its course count
// @Summary Get category
// @Tags categories
// @Produce json
// @Success 200 {object} services.CategoryResponse
// @Failure 404 {object} ErrorResponse "Category not found"
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	category, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// UpdateCategory updates a category's name and/or icon
// @Summary Update category
// @Tags categories
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} services.CategoryResponse
// @Failure 404 {object} ErrorResponse "Category not found"
// @Failure 409 {object} ErrorResponse "Slug already taken"
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Updating category", "category_id", id)

	var req services.UpdateCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	icon, err := formFileUpload(c, "icon")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid icon upload",
			Details: err.Error(),
		})
		return
	}

	category, err := h.service.Update(c.Request.Context(), id, &req, icon)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes an empty category
// @Summary Delete category
// @Description Delete a category. Fails with 409 while courses still reference it.
// @Tags categories
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Category not found"
// @Failure 409 {object} ErrorResponse "Category still has courses"
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Deleting category", "category_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: fmt.Sprintf("category %d deleted", id),
	})
}

// ListCategories returns all categories
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} services.CategoryListResponse
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}
