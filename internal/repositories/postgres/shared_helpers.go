package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/repositories"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// getDB returns the transaction DB if provided, otherwise the default DB.
func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// ApplyCourseFilters applies common filters to course queries
func (h *SharedHelpers) ApplyCourseFilters(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	if filters.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filters.TeacherID)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	return query
}

// ApplySorting applies sort order with a whitelist of sortable columns.
func (h *SharedHelpers) ApplySorting(query *gorm.DB, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	if sortBy == "" || !allowed[sortBy] {
		sortBy = "id"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))
}

// ApplyPagination applies limit/offset with a sane default page size.
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
