package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Category, error)
	Update(ctx context.Context, tx *gorm.DB, category *models.Category) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error)

	ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	// GetBySlugWithDetails preloads category, teacher (with user), videos
	// and keypoints for the course detail and learning pages.
	GetBySlugWithDetails(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
	ListByCategory(ctx context.Context, tx *gorm.DB, categoryID uint) ([]*models.Course, error)

	// ReplaceKeypoints deletes the course's keypoints and recreates them
	// from names, preserving the submitted order.
	ReplaceKeypoints(ctx context.Context, tx *gorm.DB, courseID uint, names []string) error

	// EnrollStudent records the user on the course roster, ignoring the
	// write when the pair already exists (the roster is a set).
	EnrollStudent(ctx context.Context, tx *gorm.DB, courseID uint, userID string) error
	IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uint, userID string) (bool, error)

	CreateVideo(ctx context.Context, tx *gorm.DB, video *models.CourseVideo) error
	GetVideoByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CourseVideo, error)
	UpdateVideo(ctx context.Context, tx *gorm.DB, video *models.CourseVideo) error
	DeleteVideo(ctx context.Context, tx *gorm.DB, id uint) error
}
