package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kisahtegar/alqowy/internal/cache"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := getDB(c.db, tx).WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID, course.Slug)
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	err := getDB(c.db, tx).WithContext(ctx).
		Preload("Category").
		Preload("Teacher").
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetBySlugWithDetails serves the course detail and learning pages, cached
// under the slug key.
func (c *CoursePostgreSQL) GetBySlugWithDetails(ctx context.Context, tx *gorm.DB, slug string) (*models.Course, error) {
	cacheKey := fmt.Sprintf("slug:%s", slug)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		err := getDB(c.db, tx).WithContext(ctx).
			Preload("Category").
			Preload("Teacher.User").
			Preload("Videos").
			Preload("Keypoints").
			First(&dbCourse, "slug = ?", slug).Error
		if err != nil {
			return nil, err
		}
		return &dbCourse, nil
	})
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := getDB(c.db, tx).WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID, course.Slug)
	return nil
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	course, err := c.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}

	result := getDB(c.db, tx).WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}
	cache.InvalidateCourseCache(ctx, c.cacheManager, course.ID, course.Slug)
	return nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := getDB(c.db, tx).WithContext(ctx).Model(&models.Course{})
	query = c.helpers.ApplyCourseFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	allowedSort := map[string]bool{"id": true, "name": true, "created_at": true}
	query = c.helpers.ApplySorting(query, filters.SortBy, filters.SortOrder, allowedSort)
	query = c.helpers.ApplyPagination(query, filters.Limit, filters.Offset)

	var courses []*models.Course
	err := query.
		Preload("Category").
		Preload("Teacher.User").
		Find(&courses).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, total, nil
}

// ListByCategory backs the per-category catalog page, cached per category.
func (c *CoursePostgreSQL) ListByCategory(ctx context.Context, tx *gorm.DB, categoryID uint) ([]*models.Course, error) {
	cacheKey := fmt.Sprintf("category:%d", categoryID)
	var courses []*models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &courses, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourses []*models.Course
		err := getDB(c.db, tx).WithContext(ctx).
			Where("category_id = ?", categoryID).
			Order("id desc").
			Preload("Category").
			Preload("Teacher.User").
			Find(&dbCourses).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list courses by category: %w", err)
		}
		return dbCourses, nil
	})
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (c *CoursePostgreSQL) ReplaceKeypoints(ctx context.Context, tx *gorm.DB, courseID uint, names []string) error {
	db := getDB(c.db, tx).WithContext(ctx)

	if err := db.Where("course_id = ?", courseID).Delete(&models.CourseKeypoint{}).Error; err != nil {
		return fmt.Errorf("failed to delete keypoints: %w", err)
	}

	for _, name := range names {
		keypoint := models.CourseKeypoint{Name: name, CourseID: courseID}
		if err := db.Create(&keypoint).Error; err != nil {
			return fmt.Errorf("failed to create keypoint: %w", err)
		}
	}

	return nil
}

// EnrollStudent inserts into the roster join table, ignoring duplicates so
// re-watching a course never fails.
func (c *CoursePostgreSQL) EnrollStudent(ctx context.Context, tx *gorm.DB, courseID uint, userID string) error {
	err := getDB(c.db, tx).WithContext(ctx).
		Table("course_students").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]interface{}{
			"course_id": courseID,
			"user_id":   userID,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uint, userID string) (bool, error) {
	var count int64
	err := getDB(c.db, tx).WithContext(ctx).
		Table("course_students").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return count > 0, nil
}

func (c *CoursePostgreSQL) CreateVideo(ctx context.Context, tx *gorm.DB, video *models.CourseVideo) error {
	if err := getDB(c.db, tx).WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("failed to create course video: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "slug:*")
	return nil
}

func (c *CoursePostgreSQL) GetVideoByID(ctx context.Context, tx *gorm.DB, id uint) (*models.CourseVideo, error) {
	var video models.CourseVideo
	err := getDB(c.db, tx).WithContext(ctx).First(&video, id).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (c *CoursePostgreSQL) UpdateVideo(ctx context.Context, tx *gorm.DB, video *models.CourseVideo) error {
	if err := getDB(c.db, tx).WithContext(ctx).Save(video).Error; err != nil {
		return fmt.Errorf("failed to update course video: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "slug:*")
	return nil
}

func (c *CoursePostgreSQL) DeleteVideo(ctx context.Context, tx *gorm.DB, id uint) error {
	result := getDB(c.db, tx).WithContext(ctx).Delete(&models.CourseVideo{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course video: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "slug:*")
	return nil
}
