package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/cache"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
)

type DashboardPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDashboardPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DashboardRepository {
	return &DashboardPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// GetStats aggregates the admin dashboard counters. Cached briefly because
// the counts only feed a landing page.
func (d *DashboardPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, teacherID *uint) (*repositories.DashboardStats, error) {
	cacheKey := "dashboard:all"
	if teacherID != nil {
		cacheKey = fmt.Sprintf("dashboard:teacher:%d", *teacherID)
	}

	var stats repositories.DashboardStats
	err := d.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := getDB(d.db, tx).WithContext(ctx)
		var s repositories.DashboardStats

		courseQuery := db.Model(&models.Course{})
		if teacherID != nil {
			courseQuery = courseQuery.Where("teacher_id = ?", *teacherID)
		}
		if err := courseQuery.Count(&s.TotalCourses).Error; err != nil {
			return nil, fmt.Errorf("failed to count courses: %w", err)
		}

		if teacherID == nil {
			if err := db.Model(&models.Category{}).Count(&s.TotalCategories).Error; err != nil {
				return nil, fmt.Errorf("failed to count categories: %w", err)
			}
			if err := db.Model(&models.Teacher{}).Count(&s.TotalTeachers).Error; err != nil {
				return nil, fmt.Errorf("failed to count teachers: %w", err)
			}
			if err := db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&s.TotalStudents).Error; err != nil {
				return nil, fmt.Errorf("failed to count students: %w", err)
			}
			if err := db.Model(&models.SubscribeTransaction{}).Count(&s.TotalTransactions).Error; err != nil {
				return nil, fmt.Errorf("failed to count transactions: %w", err)
			}
			if err := db.Model(&models.SubscribeTransaction{}).Where("is_paid = ?", false).Count(&s.PendingPayments).Error; err != nil {
				return nil, fmt.Errorf("failed to count pending payments: %w", err)
			}
		}

		return &s, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
