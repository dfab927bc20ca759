package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
)

// ===== RESPONSE DTOs =====

type DashboardStatsResponse struct {
	Overview DashboardOverview `json:"overview"`
}

type DashboardOverview struct {
	TotalCourses      int64 `json:"total_courses"`
	TotalCategories   int64 `json:"total_categories"`
	TotalTeachers     int64 `json:"total_teachers"`
	TotalStudents     int64 `json:"total_students"`
	TotalTransactions int64 `json:"total_transactions"`
	PendingPayments   int64 `json:"pending_payments"`
}

// ===== SERVICE IMPLEMENTATION =====

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// GetStats returns the admin dashboard counters. Owners see the whole
// platform; teachers see courses scoped to themselves. Students have no
// dashboard.
func (s *dashboardService) GetStats(ctx context.Context, userID string) (*DashboardStatsResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var teacherID *uint
	switch user.Role {
	case models.RoleOwner:
		// unscoped
	case models.RoleTeacher:
		teacher, err := s.repo.Teacher().GetByUserID(ctx, nil, userID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrTeacherNotFound
			}
			return nil, fmt.Errorf("failed to get teacher: %w", err)
		}
		teacherID = &teacher.ID
	default:
		return nil, ErrForbidden
	}

	stats, err := s.repo.Dashboard().GetStats(ctx, nil, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	return &DashboardStatsResponse{
		Overview: DashboardOverview{
			TotalCourses:      stats.TotalCourses,
			TotalCategories:   stats.TotalCategories,
			TotalTeachers:     stats.TotalTeachers,
			TotalStudents:     stats.TotalStudents,
			TotalTransactions: stats.TotalTransactions,
			PendingPayments:   stats.PendingPayments,
		},
	}, nil
}
