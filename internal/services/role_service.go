package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/events"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/validator"
)

type roleService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	clock     Clock
}

func NewRoleService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, clock Clock) RoleService {
	return &roleService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		clock:     clock,
	}
}

// AssignDefaultRole gives a freshly registered user the student role.
// Provisioned accounts start with an empty role; a user who already
// holds any role gets ErrAlreadyHasRole and is never downgraded.
func (s *roleService) AssignDefaultRole(ctx context.Context, userID string) error {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role != "" {
		return ErrAlreadyHasRole
	}

	affected, err := s.repo.User().UpdateRoleCAS(ctx, nil, userID, "", models.RoleStudent)
	if err != nil {
		return fmt.Errorf("failed to assign default role: %w", err)
	}
	if affected == 0 {
		// Lost the race to another consumer; the role is set either way.
		return ErrAlreadyHasRole
	}

	s.logger.Info("default role assigned", "user_id", userID, "role", models.RoleStudent)
	return nil
}

// PromoteToTeacher moves a student to the teacher role and creates the
// teacher record, both inside one transaction. The role column is the
// single source of truth: the compare-and-set fails the transaction if
// the user's role changed between the read and the write.
func (s *roleService) PromoteToTeacher(ctx context.Context, req *CreateTeacherRequest) (*TeacherResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if user.HasRole(models.RoleTeacher) {
		return nil, ErrAlreadyTeacher
	}
	if errs := s.validator.GetBusinessValidator().ValidateRoleTransition(user.Role, models.RoleTeacher); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	teacher := &models.Teacher{
		UserID:   user.ID,
		IsActive: true,
	}

	err = withTransaction(ctx, s.db, func(tx *gorm.DB) error {
		affected, err := s.repo.User().UpdateRoleCAS(ctx, tx, user.ID, models.RoleStudent, models.RoleTeacher)
		if err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		if affected == 0 {
			return ErrRoleConflict
		}

		if err := s.repo.Teacher().Create(ctx, tx, teacher); err != nil {
			return fmt.Errorf("failed to create teacher record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.TopicTeacherPromoted, events.TeacherPromotedEvent{
		UserID:     user.ID,
		TeacherID:  teacher.ID,
		OccurredAt: s.clock.Now(),
	}); err != nil {
		// The promotion is committed; a publish failure must not undo it.
		s.logger.Error("failed to publish teacher promoted event", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user promoted to teacher", "user_id", user.ID, "teacher_id", teacher.ID)

	teacher.User = *user
	return s.toTeacherResponse(teacher), nil
}

// DemoteTeacher reverses a promotion: the teacher record goes away and
// the user returns to the student role, atomically.
func (s *roleService) DemoteTeacher(ctx context.Context, teacherID uint) error {
	teacher, err := s.repo.Teacher().GetByID(ctx, nil, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTeacherNotFound
		}
		return fmt.Errorf("failed to get teacher: %w", err)
	}

	err = withTransaction(ctx, s.db, func(tx *gorm.DB) error {
		affected, err := s.repo.User().UpdateRoleCAS(ctx, tx, teacher.UserID, models.RoleTeacher, models.RoleStudent)
		if err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		if affected == 0 {
			return ErrRoleConflict
		}

		if err := s.repo.Teacher().Delete(ctx, tx, teacher.ID); err != nil {
			return fmt.Errorf("failed to delete teacher record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, events.TopicTeacherDemoted, events.TeacherDemotedEvent{
		UserID:     teacher.UserID,
		TeacherID:  teacher.ID,
		OccurredAt: s.clock.Now(),
	}); err != nil {
		s.logger.Error("failed to publish teacher demoted event", "user_id", teacher.UserID, "error", err)
	}

	s.logger.Info("teacher demoted to student", "user_id", teacher.UserID, "teacher_id", teacher.ID)
	return nil
}

func (s *roleService) GetTeacher(ctx context.Context, teacherID uint) (*TeacherResponse, error) {
	teacher, err := s.repo.Teacher().GetByID(ctx, nil, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return s.toTeacherResponse(teacher), nil
}

func (s *roleService) GetTeacherByUser(ctx context.Context, userID string) (*TeacherResponse, error) {
	teacher, err := s.repo.Teacher().GetByUserID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to get teacher by user: %w", err)
	}
	return s.toTeacherResponse(teacher), nil
}

func (s *roleService) ListTeachers(ctx context.Context) (*TeacherListResponse, error) {
	teachers, total, err := s.repo.Teacher().List(ctx, nil, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}

	resp := &TeacherListResponse{
		Teachers: make([]*TeacherResponse, 0, len(teachers)),
		Total:    total,
	}
	for _, t := range teachers {
		resp.Teachers = append(resp.Teachers, s.toTeacherResponse(t))
	}
	return resp, nil
}

func (s *roleService) toTeacherResponse(teacher *models.Teacher) *TeacherResponse {
	return &TeacherResponse{
		Teacher:     teacher,
		Name:        teacher.User.Name,
		Email:       teacher.User.Email,
		CourseCount: len(teacher.Courses),
	}
}
