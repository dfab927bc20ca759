package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
)

type TeacherPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTeacherPostgreSQL(db *gorm.DB) repositories.TeacherRepository {
	return &TeacherPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (t *TeacherPostgreSQL) Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	if err := getDB(t.db, tx).WithContext(ctx).Create(teacher).Error; err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	return nil
}

func (t *TeacherPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	var teacher models.Teacher
	err := getDB(t.db, tx).WithContext(ctx).
		Preload("User").
		First(&teacher, id).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (t *TeacherPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Teacher, error) {
	var teacher models.Teacher
	err := getDB(t.db, tx).WithContext(ctx).
		First(&teacher, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (t *TeacherPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := getDB(t.db, tx).WithContext(ctx).Delete(&models.Teacher{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete teacher: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TeacherPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Teacher, int64, error) {
	query := getDB(t.db, tx).WithContext(ctx).Model(&models.Teacher{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count teachers: %w", err)
	}

	var teachers []*models.Teacher
	err := t.helpers.ApplyPagination(query.Preload("User").Order("id desc"), limit, offset).
		Find(&teachers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teachers: %w", err)
	}

	return teachers, total, nil
}

func (t *TeacherPostgreSQL) ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	var count int64
	err := getDB(t.db, tx).WithContext(ctx).
		Model(&models.Teacher{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}
