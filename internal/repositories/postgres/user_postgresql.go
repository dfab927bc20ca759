package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
)

type UserPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := getDB(u.db, tx).WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := getDB(u.db, tx).WithContext(ctx).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := getDB(u.db, tx).WithContext(ctx).
		First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := getDB(u.db, tx).WithContext(ctx).Model(&models.User{})

	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}
	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []*models.User
	err := u.helpers.ApplyPagination(query.Order("name asc"), filters.Limit, filters.Offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func (u *UserPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	var count int64
	err := getDB(u.db, tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := getDB(u.db, tx).WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// UpdateRoleCAS swaps the role column only when it still holds the expected
// value, so two racing transitions cannot interleave.
func (u *UserPostgreSQL) UpdateRoleCAS(ctx context.Context, tx *gorm.DB, id string, from, to models.UserRole) (int64, error) {
	result := getDB(u.db, tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, from).
		Update("role", to)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update user role: %w", result.Error)
	}
	return result.RowsAffected, nil
}
