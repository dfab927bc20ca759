package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string          // Search query for name or email
	Role   models.UserRole // Filter by role, empty for all
	Limit  int             // Page size
	Offset int             // Offset for pagination
}

// UserRepository stores local user profiles. Identity itself lives in
// Casdoor; this table carries the role column and the profile fields the
// platform owns.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	ExistsByID(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)

	// UpdateRoleCAS performs the atomic role transition:
	// UPDATE users SET role = to WHERE id = ? AND role = from.
	// It returns the number of rows affected; zero means the user's role
	// changed underneath the caller and the enclosing transaction must
	// roll back.
	UpdateRoleCAS(ctx context.Context, tx *gorm.DB, id string, from, to models.UserRole) (int64, error)
}

// TeacherRepository stores the teacher role-extension records.
type TeacherRepository interface {
	Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Teacher, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Teacher, int64, error)

	ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error)
}
