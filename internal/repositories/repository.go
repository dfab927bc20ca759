package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories so services depend on
// one seam instead of five constructor parameters.
type Repository interface {
	User() UserRepository
	Teacher() TeacherRepository
	Category() CategoryRepository
	Course() CourseRepository
	Transaction() SubscribeTransactionRepository
	Dashboard() DashboardRepository
}

// RepositoryManager owns the lifecycle of the repository set.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err is the storage layer's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
