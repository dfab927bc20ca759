package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/cache"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user        repositories.UserRepository
	teacher     repositories.TeacherRepository
	category    repositories.CategoryRepository
	course      repositories.CourseRepository
	transaction repositories.SubscribeTransactionRepository
	dashboard   repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository set with caching wired
// into the catalog-facing repositories.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.user = NewUserPostgreSQL(config.DB)
	repo.teacher = NewTeacherPostgreSQL(config.DB)
	repo.category = NewCategoryPostgreSQL(config.DB, cacheManager)
	repo.course = NewCoursePostgreSQL(config.DB, cacheManager)
	repo.transaction = NewTransactionPostgreSQL(config.DB)
	repo.dashboard = NewDashboardPostgreSQL(config.DB, cacheManager)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository { return r.user }

func (r *PostgreSQLRepository) Teacher() repositories.TeacherRepository { return r.teacher }

func (r *PostgreSQLRepository) Category() repositories.CategoryRepository { return r.category }

func (r *PostgreSQLRepository) Course() repositories.CourseRepository { return r.course }

func (r *PostgreSQLRepository) Transaction() repositories.SubscribeTransactionRepository {
	return r.transaction
}

func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository { return r.dashboard }

// ===== REPOSITORY MANAGER =====

type repositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates the manager that owns schema migration and
// connection lifecycle for the repository set.
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &repositoryManager{config: config}
}

func (m *repositoryManager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	if err := m.config.DB.AutoMigrate(
		&models.User{},
		&models.Teacher{},
		&models.Category{},
		&models.Course{},
		&models.CourseVideo{},
		&models.CourseKeypoint{},
		&models.SubscribeTransaction{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *repositoryManager) GetRepository() repositories.Repository {
	if m.repo == nil {
		panic("repository manager not initialized")
	}
	return m.repo
}

func (m *repositoryManager) HealthCheck(ctx context.Context) error {
	sqlDB, err := m.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if m.config.RedisClient != nil {
		if err := m.config.RedisClient.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}

	return nil
}

func (m *repositoryManager) Shutdown(ctx context.Context) error {
	sqlDB, err := m.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
