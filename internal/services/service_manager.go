package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/events"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/storage/s3"
	"github.com/kisahtegar/alqowy/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level

	DefaultTimeout time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	files     s3.FileStore
	publisher events.EventPublisher
	clock     Clock
	config    ServiceManagerConfig

	// Service instances
	roleService         RoleService
	subscriptionService SubscriptionService
	categoryService     CategoryService
	courseService       CourseService
	dashboardService    DashboardService
	reportService       ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, files s3.FileStore, publisher events.EventPublisher, clock Clock, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		files:     files,
		publisher: publisher,
		clock:     clock,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, files s3.FileStore, publisher events.EventPublisher) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		DefaultTimeout:     30 * time.Second,
	}
	return NewServiceManager(db, repo, logger, validator, files, publisher, NewRealClock(), config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.roleService = NewRoleService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher, sm.clock)
	sm.logger.Info("Role service initialized")

	sm.subscriptionService = NewSubscriptionService(sm.repo, sm.db, sm.logger, sm.validator, sm.files, sm.publisher, sm.clock)
	sm.logger.Info("Subscription service initialized")

	sm.categoryService = NewCategoryService(sm.repo, sm.db, sm.logger, sm.validator, sm.files)
	sm.logger.Info("Category service initialized")

	// Course service gates learning through the subscription service.
	sm.courseService = NewCourseService(sm.repo, sm.db, sm.logger, sm.validator, sm.files, sm.subscriptionService)
	sm.logger.Info("Course service initialized")

	sm.dashboardService = NewDashboardService(sm.repo, sm.db, sm.logger)
	sm.logger.Info("Dashboard service initialized")

	sm.reportService = NewReportService(sm.repo, sm.db, sm.logger, sm.clock)
	sm.logger.Info("Report service initialized")

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// HealthCheck verifies the database connection behind the services.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	sqlDB, err := sm.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Shutdown releases resources held by the services.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	return nil
}

// ===== SERVICE GETTERS =====

func (sm *serviceManager) Role() RoleService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.roleService
}

func (sm *serviceManager) Subscription() SubscriptionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.subscriptionService
}

func (sm *serviceManager) Category() CategoryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.categoryService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.courseService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.dashboardService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.reportService
}
