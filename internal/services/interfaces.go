package services

import (
	"context"
	"time"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateCategoryRequest = validator.CategoryCreateRequest
type UpdateCategoryRequest = validator.CategoryUpdateRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateCourseVideoRequest = validator.CourseVideoCreateRequest
type UpdateCourseVideoRequest = validator.CourseVideoUpdateRequest
type CreateTeacherRequest = validator.TeacherCreateRequest

// FileUpload carries a multipart upload from the handler layer without
// binding services to net/http types.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

type CategoryResponse struct {
	*models.Category
	CourseCount int `json:"course_count"`
}

type CategoryListResponse struct {
	Categories []*CategoryResponse `json:"categories"`
	Total      int64               `json:"total"`
}

type TeacherResponse struct {
	*models.Teacher
	Name        string `json:"name"`
	Email       string `json:"email"`
	CourseCount int    `json:"course_count"`
}

type TeacherListResponse struct {
	Teachers []*TeacherResponse `json:"teachers"`
	Total    int64              `json:"total"`
}

type CourseResponse struct {
	*models.Course
	IsEnrolled bool `json:"is_enrolled"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

// LearnResponse is the learning-page payload: the enrolled course plus
// the video the student is currently watching (nil means the overview).
type LearnResponse struct {
	Course       *CourseResponse     `json:"course"`
	CurrentVideo *models.CourseVideo `json:"current_video,omitempty"`
}

type TransactionResponse struct {
	*models.SubscribeTransaction
	// ExpiryDate is derived, not stored: start date plus one calendar
	// month. Only set on paid transactions.
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
}

type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// ===== SERVICE INTERFACES =====

// RoleService owns role assignment and the teacher promotion lifecycle.
// Every user holds exactly one role at a time; transitions are atomic.
type RoleService interface {
	AssignDefaultRole(ctx context.Context, userID string) error
	PromoteToTeacher(ctx context.Context, req *CreateTeacherRequest) (*TeacherResponse, error)
	DemoteTeacher(ctx context.Context, teacherID uint) error
	GetTeacher(ctx context.Context, teacherID uint) (*TeacherResponse, error)
	GetTeacherByUser(ctx context.Context, userID string) (*TeacherResponse, error)
	ListTeachers(ctx context.Context) (*TeacherListResponse, error)
}

// SubscriptionService owns the payment lifecycle and access evaluation.
type SubscriptionService interface {
	SubmitPayment(ctx context.Context, userID string, proof *FileUpload) (*TransactionResponse, error)
	ApprovePayment(ctx context.Context, transactionID uint) (*TransactionResponse, error)
	HasActiveAccess(ctx context.Context, userID string) (bool, error)
	GateAccess(ctx context.Context, userID string) error
	GetTransaction(ctx context.Context, transactionID uint) (*TransactionResponse, error)
	ListTransactions(ctx context.Context, filters repositories.TransactionFilters) (*TransactionListResponse, error)
	ListUserTransactions(ctx context.Context, userID string) (*TransactionListResponse, error)
}

type CategoryService interface {
	Create(ctx context.Context, req *CreateCategoryRequest, icon *FileUpload) (*CategoryResponse, error)
	GetByID(ctx context.Context, categoryID uint) (*CategoryResponse, error)
	Update(ctx context.Context, categoryID uint, req *UpdateCategoryRequest, icon *FileUpload) (*CategoryResponse, error)
	Delete(ctx context.Context, categoryID uint) error
	List(ctx context.Context) (*CategoryListResponse, error)
}

type CourseService interface {
	// Management (owner/teacher)
	Create(ctx context.Context, req *CreateCourseRequest, thumbnail *FileUpload) (*CourseResponse, error)
	GetByID(ctx context.Context, courseID uint) (*CourseResponse, error)
	Update(ctx context.Context, courseID uint, req *UpdateCourseRequest, thumbnail *FileUpload) (*CourseResponse, error)
	Delete(ctx context.Context, courseID uint) error
	List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)

	// Videos
	AddVideo(ctx context.Context, courseID uint, req *CreateCourseVideoRequest) (*models.CourseVideo, error)
	UpdateVideo(ctx context.Context, videoID uint, req *UpdateCourseVideoRequest) (*models.CourseVideo, error)
	DeleteVideo(ctx context.Context, videoID uint) error

	// Public catalog
	Details(ctx context.Context, slug string, userID *string) (*CourseResponse, error)
	ListByCategory(ctx context.Context, categorySlug string) (*CourseListResponse, error)

	// Learning (gated, auto-enrolls)
	Learn(ctx context.Context, userID, slug string, videoID *uint) (*LearnResponse, error)
}

type DashboardService interface {
	GetStats(ctx context.Context, userID string) (*DashboardStatsResponse, error)
}

// ReportService produces the transactions workbook owners download.
type ReportService interface {
	ExportTransactions(ctx context.Context, filters repositories.TransactionFilters) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Role() RoleService
	Subscription() SubscriptionService
	Category() CategoryService
	Course() CourseService
	Dashboard() DashboardService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
