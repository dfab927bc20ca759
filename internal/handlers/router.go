package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kisahtegar/alqowy/internal/config"
	"github.com/kisahtegar/alqowy/internal/events"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/utils"
)

type HandlerManager struct {
	frontHandler       *FrontHandler
	categoryHandler    *CategoryHandler
	courseHandler      *CourseHandler
	teacherHandler     *TeacherHandler
	transactionHandler *TransactionHandler
	dashboardHandler   *DashboardHandler
	authMiddleware     *CasdoorAuthMiddleware
	serviceManager     services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
	publisher events.EventPublisher,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo, publisher, serviceManager.Role(), logger)

	return &HandlerManager{
		frontHandler:       NewFrontHandler(serviceManager.Course(), serviceManager.Category(), logger),
		categoryHandler:    NewCategoryHandler(serviceManager.Category(), logger),
		courseHandler:      NewCourseHandler(serviceManager.Course(), serviceManager.Role(), logger),
		teacherHandler:     NewTeacherHandler(serviceManager.Role(), logger),
		transactionHandler: NewTransactionHandler(serviceManager.Subscription(), serviceManager.Report(), logger),
		dashboardHandler:   NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:     authMiddleware,
		serviceManager:     serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Public catalog, no authentication. Course details take an optional
	// token so is_enrolled reflects the caller.
	router.GET("/", hm.frontHandler.Index)
	router.GET("/pricing", hm.frontHandler.Pricing)
	router.GET("/categories/:slug/courses", hm.frontHandler.CategoryCourses)
	router.GET("/courses/:slug", hm.authMiddleware.OptionalAuthMiddleware(), hm.frontHandler.CourseDetails)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Category management - Owner only; reads are shared with teachers
		// so the course form can offer the category list.
		categories := v1.Group("/categories")
		{
			categories.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner, models.RoleTeacher), hm.categoryHandler.ListCategories)
			categories.GET("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner, models.RoleTeacher), hm.categoryHandler.GetCategory)
			categories.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner), hm.categoryHandler.CreateCategory)
			categories.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner), hm.categoryHandler.UpdateCategory)
			categories.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner), hm.categoryHandler.DeleteCategory)
		}

		// Course management - Owner and teachers; teachers are scoped to
		// their own courses inside the handlers.
		courses := v1.Group("/courses")
		courses.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner, models.RoleTeacher))
		{
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id", hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.courseHandler.DeleteCourse)

			courses.POST("/:id/videos", hm.courseHandler.AddVideo)
			courses.PUT("/videos/:id", hm.courseHandler.UpdateVideo)
			courses.DELETE("/videos/:id", hm.courseHandler.DeleteVideo)
		}

		// Teacher lifecycle - Owner only
		teachers := v1.Group("/teachers")
		teachers.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner))
		{
			teachers.POST("", hm.teacherHandler.PromoteTeacher)
			teachers.GET("", hm.teacherHandler.ListTeachers)
			teachers.GET("/:id", hm.teacherHandler.GetTeacher)
			teachers.DELETE("/:id", hm.teacherHandler.DemoteTeacher)
		}

		// Transaction review and export - Owner only
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner), hm.transactionHandler.ListTransactions)
			transactions.GET("/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner), hm.transactionHandler.ExportTransactions)
			transactions.PUT("/:id/approve", hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner), hm.transactionHandler.ApprovePayment)

			// Any authenticated user can see their own history.
			transactions.GET("/me", hm.transactionHandler.MyTransactions)
			transactions.GET("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner), hm.transactionHandler.GetTransaction)
		}

		// Checkout and subscription status - any authenticated user
		v1.POST("/checkout", hm.transactionHandler.Checkout)
		v1.GET("/subscription/status", hm.transactionHandler.SubscriptionStatus)

		// Learning pages. Gating happens in the service layer: students
		// need an active subscription, staff roles pass through.
		learning := v1.Group("/learning")
		{
			learning.GET("/:slug", hm.courseHandler.Learn)
			learning.GET("/:slug/videos/:video_id", hm.courseHandler.Learn)
		}

		// Dashboard - Owner and teachers
		dashboard := v1.Group("/dashboard")
		dashboard.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleOwner, models.RoleTeacher))
		{
			dashboard.GET("/stats", hm.dashboardHandler.GetDashboardStats)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{
				"status":  "unhealthy",
				"service": "alqowy-platform",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "alqowy-platform",
		})
	})
}
