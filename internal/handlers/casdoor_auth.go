package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/config"
	"github.com/kisahtegar/alqowy/internal/events"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/services"
	"github.com/kisahtegar/alqowy/internal/utils"
)

// CasdoorAuthMiddleware provides authentication using Casdoor SDK.
// Authorization is NOT delegated to Casdoor: the role column on the local
// users table is the single source of truth, so tokens only establish
// identity here.
type CasdoorAuthMiddleware struct {
	client    *casdoorsdk.Client
	userRepo  repositories.UserRepository
	publisher events.EventPublisher
	roles     services.RoleService
	logger    utils.Logger
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, userRepo repositories.UserRepository, publisher events.EventPublisher, roles services.RoleService, logger utils.Logger) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Application,
		cfg.Organization,
	)

	return &CasdoorAuthMiddleware{
		client:    client,
		userRepo:  userRepo,
		publisher: publisher,
		roles:     roles,
		logger:    logger,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing or malformed authorization header",
			})
			c.Abort()
			return
		}

		claims, err := cam.client.ParseJwtToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": fmt.Sprintf("invalid token: %v", err),
			})
			c.Abort()
			return
		}

		user, err := cam.resolveUser(c.Request.Context(), claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": fmt.Sprintf("failed to resolve user: %v", err),
			})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("user_email", user.Email)

		c.Next()
	}
}

// OptionalAuthMiddleware provides optional authentication (user info if token present)
func (cam *CasdoorAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := cam.client.ParseJwtToken(token)
		if err != nil {
			// Invalid token on a public route, continue anonymously
			c.Next()
			return
		}

		user, err := cam.resolveUser(c.Request.Context(), claims)
		if err == nil {
			c.Set("user_id", user.ID)
			c.Set("user", user)
			c.Set("user_role", user.Role)
			c.Set("user_email", user.Email)
		}

		c.Next()
	}
}

// RequireRoleMiddleware checks if the authenticated user holds one of the
// required roles. There is no implicit superuser: routes that should admit
// the owner list RoleOwner explicitly.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "user role not found in context",
			})
			c.Abort()
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "invalid user role format",
			})
			c.Abort()
			return
		}

		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
		})
		c.Abort()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// resolveUser loads the local profile for the token's subject, provisioning
// one on first sight. A freshly provisioned profile has an empty role; the
// registration consumer assigns the student default asynchronously, keyed
// off the event published here.
func (cam *CasdoorAuthMiddleware) resolveUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	userID := claims.Id
	if userID == "" {
		return nil, errInvalidSubject
	}

	user, err := cam.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load user profile: %w", err)
		}
		user = cam.provisionUser(ctx, claims)
	}

	// The registration consumer normally assigns the student default.
	// Catching up inline covers standalone deployments without a broker;
	// losing the race to the consumer just means the role is already set.
	if user.Role == "" {
		err := cam.roles.AssignDefaultRole(ctx, user.ID)
		switch {
		case err == nil, errors.Is(err, services.ErrAlreadyHasRole):
			if refreshed, err := cam.userRepo.GetByID(ctx, nil, user.ID); err == nil {
				user = refreshed
			}
		default:
			cam.logger.Error("failed to assign default role", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

var errInvalidSubject = errors.New("token carries no subject")

// provisionUser creates the local profile from the token claims. The role
// column stays empty on purpose; Casdoor's user type never maps to a
// platform role.
func (cam *CasdoorAuthMiddleware) provisionUser(ctx context.Context, claims *casdoorsdk.Claims) *models.User {
	avatar := claims.User.Avatar
	user := &models.User{
		ID:    claims.Id,
		Name:  claims.User.DisplayName,
		Email: claims.User.Email,
	}
	if avatar != "" {
		user.Avatar = &avatar
	}

	if err := cam.userRepo.Create(ctx, nil, user); err != nil {
		// Lost a provisioning race with a concurrent request; re-read the
		// row the winner created.
		existing, readErr := cam.userRepo.GetByID(ctx, nil, user.ID)
		if readErr != nil {
			cam.logger.Error("failed to provision user profile", "user_id", user.ID, "error", err)
			return user
		}
		return existing
	}

	if err := cam.publisher.Publish(ctx, events.TopicUserRegistered, events.UserRegisteredEvent{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		OccurredAt: time.Now(),
	}); err != nil {
		cam.logger.Error("failed to publish registration event", "user_id", user.ID, "error", err)
	}

	return user
}

// GetUserFromContext extracts the authenticated user from the Gin context.
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserRoleFromContext extracts the authenticated user's role from the Gin context.
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
