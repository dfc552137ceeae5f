package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/config"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories/casdoor"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

const (
	contextKeyUserID    = "user_id"
	contextKeyUser      = "user"
	contextKeyUserRole  = "user_role"
	contextKeyUserEmail = "user_email"
)

// tokenParser is the part of the Casdoor client that verifies access tokens
type tokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// CasdoorAuthMiddleware authenticates requests with Casdoor access tokens and
// makes sure every caller has a local testing profile.
type CasdoorAuthMiddleware struct {
	parser     tokenParser
	identities repositories.IdentityRepository
	users      repositories.UserRepository
	logger     utils.Logger
}

func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, repo repositories.Repository, logger utils.Logger) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return newCasdoorAuthMiddleware(client, repo.Identity(), repo.User(), logger)
}

func newCasdoorAuthMiddleware(parser tokenParser, identities repositories.IdentityRepository, users repositories.UserRepository, logger utils.Logger) *CasdoorAuthMiddleware {
	if logger == nil {
		logger = utils.Discard()
	}
	return &CasdoorAuthMiddleware{
		parser:     parser,
		identities: identities,
		users:      users,
		logger:     logger,
	}
}

// AuthMiddleware rejects requests without a valid bearer token
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		claims, err := cam.parser.ParseJwtToken(token)
		if err != nil {
			abortUnauthorized(c, fmt.Sprintf("invalid token: %v", err))
			return
		}

		user, err := cam.resolveUser(c.Request.Context(), claims)
		if err != nil {
			utils.FromContext(c, cam.logger).Warn("Failed to resolve user", "error", err)
			abortUnauthorized(c, fmt.Sprintf("failed to extract user info: %v", err))
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// RequireRoleMiddleware lets admins through along with any of the given roles
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "forbidden",
				Details: err.Error(),
			})
			return
		}

		if role != models.RoleAdmin && !slices.Contains(requiredRoles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "forbidden",
				Details: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
			})
			return
		}

		c.Next()
	}
}

// resolveUser prefers the directory record and falls back to the token claims.
// The local profile is created on first sight; its role is never stored.
func (cam *CasdoorAuthMiddleware) resolveUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	if claims == nil || claims.Id == "" {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	identity, err := cam.identities.GetByID(ctx, claims.Id)
	if err != nil || identity == nil {
		cam.logger.Debug("Directory lookup failed, using token claims", "user_id", claims.Id, "error", err)
		identity = casdoor.ToModel(&claims.User)
	}

	profile, err := cam.users.EnsureProfile(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	profile.Role = identity.Role
	return profile, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("authorization header missing")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("invalid authorization header format")
	}
	return parts[1], nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Message: "unauthorized",
		Details: message,
	})
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(contextKeyUserID, user.ID)
	c.Set(contextKeyUser, user)
	c.Set(contextKeyUserRole, user.Role)
	c.Set(contextKeyUserEmail, user.Email)
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get(contextKeyUser)
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}
	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}
	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(contextKeyUserID)
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}
	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}
	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get(contextKeyUserRole)
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}
	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}
	return role, nil
}
