package casdoor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/cache"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// directoryClient is the part of the Casdoor SDK client used for lookups
type directoryClient interface {
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
}

// UserDirectory resolves identities through Casdoor with a redis read-through cache
type UserDirectory struct {
	client directoryClient
	cache  *cache.CacheHelper
}

func NewUserDirectory(config CasdoorConfig, cm *cache.CacheManager) repositories.IdentityRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)
	return newUserDirectory(client, cm)
}

func newUserDirectory(client directoryClient, cm *cache.CacheManager) *UserDirectory {
	return &UserDirectory{client: client, cache: cm.User}
}

// GetByID retrieves a user by ID
func (u *UserDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := u.cache.CacheOrExecute(ctx, "id:"+id, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		casdoorUser, err := u.client.GetUserByUserId(id)
		if err != nil {
			return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
		}
		if casdoorUser == nil {
			return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
		}
		return ToModel(casdoorUser), nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// HasRole checks if a user has a specific role
func (u *UserDirectory) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Role == role, nil
}

// ===== CONVERSION =====

// ToModel converts a Casdoor user (directory record or token claims) to the
// identity part of the internal model.
func ToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	user := &models.User{
		ID:        casdoorUser.Id,
		FullName:  strings.TrimSpace(casdoorUser.DisplayName),
		FirstName: strings.TrimSpace(casdoorUser.FirstName),
		LastName:  strings.TrimSpace(casdoorUser.LastName),
		Email:     casdoorUser.Email,
		Role:      MapRoles(casdoorUser),
	}
	if user.FullName == "" {
		user.FullName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	if user.FullName == "" {
		user.FullName = casdoorUser.Name
	}
	if casdoorUser.Avatar != "" {
		avatar := casdoorUser.Avatar
		user.AvatarURL = &avatar
	}
	return user
}

// MapRoles picks the primary role; admin wins over everything else
func MapRoles(casdoorUser *casdoorsdk.User) models.UserRole {
	var roles []models.UserRole
	for _, role := range casdoorUser.Roles {
		if role == nil {
			continue
		}
		mapped := mapSingleRole(role.Name)
		if !slices.Contains(roles, mapped) {
			roles = append(roles, mapped)
		}
	}

	if casdoorUser.IsAdmin || slices.Contains(roles, models.RoleAdmin) {
		return models.RoleAdmin
	}
	if slices.Contains(roles, models.RoleTeacher) {
		return models.RoleTeacher
	}
	return models.RoleStudent
}

func mapSingleRole(name string) models.UserRole {
	switch strings.ToLower(name) {
	case "teacher", "instructor", "o'qituvchi":
		return models.RoleTeacher
	case "admin", "administrator":
		return models.RoleAdmin
	default:
		return models.RoleStudent
	}
}
