// Package users manages console accounts and role assignment.
package users

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"armory-backend/internal/constants"
	"armory-backend/internal/domain"
	"armory-backend/internal/pkg/apperr"
	"armory-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service holds DB and Redis for account operations.
type Service struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// CreateInput is the payload for a new console account.
type CreateInput struct {
	Fullname  string  `json:"fullname"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	StationID *string `json:"station_id"`
}

// Create creates a viewer account. Returns the created model (caller omits password_hash).
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	trimmed := strings.TrimSpace(in.Fullname)
	if trimmed == "" {
		return nil, apperr.Validation("fullname", "a full name is required")
	}
	if !validation.IsValidFullname(trimmed) {
		return nil, apperr.Validation("fullname", "only letters, spaces, hyphens, and apostrophes are allowed")
	}
	if in.Email == "" || !validation.IsValidEmail(in.Email) {
		return nil, apperr.Validation("email", "invalid email format")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, apperr.Validation("password", "password must be at least 8 characters with a letter, a number, and a special character")
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	var existing domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, apperr.Validation("email", "email already registered")
	}

	var stationID *uuid.UUID
	if in.StationID != nil && *in.StationID != "" {
		parsed, err := uuid.Parse(*in.StationID)
		if err != nil {
			return nil, apperr.Validation("station_id", "invalid station id")
		}
		var station domain.Station
		if err := s.DB.WithContext(ctx).Where("station_id = ?", parsed).First(&station).Error; err != nil {
			return nil, apperr.Validation("station_id", "station not found")
		}
		stationID = &parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Fullname:     titleCaseAndNormalize(trimmed),
		Email:        email,
		PasswordHash: string(hash),
		StationID:    stationID,
		Role:         constants.Viewer,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateRoleInput carries the actor and the target of a role change.
type UpdateRoleInput struct {
	ActorUserID  string
	ActorRole    string
	TargetUserID string
	TargetRole   string
}

// UpdateRole changes a user's role after governance checks, then destroys the
// target's sessions so the old role cannot linger in a live session.
func (s *Service) UpdateRole(ctx context.Context, in UpdateRoleInput) (*domain.User, error) {
	if !constants.AllowedRole(constants.AssignRole, in.ActorRole) {
		return nil, apperr.Authorization("only superadmins can assign roles")
	}
	if !constants.IsValidRole(in.TargetRole) {
		return nil, apperr.Validation("role", "unknown role")
	}
	if in.ActorUserID == in.TargetUserID {
		return nil, apperr.Validation("user_id", "users cannot modify their own role")
	}

	var target domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", in.TargetUserID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	// Never downgrade the last superadmin
	if target.Role == constants.Superadmin && in.TargetRole != constants.Superadmin {
		var count int64
		s.DB.WithContext(ctx).Model(&domain.User{}).Where("role = ?", constants.Superadmin).Count(&count)
		if count <= 1 {
			return nil, apperr.Validation("role", "at least one superadmin must remain")
		}
	}

	target.Role = in.TargetRole
	if err := s.DB.WithContext(ctx).Save(&target).Error; err != nil {
		return nil, err
	}
	DestroyUserSessions(ctx, s.Rdb, in.TargetUserID)
	return &target, nil
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns all accounts ordered by fullname.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := s.DB.WithContext(ctx).Order("fullname asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func titleCaseAndNormalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
