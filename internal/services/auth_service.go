package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/config"
	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/ambitiondl/xueke-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrMissingCredentials = errors.New("username and password are required")
)

type AuthService struct {
	repo   *repository.Repository
	events *EventLogService
	cfg    *config.Config
}

func NewAuthService(repo *repository.Repository, events *EventLogService, cfg *config.Config) *AuthService {
	return &AuthService{repo: repo, events: events, cfg: cfg}
}

// Login verifies credentials, stamps login/activity times and the device id,
// and returns the user info payload with a license summary. Failed attempts
// are recorded as login_failed events.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	now := time.Now().UTC()
	var user models.User
	_, err := s.repo.UpdateUsers(ctx, func(users []models.User) ([]models.User, error) {
		idx := -1
		for i := range users {
			if users[i].Username == req.Username {
				idx = i
				break
			}
		}
		if idx == -1 || bcrypt.CompareHashAndPassword([]byte(users[idx].PasswordHash), []byte(req.Password)) != nil {
			return nil, ErrInvalidCredentials
		}
		if !users[idx].IsActive {
			return nil, ErrAccountDisabled
		}
		users[idx].LastLogin = &now
		users[idx].LastActivity = &now
		users[idx].DeviceID = req.DeviceID
		user = users[idx]
		return users, nil
	})
	if err != nil {
		s.logFailure(ctx, req.Username, err)
		return nil, err
	}

	licenses, err := s.repo.Licenses(ctx)
	if err != nil {
		return nil, err
	}
	licenseCount := 0
	for _, l := range licenses {
		if l.UserID == user.ID {
			licenseCount++
		}
	}
	active := ActiveLicense(licenses, user.ID)

	token, err := s.accessToken(&user)
	if err != nil {
		slog.Error("failed to sign access token", "user_id", user.ID, "error", err)
	}

	s.logEvent(ctx, "login_success", map[string]any{
		"user_id":   user.ID,
		"username":  user.Username,
		"device_id": req.DeviceID,
	})

	return &dto.LoginResponse{
		Success:     true,
		Message:     "login successful",
		UserID:      user.ID,
		AccessToken: token,
		UserInfo: dto.UserInfo{
			UserID:       user.ID,
			Username:     user.Username,
			Email:        user.Email,
			UserType:     user.UserType,
			CreatedAt:    user.CreatedAt,
			LastLogin:    user.LastLogin,
			LicenseCount: licenseCount,
			LicenseValid: active != nil,
			LicenseInfo:  active,
		},
	}, nil
}

// Logout only records the event; there is no server-side session to tear down.
func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) {
	if req.UserID == "" {
		return
	}
	s.logEvent(ctx, "logout", map[string]any{
		"user_id":  req.UserID,
		"username": req.Username,
	})
}

func (s *AuthService) accessToken(user *models.User) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", nil
	}
	claims := jwt.MapClaims{
		"sub":       user.ID,
		"username":  user.Username,
		"user_type": user.UserType,
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) logFailure(ctx context.Context, username string, cause error) {
	reason := "invalid credentials"
	if errors.Is(cause, ErrAccountDisabled) {
		reason = "account disabled"
	}
	s.logEvent(ctx, "login_failed", map[string]any{
		"username": username,
		"reason":   reason,
	})
}

func (s *AuthService) logEvent(ctx context.Context, eventType string, data map[string]any) {
	if err := s.events.Append(ctx, eventType, data); err != nil {
		slog.Error("failed to log event", "type", eventType, "error", err)
	}
}
