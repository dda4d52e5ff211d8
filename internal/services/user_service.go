package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/ambitiondl/xueke-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
	ErrMissingFields = errors.New("username, email and password are required")
)

type UserService struct {
	repo   *repository.Repository
	events *EventLogService
}

func NewUserService(repo *repository.Repository, events *EventLogService) *UserService {
	return &UserService{repo: repo, events: events}
}

// Create registers a new account. The password is stored as a bcrypt digest.
func (s *UserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	userType := req.UserType
	if userType == "" {
		userType = models.UserTypeUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           newID("user"),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		UserType:     userType,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := s.repo.UpdateUsers(ctx, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if u.Username == user.Username {
				return nil, ErrUsernameTaken
			}
			if u.Email == user.Email {
				return nil, ErrEmailTaken
			}
		}
		return append(users, user), nil
	}); err != nil {
		return nil, err
	}

	if err := s.events.Append(ctx, "user_created", map[string]any{
		"user_id":   user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"user_type": user.UserType,
	}); err != nil {
		return &user, nil // event loss is not worth failing the signup
	}
	return &user, nil
}

// List returns all users with credentials stripped and license counts attached.
func (s *UserService) List(ctx context.Context) ([]dto.UserSummary, error) {
	users, err := s.repo.Users(ctx)
	if err != nil {
		return nil, err
	}
	licenses, err := s.repo.Licenses(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, summarize(u, licenses))
	}
	return summaries, nil
}

// Get returns one user with license and task aggregates.
func (s *UserService) Get(ctx context.Context, userID string) (*dto.UserDetail, error) {
	users, err := s.repo.Users(ctx)
	if err != nil {
		return nil, err
	}
	var user *models.User
	for i := range users {
		if users[i].ID == userID {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	licenses, err := s.repo.Licenses(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	detail := dto.UserDetail{UserSummary: summarize(*user, licenses)}
	if lic := ActiveLicense(licenses, userID); lic != nil {
		detail.LicenseValid = true
		detail.LicenseInfo = lic
	}
	for _, t := range tasks {
		if t.UserID != userID {
			continue
		}
		detail.TaskCount++
		switch t.Status {
		case models.TaskStatusCompleted:
			detail.CompletedTasks++
		case models.TaskStatusPending:
			detail.PendingTasks++
		}
	}
	return &detail, nil
}

// TouchActivity stamps the user's last-activity time.
func (s *UserService) TouchActivity(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	_, err := s.repo.UpdateUsers(ctx, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID == userID {
				users[i].LastActivity = &now
				return users, nil
			}
		}
		return nil, ErrUserNotFound
	})
	return err
}

// ActiveLicense returns the user's first active unexpired license, or nil.
func ActiveLicense(licenses []models.License, userID string) *models.License {
	now := time.Now().UTC()
	for i := range licenses {
		if licenses[i].UserID == userID && licenses[i].Valid(now) {
			return &licenses[i]
		}
	}
	return nil
}

func summarize(u models.User, licenses []models.License) dto.UserSummary {
	count := 0
	for _, l := range licenses {
		if l.UserID == u.ID {
			count++
		}
	}
	return dto.UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		UserType:     u.UserType,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
		LastActivity: u.LastActivity,
		LicenseCount: count,
	}
}
