package services

import (
	"context"
	"testing"

	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Login(ctx, &dto.LoginRequest{
		Username: "admin",
		Password: "admin123",
		DeviceID: "device_test",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "user_admin_001", resp.UserID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "admin", resp.UserInfo.Username)
	assert.Equal(t, models.UserTypeAdmin, resp.UserInfo.UserType)
	assert.NotNil(t, resp.UserInfo.LastLogin)

	// Seeded admin owns one active license.
	assert.Equal(t, 1, resp.UserInfo.LicenseCount)
	assert.True(t, resp.UserInfo.LicenseValid)
	require.NotNil(t, resp.UserInfo.LicenseInfo)

	users, err := env.repo.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, "device_test", users[0].DeviceID)
	assert.Contains(t, env.eventTypes(t), "login_success")
}

func TestLoginBadPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Login(context.Background(), &dto.LoginRequest{
		Username: "admin",
		Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, env.eventTypes(t), "login_failed")
}

func TestLoginUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Login(context.Background(), &dto.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.repo.UpdateUsers(ctx, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].Username == "testuser" {
				users[i].IsActive = false
			}
		}
		return users, nil
	})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{
		Username: "testuser",
		Password: "test123",
	})
	require.ErrorIs(t, err, ErrAccountDisabled)
	assert.Contains(t, env.eventTypes(t), "login_failed")
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Login(context.Background(), &dto.LoginRequest{Username: "admin"})
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLogoutLogsEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.auth.Logout(ctx, &dto.LogoutRequest{UserID: "user_admin_001", Username: "admin"})
	assert.Contains(t, env.eventTypes(t), "logout")

	// No user id, nothing recorded.
	env.auth.Logout(ctx, &dto.LogoutRequest{})
	types := env.eventTypes(t)
	count := 0
	for _, typ := range types {
		if typ == "logout" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
