package services

import (
	"context"
	"testing"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/config"
	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/ambitiondl/xueke-backend/internal/repository"
	"github.com/ambitiondl/xueke-backend/internal/store"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://xuke.test"

type testEnv struct {
	repo     *repository.Repository
	events   *EventLogService
	notifier *Notifier
	tasks    *TaskService
	licenses *LicenseService
	users    *UserService
	auth     *AuthService
	system   *SystemService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := repository.New(store.NewMemory())
	events := NewEventLogService(repo, 2000)
	notifier := NewNotifier(events)
	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: 15 * time.Minute,
	}
	users := NewUserService(repo, events)
	env := &testEnv{
		repo:     repo,
		events:   events,
		notifier: notifier,
		tasks:    NewTaskService(repo, events, notifier, testBaseURL, time.Millisecond),
		licenses: NewLicenseService(repo, events),
		users:    users,
		auth:     NewAuthService(repo, events, cfg),
		system:   NewSystemService(repo, events, users),
	}
	return env
}

func (e *testEnv) seedLicenses(t *testing.T, licenses []models.License) {
	t.Helper()
	_, err := e.repo.UpdateLicenses(context.Background(), func([]models.License) ([]models.License, error) {
		return licenses, nil
	})
	require.NoError(t, err)
}

func (e *testEnv) seedTasks(t *testing.T, tasks []models.Task) {
	t.Helper()
	_, err := e.repo.UpdateTasks(context.Background(), func([]models.Task) ([]models.Task, error) {
		return tasks, nil
	})
	require.NoError(t, err)
}

// mustFinish waits until the task's background progression has exited.
func (e *testEnv) mustFinish(t *testing.T, taskID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		e.tasks.mu.Lock()
		_, ok := e.tasks.running[taskID]
		e.tasks.mu.Unlock()
		return !ok
	}, 2*time.Second, time.Millisecond)
}

func (e *testEnv) eventTypes(t *testing.T) []string {
	t.Helper()
	logs, err := e.repo.Logs(context.Background())
	require.NoError(t, err)
	types := make([]string, 0, len(logs))
	for _, l := range logs {
		types = append(types, l.Type)
	}
	return types
}
