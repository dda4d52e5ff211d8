package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/ambitiondl/xueke-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore errors on every operation, standing in for an unreachable
// backend.
type failingStore struct {
	err error
}

func (f *failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f *failingStore) Put(context.Context, string, []byte) error   { return f.err }
func (f *failingStore) Close() error                                { return nil }

func TestSeededDefaults(t *testing.T) {
	repo := New(store.NewMemory())
	ctx := context.Background()

	users, err := repo.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user_admin_001", users[0].ID)
	assert.Equal(t, models.UserTypeAdmin, users[0].UserType)
	assert.NotContains(t, users[0].PasswordHash, "admin123")

	licenses, err := repo.Licenses(ctx)
	require.NoError(t, err)
	require.Len(t, licenses, 2)
	assert.Equal(t, "XUKE-2024-ABCD-EFGH", licenses[0].LicenseKey)

	// Collections without seeds start empty.
	tasks, err := repo.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	logs, err := repo.Logs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestUpdateRoundTrip(t *testing.T) {
	repo := New(store.NewMemory())
	ctx := context.Background()

	task := models.Task{
		TaskID:    "task_abc",
		UserID:    "user_admin_001",
		URLs:      []string{"https://example.com/doc"},
		Status:    models.TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	_, err := repo.UpdateTasks(ctx, func(tasks []models.Task) ([]models.Task, error) {
		return append(tasks, task), nil
	})
	require.NoError(t, err)

	tasks, err := repo.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.TaskID, tasks[0].TaskID)
	assert.Equal(t, task.URLs, tasks[0].URLs)
}

func TestUpdateAbortDoesNotSave(t *testing.T) {
	repo := New(store.NewMemory())
	ctx := context.Background()
	boom := errors.New("mutate failed")

	_, err := repo.UpdateTasks(ctx, func(tasks []models.Task) ([]models.Task, error) {
		return append(tasks, models.Task{TaskID: "task_x"}), nil
	})
	require.NoError(t, err)

	_, err = repo.UpdateTasks(ctx, func(tasks []models.Task) ([]models.Task, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	tasks, err := repo.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "task_x", tasks[0].TaskID)
}

func TestStorageErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	repo := New(&failingStore{err: boom})
	ctx := context.Background()

	_, err := repo.Users(ctx)
	require.ErrorIs(t, err, boom)

	_, err = repo.UpdateTasks(ctx, func(tasks []models.Task) ([]models.Task, error) {
		return tasks, nil
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.Settings(ctx)
	require.ErrorIs(t, err, boom)
}

func TestSettingsMerge(t *testing.T) {
	repo := New(store.NewMemory())
	ctx := context.Background()

	settings, err := repo.Settings(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings)

	_, err = repo.UpdateSettings(ctx, map[string]any{"a": "1", "b": "2"})
	require.NoError(t, err)
	merged, err := repo.UpdateSettings(ctx, map[string]any{"b": "3"})
	require.NoError(t, err)

	assert.Equal(t, "1", merged["a"])
	assert.Equal(t, "3", merged["b"])
}
