package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTaskReq(urls ...string) *dto.CreateTaskRequest {
	return &dto.CreateTaskRequest{
		UserID: "user_admin_001", // seeded default
		URLs:   urls,
		Email:  "admin@example.com",
	}
}

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.tasks.Create(ctx, createTaskReq("https://example.com/doc/1"))
	require.NoError(t, err)
	second, err := env.tasks.Create(ctx, createTaskReq("https://example.com/doc/2"))
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusPending, first.Status)
	assert.Equal(t, 0, first.Progress)
	assert.NotEqual(t, first.TaskID, second.TaskID)
	assert.Equal(t, "admin", first.Username)
	assert.Equal(t, "system", first.SubmittedBy)
	assert.Empty(t, first.DownloadedFiles)
	assert.Empty(t, first.DirectLinks)
	assert.Nil(t, first.StartedAt)
	assert.Nil(t, first.CompletedAt)
	assert.False(t, first.CreatedAt.IsZero())

	types := env.eventTypes(t)
	assert.Contains(t, types, "task_created")
	assert.Contains(t, types, "notification_task_created")
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tasks.Create(ctx, &dto.CreateTaskRequest{UserID: "user_admin_001", Email: "a@b.c"})
	require.ErrorIs(t, err, ErrInvalidTaskInput)

	_, err = env.tasks.Create(ctx, &dto.CreateTaskRequest{UserID: "user_admin_001", URLs: []string{"u"}})
	require.ErrorIs(t, err, ErrInvalidTaskInput)

	_, err = env.tasks.Create(ctx, &dto.CreateTaskRequest{UserID: "nobody", URLs: []string{"u"}, Email: "a@b.c"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStartRejectsSecondCall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, createTaskReq("https://example.com/doc/1"))
	require.NoError(t, err)

	started, err := env.tasks.Start(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusProcessing, started.Status)
	assert.Equal(t, 10, started.Progress)
	assert.NotNil(t, started.StartedAt)

	_, err = env.tasks.Start(ctx, task.TaskID)
	require.ErrorIs(t, err, ErrTaskNotPending)
}

func TestStartUnknownTask(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.tasks.Start(context.Background(), "task_missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestProgressionCompletesEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, createTaskReq("https://example.com/doc/1", "https://example.com/doc/2"))
	require.NoError(t, err)
	_, err = env.tasks.Start(ctx, task.TaskID)
	require.NoError(t, err)

	var observed []int
	require.Eventually(t, func() bool {
		status, err := env.tasks.Status(ctx, task.TaskID)
		if err != nil {
			return false
		}
		observed = append(observed, status.Progress)
		return status.Status == models.TaskStatusCompleted
	}, 2*time.Second, time.Millisecond)

	// Progress never decreases on the way to 100.
	for i := 1; i < len(observed); i++ {
		assert.GreaterOrEqual(t, observed[i], observed[i-1])
	}
	assert.Equal(t, 100, observed[len(observed)-1])

	info, err := env.tasks.DownloadInfo(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Len(t, info.Files, 2)
	assert.Len(t, info.DirectLinks, 2)
	assert.Equal(t, fmt.Sprintf("%s/download/%s/all.zip", testBaseURL, task.TaskID), info.DownloadAll)
	for i, name := range info.Files {
		assert.Equal(t, fmt.Sprintf("xueke_doc_%s_%d.pdf", task.TaskID, i+1), name)
		assert.Equal(t, fmt.Sprintf("%s/download/%s/%s", testBaseURL, task.TaskID, name), info.DirectLinks[i])
	}

	final, err := env.tasks.Get(ctx, task.TaskID)
	require.NoError(t, err)
	assert.NotNil(t, final.CompletedAt)

	types := env.eventTypes(t)
	assert.Contains(t, types, "task_processing")
	assert.Contains(t, types, "task_progress")
	assert.Contains(t, types, "task_completed")
	assert.Contains(t, types, "notification_task_completed")
}

func TestArtifactsCappedAtFive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	urls := make([]string, 8)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/doc/%d", i)
	}
	task, err := env.tasks.Create(ctx, createTaskReq(urls...))
	require.NoError(t, err)
	_, err = env.tasks.Start(ctx, task.TaskID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := env.tasks.Status(ctx, task.TaskID)
		return err == nil && status.Status == models.TaskStatusCompleted
	}, 2*time.Second, time.Millisecond)

	info, err := env.tasks.DownloadInfo(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Len(t, info.Files, 5)
	assert.Len(t, info.DirectLinks, 5)
}

func TestDownloadInfoNotReady(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, createTaskReq("https://example.com/doc/1"))
	require.NoError(t, err)

	_, err = env.tasks.DownloadInfo(ctx, task.TaskID)
	require.ErrorIs(t, err, ErrTaskNotCompleted)

	_, err = env.tasks.DownloadInfo(ctx, "task_missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestProgressionStopsWhenTaskRemoved(t *testing.T) {
	env := newTestEnv(t)
	env.tasks.stepDelay = 20 * time.Millisecond
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, createTaskReq("https://example.com/doc/1"))
	require.NoError(t, err)
	_, err = env.tasks.Start(ctx, task.TaskID)
	require.NoError(t, err)

	// Pull the task out from under the progression, as cleanup might.
	env.seedTasks(t, []models.Task{})

	env.mustFinish(t, task.TaskID)
	tasks, err := env.repo.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCancelStopsProgression(t *testing.T) {
	env := newTestEnv(t)
	env.tasks.stepDelay = time.Hour // never reaches the first checkpoint
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, createTaskReq("https://example.com/doc/1"))
	require.NoError(t, err)
	_, err = env.tasks.Start(ctx, task.TaskID)
	require.NoError(t, err)

	require.True(t, env.tasks.Cancel(task.TaskID))
	require.False(t, env.tasks.Cancel(task.TaskID))

	status, err := env.tasks.Status(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusProcessing, status.Status)
	assert.Equal(t, 10, status.Progress)
}

func TestCleanupRetainsNonCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	old := time.Now().UTC().AddDate(0, 0, -31)
	done := models.TaskStatusCompleted

	env.seedTasks(t, []models.Task{
		{TaskID: "task_old_done", Status: done, CreatedAt: old},
		{TaskID: "task_old_pending", Status: models.TaskStatusPending, CreatedAt: old},
		{TaskID: "task_new_done", Status: done, CreatedAt: time.Now().UTC()},
	})

	cleaned, remaining, err := env.tasks.Cleanup(ctx, 30, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, cleaned)
	assert.Equal(t, 2, remaining)

	tasks, err := env.repo.Tasks(ctx)
	require.NoError(t, err)
	ids := []string{tasks[0].TaskID, tasks[1].TaskID}
	assert.ElementsMatch(t, []string{"task_old_pending", "task_new_done"}, ids)
	assert.Contains(t, env.eventTypes(t), "system_cleanup")
}

func TestListByUserSortedNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	env.seedTasks(t, []models.Task{
		{TaskID: "task_a", UserID: "u1", CreatedAt: now.Add(-2 * time.Hour)},
		{TaskID: "task_b", UserID: "u1", CreatedAt: now},
		{TaskID: "task_c", UserID: "u2", CreatedAt: now.Add(-time.Hour)},
	})

	tasks, err := env.tasks.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "task_b", tasks[0].TaskID)
	assert.Equal(t, "task_a", tasks[1].TaskID)
}

func TestFileContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()

	env.seedTasks(t, []models.Task{{
		TaskID:          "task_done",
		Username:        "admin",
		Email:           "admin@example.com",
		Status:          models.TaskStatusCompleted,
		CreatedAt:       now,
		DownloadedFiles: []string{"xueke_doc_task_done_1.pdf"},
	}, {
		TaskID:    "task_wip",
		Status:    models.TaskStatusPending,
		CreatedAt: now,
	}})

	file, err := env.tasks.FileContent(ctx, "task_done", "xueke_doc_task_done_1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Contains(t, string(file.Body), "xueke_doc_task_done_1.pdf")

	bundle, err := env.tasks.FileContent(ctx, "task_done", "all.zip")
	require.NoError(t, err)
	assert.Equal(t, "application/zip", bundle.ContentType)
	assert.Equal(t, "xueke_task_done.zip", bundle.Filename)

	_, err = env.tasks.FileContent(ctx, "task_done", "nope.pdf")
	require.ErrorIs(t, err, ErrFileNotFound)

	_, err = env.tasks.FileContent(ctx, "task_wip", "anything.pdf")
	require.ErrorIs(t, err, ErrTaskNotCompleted)

	_, err = env.tasks.FileContent(ctx, "task_missing", "anything.pdf")
	require.ErrorIs(t, err, ErrTaskNotFound)
}
