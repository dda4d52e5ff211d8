package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/ambitiondl/xueke-backend/internal/repository"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskNotPending   = errors.New("task is not pending")
	ErrTaskNotCompleted = errors.New("task is not completed")
	ErrInvalidTaskInput = errors.New("urls and email are required")
	ErrFileNotFound     = errors.New("file not found")

	// errTaskVanished stops a progression whose task was removed by cleanup.
	errTaskVanished = errors.New("task no longer exists")
)

// progressCheckpoints is the fixed simulated-processing sequence. The initial
// 10 is set by Start; the rest are advanced by the background progression.
var progressCheckpoints = []int{20, 40, 60, 80, 100}

const maxArtifacts = 5

// TaskService drives the task lifecycle: pending -> processing ->
// completed|failed. Progressions run in background goroutines tracked in a
// scheduler map keyed by task id, so an in-flight run can be cancelled.
type TaskService struct {
	repo     *repository.Repository
	events   *EventLogService
	notifier *Notifier

	baseURL   string
	stepDelay time.Duration

	mu      sync.Mutex
	running map[string]*progression
}

type progression struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTaskService(repo *repository.Repository, events *EventLogService, notifier *Notifier, baseURL string, stepDelay time.Duration) *TaskService {
	return &TaskService{
		repo:      repo,
		events:    events,
		notifier:  notifier,
		baseURL:   baseURL,
		stepDelay: stepDelay,
		running:   make(map[string]*progression),
	}
}

// Create registers a new pending task for the given user.
func (s *TaskService) Create(ctx context.Context, req *dto.CreateTaskRequest) (*models.Task, error) {
	if len(req.URLs) == 0 || req.Email == "" {
		return nil, ErrInvalidTaskInput
	}

	users, err := s.repo.Users(ctx)
	if err != nil {
		return nil, err
	}
	var owner *models.User
	for i := range users {
		if users[i].ID == req.UserID {
			owner = &users[i]
			break
		}
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	submittedBy := req.SubmittedBy
	if submittedBy == "" {
		submittedBy = "system"
	}
	task := models.Task{
		TaskID:          newID("task"),
		UserID:          owner.ID,
		Username:        owner.Username,
		URLs:            req.URLs,
		Email:           req.Email,
		Notes:           req.Notes,
		Status:          models.TaskStatusPending,
		Progress:        0,
		SubmittedBy:     submittedBy,
		CreatedAt:       time.Now().UTC(),
		DownloadedFiles: []string{},
		DirectLinks:     []string{},
	}

	if _, err := s.repo.UpdateTasks(ctx, func(tasks []models.Task) ([]models.Task, error) {
		return append(tasks, task), nil
	}); err != nil {
		return nil, err
	}

	s.logEvent(ctx, "task_created", map[string]any{
		"task_id":      task.TaskID,
		"user_id":      task.UserID,
		"username":     task.Username,
		"url_count":    len(task.URLs),
		"submitted_by": task.SubmittedBy,
	})
	if err := s.notifier.Notify(ctx, "task_created", map[string]any{
		"task_id":   task.TaskID,
		"username":  task.Username,
		"email":     task.Email,
		"url_count": len(task.URLs),
	}); err != nil {
		slog.Error("task created notification failed", "task_id", task.TaskID, "error", err)
	}

	return &task, nil
}

// Start moves a pending task to processing and schedules the background
// progression. It returns the updated snapshot immediately.
func (s *TaskService) Start(ctx context.Context, taskID string) (*models.Task, error) {
	now := time.Now().UTC()
	var started models.Task

	_, err := s.repo.UpdateTasks(ctx, func(tasks []models.Task) ([]models.Task, error) {
		idx := findTask(tasks, taskID)
		if idx == -1 {
			return nil, ErrTaskNotFound
		}
		if tasks[idx].Status != models.TaskStatusPending {
			return nil, fmt.Errorf("%w: status is %s", ErrTaskNotPending, tasks[idx].Status)
		}
		tasks[idx].Status = models.TaskStatusProcessing
		tasks[idx].StartedAt = &now
		tasks[idx].Progress = 10
		started = tasks[idx]
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, "task_processing", map[string]any{
		"task_id": taskID,
		"user_id": started.UserID,
	})
	s.schedule(started)

	return &started, nil
}

func (s *TaskService) schedule(task models.Task) {
	runCtx, cancel := context.WithCancel(context.Background())
	p := &progression{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.running[task.TaskID] = p
	s.mu.Unlock()

	go func() {
		defer close(p.done)
		defer func() {
			s.mu.Lock()
			delete(s.running, task.TaskID)
			s.mu.Unlock()
		}()
		s.run(runCtx, task)
	}()
}

// Cancel stops an in-flight progression. It reports whether one was running.
// The task is left in whatever state the last checkpoint persisted.
func (s *TaskService) Cancel(taskID string) bool {
	s.mu.Lock()
	p, ok := s.running[taskID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	p.cancel()
	<-p.done
	return true
}

// run advances the task through the progress checkpoints, one fixed delay
// apart, re-resolving it by id each time. A task removed underneath us stops
// the run silently; any other failure marks the task failed.
func (s *TaskService) run(ctx context.Context, task models.Task) {
	for _, progress := range progressCheckpoints {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.stepDelay):
		}

		final := progress == 100
		var completed models.Task
		_, err := s.repo.UpdateTasks(ctx, func(tasks []models.Task) ([]models.Task, error) {
			idx := findTask(tasks, task.TaskID)
			if idx == -1 {
				return nil, errTaskVanished
			}
			tasks[idx].Progress = progress
			if final {
				now := time.Now().UTC()
				tasks[idx].Status = models.TaskStatusCompleted
				tasks[idx].CompletedAt = &now
				files, links := s.artifacts(tasks[idx])
				tasks[idx].DownloadedFiles = files
				tasks[idx].DirectLinks = links
				completed = tasks[idx]
			}
			return tasks, nil
		})
		if errors.Is(err, errTaskVanished) || ctx.Err() != nil {
			return
		}
		if err != nil {
			s.fail(task.TaskID, err)
			return
		}

		if !final {
			s.logEvent(ctx, "task_progress", map[string]any{
				"task_id":  task.TaskID,
				"progress": progress,
			})
			continue
		}

		s.logEvent(ctx, "task_completed", map[string]any{
			"task_id":    completed.TaskID,
			"user_id":    completed.UserID,
			"file_count": len(completed.DownloadedFiles),
		})
		links := completed.DirectLinks
		if len(links) > 3 {
			links = links[:3]
		}
		if err := s.notifier.Notify(ctx, "task_completed", map[string]any{
			"task_id":        completed.TaskID,
			"username":       completed.Username,
			"email":          completed.Email,
			"file_count":     len(completed.DownloadedFiles),
			"download_links": links,
		}); err != nil {
			slog.Error("task completed notification failed", "task_id", completed.TaskID, "error", err)
		}
	}
}

// fail records a progression failure on the task. The caller of Start already
// got its response, so errors here are logged and swallowed.
func (s *TaskService) fail(taskID string, cause error) {
	ctx := context.Background()
	msg := cause.Error()
	_, err := s.repo.UpdateTasks(ctx, func(tasks []models.Task) ([]models.Task, error) {
		idx := findTask(tasks, taskID)
		if idx == -1 {
			return nil, errTaskVanished
		}
		tasks[idx].Status = models.TaskStatusFailed
		tasks[idx].ErrorMessage = &msg
		return tasks, nil
	})
	if err != nil {
		slog.Error("failed to record task failure", "task_id", taskID, "error", err)
		return
	}
	s.logEvent(ctx, "task_failed", map[string]any{
		"task_id": taskID,
		"error":   msg,
	})
}

func (s *TaskService) artifacts(task models.Task) (files, links []string) {
	n := len(task.URLs)
	if n > maxArtifacts {
		n = maxArtifacts
	}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("xueke_doc_%s_%d.pdf", task.TaskID, i+1)
		files = append(files, name)
		links = append(links, fmt.Sprintf("%s/download/%s/%s", s.baseURL, task.TaskID, name))
	}
	return files, links
}

// Get returns the full task record.
func (s *TaskService) Get(ctx context.Context, taskID string) (*models.Task, error) {
	tasks, err := s.repo.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	idx := findTask(tasks, taskID)
	if idx == -1 {
		return nil, ErrTaskNotFound
	}
	return &tasks[idx], nil
}

// Status returns a read-only projection of the task's lifecycle state.
func (s *TaskService) Status(ctx context.Context, taskID string) (*dto.TaskStatusResponse, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &dto.TaskStatusResponse{
		TaskID:          task.TaskID,
		Status:          task.Status,
		Progress:        task.Progress,
		StartedAt:       task.StartedAt,
		CompletedAt:     task.CompletedAt,
		DownloadedCount: len(task.DownloadedFiles),
	}, nil
}

// DownloadInfo returns the direct links and artifact names of a completed task.
func (s *TaskService) DownloadInfo(ctx context.Context, taskID string) (*dto.TaskDownloadResponse, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusCompleted {
		return nil, ErrTaskNotCompleted
	}
	return &dto.TaskDownloadResponse{
		TaskID:      task.TaskID,
		DirectLinks: task.DirectLinks,
		Files:       task.DownloadedFiles,
		DownloadAll: fmt.Sprintf("%s/download/%s/all.zip", s.baseURL, task.TaskID),
	}, nil
}

// List returns all tasks, newest first.
func (s *TaskService) List(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.repo.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	sortTasksDesc(tasks)
	return tasks, nil
}

// ListByUser returns the user's tasks, newest first.
func (s *TaskService) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.repo.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	filtered := tasks[:0:0]
	for _, t := range tasks {
		if t.UserID == userID {
			filtered = append(filtered, t)
		}
	}
	sortTasksDesc(filtered)
	return filtered, nil
}

// Cleanup removes completed tasks older than retentionDays and trims the log
// collection to keepLogs entries. Non-completed tasks are retained regardless
// of age.
func (s *TaskService) Cleanup(ctx context.Context, retentionDays, keepLogs int) (cleaned, remaining int, err error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	tasks, err := s.repo.UpdateTasks(ctx, func(tasks []models.Task) ([]models.Task, error) {
		kept := tasks[:0:0]
		for _, t := range tasks {
			if t.Status != models.TaskStatusCompleted || t.CreatedAt.After(cutoff) {
				kept = append(kept, t)
			}
		}
		cleaned = len(tasks) - len(kept)
		return kept, nil
	})
	if err != nil {
		return 0, 0, err
	}
	remaining = len(tasks)

	remainingLogs, err := s.events.TrimTo(ctx, keepLogs)
	if err != nil {
		return 0, 0, err
	}

	s.logEvent(ctx, "system_cleanup", map[string]any{
		"cleaned_tasks":   cleaned,
		"remaining_tasks": remaining,
		"remaining_logs":  remainingLogs,
	})
	return cleaned, remaining, nil
}

func (s *TaskService) logEvent(ctx context.Context, eventType string, data map[string]any) {
	if err := s.events.Append(ctx, eventType, data); err != nil {
		slog.Error("failed to log event", "type", eventType, "error", err)
	}
}

func findTask(tasks []models.Task, taskID string) int {
	for i := range tasks {
		if tasks[i].TaskID == taskID {
			return i
		}
	}
	return -1
}

func sortTasksDesc(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
