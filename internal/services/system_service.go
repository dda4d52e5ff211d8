package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/dto"
	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/ambitiondl/xueke-backend/internal/repository"
)

const (
	ServiceName    = "xueke-download-system"
	ServiceVersion = "2.0.0"
)

// SystemService covers the operational surface: ping, stats, settings,
// backup.
type SystemService struct {
	repo      *repository.Repository
	events    *EventLogService
	users     *UserService
	startedAt time.Time
}

func NewSystemService(repo *repository.Repository, events *EventLogService, users *UserService) *SystemService {
	return &SystemService{repo: repo, events: events, users: users, startedAt: time.Now()}
}

func (s *SystemService) Ping() dto.PingResponse {
	return dto.PingResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
		Version:   ServiceVersion,
	}
}

// Stats aggregates counts across all collections plus a 24-hour task trend.
func (s *SystemService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	users, err := s.repo.Users(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	licenses, err := s.repo.Licenses(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	last24h := now.Add(-24 * time.Hour)
	stats := dto.StatsResponse{
		TotalUsers:    len(users),
		TotalTasks:    len(tasks),
		TotalLicenses: len(licenses),
		ServerTime:    now.Format(time.RFC3339),
		Uptime:        int(time.Since(s.startedAt).Seconds()),
	}
	for _, u := range users {
		if u.IsActive {
			stats.ActiveUsers++
		}
	}
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusPending:
			stats.PendingTasks++
		case models.TaskStatusProcessing:
			stats.ProcessingTasks++
		case models.TaskStatusCompleted:
			stats.CompletedTasks++
		case models.TaskStatusFailed:
			stats.FailedTasks++
		}
		if t.CreatedAt.After(last24h) {
			stats.TasksLast24h++
		}
	}
	for _, l := range licenses {
		if l.Valid(now) {
			stats.ActiveLicenses++
		} else if l.ExpiresAt.Before(now) {
			stats.ExpiredLicenses++
		}
	}
	return &stats, nil
}

// SaveSettings shallow-merges the provided keys into the settings blob and
// stamps updated_at/updated_by.
func (s *SystemService) SaveSettings(ctx context.Context, patch map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	patch["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	patch["updated_by"] = "system"

	settings, err := s.repo.UpdateSettings(ctx, patch)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, "settings_updated", map[string]any{"settings": keys})
	return settings, nil
}

// Backup returns a full snapshot of all collections, settings, and up to
// 1000 recent log entries. User credentials are stripped.
func (s *SystemService) Backup(ctx context.Context) (*dto.BackupResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	licenses, err := s.repo.Licenses(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.repo.Settings(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.events.Recent(ctx, 1000)
	if err != nil {
		return nil, err
	}

	backup := dto.BackupResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   ServiceVersion,
		Users:     users,
		Tasks:     tasks,
		Licenses:  licenses,
		Settings:  settings,
		Logs:      logs,
		Summary: dto.BackupSummary{
			UserCount:    len(users),
			TaskCount:    len(tasks),
			LicenseCount: len(licenses),
			LogCount:     len(logs),
		},
	}

	if raw, err := json.Marshal(backup); err == nil {
		s.logEvent(ctx, "backup_created", map[string]any{"backup_size": len(raw)})
	}
	return &backup, nil
}

func (s *SystemService) logEvent(ctx context.Context, eventType string, data map[string]any) {
	if err := s.events.Append(ctx, eventType, data); err != nil {
		slog.Error("failed to log event", "type", eventType, "error", err)
	}
}
