package services

import (
	"context"
	"sort"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/ambitiondl/xueke-backend/internal/repository"
	"github.com/google/uuid"
)

// EventLogService appends domain events to the capped log collection.
type EventLogService struct {
	repo *repository.Repository
	cap  int
}

func NewEventLogService(repo *repository.Repository, logCap int) *EventLogService {
	if logCap <= 0 {
		logCap = 2000
	}
	return &EventLogService{repo: repo, cap: logCap}
}

// Append records one event. When the collection exceeds the cap the oldest
// entries are evicted.
func (s *EventLogService) Append(ctx context.Context, eventType string, data map[string]any) error {
	entry := models.LogEntry{
		ID:        newID("log"),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
		IP:        "system",
	}
	_, err := s.repo.UpdateLogs(ctx, func(logs []models.LogEntry) ([]models.LogEntry, error) {
		logs = append(logs, entry)
		if len(logs) > s.cap {
			logs = logs[len(logs)-s.cap:]
		}
		return logs, nil
	})
	return err
}

// Recent returns up to limit entries, newest first.
func (s *EventLogService) Recent(ctx context.Context, limit int) ([]models.LogEntry, error) {
	logs, err := s.repo.Logs(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// TrimTo drops the oldest entries so at most keep remain. Returns how many
// remain afterwards.
func (s *EventLogService) TrimTo(ctx context.Context, keep int) (int, error) {
	logs, err := s.repo.UpdateLogs(ctx, func(logs []models.LogEntry) ([]models.LogEntry, error) {
		if len(logs) > keep {
			logs = logs[len(logs)-keep:]
		}
		return logs, nil
	})
	if err != nil {
		return 0, err
	}
	return len(logs), nil
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
