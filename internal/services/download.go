package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ambitiondl/xueke-backend/internal/models"
)

// DownloadFile is a synthesized placeholder payload standing in for a real
// document or archive.
type DownloadFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// FileContent builds the placeholder payload for one artifact of a completed
// task, or the all.zip bundle covering every artifact.
func (s *TaskService) FileContent(ctx context.Context, taskID, filename string) (*DownloadFile, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusCompleted {
		return nil, ErrTaskNotCompleted
	}

	if filename == "all.zip" {
		return &DownloadFile{
			Filename:    fmt.Sprintf("xueke_%s.zip", task.TaskID),
			ContentType: "application/zip",
			Body:        []byte(bundleContent(task)),
		}, nil
	}

	if !containsFile(task.DownloadedFiles, filename) {
		return nil, ErrFileNotFound
	}
	return &DownloadFile{
		Filename:    filename,
		ContentType: "application/pdf",
		Body:        []byte(documentContent(task, filename)),
	}, nil
}

func bundleContent(task *models.Task) string {
	return fmt.Sprintf(`This is a simulated ZIP file containing all downloaded files for task %s.

Task Information:
- Task ID: %s
- User: %s
- Email: %s
- Files: %s
- Created: %s

This is a placeholder file. In a real system, this would contain the actual downloaded files.`,
		task.TaskID, task.TaskID, task.Username, task.Email,
		strings.Join(task.DownloadedFiles, ", "), task.CreatedAt.Format(time.RFC3339))
}

func documentContent(task *models.Task, filename string) string {
	now := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf(`Downloaded document - %s

Task Information:
- Task ID: %s
- User: %s
- Email: %s
- Downloaded at: %s

This is a simulated document download. In a real system, this would be the
actual document content retrieved from the source.

Generated at: %s`, filename, task.TaskID, task.Username, task.Email, now, now)
}

func containsFile(files []string, filename string) bool {
	for _, f := range files {
		if f == filename {
			return true
		}
	}
	return false
}
