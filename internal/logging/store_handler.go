package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventAppender is the slice of the event log the handler needs.
type EventAppender interface {
	Append(ctx context.Context, eventType string, data map[string]any) error
}

// StoreHandler is an slog.Handler that batches ERROR+ records into the
// persisted event log as system_error entries, so operational failures show
// up next to domain events in /api/backup.
type StoreHandler struct {
	events EventAppender
	mu     sync.Mutex
	buffer []map[string]any
	ticker *time.Ticker
	done   chan struct{}
}

func NewStoreHandler(events EventAppender) *StoreHandler {
	h := &StoreHandler{
		events: events,
		buffer: make([]map[string]any, 0, 20),
		ticker: time.NewTicker(5 * time.Second),
		done:   make(chan struct{}),
	}
	go h.flushLoop()
	return h
}

func (h *StoreHandler) flushLoop() {
	for {
		select {
		case <-h.ticker.C:
			h.flush()
		case <-h.done:
			h.flush()
			return
		}
	}
}

func (h *StoreHandler) flush() {
	h.mu.Lock()
	if len(h.buffer) == 0 {
		h.mu.Unlock()
		return
	}
	batch := h.buffer
	h.buffer = make([]map[string]any, 0, 20)
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, data := range batch {
		// Best effort only. A broken store would make slog.Error here recurse.
		_ = h.events.Append(ctx, "system_error", data)
	}
}

func (h *StoreHandler) Stop() {
	h.ticker.Stop()
	close(h.done)
}

// Enabled only handles ERROR and above.
func (h *StoreHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *StoreHandler) Handle(_ context.Context, record slog.Record) error {
	data := map[string]any{
		"level":   record.Level.String(),
		"message": record.Message,
	}
	record.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	h.buffer = append(h.buffer, data)
	needFlush := len(h.buffer) >= 20
	h.mu.Unlock()

	if needFlush {
		go h.flush()
	}
	return nil
}

func (h *StoreHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *StoreHandler) WithGroup(name string) slog.Handler {
	return h
}
