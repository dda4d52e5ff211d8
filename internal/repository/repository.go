package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ambitiondl/xueke-backend/internal/models"
	"github.com/ambitiondl/xueke-backend/internal/store"
)

// Store keys, one per collection. Every save overwrites the whole collection.
const (
	keyUsers    = "users"
	keyTasks    = "tasks"
	keyLicenses = "licenses"
	keyLogs     = "logs"
	keySettings = "settings"
)

// Repository provides typed load/save over the blob store. Each collection is
// guarded by its own mutex so a load-mutate-save cycle is never interleaved
// with another writer of the same collection.
type Repository struct {
	store store.Store

	usersMu    sync.Mutex
	tasksMu    sync.Mutex
	licensesMu sync.Mutex
	logsMu     sync.Mutex
	settingsMu sync.Mutex
}

func New(st store.Store) *Repository {
	return &Repository{store: st}
}

func load[T any](ctx context.Context, st store.Store, key string, seed func() []T) ([]T, error) {
	raw, err := st.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		if seed != nil {
			return seed(), nil
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return records, nil
}

func save[T any](ctx context.Context, st store.Store, key string, records []T) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := st.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// update runs the full load-mutate-save cycle. The caller must hold the
// collection mutex. A mutate error aborts without saving.
func update[T any](ctx context.Context, st store.Store, key string, seed func() []T, mutate func([]T) ([]T, error)) ([]T, error) {
	records, err := load(ctx, st, key, seed)
	if err != nil {
		return nil, err
	}
	out, err := mutate(records)
	if err != nil {
		return nil, err
	}
	if err := save(ctx, st, key, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Users(ctx context.Context) ([]models.User, error) {
	r.usersMu.Lock()
	defer r.usersMu.Unlock()
	return load(ctx, r.store, keyUsers, DefaultUsers)
}

func (r *Repository) UpdateUsers(ctx context.Context, mutate func([]models.User) ([]models.User, error)) ([]models.User, error) {
	r.usersMu.Lock()
	defer r.usersMu.Unlock()
	return update(ctx, r.store, keyUsers, DefaultUsers, mutate)
}

func (r *Repository) Tasks(ctx context.Context) ([]models.Task, error) {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()
	return load[models.Task](ctx, r.store, keyTasks, nil)
}

func (r *Repository) UpdateTasks(ctx context.Context, mutate func([]models.Task) ([]models.Task, error)) ([]models.Task, error) {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()
	return update(ctx, r.store, keyTasks, nil, mutate)
}

func (r *Repository) Licenses(ctx context.Context) ([]models.License, error) {
	r.licensesMu.Lock()
	defer r.licensesMu.Unlock()
	return load(ctx, r.store, keyLicenses, DefaultLicenses)
}

func (r *Repository) UpdateLicenses(ctx context.Context, mutate func([]models.License) ([]models.License, error)) ([]models.License, error) {
	r.licensesMu.Lock()
	defer r.licensesMu.Unlock()
	return update(ctx, r.store, keyLicenses, DefaultLicenses, mutate)
}

func (r *Repository) Logs(ctx context.Context) ([]models.LogEntry, error) {
	r.logsMu.Lock()
	defer r.logsMu.Unlock()
	return load[models.LogEntry](ctx, r.store, keyLogs, nil)
}

func (r *Repository) UpdateLogs(ctx context.Context, mutate func([]models.LogEntry) ([]models.LogEntry, error)) ([]models.LogEntry, error) {
	r.logsMu.Lock()
	defer r.logsMu.Unlock()
	return update(ctx, r.store, keyLogs, nil, mutate)
}

func (r *Repository) Settings(ctx context.Context) (map[string]any, error) {
	r.settingsMu.Lock()
	defer r.settingsMu.Unlock()
	return r.settingsLocked(ctx)
}

func (r *Repository) settingsLocked(ctx context.Context) (map[string]any, error) {
	raw, err := r.store.Get(ctx, keySettings)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	var settings map[string]any
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings shallow-merges patch into the stored settings blob.
func (r *Repository) UpdateSettings(ctx context.Context, patch map[string]any) (map[string]any, error) {
	r.settingsMu.Lock()
	defer r.settingsMu.Unlock()

	settings, err := r.settingsLocked(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		settings[k] = v
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	if err := r.store.Put(ctx, keySettings, raw); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}
