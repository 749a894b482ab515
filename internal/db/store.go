package db

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/selintasman/todo-list/internal/model"
)

// Store is the session journal: one history row per task list mutation.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Record(ctx context.Context, event model.Event) (model.HistoryEntry, error) {
	createdAt := event.At
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	result, err := s.DB.ExecContext(ctx,
		"INSERT INTO history (task_id, event_type, details, created_at) VALUES (?, ?, ?, ?)",
		event.TaskID, event.Type, event.Details, createdAt)
	if err != nil {
		return model.HistoryEntry{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.HistoryEntry{}, err
	}

	return model.HistoryEntry{
		ID:        id,
		TaskID:    event.TaskID,
		EventType: event.Type,
		Details:   event.Details,
		CreatedAt: createdAt,
	}, nil
}

// Hook adapts Record to todo.Options.OnEvent. Failures are logged, never
// returned, so a journal problem cannot block a task list mutation.
func (s *Store) Hook(ctx context.Context) func(model.Event) {
	return func(event model.Event) {
		if _, err := s.Record(ctx, event); err != nil {
			log.Printf("journal %s: %v", event.Type, err)
		}
	}
}

func (s *Store) ListHistory(ctx context.Context, taskID string) ([]model.HistoryEntry, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, task_id, event_type, details, created_at FROM history WHERE task_id = ? ORDER BY id",
		taskID)
	if err != nil {
		return nil, err
	}
	return scanHistory(rows)
}

// ListRecent returns the newest entries first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, task_id, event_type, details, created_at FROM history ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	return scanHistory(rows)
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM history")
	return err
}

func scanHistory(rows *sql.Rows) ([]model.HistoryEntry, error) {
	defer rows.Close()

	history := []model.HistoryEntry{}
	for rows.Next() {
		var entry model.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.EventType, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}
