// internal/journal/journal.go
// Package journal keeps a Postgres audit trail of submit attempts, one row
// per create/update call against the platform API.
package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"
)

// Entry is one recorded submit attempt.
type Entry struct {
	ID         string
	EntityType string
	EntityID   string
	Action     string
	Success    bool
	Message    string
	CreatedAt  time.Time
}

type Journal struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

func New(db *sql.DB, log logger.Logger) *Journal {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Journal{
		db:  db,
		log: log,
		now: time.Now,
	}
}

// RecordSubmission inserts one audit row. It satisfies the orchestrator's
// Recorder interface.
func (j *Journal) RecordSubmission(ctx context.Context, entityType, entityID, action string, success bool, message string) error {
	id := uuid.New().String()
	createdAt := j.now().UTC()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO form_submissions (
			id, entity_type, entity_id, action, success, message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		entityType,
		entityID,
		action,
		success,
		message,
		createdAt,
	)
	if err != nil {
		j.log.Error("Journal insert failed", map[string]interface{}{
			"entityType": entityType,
			"entityId":   entityID,
			"action":     action,
			"error":      err.Error(),
		})
		return errors.NewJournalWriteFailedError(err)
	}

	j.log.Info("Submission recorded", map[string]interface{}{
		"entityType": entityType,
		"entityId":   entityID,
		"action":     action,
		"success":    success,
	})
	return nil
}

// Recent returns the latest entries for one entity type, newest first.
func (j *Journal) Recent(ctx context.Context, entityType string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, action, success, message, created_at
		FROM form_submissions
		WHERE entity_type = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		entityType,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Action,
			&entry.Success,
			&entry.Message,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
