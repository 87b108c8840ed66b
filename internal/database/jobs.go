package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cajabooks/internal/models"
)

// CreateJob enqueues a background job and returns its id.
func (db *DB) CreateJob(jobType string, payload any) (int64, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	result, err := db.Exec(`
		INSERT INTO jobs (job_type, payload) VALUES (?, ?)
	`, jobType, string(payloadJSON))
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	return result.LastInsertId()
}

// ClaimNextJob atomically claims the oldest pending job. Returns nil when
// the queue is empty.
func (db *DB) ClaimNextJob() (*models.Job, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var job models.Job
	var startedAt, completedAt sql.NullTime
	err = tx.QueryRow(`
		SELECT id, job_type, payload, status, progress, result, attempts, max_attempts, created_at, started_at, completed_at
		FROM jobs
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT 1
	`).Scan(&job.ID, &job.JobType, &job.Payload, &job.Status, &job.Progress, &job.Result,
		&job.Attempts, &job.MaxAttempts, &job.CreatedAt, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query job: %w", err)
	}

	now := time.Now()
	if _, err := tx.Exec(`
		UPDATE jobs SET status = 'running', started_at = ?, attempts = attempts + 1 WHERE id = ?
	`, now, job.ID); err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	job.Status = "running"
	job.StartedAt = &now
	job.Attempts++
	return &job, nil
}

// GetJob returns a job by id.
func (db *DB) GetJob(id int64) (*models.Job, error) {
	var job models.Job
	var startedAt, completedAt sql.NullTime
	err := db.QueryRow(`
		SELECT id, job_type, payload, status, progress, result, attempts, max_attempts, created_at, started_at, completed_at
		FROM jobs
		WHERE id = ?
	`, id).Scan(&job.ID, &job.JobType, &job.Payload, &job.Status, &job.Progress, &job.Result,
		&job.Attempts, &job.MaxAttempts, &job.CreatedAt, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query job: %w", err)
	}

	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}

// UpdateJobProgress records the progress percentage of a running job.
func (db *DB) UpdateJobProgress(id int64, progress int) error {
	if _, err := db.Exec(`UPDATE jobs SET progress = ? WHERE id = ?`, progress, id); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// CompleteJob marks a job completed with a result document.
func (db *DB) CompleteJob(id int64, result string) error {
	if _, err := db.Exec(`
		UPDATE jobs
		SET status = 'completed', progress = 100, result = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, result, id); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// FailJob marks a job failed with an error message.
func (db *DB) FailJob(id int64, errMsg string) error {
	if _, err := db.Exec(`
		UPDATE jobs
		SET status = 'failed', result = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, errMsg, id); err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// RetryJob resets a job to pending for another attempt.
func (db *DB) RetryJob(id int64) error {
	if _, err := db.Exec(`
		UPDATE jobs SET status = 'pending', started_at = NULL WHERE id = ?
	`, id); err != nil {
		return fmt.Errorf("retry job: %w", err)
	}
	return nil
}
