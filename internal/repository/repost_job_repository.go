package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/jitenkr2030/onetap-repost/internal/models"
)

type RepostJobRepository interface {
	Create(ctx context.Context, job *models.RepostJob) (string, error)
	GetByID(ctx context.Context, id string) (*models.RepostJob, error)
	FindDue(ctx context.Context, statuses []string, now time.Time, limit int) ([]*models.RepostJob, error)
	ClaimForRun(ctx context.Context, id string, now time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
	MarkFailure(ctx context.Context, id, status, errorMessage string) error
	FindRecurringCompleted(ctx context.Context) ([]*models.RepostJob, error)
	MarkRescheduled(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) (bool, error)
	DeleteOlderThan(ctx context.Context, statuses []string, cutoff time.Time) (int64, error)
	List(ctx context.Context, limit int) ([]*models.RepostJob, error)
}

type repostJobRepository struct {
	db *sql.DB
}

func NewRepostJobRepository(db *sql.DB) RepostJobRepository {
	return &repostJobRepository{db: db}
}

const jobColumns = `id, listing_id, platform_id, account_id, status, scheduled_at, started_at, completed_at, attempts, max_attempts, error_message, rescheduled, config, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*models.RepostJob, error) {
	var job models.RepostJob
	var rawConfig []byte
	err := row.Scan(&job.ID, &job.ListingID, &job.PlatformID, &job.AccountID, &job.Status,
		&job.ScheduledAt, &job.StartedAt, &job.CompletedAt, &job.Attempts, &job.MaxAttempts,
		&job.ErrorMessage, &job.Rescheduled, &rawConfig, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &job.Config); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
	}
	return &job, nil
}

func (r *repostJobRepository) Create(ctx context.Context, job *models.RepostJob) (string, error) {
	if job.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return "", err
		}
		job.ID = id
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = models.DefaultMaxAttempts
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}

	rawConfig, err := json.Marshal(job.Config)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO repost_jobs (id, listing_id, platform_id, account_id, status, scheduled_at, max_attempts, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id string
	err = r.db.QueryRowContext(ctx, query, job.ID, job.ListingID, job.PlatformID, job.AccountID,
		job.Status, job.ScheduledAt, job.MaxAttempts, rawConfig).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return id, nil
}

func (r *repostJobRepository) GetByID(ctx context.Context, id string) (*models.RepostJob, error) {
	query := `SELECT ` + jobColumns + ` FROM repost_jobs WHERE id = $1`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return job, nil
}

func (r *repostJobRepository) FindDue(ctx context.Context, statuses []string, now time.Time, limit int) ([]*models.RepostJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM repost_jobs
		WHERE status = ANY($1) AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(statuses), now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ClaimForRun transitions the job to RUNNING only if it is still PENDING or
// RETRYING, so two overlapping dispatch ticks cannot run the same job twice.
func (r *repostJobRepository) ClaimForRun(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE repost_jobs
		SET status = $1,
			started_at = $2,
			attempts = attempts + 1,
			updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`
	res, err := r.db.ExecContext(ctx, query, models.JobStatusRunning, now, id,
		pq.Array([]string{models.JobStatusPending, models.JobStatusRetrying}))
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repostJobRepository) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	query := `
		UPDATE repost_jobs
		SET status = $1,
			completed_at = $2,
			error_message = '',
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, models.JobStatusCompleted, completedAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *repostJobRepository) MarkFailure(ctx context.Context, id, status, errorMessage string) error {
	query := `
		UPDATE repost_jobs
		SET status = $1,
			error_message = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, errorMessage, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// FindRecurringCompleted selects completed recurring jobs that have not been
// rescheduled yet and whose listing is still active.
func (r *repostJobRepository) FindRecurringCompleted(ctx context.Context) ([]*models.RepostJob, error) {
	query := `
		SELECT j.id, j.listing_id, j.platform_id, j.account_id, j.status, j.scheduled_at, j.started_at, j.completed_at,
			j.attempts, j.max_attempts, j.error_message, j.rescheduled, j.config, j.created_at, j.updated_at
		FROM repost_jobs j
		JOIN listings l ON l.id = j.listing_id
		WHERE j.status = $1
			AND j.rescheduled = FALSE
			AND (j.config ->> 'recurring')::boolean = TRUE
			AND l.status = $2
	`
	rows, err := r.db.QueryContext(ctx, query, models.JobStatusCompleted, models.ListingStatusActive)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

func (r *repostJobRepository) MarkRescheduled(ctx context.Context, id string) error {
	query := `UPDATE repost_jobs SET rescheduled = TRUE, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Cancel is only honored while the job is waiting; running and terminal jobs
// are left alone.
func (r *repostJobRepository) Cancel(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE repost_jobs
		SET status = $1, completed_at = $2, updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`
	res, err := r.db.ExecContext(ctx, query, models.JobStatusCancelled, time.Now(), id,
		pq.Array([]string{models.JobStatusPending, models.JobStatusRetrying}))
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *repostJobRepository) DeleteOlderThan(ctx context.Context, statuses []string, cutoff time.Time) (int64, error) {
	query := `DELETE FROM repost_jobs WHERE status = ANY($1) AND completed_at < $2`
	res, err := r.db.ExecContext(ctx, query, pq.Array(statuses), cutoff)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repostJobRepository) List(ctx context.Context, limit int) ([]*models.RepostJob, error) {
	query := `SELECT ` + jobColumns + ` FROM repost_jobs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectJobs(rows)
}

func collectJobs(rows *sql.Rows) ([]*models.RepostJob, error) {
	var jobs []*models.RepostJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
