package repository

import (
	"context"
	"database/sql"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/jitenkr2030/onetap-repost/internal/models"
)

type PlatformPostRepository interface {
	Create(ctx context.Context, post *models.PlatformPost) (string, error)
	GetByID(ctx context.Context, id string) (*models.PlatformPost, error)
	UpdateStats(ctx context.Context, id string, views, clicks, engagement int) error
	List(ctx context.Context, limit int) ([]*models.PlatformPost, error)
}

type platformPostRepository struct {
	db *sql.DB
}

func NewPlatformPostRepository(db *sql.DB) PlatformPostRepository {
	return &platformPostRepository{db: db}
}

const postColumns = `id, listing_id, platform_id, account_id, job_id, external_id, url, status, posted_at, views, clicks, engagement, created_at`

func (r *platformPostRepository) Create(ctx context.Context, post *models.PlatformPost) (string, error) {
	if post.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return "", err
		}
		post.ID = id
	}

	query := `
		INSERT INTO platform_posts (id, listing_id, platform_id, account_id, job_id, external_id, url, status, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id string
	err := r.db.QueryRowContext(ctx, query, post.ID, post.ListingID, post.PlatformID, post.AccountID,
		post.JobID, post.ExternalID, post.URL, post.Status, post.PostedAt).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return id, nil
}

func (r *platformPostRepository) GetByID(ctx context.Context, id string) (*models.PlatformPost, error) {
	query := `SELECT ` + postColumns + ` FROM platform_posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var post models.PlatformPost
	err := row.Scan(&post.ID, &post.ListingID, &post.PlatformID, &post.AccountID, &post.JobID,
		&post.ExternalID, &post.URL, &post.Status, &post.PostedAt, &post.Views, &post.Clicks,
		&post.Engagement, &post.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &post, nil
}

// UpdateStats is update-if-exists: the stats fetch runs after a delay and the
// post may have been removed in the meantime. Zero rows affected is not an
// error.
func (r *platformPostRepository) UpdateStats(ctx context.Context, id string, views, clicks, engagement int) error {
	query := `UPDATE platform_posts SET views = $1, clicks = $2, engagement = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, views, clicks, engagement, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *platformPostRepository) List(ctx context.Context, limit int) ([]*models.PlatformPost, error) {
	query := `SELECT ` + postColumns + ` FROM platform_posts ORDER BY posted_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.PlatformPost
	for rows.Next() {
		var post models.PlatformPost
		err := rows.Scan(&post.ID, &post.ListingID, &post.PlatformID, &post.AccountID, &post.JobID,
			&post.ExternalID, &post.URL, &post.Status, &post.PostedAt, &post.Views, &post.Clicks,
			&post.Engagement, &post.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &post)
	}
	return posts, rows.Err()
}
