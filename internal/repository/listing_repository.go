package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jitenkr2030/onetap-repost/internal/models"
)

type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Listing, error)
}

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT id, user_id, title, description, price, location, category, status, created_at, updated_at FROM listings WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var listing models.Listing
	err := row.Scan(&listing.ID, &listing.UserID, &listing.Title, &listing.Description,
		&listing.Price, &listing.Location, &listing.Category, &listing.Status,
		&listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	media, err := r.listMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.Media = media

	return &listing, nil
}

func (r *listingRepository) listMedia(ctx context.Context, listingID string) ([]*models.ListingMedia, error) {
	query := `
		SELECT id, listing_id, media_type, url, storage_key, display_order
		FROM listing_media
		WHERE listing_id = $1
		ORDER BY display_order ASC
	`
	rows, err := r.db.QueryContext(ctx, query, listingID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var media []*models.ListingMedia
	for rows.Next() {
		var m models.ListingMedia
		err := rows.Scan(&m.ID, &m.ListingID, &m.MediaType, &m.URL, &m.StorageKey, &m.Order)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		media = append(media, &m)
	}
	return media, rows.Err()
}
