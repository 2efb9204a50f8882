package models

import "time"

// Listing is owned by the surrounding CRUD app. The worker only reads it.
type Listing struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Location    string    `db:"location" json:"location"`
	Category    string    `db:"category" json:"category"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Media []*ListingMedia `json:"media"`
}

type ListingMedia struct {
	ID         string `db:"id" json:"id"`
	ListingID  string `db:"listing_id" json:"listing_id"`
	MediaType  string `db:"media_type" json:"media_type"` // IMAGE, VIDEO
	URL        string `db:"url" json:"url"`
	StorageKey string `db:"storage_key" json:"storage_key"`
	Order      int    `db:"display_order" json:"order"`
}

const (
	ListingStatusActive = "ACTIVE"

	MediaTypeImage = "IMAGE"
	MediaTypeVideo = "VIDEO"
)
