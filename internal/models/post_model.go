package models

import "time"

type PlatformPost struct {
	ID         string    `db:"id" json:"id"`
	ListingID  string    `db:"listing_id" json:"listing_id"`
	PlatformID string    `db:"platform_id" json:"platform_id"`
	AccountID  string    `db:"account_id" json:"account_id"`
	JobID      string    `db:"job_id" json:"job_id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	URL        string    `db:"url" json:"url"`
	Status     string    `db:"status" json:"status"`
	PostedAt   time.Time `db:"posted_at" json:"posted_at"`
	Views      int       `db:"views" json:"views"`
	Clicks     int       `db:"clicks" json:"clicks"`
	Engagement int       `db:"engagement" json:"engagement"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusPosted = "POSTED"
	PostStatusFailed = "FAILED"
)
