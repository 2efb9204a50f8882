package models

import "time"

// SocialAccount holds the connected platform account and its credentials.
// AccessToken and RefreshToken are stored AES-GCM encrypted.
type SocialAccount struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Platform       string    `db:"platform" json:"platform"`
	AccountName    string    `db:"account_name" json:"account_name"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	ChatID         string    `db:"chat_id" json:"chat_id"`
	PhoneNumberID  string    `db:"phone_number_id" json:"phone_number_id"`
	AccountStatus  string    `db:"account_status" json:"account_status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
