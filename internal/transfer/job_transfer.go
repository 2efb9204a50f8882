package transfer

type JobCreation struct {
	ListingID   string `json:"listing_id"`
	Platform    string `json:"platform"`
	AccountID   string `json:"account_id"`
	ScheduleType string `json:"schedule_type"` // now, later, recurring
	ScheduledAt string `json:"scheduled_at,omitempty"` // RFC 3339, required for "later"
	Frequency   string `json:"frequency,omitempty"`    // hourly, daily, weekly, monthly
}
