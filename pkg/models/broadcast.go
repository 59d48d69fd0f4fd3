package models

import "time"

// BroadcastDraft holds broadcast text between preview and confirmation.
// Stored under its own short-TTL key, not on the admin's user record,
// so it survives unrelated messages and expires if never confirmed.
type BroadcastDraft struct {
	ID        string    `json:"id"`
	AdminID   int64     `json:"admin_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is the cached aggregate snapshot shown in the admin panel
type Stats struct {
	Users      int       `json:"users"`
	Banned     int       `json:"banned"`
	Mailboxes  int       `json:"mailboxes"`
	Messages   int       `json:"messages"`
	ComputedAt time.Time `json:"computed_at"`
}

// DetectedCode represents a verification code found in a message body
type DetectedCode struct {
	Type  string `json:"type"`  // "otp", "verification", "code", ...
	Value string `json:"value"` // the code itself
}
