package models

import "time"

// StateTag marks which multi-step flow the user's next free-text
// message belongs to. Empty means no flow is pending.
type StateTag string

const (
	StateNone                 StateTag = ""
	StateAwaitingEmailName    StateTag = "awaiting_email_name"
	StateAwaitingForwardEmail StateTag = "awaiting_forward_email"
	StateAwaitingBroadcast    StateTag = "awaiting_broadcast_message"
	StateAwaitingUserSearch   StateTag = "awaiting_user_id_search"
	StateAwaitingWelcome      StateTag = "awaiting_welcome_message"
)

// User is the persisted per-chat record
type User struct {
	ChatID        int64     `json:"chat_id"`
	State         StateTag  `json:"state,omitempty"`
	CreatedEmails []string  `json:"created_emails,omitempty"` // insertion order = creation order
	ForwardEmail  string    `json:"forward_email,omitempty"`
	IsBanned      bool      `json:"is_banned,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastActive    time.Time `json:"last_active"`
}

// OwnsEmail reports whether the address is in the user's created list
func (u *User) OwnsEmail(address string) bool {
	for _, e := range u.CreatedEmails {
		if e == address {
			return true
		}
	}
	return false
}

// RemoveEmail removes the address from the created list, preserving order
func (u *User) RemoveEmail(address string) {
	for i, e := range u.CreatedEmails {
		if e == address {
			u.CreatedEmails = append(u.CreatedEmails[:i], u.CreatedEmails[i+1:]...)
			return
		}
	}
}
