package models

import "time"

// Message represents a stored email message
type Message struct {
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"` // parsed plain text
	ReceivedAt time.Time `json:"received_at"`
	IsRead     bool      `json:"is_read"`
}

// Mailbox is a disposable address and its stored messages.
// Messages are kept newest-first: arrivals are prepended, and a
// message's position in the slice is the global index callback
// tokens use to address it.
type Mailbox struct {
	Address  string    `json:"address"`
	Owner    int64     `json:"owner"` // Telegram chat ID
	Messages []Message `json:"messages,omitempty"`
}

// Prepend inserts a new arrival at global index 0
func (m *Mailbox) Prepend(msg Message) {
	m.Messages = append([]Message{msg}, m.Messages...)
}

// At returns the message at the given global index, or nil if the
// index no longer resolves (the list shrank since it was issued).
func (m *Mailbox) At(index int) *Message {
	if index < 0 || index >= len(m.Messages) {
		return nil
	}
	return &m.Messages[index]
}

// RemoveAt deletes the message at the given global index. Every
// message after it shifts one position down. Returns false if the
// index is already out of bounds.
func (m *Mailbox) RemoveAt(index int) bool {
	if index < 0 || index >= len(m.Messages) {
		return false
	}
	m.Messages = append(m.Messages[:index], m.Messages[index+1:]...)
	return true
}

// Unread counts unread messages
func (m *Mailbox) Unread() int {
	n := 0
	for _, msg := range m.Messages {
		if !msg.IsRead {
			n++
		}
	}
	return n
}
