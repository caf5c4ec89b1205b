package models

import "time"

// GuestSender is the fallback identity for anonymous chat posts.
const GuestSender = "guest"

// MessageLogCap bounds the chat log: after every insert only the most
// recent MessageLogCap entries are retained.
const MessageLogCap = 500

// Message is one entry in the messages resource file.
type Message struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
