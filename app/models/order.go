package models

import "time"

// Order statuses are free-form strings; "pending" is stamped on creation and
// the admin overwrites it from the panel.
const (
	OrderStatusPending = "pending"
	OrderStatusUpdated = "updated"
)

// Order is one entry in the orders resource file.
//
// User and Username carry the same value: the panel page reads "username"
// while older data reads "user", so both are written.
type Order struct {
	ID          int       `json:"id"`
	User        string    `json:"user"`
	Username    string    `json:"username"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Reference   string    `json:"reference"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
