package panel

import "time"

// Account is a panel user account.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Admin    bool   `json:"admin"`
	Coins    int64  `json:"coins"`
}

// Server is a provisioned game/app server on the panel.
type Server struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Node   string       `json:"node"`
	Status string       `json:"status"`
	Limits ServerLimits `json:"limits"`
}

// ServerLimits are the resource bounds of a server.
type ServerLimits struct {
	MemoryMB int `json:"memory_mb"`
	DiskMB   int `json:"disk_mb"`
	CPU      int `json:"cpu"`
}

// Event is a panel audit/activity event.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
