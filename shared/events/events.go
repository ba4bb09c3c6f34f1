package events

import "time"

// Event types
const (
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"

	AccountCreated       = "account.created"
	AccountUpdated       = "account.updated"
	AccountStatusUpdated = "account.status_updated"
	AccountClosed        = "account.closed"
)

// Stream names
const (
	UserEventsStream    = "user.events"
	AccountEventsStream = "account.events"
)

// Base event structure
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// User events consumed by the account service.
type UserChangedEvent struct {
	UserID int64 `json:"userId"`
}

// Account events
type AccountCreatedEvent struct {
	AccountNumber string `json:"accountNumber"`
	UserID        int64  `json:"userId"`
	AccountType   string `json:"accountType"`
}

type AccountUpdatedEvent struct {
	AccountNumber    string `json:"accountNumber"`
	UserID           int64  `json:"userId"`
	AvailableBalance string `json:"availableBalance"`
}

type AccountStatusUpdatedEvent struct {
	AccountNumber  string `json:"accountNumber"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
}

type AccountClosedEvent struct {
	AccountNumber string `json:"accountNumber"`
	UserID        int64  `json:"userId"`
}
