// internal/reservation/models.go
package reservation

import (
	"time"

	"github.com/google/uuid"
)

// StatusPending is the status every new reservation is stored with;
// staff confirm it out of band.
const StatusPending = "pending"

// Request is the structured payload parsed from the assistant's
// reservation block, or posted directly by the client in booking mode.
// RequestID is an optional client-supplied idempotency key: retrying a
// booking with the same id cannot create a second row.
type Request struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize int    `json:"party_size"`
	Notes     string `json:"notes,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Reservation is a stored reservation row.
type Reservation struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	PartySize int       `json:"party_size"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
