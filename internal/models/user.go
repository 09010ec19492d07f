package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID   `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	FirstName      string      `json:"firstName,omitempty"`
	LastName       string      `json:"lastName,omitempty"`
	Avatar         string      `json:"avatar,omitempty"`
	HashedPassword string      `json:"-"`
	CreatedAt      time.Time   `json:"createdAt"`
	LastActive     time.Time   `json:"lastActive"`
	Friends        []uuid.UUID `json:"friends"`
	// Incoming friend requests awaiting a response from this user.
	PendingRequests []uuid.UUID `json:"pendingRequests"`
}
