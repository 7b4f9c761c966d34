package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns uploaded documents
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}
