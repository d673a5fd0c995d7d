package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the Postgres identity row. Entries reference it by the string form
// of ID only.
type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}
