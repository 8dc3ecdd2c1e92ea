package domain

import "time"

// User represents a registered account able to authenticate against the API.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
