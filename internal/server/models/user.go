package models

import "time"

// User is owned by the registration subsystem; authentication only reads it.
type User struct {
	ID             string
	IdentityHandle string
	UserName       string
	Email          string
	PasswordHash   string
	IsActive       bool
	CreatedAt      time.Time
}
