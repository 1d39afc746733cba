package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash and is never
// serialized into responses.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstname"`
	LastName     string    `json:"lastname"`
	Email        string    `json:"email"`
	Number       string    `json:"number"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
