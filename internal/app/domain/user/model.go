// Package user defines the account model.
package user

import "time"

// User is a registered account. PasswordHash is bcrypt material owned by
// the accounts service; the raw credential is never stored.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
