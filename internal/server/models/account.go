// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a registered user. PasswordHash holds the bcrypt secret and is
// never serialized to clients; use Public for anything leaving the server.
type Account struct {
	ID           int64
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicAccount is the only account view exposed to callers.
type PublicAccount struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Public returns the exposable view of the account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Username: a.UserName}
}
