package model

import "time"

// User represents an application user record as stored in the `users`
// table.  JSON tags are omitted because these structs are used by the
// repository layer; handlers define separate response types with the
// field subset they expose.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name shown to hosts and guests.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	IsAdmin      – grants cross-owner mutation and deletion rights.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
