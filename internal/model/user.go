package model

import "time"

// User represents an application user record as stored in the `users`
// table.  These structs are used internally by the repository layer;
// handlers define separate response types with JSON tags.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique, lowercased)
	PasswordHash string    // users.password_hash (bcrypt)
	Nickname     string    // users.nickname
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token value is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
