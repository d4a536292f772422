// Package domain contains the core business entities for ReuniteIt.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the lost-and-found listing site.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	// ID is the opaque unique identifier, generated at creation.
	ID string `json:"id"`

	// FullName is the display name. Constraints: trimmed, at least 2 characters.
	FullName string `json:"full_name"`

	// Email is stored lower-cased and trimmed, and is case-insensitively
	// unique across all accounts.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This must never be exposed in responses or rendered views.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the account was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with a generated ID and normalized fields.
// The caller supplies an already computed password hash; raw passwords
// never reach the entity.
func NewUser(fullName, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(fullName),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Public returns the projection of the account that is safe to hand to
// templates and downstream consumers. The password hash is not part of it.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
	}
}

// PublicUser is the identity attached to an authenticated request.
type PublicUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// NormalizeEmail lower-cases and trims an email address. All lookups and
// uniqueness checks operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidID reports whether s is structurally a valid account or report
// identifier. Session cookies carry these values, so anything the client
// sends is checked before it reaches a repository.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
