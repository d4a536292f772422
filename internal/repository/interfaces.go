// Package repository defines data access interfaces for ReuniteIt.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/reuniteit/internal/domain"
)

// UserRepository defines the interface for account data access.
// All email parameters are expected pre-normalized (lower-cased, trimmed);
// the backing store additionally enforces a uniqueness constraint on the
// normalized email column, so a pre-check race cannot produce duplicates.
type UserRepository interface {
	// Create creates a new account. Returns ErrDuplicate when the email is
	// already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves an account by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves an account by normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail checks whether an account with the normalized email
	// exists, optionally excluding one account ID (for profile edits).
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)

	// Update persists changes to an existing account. Returns ErrDuplicate
	// on an email collision and ErrNotFound if the account is gone.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes an account by ID.
	Delete(ctx context.Context, id string) error

	// List returns all accounts, newest first.
	List(ctx context.Context) ([]*domain.User, error)

	// Count returns the total number of accounts.
	Count(ctx context.Context) (int64, error)
}

// ReportRepository defines the interface for report data access.
type ReportRepository interface {
	// Create creates a new report.
	Create(ctx context.Context, report *domain.Report) error

	// GetByID retrieves a report by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*domain.Report, error)

	// List returns all reports, newest first.
	List(ctx context.Context) ([]*domain.Report, error)

	// ListByOwner returns the reports posted by one account, newest first.
	ListByOwner(ctx context.Context, userID string) ([]*domain.Report, error)

	// Search returns reports whose category, description, or location
	// contains the query, case-insensitively, newest first. An empty query
	// is equivalent to List.
	Search(ctx context.Context, query string) ([]*domain.Report, error)

	// SetApproved updates the moderation state of a report.
	SetApproved(ctx context.Context, id string, approved bool) error

	// Delete removes a report by ID.
	Delete(ctx context.Context, id string) error

	// DeleteByOwner removes every report posted by the given account and
	// returns how many were removed. Used for the cascading account delete.
	DeleteByOwner(ctx context.Context, userID string) (int64, error)

	// Stats returns the aggregate report counts for the admin dashboard.
	// TotalUsers is filled in by the caller.
	Stats(ctx context.Context) (*domain.Stats, error)
}
