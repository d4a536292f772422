// Package service provides business logic services for ReuniteIt.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/reuniteit/internal/domain"
	"github.com/prn-tf/reuniteit/internal/repository"
)

// UserService owns the account entity and its password-hashing lifecycle.
type UserService struct {
	userRepo   repository.UserRepository
	reportRepo repository.ReportRepository
	bcryptCost int
	logger     zerolog.Logger
}

// NewUserService creates a new UserService. bcryptCost is the adaptive
// hashing cost factor; raising it slows new hashes without invalidating
// existing ones.
func NewUserService(userRepo repository.UserRepository, reportRepo repository.ReportRepository, bcryptCost int, logger zerolog.Logger) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo:   userRepo,
		reportRepo: reportRepo,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "user").Logger(),
	}
}

// CreateUserInput contains the data needed to create an account.
type CreateUserInput struct {
	FullName string
	Email    string
	Password string
}

// Create creates a new account. The raw password is hashed with bcrypt and
// discarded; it is never stored, logged, or returned.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(input.Email)

	// Pre-check for a friendlier error message. The unique index on the
	// email column is the actual safety mechanism under concurrent signups;
	// a duplicate-key failure below maps to the same outcome.
	exists, err := s.userRepo.ExistsByEmail(ctx, email, "")
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternal)
	}

	user := domain.NewUser(input.FullName, email, string(passwordHash))

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race between pre-check and insert.
			return nil, domain.ErrEmailTaken
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("account created")

	return user, nil
}

// Authenticate verifies credentials and returns the account's public
// identity. The password hash is never part of the returned value.
//
// A missing account and a wrong password are distinct outcomes
// (domain.ErrUserNotFound vs domain.ErrInvalidCredentials); the login page
// has always shown the distinction and callers rely on the two messages.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.PublicUser, error) {
	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug().Msg("no account for submitted email")
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to look up account")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID).Msg("invalid password during authentication")
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user authenticated")
	return user.Public(), nil
}

// GetByID retrieves an account's public identity by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.PublicUser, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return user.Public(), nil
}

// UpdateProfileInput contains the editable profile fields. There is
// deliberately no password field on this input: profile edits must never
// touch the credential, and in particular must never re-hash the stored
// hash as if it were a raw password.
type UpdateProfileInput struct {
	UserID   string
	FullName string
	Email    string
}

// UpdateProfile updates an account's name and email.
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.PublicUser, error) {
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", input.UserID).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	email := domain.NormalizeEmail(input.Email)

	// Uniqueness check excludes the account itself so keeping the same
	// email is not a conflict.
	exists, err := s.userRepo.ExistsByEmail(ctx, email, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	user.FullName = strings.TrimSpace(input.FullName)
	user.Email = email
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, domain.ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("profile updated")
	return user.Public(), nil
}

// Delete removes an account and, as an explicit cascading step, every
// report the account posted.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if !domain.ValidID(id) {
		return domain.ErrUserNotFound
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	removed, err := s.reportRepo.DeleteByOwner(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user's reports")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().
		Str("user_id", id).
		Int64("reports_removed", removed).
		Msg("account deleted")

	return nil
}

// List returns all accounts, newest first. Used by the admin dashboard.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return users, nil
}

// Count returns the total number of accounts.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count users")
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return count, nil
}

// validateCreateInput collects every violated constraint so the signup form
// can show all of them, not just the first.
func validateCreateInput(input CreateUserInput) error {
	var messages []string

	if len(strings.TrimSpace(input.FullName)) < 2 {
		messages = append(messages, "Name must have at least 2 characters")
	}
	if !validEmail(input.Email) {
		messages = append(messages, "Enter a valid email")
	}
	if len(input.Password) < 6 {
		messages = append(messages, "Password must be at least 6 characters")
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}
	return nil
}

func validateProfileInput(input UpdateProfileInput) error {
	var messages []string

	if strings.TrimSpace(input.FullName) == "" {
		messages = append(messages, "Full name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		messages = append(messages, "Email is required")
	} else if !validEmail(input.Email) {
		messages = append(messages, "Enter a valid email")
	}

	if len(messages) > 0 {
		return domain.NewValidationError(messages...)
	}
	return nil
}

// validEmail checks the basic local@domain.tld shape. net/mail accepts
// addresses without a dot in the domain, so require one explicitly.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
