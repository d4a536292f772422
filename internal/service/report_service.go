package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/domain"
	"github.com/prn-tf/reuniteit/internal/repository"
	"github.com/prn-tf/reuniteit/internal/storage"
)

// ReportService handles lost-and-found report operations.
type ReportService struct {
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
	uploads    storage.Backend
	logger     zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(reportRepo repository.ReportRepository, userRepo repository.UserRepository, uploads storage.Backend, logger zerolog.Logger) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		uploads:    uploads,
		logger:     logger.With().Str("service", "report").Logger(),
	}
}

// CreateReportInput contains the data needed to create a report.
type CreateReportInput struct {
	Poster      *domain.PublicUser
	Category    string
	Location    string
	Status      domain.ReportStatus
	Date        string // yyyy-mm-dd from the form's date input
	Description string

	// Image is the uploaded photo. All three fields are required; a report
	// without an image is rejected before any upload happens.
	Image         io.Reader
	ImageFilename string
	ImageType     string
}

// Create validates the input, uploads the image, and persists the report.
// An upload failure aborts creation.
func (s *ReportService) Create(ctx context.Context, input CreateReportInput) (*domain.Report, error) {
	date, err := validateReportInput(input)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.uploads.Store(ctx, input.Image, input.ImageFilename, input.ImageType)
	if err != nil {
		s.logger.Error().Err(err).Msg("image upload failed")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	report := domain.NewReport(
		input.Poster,
		input.Category,
		input.Location,
		input.Status,
		date,
		imageURL,
		input.Description,
	)

	if err := s.reportRepo.Create(ctx, report); err != nil {
		s.logger.Error().Err(err).Msg("failed to create report")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Str("status", string(report.Status)).
		Str("posted_by", report.PostedBy).
		Msg("report created")

	return report, nil
}

// GetByID retrieves a report.
func (s *ReportService) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrReportNotFound
	}

	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrReportNotFound
		}
		s.logger.Error().Err(err).Str("report_id", id).Msg("failed to get report")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return report, nil
}

// List returns all reports, newest first.
func (s *ReportService) List(ctx context.Context) ([]*domain.Report, error) {
	reports, err := s.reportRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list reports")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return reports, nil
}

// ListByOwner returns the reports posted by one account, newest first.
func (s *ReportService) ListByOwner(ctx context.Context, userID string) ([]*domain.Report, error) {
	reports, err := s.reportRepo.ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list reports by owner")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return reports, nil
}

// Search returns reports matching the query across category, description,
// and location, case-insensitively.
func (s *ReportService) Search(ctx context.Context, query string) ([]*domain.Report, error) {
	reports, err := s.reportRepo.Search(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to search reports")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return reports, nil
}

// DeleteOwned deletes a report on behalf of its owner. The ownership check
// happens at request time against the stored owner reference: a mismatch is
// domain.ErrNotReportOwner, distinct from a missing session (handled by the
// caller) and from a missing report.
func (s *ReportService) DeleteOwned(ctx context.Context, reportID, userID string) error {
	report, err := s.GetByID(ctx, reportID)
	if err != nil {
		return err
	}

	if !report.OwnedBy(userID) {
		s.logger.Warn().
			Str("report_id", reportID).
			Str("user_id", userID).
			Msg("report delete denied: not the owner")
		return domain.ErrNotReportOwner
	}

	if err := s.reportRepo.Delete(ctx, reportID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrReportNotFound
		}
		s.logger.Error().Err(err).Str("report_id", reportID).Msg("failed to delete report")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().Str("report_id", reportID).Str("user_id", userID).Msg("report deleted by owner")
	return nil
}

// Approve marks a report approved. Admin moderation action.
func (s *ReportService) Approve(ctx context.Context, reportID string) error {
	return s.setApproved(ctx, reportID, true)
}

// Reject marks a report rejected. Admin moderation action.
func (s *ReportService) Reject(ctx context.Context, reportID string) error {
	return s.setApproved(ctx, reportID, false)
}

func (s *ReportService) setApproved(ctx context.Context, reportID string, approved bool) error {
	if !domain.ValidID(reportID) {
		return domain.ErrReportNotFound
	}

	if err := s.reportRepo.SetApproved(ctx, reportID, approved); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrReportNotFound
		}
		s.logger.Error().Err(err).Str("report_id", reportID).Msg("failed to update report approval")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().Str("report_id", reportID).Bool("approved", approved).Msg("report moderated")
	return nil
}

// AdminDelete removes a report without an ownership check. Admin action.
func (s *ReportService) AdminDelete(ctx context.Context, reportID string) error {
	if !domain.ValidID(reportID) {
		return domain.ErrReportNotFound
	}

	if err := s.reportRepo.Delete(ctx, reportID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrReportNotFound
		}
		s.logger.Error().Err(err).Str("report_id", reportID).Msg("failed to delete report")
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().Str("report_id", reportID).Msg("report deleted by admin")
	return nil
}

// Stats returns the aggregate counts for the admin dashboard, including the
// total account count.
func (s *ReportService) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.reportRepo.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute stats")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	users, err := s.userRepo.Count(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count users")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	stats.TotalUsers = users

	return stats, nil
}

// validateReportInput checks the form fields and parses the date.
func validateReportInput(input CreateReportInput) (time.Time, error) {
	var messages []string

	if input.Poster == nil || input.Poster.ID == "" {
		messages = append(messages, "A signed-in account is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		messages = append(messages, "Category is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		messages = append(messages, "Location is required")
	}
	if !input.Status.Valid() {
		messages = append(messages, "Status must be LOST or FOUND")
	}
	if input.Image == nil || input.ImageFilename == "" {
		messages = append(messages, "An image is required")
	}

	var date time.Time
	if strings.TrimSpace(input.Date) == "" {
		messages = append(messages, "Date is required")
	} else {
		var err error
		date, err = time.Parse("2006-01-02", strings.TrimSpace(input.Date))
		if err != nil {
			messages = append(messages, "Enter a valid date")
		}
	}

	if len(messages) > 0 {
		return time.Time{}, domain.NewValidationError(messages...)
	}
	return date, nil
}
