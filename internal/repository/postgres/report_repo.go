package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/reuniteit/internal/domain"
	"github.com/prn-tf/reuniteit/internal/repository"
)

// reportRepository implements repository.ReportRepository for PostgreSQL.
type reportRepository struct {
	db *DB
}

// NewReportRepository creates a new PostgreSQL report repository.
func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

const reportColumns = `id, poster_name, poster_email, category, location, status,
	date, image_url, description, posted_by, approved, created_at, updated_at`

// Create creates a new report.
func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (id, poster_name, poster_email, category, location, status,
			date, image_url, description, posted_by, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		report.ID,
		report.PosterName,
		report.PosterEmail,
		report.Category,
		report.Location,
		string(report.Status),
		report.Date,
		report.ImageURL,
		report.Description,
		nullString(report.PostedBy),
		report.Approved,
		report.CreatedAt,
		report.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by ID.
func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// List returns all reports, newest first.
func (r *reportRepository) List(ctx context.Context) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY created_at DESC`
	return r.queryReports(ctx, query)
}

// ListByOwner returns the reports posted by one account, newest first.
func (r *reportRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE posted_by = $1 ORDER BY created_at DESC`
	return r.queryReports(ctx, query, userID)
}

// Search returns reports whose category, description, or location contains
// the query, case-insensitively, newest first.
func (r *reportRepository) Search(ctx context.Context, query string) ([]*domain.Report, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return r.List(ctx)
	}

	pattern := "%" + escapeLike(q) + "%"
	stmt := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE category ILIKE $1
		   OR description ILIKE $1
		   OR location ILIKE $1
		ORDER BY created_at DESC
	`
	return r.queryReports(ctx, stmt, pattern)
}

// SetApproved updates the moderation state of a report.
func (r *reportRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	query := `UPDATE reports SET approved = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.db.Pool.Exec(ctx, query, approved, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update report approval: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a report by ID.
func (r *reportRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteByOwner removes every report posted by the given account.
func (r *reportRepository) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM reports WHERE posted_by = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reports by owner: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats returns the aggregate report counts.
func (r *reportRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'LOST' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'FOUND' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN approved IS NULL THEN 1 ELSE 0 END), 0)
		FROM reports
	`

	stats := &domain.Stats{}
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&stats.TotalReports,
		&stats.TotalLost,
		&stats.TotalFound,
		&stats.Pending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute report stats: %w", err)
	}

	return stats, nil
}

func (r *reportRepository) queryReports(ctx context.Context, query string, args ...interface{}) ([]*domain.Report, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	report := &domain.Report{}
	var status string
	var postedBy *string
	var approved *bool

	err := row.Scan(
		&report.ID,
		&report.PosterName,
		&report.PosterEmail,
		&report.Category,
		&report.Location,
		&status,
		&report.Date,
		&report.ImageURL,
		&report.Description,
		&postedBy,
		&approved,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	report.Status = domain.ReportStatus(status)
	if postedBy != nil {
		report.PostedBy = *postedBy
	}
	report.Approved = approved

	return report, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Ensure reportRepository implements repository.ReportRepository.
var _ repository.ReportRepository = (*reportRepository)(nil)
