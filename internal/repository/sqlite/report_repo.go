package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/prn-tf/reuniteit/internal/domain"
	"github.com/prn-tf/reuniteit/internal/repository"
)

// reportRepository implements repository.ReportRepository for SQLite.
type reportRepository struct {
	db *DB
}

// NewReportRepository creates a new SQLite report repository.
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.PosterName,
		report.PosterEmail,
		report.Category,
		report.Location,
		string(report.Status),
		report.Date.Format(time.RFC3339),
		report.ImageURL,
		report.Description,
		report.PostedBy,
		approvedToNullInt(report.Approved),
		report.CreatedAt.Format(time.RFC3339),
		report.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by ID.
func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = ?`

	report, err := scanReport(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
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
	query := `SELECT ` + reportColumns + ` FROM reports WHERE posted_by = ? ORDER BY created_at DESC`
	return r.queryReports(ctx, query, userID)
}

// Search returns reports whose category, description, or location contains
// the query, case-insensitively, newest first.
func (r *reportRepository) Search(ctx context.Context, query string) ([]*domain.Report, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return r.List(ctx)
	}

	// LIKE is case-insensitive for ASCII in SQLite by default; the escape
	// clause keeps user-supplied % and _ literal.
	pattern := "%" + escapeLike(q) + "%"
	stmt := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE category LIKE ? ESCAPE '\'
		   OR description LIKE ? ESCAPE '\'
		   OR location LIKE ? ESCAPE '\'
		ORDER BY created_at DESC
	`
	return r.queryReports(ctx, stmt, pattern, pattern, pattern)
}

// SetApproved updates the moderation state of a report.
func (r *reportRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	query := `UPDATE reports SET approved = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		boolToInt(approved),
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update report approval: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a report by ID.
func (r *reportRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteByOwner removes every report posted by the given account.
func (r *reportRepository) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE posted_by = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reports by owner: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
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
	err := r.db.QueryRowContext(ctx, query).Scan(
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
	rows, err := r.db.QueryContext(ctx, query, args...)
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

func scanReport(row rowScanner) (*domain.Report, error) {
	report := &domain.Report{}
	var status, date, createdAt, updatedAt string
	var postedBy sql.NullString
	var approved sql.NullInt64

	err := row.Scan(
		&report.ID,
		&report.PosterName,
		&report.PosterEmail,
		&report.Category,
		&report.Location,
		&status,
		&date,
		&report.ImageURL,
		&report.Description,
		&postedBy,
		&approved,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	report.Status = domain.ReportStatus(status)
	report.PostedBy = postedBy.String
	if approved.Valid {
		v := approved.Int64 != 0
		report.Approved = &v
	}
	report.Date, _ = time.Parse(time.RFC3339, date)
	report.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	report.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return report, nil
}

// boolToInt converts a boolean to an integer (SQLite has no native boolean).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func approvedToNullInt(approved *bool) interface{} {
	if approved == nil {
		return nil
	}
	return boolToInt(*approved)
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
