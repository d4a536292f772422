package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportStatus indicates whether a report concerns a lost or a found item.
type ReportStatus string

const (
	// StatusLost marks an item reported as lost by its owner.
	StatusLost ReportStatus = "LOST"

	// StatusFound marks an item reported as found by someone else.
	StatusFound ReportStatus = "FOUND"
)

// Valid reports whether the status is one of the two known values.
func (s ReportStatus) Valid() bool {
	return s == StatusLost || s == StatusFound
}

// Report represents a single lost-or-found item listing.
type Report struct {
	// ID is the opaque unique identifier, generated at creation.
	ID string `json:"id"`

	// PosterName and PosterEmail are denormalized from the posting account
	// at creation time so the listing stays renderable even if the account
	// later changes its profile.
	PosterName  string `json:"poster_name"`
	PosterEmail string `json:"poster_email"`

	// Category describes what kind of item this is (wallet, phone, ...).
	Category string `json:"category"`

	// Location is where the item was lost or found.
	Location string `json:"location"`

	// Status is LOST or FOUND.
	Status ReportStatus `json:"status"`

	// Date is the day the item was lost or found, as reported by the user.
	Date time.Time `json:"date"`

	// ImageURL is the stable, publicly fetchable URL of the uploaded photo.
	ImageURL string `json:"image_url"`

	// Description is optional free text.
	Description string `json:"description"`

	// PostedBy is the ID of the account that created the report. Ownership
	// checks for deletion compare against this field.
	PostedBy string `json:"posted_by"`

	// Approved is the moderation state: nil means not yet moderated,
	// true approved, false rejected.
	Approved *bool `json:"approved,omitempty"`

	// CreatedAt is the timestamp when the report was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the report was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReport creates a new Report posted by the given account.
func NewReport(poster *PublicUser, category, location string, status ReportStatus, date time.Time, imageURL, description string) *Report {
	now := time.Now().UTC()
	return &Report{
		ID:          uuid.NewString(),
		PosterName:  poster.FullName,
		PosterEmail: poster.Email,
		Category:    strings.TrimSpace(category),
		Location:    strings.TrimSpace(location),
		Status:      status,
		Date:        date,
		ImageURL:    imageURL,
		Description: strings.TrimSpace(description),
		PostedBy:    poster.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsPending reports whether the report has not been moderated yet.
func (r *Report) IsPending() bool {
	return r.Approved == nil
}

// OwnedBy reports whether the given account posted this report.
func (r *Report) OwnedBy(userID string) bool {
	return r.PostedBy != "" && r.PostedBy == userID
}

// Stats holds the aggregate counts shown on the admin dashboard.
type Stats struct {
	TotalUsers   int64 `json:"total_users"`
	TotalReports int64 `json:"total_reports"`
	TotalLost    int64 `json:"total_lost"`
	TotalFound   int64 `json:"total_found"`
	Pending      int64 `json:"pending"`
}
