package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewReport(t *testing.T) {
	poster := &PublicUser{ID: "owner-id", FullName: "Poster Name", Email: "poster@example.com"}
	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	r := NewReport(poster, "  Wallet ", " Main Square ", StatusLost, date, "/uploads/w.jpg", "  brown leather  ")

	require.True(t, ValidID(r.ID))
	require.Equal(t, "Wallet", r.Category)
	require.Equal(t, "Main Square", r.Location)
	require.Equal(t, "brown leather", r.Description)
	require.Equal(t, "Poster Name", r.PosterName)
	require.Equal(t, "poster@example.com", r.PosterEmail)
	require.Equal(t, "owner-id", r.PostedBy)
	require.True(t, r.IsPending())
}

func TestReportStatus_Valid(t *testing.T) {
	require.True(t, StatusLost.Valid())
	require.True(t, StatusFound.Valid())
	require.False(t, ReportStatus("").Valid())
	require.False(t, ReportStatus("lost").Valid())
	require.False(t, ReportStatus("STOLEN").Valid())
}

func TestReport_OwnedBy(t *testing.T) {
	r := &Report{PostedBy: "owner-id"}
	require.True(t, r.OwnedBy("owner-id"))
	require.False(t, r.OwnedBy("someone-else"))

	// A report with no owner reference belongs to nobody.
	orphan := &Report{}
	require.False(t, orphan.OwnedBy(""))
}

func TestReport_ModerationStates(t *testing.T) {
	r := &Report{}
	require.True(t, r.IsPending())

	approved := true
	r.Approved = &approved
	require.False(t, r.IsPending())

	rejected := false
	r.Approved = &rejected
	require.False(t, r.IsPending())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("first problem", "second problem")
	require.Equal(t, "first problem, second problem", err.Error())

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Messages, 2)

	_, ok = AsValidationError(ErrUserNotFound)
	require.False(t, ok)
}
