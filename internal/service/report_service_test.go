package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/reuniteit/internal/domain"
)

// mockUploadBackend records uploads and can be made to fail.
type mockUploadBackend struct {
	stored   []string
	storeErr error
}

func (m *mockUploadBackend) Store(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	if m.storeErr != nil {
		return "", m.storeErr
	}
	url := "/uploads/" + filename
	m.stored = append(m.stored, url)
	return url, nil
}

func testPoster() *domain.PublicUser {
	return &domain.PublicUser{
		ID:       uuid.NewString(),
		FullName: "Test Poster",
		Email:    "poster@example.com",
	}
}

func validReportInput(poster *domain.PublicUser) CreateReportInput {
	return CreateReportInput{
		Poster:        poster,
		Category:      "Wallet",
		Location:      "Central Station",
		Status:        domain.StatusLost,
		Date:          "2026-08-15",
		Description:   "Brown leather wallet",
		Image:         strings.NewReader("fake image bytes"),
		ImageFilename: "wallet.jpg",
		ImageType:     "image/jpeg",
	}
}

func newReportService(repo *mockReportRepository, uploads *mockUploadBackend) *ReportService {
	return NewReportService(repo, newMockUserRepository(), uploads, zerolog.Nop())
}

func TestReportService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success denormalizes the poster", func(t *testing.T) {
		repo := newMockReportRepository()
		uploads := &mockUploadBackend{}
		svc := newReportService(repo, uploads)

		poster := testPoster()
		report, err := svc.Create(ctx, validReportInput(poster))
		require.NoError(t, err)

		require.Equal(t, poster.ID, report.PostedBy)
		require.Equal(t, "Test Poster", report.PosterName)
		require.Equal(t, "poster@example.com", report.PosterEmail)
		require.Equal(t, "/uploads/wallet.jpg", report.ImageURL)
		require.Nil(t, report.Approved)
		require.Equal(t, "2026-08-15", report.Date.Format("2006-01-02"))

		stored, err := repo.GetByID(ctx, report.ID)
		require.NoError(t, err)
		require.Equal(t, report.ID, stored.ID)
	})

	t.Run("missing fields are all reported", func(t *testing.T) {
		svc := newReportService(newMockReportRepository(), &mockUploadBackend{})

		_, err := svc.Create(ctx, CreateReportInput{Poster: testPoster(), Status: "BROKEN"})
		ve, ok := domain.AsValidationError(err)
		require.True(t, ok)
		require.Len(t, ve.Messages, 5)
	})

	t.Run("upload failure aborts creation", func(t *testing.T) {
		repo := newMockReportRepository()
		uploads := &mockUploadBackend{storeErr: errors.New("bucket unavailable")}
		svc := newReportService(repo, uploads)

		_, err := svc.Create(ctx, validReportInput(testPoster()))
		require.ErrorIs(t, err, ErrInternal)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("invalid date", func(t *testing.T) {
		svc := newReportService(newMockReportRepository(), &mockUploadBackend{})

		input := validReportInput(testPoster())
		input.Date = "15/08/2026"
		_, err := svc.Create(ctx, input)
		ve, ok := domain.AsValidationError(err)
		require.True(t, ok)
		require.Equal(t, []string{"Enter a valid date"}, ve.Messages)
	})
}

func TestReportService_DeleteOwned(t *testing.T) {
	ctx := context.Background()
	repo := newMockReportRepository()
	svc := newReportService(repo, &mockUploadBackend{})

	owner := testPoster()
	report, err := svc.Create(ctx, validReportInput(owner))
	require.NoError(t, err)

	t.Run("not the owner", func(t *testing.T) {
		err := svc.DeleteOwned(ctx, report.ID, uuid.NewString())
		require.ErrorIs(t, err, domain.ErrNotReportOwner)

		_, err = repo.GetByID(ctx, report.ID)
		require.NoError(t, err)
	})

	t.Run("owner can delete", func(t *testing.T) {
		require.NoError(t, svc.DeleteOwned(ctx, report.ID, owner.ID))

		err := svc.DeleteOwned(ctx, report.ID, owner.ID)
		require.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("malformed report id", func(t *testing.T) {
		err := svc.DeleteOwned(ctx, "garbage", owner.ID)
		require.ErrorIs(t, err, domain.ErrReportNotFound)
	})
}

func TestReportService_Moderation(t *testing.T) {
	ctx := context.Background()
	repo := newMockReportRepository()
	svc := newReportService(repo, &mockUploadBackend{})

	report, err := svc.Create(ctx, validReportInput(testPoster()))
	require.NoError(t, err)
	require.True(t, report.IsPending())

	require.NoError(t, svc.Approve(ctx, report.ID))
	stored, _ := repo.GetByID(ctx, report.ID)
	require.NotNil(t, stored.Approved)
	require.True(t, *stored.Approved)

	require.NoError(t, svc.Reject(ctx, report.ID))
	stored, _ = repo.GetByID(ctx, report.ID)
	require.NotNil(t, stored.Approved)
	require.False(t, *stored.Approved)

	t.Run("unknown report", func(t *testing.T) {
		err := svc.Approve(ctx, uuid.NewString())
		require.ErrorIs(t, err, domain.ErrReportNotFound)
	})
}

func TestReportService_AdminDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMockReportRepository()
	svc := newReportService(repo, &mockUploadBackend{})

	report, err := svc.Create(ctx, validReportInput(testPoster()))
	require.NoError(t, err)

	// No ownership check for the admin action.
	require.NoError(t, svc.AdminDelete(ctx, report.ID))
	require.ErrorIs(t, svc.AdminDelete(ctx, report.ID), domain.ErrReportNotFound)
}

func TestReportService_Stats(t *testing.T) {
	ctx := context.Background()
	userRepo := newMockUserRepository()
	reportRepo := newMockReportRepository()
	svc := NewReportService(reportRepo, userRepo, &mockUploadBackend{}, zerolog.Nop())

	users := newUserService(userRepo, reportRepo)
	_, err := users.Create(ctx, CreateUserInput{FullName: "Counter", Email: "counter@example.com", Password: "secret123"})
	require.NoError(t, err)

	lost := validReportInput(testPoster())
	found := validReportInput(testPoster())
	found.Status = domain.StatusFound

	first, err := svc.Create(ctx, lost)
	require.NoError(t, err)
	_, err = svc.Create(ctx, found)
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, first.ID))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalUsers)
	require.Equal(t, int64(2), stats.TotalReports)
	require.Equal(t, int64(1), stats.TotalLost)
	require.Equal(t, int64(1), stats.TotalFound)
	require.Equal(t, int64(1), stats.Pending)
}

func TestReportService_Search(t *testing.T) {
	ctx := context.Background()
	repo := newMockReportRepository()
	svc := newReportService(repo, &mockUploadBackend{})

	wallet := validReportInput(testPoster())
	phone := validReportInput(testPoster())
	phone.Category = "Phone"
	phone.Description = "Black smartphone"
	phone.Image = strings.NewReader("more bytes")

	_, err := svc.Create(ctx, wallet)
	require.NoError(t, err)
	_, err = svc.Create(ctx, phone)
	require.NoError(t, err)

	results, err := svc.Search(ctx, "wallet")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Wallet", results[0].Category)

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}
