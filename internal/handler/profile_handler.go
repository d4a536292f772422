package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/auth"
	"github.com/prn-tf/reuniteit/internal/domain"
	"github.com/prn-tf/reuniteit/internal/service"
)

// ProfileHandler handles the signed-in account pages.
type ProfileHandler struct {
	users    *service.UserService
	reports  *service.ReportService
	renderer *Renderer
	logger   zerolog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users *service.UserService, reports *service.ReportService, renderer *Renderer, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		users:    users,
		reports:  reports,
		renderer: renderer,
		logger:   logger.With().Str("handler", "profile").Logger(),
	}
}

// RegisterRoutes registers the profile routes. All of them need a session.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/profile", h.handleProfile)
	r.Get("/profile/edit", h.handleEditPage)
	r.Post("/profile/edit", h.handleEdit)
}

// DashboardPageData contains dashboard page data.
type DashboardPageData struct {
	PageData
	Items []*domain.Report
}

// ProfilePageData contains profile page data.
type ProfilePageData struct {
	PageData
	Reports []*domain.Report
}

// ProfileEditPageData contains profile edit form data.
type ProfileEditPageData struct {
	PageData
	FullName string
	Email    string
}

func (h *ProfileHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	data := DashboardPageData{
		PageData: PageData{
			Title:       "Dashboard | ReuniteIt",
			Description: "Your dashboard - manage your reported items and view site activity.",
			URL:         h.renderer.PageURL("/dashboard"),
			User:        user,
		},
	}

	items, err := h.reports.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load dashboard")
		data.Errors = []string{"Unable to load dashboard. Please try again later."}
		h.renderer.Render(w, http.StatusInternalServerError, "dashboard.html", data)
		return
	}

	data.Items = items
	h.renderer.Render(w, http.StatusOK, "dashboard.html", data)
}

func (h *ProfileHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	data := ProfilePageData{
		PageData: PageData{
			Title:       "Profile | ReuniteIt",
			Description: "View and manage your reported lost & found items.",
			URL:         h.renderer.PageURL("/profile"),
			User:        user,
		},
	}

	reports, err := h.reports.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load profile reports")
		data.Errors = []string{"Unable to load profile. Please try again later."}
		h.renderer.Render(w, http.StatusInternalServerError, "profile.html", data)
		return
	}

	data.Reports = reports
	h.renderer.Render(w, http.StatusOK, "profile.html", data)
}

func (h *ProfileHandler) editPage(user *domain.PublicUser, errs []string, fullName, email string) ProfileEditPageData {
	return ProfileEditPageData{
		PageData: PageData{
			Title:       "Edit Profile | ReuniteIt",
			Description: "Edit your account details.",
			URL:         h.renderer.PageURL("/profile/edit"),
			User:        user,
			Errors:      errs,
		},
		FullName: fullName,
		Email:    email,
	}
}

func (h *ProfileHandler) handleEditPage(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	h.renderer.Render(w, http.StatusOK, "profile_edit.html", h.editPage(user, nil, user.FullName, user.Email))
}

func (h *ProfileHandler) handleEdit(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "profile_edit.html", h.editPage(user, []string{"Invalid form data"}, user.FullName, user.Email))
		return
	}

	fullName := r.FormValue("fullName")
	email := r.FormValue("email")

	_, err := h.users.UpdateProfile(r.Context(), service.UpdateProfileInput{
		UserID:   user.ID,
		FullName: fullName,
		Email:    email,
	})
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			h.renderer.Render(w, http.StatusOK, "profile_edit.html", h.editPage(user, ve.Messages, fullName, email))
			return
		}
		if errors.Is(err, domain.ErrEmailTaken) {
			h.renderer.Render(w, http.StatusOK, "profile_edit.html", h.editPage(user, []string{"Email already in use by another account"}, fullName, email))
			return
		}
		h.logger.Error().Err(err).Msg("profile update failed")
		h.renderer.Render(w, http.StatusInternalServerError, "profile_edit.html", h.editPage(user, []string{"Server error, please try again"}, fullName, email))
		return
	}

	http.Redirect(w, r, "/profile", http.StatusFound)
}
