package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/auth"
	"github.com/prn-tf/reuniteit/internal/domain"
	"github.com/prn-tf/reuniteit/internal/service"
)

// AdminHandler handles the fixed-credential admin area.
type AdminHandler struct {
	users       *service.UserService
	reports     *service.ReportService
	credentials auth.AdminCredentials
	cookies     auth.CookieConfig
	renderer    *Renderer
	logger      zerolog.Logger
}

// AdminHandlerConfig contains dependencies for the admin handler.
type AdminHandlerConfig struct {
	Users       *service.UserService
	Reports     *service.ReportService
	Credentials auth.AdminCredentials
	Cookies     auth.CookieConfig
	Renderer    *Renderer
	Logger      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cfg AdminHandlerConfig) *AdminHandler {
	return &AdminHandler{
		users:       cfg.Users,
		reports:     cfg.Reports,
		credentials: cfg.Credentials,
		cookies:     cfg.Cookies,
		renderer:    cfg.Renderer,
		logger:      cfg.Logger.With().Str("handler", "admin").Logger(),
	}
}

// RegisterRoutes registers the admin routes. Login and logout are open; the
// rest sits behind RequireAdmin.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/login", h.handleLoginPage)
	r.Post("/admin/login", h.handleLogin)
	r.Post("/admin/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Get("/admin/dashboard", h.handleDashboard)
		r.Post("/admin/report/{id}/approve", h.moderate(h.reports.Approve))
		r.Post("/admin/report/{id}/reject", h.moderate(h.reports.Reject))
		r.Post("/admin/report/{id}/delete", h.moderate(h.reports.AdminDelete))
		r.Post("/admin/user/{id}/delete", h.handleDeleteUser)
	})
}

// AdminLoginPageData contains admin login page data.
type AdminLoginPageData struct {
	PageData
	Email string
}

// AdminDashboardPageData contains admin dashboard page data.
type AdminDashboardPageData struct {
	PageData
	Stats   *domain.Stats
	Users   []*domain.User
	Reports []*domain.Report
}

func (h *AdminHandler) loginPage(errs []string, email string) AdminLoginPageData {
	return AdminLoginPageData{
		PageData: PageData{
			Title:       "Admin Login | ReuniteIt",
			Description: "Admin login",
			URL:         h.renderer.PageURL("/admin/login"),
			Errors:      errs,
		},
		Email: email,
	}
}

func (h *AdminHandler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if auth.IsAdmin(r.Context()) {
		http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
		return
	}
	h.renderer.Render(w, http.StatusOK, "admin_login.html", h.loginPage(nil, ""))
}

func (h *AdminHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "admin_login.html", h.loginPage([]string{"Invalid form data"}, ""))
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderer.Render(w, http.StatusOK, "admin_login.html", h.loginPage([]string{"Email and Password are required"}, email))
		return
	}

	if err := h.credentials.Verify(email, password); err != nil {
		h.logger.Warn().Str("email", email).Msg("admin login rejected")
		h.renderer.Render(w, http.StatusOK, "admin_login.html", h.loginPage([]string{"Invalid admin credentials"}, email))
		return
	}

	h.cookies.IssueAdmin(w)
	http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
}

func (h *AdminHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearAdmin(w)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

func (h *AdminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := AdminDashboardPageData{
		PageData: PageData{
			Title:       "Admin Dashboard | ReuniteIt",
			Description: "Admin control panel",
			URL:         h.renderer.PageURL("/admin/dashboard"),
		},
		Stats: &domain.Stats{},
	}

	stats, err := h.reports.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load admin stats")
		data.Errors = []string{"Unable to load admin dashboard"}
		h.renderer.Render(w, http.StatusInternalServerError, "admin_dashboard.html", data)
		return
	}
	data.Stats = stats

	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load users")
		data.Errors = []string{"Unable to load admin dashboard"}
		h.renderer.Render(w, http.StatusInternalServerError, "admin_dashboard.html", data)
		return
	}
	data.Users = users

	reports, err := h.reports.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load reports")
		data.Errors = []string{"Unable to load admin dashboard"}
		h.renderer.Render(w, http.StatusInternalServerError, "admin_dashboard.html", data)
		return
	}
	data.Reports = reports

	h.renderer.Render(w, http.StatusOK, "admin_dashboard.html", data)
}

// moderate wraps the per-report admin actions, which differ only in the
// service call.
func (h *AdminHandler) moderate(action func(ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !domain.ValidID(id) {
			http.Error(w, "Invalid id", http.StatusBadRequest)
			return
		}

		if err := action(r.Context(), id); err != nil {
			if errors.Is(err, domain.ErrReportNotFound) {
				http.Error(w, "Report not found", http.StatusNotFound)
				return
			}
			h.logger.Error().Err(err).Str("report_id", id).Msg("admin report action failed")
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
	}
}

func (h *AdminHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !domain.ValidID(id) {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("user_id", id).Msg("admin user delete failed")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
}
