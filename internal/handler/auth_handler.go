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

// AuthHandler handles signup, login, and logout.
type AuthHandler struct {
	users    *service.UserService
	renderer *Renderer
	cookies  auth.CookieConfig
	logger   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *service.UserService, renderer *Renderer, cookies auth.CookieConfig, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		renderer: renderer,
		cookies:  cookies,
		logger:   logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes registers the auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/signup", h.handleSignupPage)
	r.Post("/signup", h.handleSignup)

	// GET logout lands on the home page, POST on the login page.
	r.Get("/logout", h.handleLogoutToHome)
	r.Post("/logout", h.handleLogoutToLogin)
}

// LoginPageData contains login page data.
type LoginPageData struct {
	PageData
	Email string
}

// SignupPageData contains signup page data.
type SignupPageData struct {
	PageData
	FullName string
	Email    string
}

func (h *AuthHandler) loginPage(errs []string, email, success string) LoginPageData {
	return LoginPageData{
		PageData: PageData{
			Title:       "Login | ReuniteIt",
			Description: "Login to your ReuniteIt account to report or manage items.",
			URL:         h.renderer.PageURL("/login"),
			Errors:      errs,
			Success:     success,
		},
		Email: email,
	}
}

func (h *AuthHandler) signupPage(errs []string, fullName, email string) SignupPageData {
	return SignupPageData{
		PageData: PageData{
			Title:       "SignUp | ReuniteIt",
			Description: "Create an account to report lost or found items and manage your reports.",
			URL:         h.renderer.PageURL("/signup"),
			Errors:      errs,
		},
		FullName: fullName,
		Email:    email,
	}
}

func (h *AuthHandler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	var success string
	if r.URL.Query().Get("registered") == "1" {
		success = "Account created. Please log in."
	}
	h.renderer.Render(w, http.StatusOK, "login.html", h.loginPage(nil, "", success))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "login.html", h.loginPage([]string{"Invalid form data"}, "", ""))
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderer.Render(w, http.StatusOK, "login.html", h.loginPage([]string{"Email and Password are required"}, email, ""))
		return
	}

	user, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			h.renderer.Render(w, http.StatusOK, "login.html", h.loginPage([]string{"No account found with this email"}, email, ""))
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.renderer.Render(w, http.StatusOK, "login.html", h.loginPage([]string{"Incorrect password"}, email, ""))
		default:
			h.logger.Error().Err(err).Msg("login failed")
			h.renderer.Render(w, http.StatusInternalServerError, "login.html", h.loginPage([]string{"Something went wrong! Try again."}, email, ""))
		}
		return
	}

	h.cookies.IssueSession(w, user.ID)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *AuthHandler) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "signup.html", h.signupPage(nil, "", ""))
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "signup.html", h.signupPage([]string{"Invalid form data"}, "", ""))
		return
	}

	fullName := r.FormValue("fullName")
	email := r.FormValue("email")
	password := r.FormValue("password")

	if fullName == "" || email == "" || password == "" {
		h.renderer.Render(w, http.StatusOK, "signup.html", h.signupPage([]string{"All fields are required"}, fullName, email))
		return
	}

	_, err := h.users.Create(r.Context(), service.CreateUserInput{
		FullName: fullName,
		Email:    email,
		Password: password,
	})
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			h.renderer.Render(w, http.StatusOK, "signup.html", h.signupPage(ve.Messages, fullName, email))
			return
		}
		if errors.Is(err, domain.ErrEmailTaken) {
			h.renderer.Render(w, http.StatusOK, "signup.html", h.signupPage([]string{"Email already exists"}, fullName, email))
			return
		}
		h.logger.Error().Err(err).Msg("signup failed")
		h.renderer.Render(w, http.StatusInternalServerError, "signup.html", h.signupPage([]string{"Something went wrong! Please try again."}, fullName, email))
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusFound)
}

func (h *AuthHandler) handleLogoutToHome(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) handleLogoutToLogin(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
