package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/reuniteit/internal/auth"
	"github.com/prn-tf/reuniteit/internal/domain"
	"github.com/prn-tf/reuniteit/internal/repository"
	"github.com/prn-tf/reuniteit/internal/service"
)

// In-memory repositories for exercising the full HTTP surface.

type memUserRepo struct {
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	var result []*domain.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *memUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

type memReportRepo struct {
	reports map[string]*domain.Report
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: make(map[string]*domain.Report)}
}

func (m *memReportRepo) Create(ctx context.Context, report *domain.Report) error {
	m.reports[report.ID] = report
	return nil
}

func (m *memReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memReportRepo) List(ctx context.Context) ([]*domain.Report, error) {
	var result []*domain.Report
	for _, r := range m.reports {
		result = append(result, r)
	}
	return result, nil
}

func (m *memReportRepo) ListByOwner(ctx context.Context, userID string) ([]*domain.Report, error) {
	var result []*domain.Report
	for _, r := range m.reports {
		if r.PostedBy == userID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *memReportRepo) Search(ctx context.Context, query string) ([]*domain.Report, error) {
	query = strings.ToLower(query)
	var result []*domain.Report
	for _, r := range m.reports {
		if query == "" || strings.Contains(strings.ToLower(r.Category), query) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *memReportRepo) SetApproved(ctx context.Context, id string, approved bool) error {
	r, ok := m.reports[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Approved = &approved
	return nil
}

func (m *memReportRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

func (m *memReportRepo) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	var n int64
	for id, r := range m.reports {
		if r.PostedBy == userID {
			delete(m.reports, id)
			n++
		}
	}
	return n, nil
}

func (m *memReportRepo) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}
	for _, r := range m.reports {
		stats.TotalReports++
		if r.IsPending() {
			stats.Pending++
		}
	}
	return stats, nil
}

type nullUploads struct{}

func (nullUploads) Store(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	return "/uploads/" + filename, nil
}

type testEnv struct {
	handler  http.Handler
	userRepo *memUserRepo
	users    *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	userRepo := newMemUserRepo()
	reportRepo := newMemReportRepo()

	users := service.NewUserService(userRepo, reportRepo, bcrypt.MinCost, logger)
	reports := service.NewReportService(reportRepo, userRepo, nullUploads{}, logger)

	renderer, err := NewRenderer("http://test.local", logger)
	require.NoError(t, err)

	cookies := auth.CookieConfig{SessionTTL: 24 * time.Hour, AdminTTL: 8 * time.Hour}
	creds := auth.AdminCredentials{Email: "admin@example.com", Password: "adminpass"}

	router := NewRouter(RouterConfig{
		AuthHandler:    NewAuthHandler(users, renderer, cookies, logger),
		ReportHandler:  NewReportHandler(reports, renderer, 10<<20, logger),
		ProfileHandler: NewProfileHandler(users, reports, renderer, logger),
		AdminHandler: NewAdminHandler(AdminHandlerConfig{
			Users:       users,
			Reports:     reports,
			Credentials: creds,
			Cookies:     cookies,
			Renderer:    renderer,
			Logger:      logger,
		}),
		Renderer:       renderer,
		AuthMiddleware: auth.Middleware(users, cookies, logger),
		Logger:         logger,
	})

	return &testEnv{handler: router.Handler(), userRepo: userRepo, users: users}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestSignupLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	// Signup redirects to the login page with the registered flag.
	rec := env.do(postForm("/signup", url.Values{
		"fullName": {"Flow Tester"},
		"email":    {"flow@example.com"},
		"password": {"secret123"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?registered=1", rec.Header().Get("Location"))

	// The login page acknowledges the fresh registration.
	rec = env.do(httptest.NewRequest(http.MethodGet, "/login?registered=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Account created")

	// Login issues the session cookie and lands on the dashboard.
	rec = env.do(postForm("/login", url.Values{
		"email":    {"Flow@Example.com"},
		"password": {"secret123"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookie := sessionCookie(t, rec)
	require.True(t, cookie.HttpOnly)
	require.True(t, domain.ValidID(cookie.Value))

	// The session opens the profile page.
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(cookie)
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Flow Tester")
	require.NotContains(t, rec.Body.String(), "secret123")
}

func TestLoginFailureMessages(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/signup", url.Values{
		"fullName": {"Existing"},
		"email":    {"existing@example.com"},
		"password": {"secret123"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)

	t.Run("unknown email", func(t *testing.T) {
		rec := env.do(postForm("/login", url.Values{
			"email":    {"ghost@example.com"},
			"password": {"whatever"},
		}))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "No account found with this email")
		require.Contains(t, rec.Body.String(), "ghost@example.com")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(postForm("/login", url.Values{
			"email":    {"existing@example.com"},
			"password": {"wrong"},
		}))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Incorrect password")
	})
}

func TestSignupValidationRerender(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(postForm("/signup", url.Values{
		"fullName": {"X"},
		"email":    {"bad-email"},
		"password": {"tiny"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "Name must have at least 2 characters")
	require.Contains(t, body, "Enter a valid email")
	require.Contains(t, body, "Password must be at least 6 characters")
	// Submitted values survive the re-render; the password does not.
	require.Contains(t, body, "bad-email")
	require.NotContains(t, body, "tiny")
}

func TestProtectedRoutesRedirectAnonymous(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/dashboard", "/profile", "/profile/edit", "/report-lost", "/report-found"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusFound, rec.Code, path)
		require.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestStaleSessionCookieCleared(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "2f1b6e0a-0000-4000-8000-000000000000"})
	rec := env.do(req)

	// Anonymous again: redirected to login with the cookie expired.
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	cleared := sessionCookie(t, rec)
	require.Less(t, cleared.MaxAge, 0)
}

func TestAdminFlow(t *testing.T) {
	env := newTestEnv(t)

	t.Run("dashboard needs the grant", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/admin/login", rec.Header().Get("Location"))
	})

	t.Run("bad credentials re-render", func(t *testing.T) {
		rec := env.do(postForm("/admin/login", url.Values{
			"email":    {"admin@example.com"},
			"password": {"nope"},
		}))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Invalid admin credentials")
	})

	t.Run("good credentials grant the admin cookie", func(t *testing.T) {
		rec := env.do(postForm("/admin/login", url.Values{
			"email":    {"admin@example.com"},
			"password": {"adminpass"},
		}))
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

		var grant *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == auth.AdminCookie {
				grant = c
			}
		}
		require.NotNil(t, grant)
		require.Equal(t, auth.AdminGrant, grant.Value)
		require.True(t, grant.HttpOnly)

		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.AddCookie(grant)
		rec = env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Admin Dashboard")
	})

	t.Run("user session does not open the admin area", func(t *testing.T) {
		env.do(postForm("/signup", url.Values{
			"fullName": {"Normal User"},
			"email":    {"normal@example.com"},
			"password": {"secret123"},
		}))
		rec := env.do(postForm("/login", url.Values{
			"email":    {"normal@example.com"},
			"password": {"secret123"},
		}))
		cookie := sessionCookie(t, rec)

		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
		req.AddCookie(cookie)
		rec = env.do(req)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/admin/login", rec.Header().Get("Location"))
	})
}

func TestHealthAndNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Page Not Found")
}

func TestStaticPages(t *testing.T) {
	env := newTestEnv(t)

	for path, want := range map[string]string{
		"/about-us":         "About ReuniteIt",
		"/contact":          "Contact",
		"/privacy-policy":   "Privacy Policy",
		"/terms-of-service": "Terms of Service",
	} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Contains(t, rec.Body.String(), want, path)
	}
}

func TestLogoutBothMethods(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/logout", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Less(t, sessionCookie(t, rec).MaxAge, 0)

	rec = env.do(postForm("/logout", url.Values{}))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}
