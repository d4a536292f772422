package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/domain"
)

type contextKey string

const (
	userContextKey  contextKey = "auth.user"
	adminContextKey contextKey = "auth.admin"
)

// AccountResolver turns a session cookie value into the account it belongs
// to. Implemented by service.UserService.
type AccountResolver interface {
	GetByID(ctx context.Context, id string) (*domain.PublicUser, error)
}

// Middleware resolves both trust axes into the request context on every
// request. A missing or stale session cookie yields an anonymous request;
// a stale one is also cleared so the browser stops presenting it.
func Middleware(resolver AccountResolver, cookies CookieConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				user, err := resolver.GetByID(ctx, cookie.Value)
				switch {
				case err == nil:
					ctx = context.WithValue(ctx, userContextKey, user)
				case errors.Is(err, domain.ErrUserNotFound):
					// The account behind the cookie is gone. Continue
					// anonymously rather than failing the request.
					log.Debug().Str("user_id", cookie.Value).Msg("stale session cookie cleared")
					cookies.ClearSession(w)
				default:
					log.Error().Err(err).Msg("session resolution failed")
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
			}

			if cookie, err := r.Cookie(AdminCookie); err == nil && cookie.Value == AdminGrant {
				ctx = context.WithValue(ctx, adminContextKey, true)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the signed-in account for this request, or nil if the
// request is anonymous.
func UserFrom(ctx context.Context) *domain.PublicUser {
	if user, ok := ctx.Value(userContextKey).(*domain.PublicUser); ok {
		return user
	}
	return nil
}

// IsAdmin reports whether this request carries a valid admin grant.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(adminContextKey).(bool)
	return admin
}

// RequireUser redirects anonymous requests to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin redirects requests without an admin grant to the admin login
// page. A user session alone does not satisfy it.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			http.Redirect(w, r, "/admin/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminCredentials is the configured admin credential pair.
type AdminCredentials struct {
	Email    string
	Password string
}

// Verify checks a submitted credential pair against the configured one.
// The email comparison ignores surrounding whitespace and case; the
// password must match exactly. An unset pair never matches anything.
func (a AdminCredentials) Verify(email, password string) error {
	if a.Email == "" || a.Password == "" {
		return domain.ErrInvalidAdminCredentials
	}

	emailOK := strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(a.Email))
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) == 1
	if !emailOK || !passwordOK {
		return domain.ErrInvalidAdminCredentials
	}
	return nil
}
