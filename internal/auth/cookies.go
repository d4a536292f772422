package auth

import (
	"net/http"
	"time"
)

// CookieConfig controls how session and admin cookies are emitted.
type CookieConfig struct {
	// SessionTTL is the lifetime of the user session cookie.
	SessionTTL time.Duration

	// AdminTTL is the lifetime of the admin grant cookie.
	AdminTTL time.Duration

	// Secure marks cookies Secure; enable behind HTTPS.
	Secure bool
}

// IssueSession sets the user session cookie for the given account ID.
func (c CookieConfig) IssueSession(w http.ResponseWriter, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    userID,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.SessionTTL / time.Second),
	})
}

// ClearSession expires the user session cookie. Safe to call when no
// session exists.
func (c CookieConfig) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// IssueAdmin sets the admin grant cookie.
func (c CookieConfig) IssueAdmin(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    AdminGrant,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.AdminTTL / time.Second),
	})
}

// ClearAdmin expires the admin grant cookie. Safe to call when no grant
// exists.
func (c CookieConfig) ClearAdmin(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
