// Package auth provides the cookie session layer for ReuniteIt. It carries
// two independent trust axes: a user session bound to an account, and an
// admin grant checked against the configured credential pair. Neither
// implies the other.
package auth

const (
	// SessionCookie carries the signed-in account's ID.
	SessionCookie = "userId"

	// AdminCookie carries the admin grant sentinel.
	AdminCookie = "adminAuth"

	// AdminGrant is the only value AdminCookie is ever set to. Any other
	// value is treated as no grant.
	AdminGrant = "1"
)
