package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u := NewUser("  Jane Doe  ", "  Jane@Example.COM ", "$2a$12$hash")

	require.True(t, ValidID(u.ID))
	require.Equal(t, "Jane Doe", u.FullName)
	require.Equal(t, "jane@example.com", u.Email)
	require.Equal(t, "$2a$12$hash", u.PasswordHash)
	require.False(t, u.CreatedAt.IsZero())
	require.Equal(t, u.CreatedAt, u.UpdatedAt)
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	u := NewUser("Jane Doe", "jane@example.com", "$2a$12$hash")

	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(data), "$2a$12$hash")
	require.NotContains(t, string(data), "password")
}

func TestUser_Public(t *testing.T) {
	u := NewUser("Jane Doe", "jane@example.com", "$2a$12$hash")
	p := u.Public()

	require.Equal(t, u.ID, p.ID)
	require.Equal(t, "Jane Doe", p.FullName)
	require.Equal(t, "jane@example.com", p.Email)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NotContains(t, string(data), "$2a$12$hash")
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  user@example.com  ", "user@example.com"},
		{"Mixed.Case@Example.Com", "mixed.case@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeEmail(tt.in))
	}
}

func TestValidID(t *testing.T) {
	require.True(t, ValidID("d9b2b9a0-9a5f-4c57-9f57-0a8e8e1f2a3b"))
	require.False(t, ValidID(""))
	require.False(t, ValidID("not-a-uuid"))
	require.False(t, ValidID("12345"))
}
