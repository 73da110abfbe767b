package oidc

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandString(t *testing.T) {
	p := &Provider{}

	a := p.GenerateRandString(32)
	b := p.GenerateRandString(32)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
	assert.NotContains(t, a, "=")

	assert.Len(t, p.GenerateRandString(0), 43, "non-positive sizes default to 32 bytes")
}

func TestCodeChallenge(t *testing.T) {
	// RFC 7636 appendix B
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		codeChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
}

func TestCallbackError_RedirectURL(t *testing.T) {
	err := newCallbackError("access_denied", "User cancelled", "access_denied")
	assert.Equal(t, "access_denied", err.Error())
	require.True(t, strings.HasPrefix(err.RedirectURL, "/?"))

	query, parseErr := url.ParseQuery(strings.TrimPrefix(err.RedirectURL, "/?"))
	require.NoError(t, parseErr)
	assert.Equal(t, "access_denied", query.Get("auth_error"))
	assert.Equal(t, "User cancelled", query.Get("auth_error_description"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Empty(t, firstNonEmpty("", ""))
}

func TestProfileClaims_User(t *testing.T) {
	tests := []struct {
		name         string
		claims       profileClaims
		wantUsername string
		wantEmail    string
	}{
		{
			name:         "Verified email is kept",
			claims:       profileClaims{Name: "Ana", Email: "ana@example.com", EmailVerified: true},
			wantUsername: "Ana",
			wantEmail:    "ana@example.com",
		},
		{
			name:         "Unverified email is dropped",
			claims:       profileClaims{Name: "Ana", Email: "local@example.com"},
			wantUsername: "Ana",
		},
		{
			name:         "Username falls back to verified email",
			claims:       profileClaims{Email: "ana@example.com", EmailVerified: true},
			wantUsername: "ana@example.com",
			wantEmail:    "ana@example.com",
		},
		{
			name:         "Username falls back to subject",
			claims:       profileClaims{Email: "ana@example.com"},
			wantUsername: "sub-42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.claims.user("sub-42")
			assert.Equal(t, "sub-42", user.ID)
			assert.Equal(t, tt.wantUsername, user.Username)
			assert.Equal(t, tt.wantEmail, user.Email)
			assert.Equal(t, ProviderName, user.Provider)
		})
	}
}

func TestMergeClaims_IgnoresUnverifiedEmail(t *testing.T) {
	user := profileClaims{Name: "Ana"}.user("sub-42")

	mergeClaims(user, profileClaims{Email: "local@example.com"})
	assert.Empty(t, user.Email)

	mergeClaims(user, profileClaims{PreferredUsername: "ana", Email: "ana@example.com", EmailVerified: true})
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "ana", user.Username)
}
