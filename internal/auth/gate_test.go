package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"techrobotics-site/internal/auth"
	"techrobotics-site/internal/config"
	"techrobotics-site/internal/mocks"
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type gateFixture struct {
	gate       *auth.Gate
	identities *mocks.MockIdentityStore
	presence   *mocks.MockActivityTracker
	logs       *testutil.TestLogHandler
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	identities := mocks.NewMockIdentityStore(ctrl)
	presence := mocks.NewMockActivityTracker(ctrl)
	logs := testutil.NewTestLogHandler()

	return &gateFixture{
		gate:       auth.NewGate(identities, newGateAdminList(t), presence, 6, slog.New(logs)),
		identities: identities,
		presence:   presence,
		logs:       logs,
	}
}

func newGateAdminList(t *testing.T) *auth.AdminList {
	t.Helper()
	hash, err := auth.HashPassword("admin-secret")
	require.NoError(t, err)

	return auth.NewAdminList([]config.AdminAccount{
		{Email: "admin@techrobotics.com", Name: "Site Admin", PasswordHash: hash},
	})
}

var testUser = &models.User{ID: "u1", Username: "TestUser", Email: "test@example.com", Role: models.RoleUser}

func TestSubmit_LoginRestoresPendingPage(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()
	navigation.Navigate(s, navigation.Request{Page: "projects", Protected: true})

	f.identities.EXPECT().Authenticate(gomock.Any(), "test@example.com", "password123").Return(testUser, nil)
	f.presence.EXPECT().MarkActive(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u models.User) error {
		assert.Equal(t, "u1", u.ID)
		return nil
	})

	result, err := f.gate.Submit(context.Background(), s, auth.Credentials{Email: " test@example.com ", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, auth.OutcomeLoggedIn, result.Outcome)
	assert.Equal(t, navigation.PageProjects, result.Page)
	assert.Equal(t, "Welcome back, TestUser!", result.Message.Text)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, models.RoleUser, s.Principal().Role())
	assert.Equal(t, navigation.AuthClosed, s.AuthMode())
	_, pending := s.PendingRedirect()
	assert.False(t, pending)
}

func TestSubmit_LoginInvalidCredentials(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()
	navigation.Navigate(s, navigation.Request{Page: "projects", Protected: true})

	f.identities.EXPECT().Authenticate(gomock.Any(), "test@example.com", "nope").Return(nil, auth.ErrInvalidCredentials)

	result, err := f.gate.Submit(context.Background(), s, auth.Credentials{Email: "test@example.com", Password: "nope"})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, auth.OutcomeRejected, result.Outcome)
	assert.Equal(t, "Login Failed: Invalid email or password.", result.Message.Text)
	assert.Equal(t, navigation.AuthLogin, s.AuthMode(), "modal stays in login mode")
	_, pending := s.PendingRedirect()
	assert.True(t, pending, "pending redirect survives a failed attempt")
	assert.False(t, s.IsAuthenticated())
}

func TestSubmit_LoginStoreFailure(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()
	s.ShowAuthModal(true, false)

	f.identities.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("disk on fire"))

	_, err := f.gate.Submit(context.Background(), s, auth.Credentials{Email: "test@example.com", Password: "password123"})

	require.Error(t, err)
	assert.False(t, auth.IsRejection(err))
	assert.True(t, f.logs.ContainsMessage(slog.LevelError, "failed to authenticate"))
}

func TestSubmit_PresenceFailureDoesNotBlockLogin(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()
	s.ShowAuthModal(true, false)

	f.identities.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Return(testUser, nil)
	f.presence.EXPECT().MarkActive(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	result, err := f.gate.Submit(context.Background(), s, auth.Credentials{Email: "test@example.com", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, auth.OutcomeLoggedIn, result.Outcome)
	assert.True(t, f.logs.ContainsMessage(slog.LevelWarn, "failed to mark user active"))
}

func TestSubmit_AdminLogin(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()
	navigation.Navigate(s, navigation.Request{Page: "projects", Protected: true})
	s.ShowAuthModal(false, true)

	f.presence.EXPECT().MarkActive(gomock.Any(), gomock.Any()).Return(nil)

	result, err := f.gate.Submit(context.Background(), s, auth.Credentials{Email: "admin@techrobotics.com", Password: "admin-secret"})

	require.NoError(t, err)
	assert.Equal(t, navigation.PageAdminDashboard, result.Page)
	assert.True(t, s.IsAdmin())
	assert.Equal(t, models.RoleAdmin, result.User.Role)
	_, pending := s.PendingRedirect()
	assert.False(t, pending)
}

func TestSubmit_AdminLoginRejected(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()
	s.ShowAuthModal(false, true)

	result, err := f.gate.Submit(context.Background(), s, auth.Credentials{Email: "test@example.com", Password: "password123"})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, "Admin Login Failed: Invalid admin credentials.", result.Message.Text)
	assert.Equal(t, navigation.AuthAdminLogin, s.AuthMode())
	assert.False(t, s.IsAuthenticated())
}

func TestSubmit_Signup(t *testing.T) {
	tests := []struct {
		name        string
		creds       auth.Credentials
		setup       func(f *gateFixture)
		wantErr     error
		wantText    string
		wantMode    navigation.AuthMode
		wantOutcome auth.Outcome
	}{
		{
			name:        "missing username",
			creds:       auth.Credentials{Email: "new@example.com", Password: "secret1", Username: "   "},
			wantErr:     auth.ErrUsernameRequired,
			wantText:    "Sign Up Failed: Username is mandatory.",
			wantMode:    navigation.AuthSignup,
			wantOutcome: auth.OutcomeRejected,
		},
		{
			name:  "duplicate email",
			creds: auth.Credentials{Email: "test@example.com", Password: "x", Username: "Dup"},
			setup: func(f *gateFixture) {
				f.identities.EXPECT().AccountExists(gomock.Any(), "test@example.com").Return(true, nil)
			},
			wantErr:     auth.ErrEmailInUse,
			wantText:    "Sign Up Failed: This email is already registered.",
			wantMode:    navigation.AuthSignup,
			wantOutcome: auth.OutcomeRejected,
		},
		{
			name:  "short password",
			creds: auth.Credentials{Email: "new@example.com", Password: "abc", Username: "New"},
			setup: func(f *gateFixture) {
				f.identities.EXPECT().AccountExists(gomock.Any(), "new@example.com").Return(false, nil)
			},
			wantErr:     auth.ErrPasswordTooShort,
			wantText:    "Sign Up Failed: Password must be at least 6 characters.",
			wantMode:    navigation.AuthSignup,
			wantOutcome: auth.OutcomeRejected,
		},
		{
			name:  "success switches to login",
			creds: auth.Credentials{Email: "new@example.com", Password: "secret1", Username: "New"},
			setup: func(f *gateFixture) {
				f.identities.EXPECT().AccountExists(gomock.Any(), "new@example.com").Return(false, nil)
				f.identities.EXPECT().CreateAccount(gomock.Any(), "new@example.com", "secret1", "New").
					Return(&models.User{ID: "u2", Username: "New", Email: "new@example.com", Role: models.RoleUser}, nil)
			},
			wantText:    "Sign Up successful! Please login now.",
			wantMode:    navigation.AuthLogin,
			wantOutcome: auth.OutcomeSignedUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGateFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			s := navigation.New()
			s.ShowAuthModal(false, false)

			result, err := f.gate.Submit(context.Background(), s, tt.creds)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, auth.IsRejection(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Equal(t, tt.wantText, result.Message.Text)
			assert.Equal(t, tt.wantMode, s.AuthMode())
			assert.False(t, s.IsAuthenticated(), "signup never authenticates")
		})
	}
}

func TestSubmit_ClosedModal(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()

	_, err := f.gate.Submit(context.Background(), s, auth.Credentials{Email: "test@example.com", Password: "password123"})

	assert.ErrorIs(t, err, auth.ErrAuthModalClosed)
	assert.Equal(t, navigation.AuthClosed, s.AuthMode())
}

func TestCompleteExternalLogin(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()
	navigation.Navigate(s, navigation.Request{Page: "projects"})

	f.presence.EXPECT().MarkActive(gomock.Any(), gomock.Any()).Return(nil)

	result, err := f.gate.CompleteExternalLogin(context.Background(), s,
		&models.User{ID: "oidc-1", Username: "Ext", Email: "ext@example.com", Role: models.RoleAdmin})

	require.NoError(t, err)
	assert.Equal(t, navigation.PageProjects, result.Page)
	assert.Equal(t, models.RoleUser, s.Principal().Role(), "external logins are never admins")
}

func TestLogout(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()
	_, err := s.CompleteLogin(navigation.Member{User: *testUser})
	require.NoError(t, err)

	f.presence.EXPECT().MarkInactive(gomock.Any(), "u1").Return(nil)

	msg := f.gate.Logout(context.Background(), s)

	assert.Equal(t, "You have been successfully logged out.", msg.Text)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, navigation.PageHome, s.Page())
}

func TestLogoutAsGuestSkipsPresence(t *testing.T) {
	f := newGateFixture(t)
	s := navigation.New()

	msg := f.gate.Logout(context.Background(), s)

	assert.Equal(t, navigation.MessageSuccess, msg.Kind)
}
