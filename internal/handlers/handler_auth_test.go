package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"techrobotics-site/internal/auth"
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/testutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func TestAuthStatusHandler(t *testing.T) {
	t.Run("Guest", func(t *testing.T) {
		tc := testutil.NewTestContextWithURL(t, "GET", "/api/auth/status")
		defer tc.Finish()

		tc.MockSession.EXPECT().GetUser(tc.AppContext).Return(nil, false)
		tc.CallHandler(AuthStatusHandler)

		tc.AssertStatus(t, http.StatusUnauthorized)
		tc.AssertJSONBool(t, "authenticated", false)
		tc.AssertJSONString(t, "role", "guest")
	})

	t.Run("Admin", func(t *testing.T) {
		tc := testutil.NewTestContextWithURL(t, "GET", "/api/auth/status")
		defer tc.Finish()

		tc.MockSession.EXPECT().GetUser(tc.AppContext).Return(copyUser(testAdmin), true)
		tc.CallHandler(AuthStatusHandler)

		tc.AssertStatus(t, http.StatusOK)
		tc.AssertJSONBool(t, "authenticated", true)
		tc.AssertJSONString(t, "role", "admin")
	})
}

func TestAuthModalHandlers(t *testing.T) {
	s := navigation.New()
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/auth/modal").WithSession(s)
	defer tc.Finish()

	tc.WithJSONBody(t, map[string]any{"is_login": true})
	tc.CallHandler(POSTAuthModalHandler)
	tc.AssertStatus(t, http.StatusOK)
	assert.Equal(t, navigation.AuthLogin, s.AuthMode())

	tc.CallHandler(POSTAuthModalToggleHandler)
	assert.Equal(t, navigation.AuthSignup, s.AuthMode())

	tc.CallHandler(DELETEAuthModalHandler)
	assert.Equal(t, navigation.AuthClosed, s.AuthMode())
}

func TestPOSTAuthModalToggleHandler_AdminModeRefused(t *testing.T) {
	s := navigation.New()
	s.ShowAuthModal(true, true)

	tc := testutil.NewTestContextWithURL(t, "POST", "/api/auth/modal/toggle").WithSession(s)
	defer tc.Finish()

	tc.CallHandler(POSTAuthModalToggleHandler)

	tc.AssertStatus(t, http.StatusConflict)
	assert.Equal(t, navigation.AuthAdminLogin, s.AuthMode())
}

func TestDELETEAuthModalHandler_ClearsPendingRedirect(t *testing.T) {
	s := navigation.New()
	navigation.Navigate(s, navigation.Request{Page: "projects", Protected: true})

	tc := testutil.NewTestContextWithURL(t, "DELETE", "/api/auth/modal").WithSession(s)
	defer tc.Finish()

	tc.CallHandler(DELETEAuthModalHandler)

	_, pending := s.PendingRedirect()
	assert.False(t, pending)
	assert.Equal(t, navigation.PageHome, s.Page())
}

func TestPOSTAuthSubmitHandler_LoginFollowsPendingRedirect(t *testing.T) {
	s := navigation.New()
	navigation.Navigate(s, navigation.Request{Page: "projects", Protected: true})

	tc := testutil.NewTestContextWithURL(t, "POST", "/api/auth/submit").WithSession(s)
	defer tc.Finish()

	tc.MockStorage.EXPECT().Authenticate(gomock.Any(), "test@example.com", "password123").Return(copyUser(testUser), nil)
	tc.MockPresence.EXPECT().MarkActive(gomock.Any(), gomock.Any()).Return(nil)
	tc.MockSession.EXPECT().RenewToken(tc.AppContext).Return(nil)

	tc.WithJSONBody(t, map[string]any{"email": " test@example.com ", "password": "password123"})
	tc.CallHandler(POSTAuthSubmitHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONString(t, "outcome", "logged_in")
	tc.AssertJSONString(t, "page", "projects")
	tc.AssertMessage(t, navigation.MessageSuccess, "Welcome back, TestUser!")
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, navigation.AuthClosed, s.AuthMode())
}

func TestPOSTAuthSubmitHandler_AdminLogin(t *testing.T) {
	s := navigation.New()
	s.ShowAuthModal(true, true)

	tc := testutil.NewTestContextWithURL(t, "POST", "/api/auth/submit").WithSession(s)
	defer tc.Finish()

	tc.MockPresence.EXPECT().MarkActive(gomock.Any(), gomock.Any()).Return(nil)
	tc.MockSession.EXPECT().RenewToken(tc.AppContext).Return(nil)

	tc.WithJSONBody(t, map[string]any{"email": testutil.AdminEmail, "password": testutil.AdminPassword})
	tc.CallHandler(POSTAuthSubmitHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONString(t, "page", "adminDashboard")
	assert.True(t, s.IsAdmin())
}

func TestPOSTAuthSubmitHandler_Rejections(t *testing.T) {
	tests := []struct {
		name            string
		isLogin         bool
		body            map[string]any
		setupMocks      func(tc *testutil.TestContext)
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:    "WrongPassword",
			isLogin: true,
			body:    map[string]any{"email": "test@example.com", "password": "nope"},
			setupMocks: func(tc *testutil.TestContext) {
				tc.MockStorage.EXPECT().Authenticate(gomock.Any(), "test@example.com", "nope").Return(nil, auth.ErrInvalidCredentials)
			},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Login Failed: Invalid email or password.",
		},
		{
			name:            "SignupWithoutUsername",
			body:            map[string]any{"email": "new@example.com", "password": "password123"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Sign Up Failed: Username is mandatory.",
		},
		{
			name: "SignupEmailTaken",
			body: map[string]any{"email": "test@example.com", "password": "password123", "username": "Again"},
			setupMocks: func(tc *testutil.TestContext) {
				tc.MockStorage.EXPECT().AccountExists(gomock.Any(), "test@example.com").Return(true, nil)
			},
			expectedStatus:  http.StatusConflict,
			expectedMessage: "Sign Up Failed: This email is already registered.",
		},
		{
			name: "SignupShortPassword",
			body: map[string]any{"email": "new@example.com", "password": "123", "username": "New"},
			setupMocks: func(tc *testutil.TestContext) {
				tc.MockStorage.EXPECT().AccountExists(gomock.Any(), "new@example.com").Return(false, nil)
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Sign Up Failed: Password must be at least 6 characters.",
		},
		{
			name:    "StoreFailure",
			isLogin: true,
			body:    map[string]any{"email": "test@example.com", "password": "password123"},
			setupMocks: func(tc *testutil.TestContext) {
				tc.MockStorage.EXPECT().Authenticate(gomock.Any(), "test@example.com", "password123").Return(nil, errors.New("disk full"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Login Failed: Something went wrong, please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := navigation.New()
			s.ShowAuthModal(tt.isLogin, false)

			tc := testutil.NewTestContextWithURL(t, "POST", "/api/auth/submit").WithSession(s)
			defer tc.Finish()

			if tt.setupMocks != nil {
				tt.setupMocks(tc)
			}

			tc.WithJSONBody(t, tt.body)
			tc.CallHandler(POSTAuthSubmitHandler)

			tc.AssertStatus(t, tt.expectedStatus)
			tc.AssertJSONString(t, "outcome", "rejected")
			tc.AssertMessage(t, navigation.MessageError, tt.expectedMessage)
			assert.False(t, s.IsAuthenticated())
			assert.NotEqual(t, navigation.AuthClosed, s.AuthMode(), "the modal stays open after a rejection")
		})
	}
}

func TestPOSTAuthSubmitHandler_ModalClosed(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/auth/submit").WithGuestSession()
	defer tc.Finish()

	tc.WithJSONBody(t, map[string]any{"email": "test@example.com", "password": "password123"})
	tc.CallHandler(POSTAuthSubmitHandler)

	tc.AssertStatus(t, http.StatusConflict)
}

func TestPOSTLogoutHandler(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/auth/logout").WithUserSession(t, testUser)
	defer tc.Finish()

	tc.MockPresence.EXPECT().MarkInactive(gomock.Any(), "u1").Return(nil)
	tc.MockSession.EXPECT().RenewToken(tc.AppContext).Return(nil)

	tc.CallHandler(POSTLogoutHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONString(t, "outcome", "logged_out")
	tc.AssertMessage(t, navigation.MessageSuccess, "You have been successfully logged out.")
	tc.AssertLogContains(t, slog.LevelInfo, "User logged out")
	assert.False(t, tc.Session.IsAuthenticated())
	assert.Equal(t, navigation.PageHome, tc.Session.Page())
}
