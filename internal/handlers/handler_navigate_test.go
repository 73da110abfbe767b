package handlers

import (
	"net/http"
	"testing"

	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestPOSTNavigateHandler(t *testing.T) {
	tests := []struct {
		name            string
		user            bool
		body            map[string]any
		expectedOutcome string
		expectedPage    navigation.Page
		expectedMessage string
	}{
		{
			name:            "GuestIsDivertedFromProtectedPage",
			body:            map[string]any{"page": "projects", "protected": true},
			expectedOutcome: "diverted",
			expectedPage:    navigation.PageHome,
			expectedMessage: "You must be logged in to view the Projects page.",
		},
		{
			name:            "UserSeesProtectedPage",
			user:            true,
			body:            map[string]any{"page": "projects", "protected": true},
			expectedOutcome: "shown",
			expectedPage:    navigation.PageProjects,
		},
		{
			name:            "PublicPage",
			body:            map[string]any{"page": "workshops"},
			expectedOutcome: "shown",
			expectedPage:    navigation.PageWorkshops,
		},
		{
			name:            "UnknownPageFallsBackHome",
			body:            map[string]any{"page": "nowhere"},
			expectedOutcome: "fallback",
			expectedPage:    navigation.PageHome,
		},
		{
			name:            "MemberDeniedAdminDashboard",
			user:            true,
			body:            map[string]any{"page": "adminDashboard"},
			expectedOutcome: "denied",
			expectedPage:    navigation.PageHome,
			expectedMessage: "You do not have access to the Admin Dashboard.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, "POST", "/api/navigate")
			defer tc.Finish()

			if tt.user {
				tc.WithUserSession(t, testUser)
			} else {
				tc.WithGuestSession()
			}
			tc.WithJSONBody(t, tt.body)

			tc.CallHandler(POSTNavigateHandler)

			tc.AssertStatus(t, http.StatusOK)
			tc.AssertJSONString(t, "outcome", tt.expectedOutcome)
			tc.AssertJSONString(t, "page", string(tt.expectedPage))
			assert.Equal(t, tt.expectedPage, tc.Session.Page())

			if tt.expectedMessage != "" {
				tc.AssertMessage(t, navigation.MessageError, tt.expectedMessage)
			}
		})
	}
}

func TestPOSTNavigateHandler_GuestKeepsPendingRedirect(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/navigate").WithGuestSession()
	defer tc.Finish()

	tc.WithJSONBody(t, map[string]any{"page": "projects", "protected": true})
	tc.CallHandler(POSTNavigateHandler)

	redirect, ok := tc.Session.PendingRedirect()
	assert.True(t, ok)
	assert.Equal(t, navigation.PageProjects, redirect.Page)
	assert.Equal(t, navigation.AuthLogin, tc.Session.AuthMode())
}

func TestPOSTNavigateHandler_InvalidBody(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/navigate").WithGuestSession()
	defer tc.Finish()

	tc.WithJSONBody(t, map[string]any{"protected": true})
	tc.CallHandler(POSTNavigateHandler)

	tc.AssertStatus(t, http.StatusBadRequest)
	tc.AssertJSONString(t, "outcome", "rejected")
	tc.AssertMessage(t, navigation.MessageError, "Navigation failed. Please check the following fields: page.")
	assert.Equal(t, navigation.PageHome, tc.Session.Page())
}

func TestPOSTNavigateHandler_EmptyBody(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/navigate").WithGuestSession()
	defer tc.Finish()

	tc.CallHandler(POSTNavigateHandler)

	tc.AssertStatus(t, http.StatusBadRequest)
	tc.AssertMessage(t, navigation.MessageError, "Navigation failed. The request could not be read.")
}

func TestCarouselHandlers(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/carousel/prev").WithGuestSession()
	defer tc.Finish()

	tc.CallHandler(POSTCarouselPrevHandler)

	tc.AssertStatus(t, http.StatusOK)
	assert.Equal(t, 2, tc.Session.CarouselIndex(), "prev from the first slide wraps to the last")

	tc.CallHandler(POSTCarouselNextHandler)
	assert.Equal(t, 0, tc.Session.CarouselIndex())
}

func TestPOSTCarouselSelectHandler(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/carousel/select").WithGuestSession()
	defer tc.Finish()

	tc.WithJSONBody(t, map[string]any{"index": 1})
	tc.CallHandler(POSTCarouselSelectHandler)

	tc.AssertStatus(t, http.StatusOK)
	assert.Equal(t, 1, tc.Session.CarouselIndex())
}

func TestPOSTCarouselSelectHandler_OutOfRange(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/carousel/select").WithGuestSession()
	defer tc.Finish()

	tc.WithJSONBody(t, map[string]any{"index": 7})
	tc.CallHandler(POSTCarouselSelectHandler)

	tc.AssertStatus(t, http.StatusBadRequest)
	tc.AssertJSONField(t, "error", "Invalid slide index")
	assert.Equal(t, 0, tc.Session.CarouselIndex())
}
