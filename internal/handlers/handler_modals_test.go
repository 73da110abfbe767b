package handlers

import (
	"net/http"
	"testing"

	"techrobotics-site/internal/modal"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestPOSTModalOpenHandler(t *testing.T) {
	tests := []struct {
		name           string
		modal          string
		user           bool
		expectedStatus int
		expectVisible  bool
	}{
		{name: "GuestOpensContact", modal: "contact", expectedStatus: http.StatusOK, expectVisible: true},
		{name: "UserOpensSubscribe", modal: "subscribe", user: true, expectedStatus: http.StatusOK, expectVisible: true},
		{name: "GuestCannotSubscribe", modal: "subscribe", expectedStatus: http.StatusUnauthorized},
		{name: "AuthModalIsManaged", modal: "auth", expectedStatus: http.StatusConflict},
		{name: "UnknownModal", modal: "popup", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, "POST", "/api/modals/"+tt.modal+"/open")
			defer tc.Finish()

			if tt.user {
				tc.WithUserSession(t, testUser)
			} else {
				tc.WithGuestSession()
			}
			tc.WithURLParam("name", tt.modal)

			tc.CallHandler(POSTModalOpenHandler)

			tc.AssertStatus(t, tt.expectedStatus)
			if name, err := modal.ParseName(tt.modal); err == nil {
				assert.Equal(t, tt.expectVisible, tc.Session.Modals().Visible(name))
			}
		})
	}
}

func TestPOSTModalOpenHandler_GuestSubscribeShowsMessage(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/modals/subscribe/open").WithGuestSession()
	defer tc.Finish()

	tc.WithURLParam("name", "subscribe")
	tc.CallHandler(POSTModalOpenHandler)

	tc.AssertMessage(t, navigation.MessageError, "You must be logged in to subscribe.")
}

func TestPOSTModalCloseHandler(t *testing.T) {
	s := navigation.New()
	assert.NoError(t, s.OpenModal(modal.Contact))

	tc := testutil.NewTestContextWithURL(t, "POST", "/api/modals/contact/close").WithSession(s)
	defer tc.Finish()

	tc.WithURLParam("name", "contact")
	tc.CallHandler(POSTModalCloseHandler)

	tc.AssertStatus(t, http.StatusOK)
	state := s.Modals().State(modal.Contact)
	assert.Equal(t, modal.AnimationExit, state.Animation, "the modal plays its exit animation before hiding")
}

func TestPOSTModalCloseHandler_Message(t *testing.T) {
	s := navigation.New()
	s.ShowMessage(navigation.Info("hello"))

	tc := testutil.NewTestContextWithURL(t, "POST", "/api/modals/message/close").WithSession(s)
	defer tc.Finish()

	tc.WithURLParam("name", "message")
	tc.CallHandler(POSTModalCloseHandler)

	tc.AssertStatus(t, http.StatusOK)
	assert.Equal(t, modal.AnimationExit, s.Modals().State(modal.Message).Animation)
}

func TestPOSTModalCloseHandler_AuthIsManaged(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/modals/auth/close").WithGuestSession()
	defer tc.Finish()

	tc.WithURLParam("name", "auth")
	tc.CallHandler(POSTModalCloseHandler)

	tc.AssertStatus(t, http.StatusConflict)
}
