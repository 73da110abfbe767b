package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"techrobotics-site/internal/backoff"
	"techrobotics-site/internal/narration"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPOSTNarrationToggleHandler_Simulated(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/narration/toggle").WithGuestSession()
	defer tc.Finish()

	tc.CallHandler(POSTNarrationToggleHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONString(t, "outcome", "speaking")
	tc.AssertMessage(t, navigation.MessageInfo, narration.StartedMessage)
	assert.True(t, tc.Session.Speaking())
}

func TestPOSTNarrationToggleHandler_Stops(t *testing.T) {
	s := navigation.New()
	s.StartNarration()

	tc := testutil.NewTestContextWithURL(t, "POST", "/api/narration/toggle").WithSession(s)
	defer tc.Finish()

	tc.CallHandler(POSTNarrationToggleHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONString(t, "outcome", "stopped")
	assert.False(t, s.Speaking())
}

func TestPOSTNarrationToggleHandler_Remote(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "POST", "/api/narration/toggle")
	defer tc.Finish()

	// Expectations registered first take precedence over the session defaults.
	tc.MockNarrator.EXPECT().Mode().Return(narration.ModeRemote).AnyTimes()
	tc.MockNarrator.EXPECT().Duration().Return(time.Duration(0)).AnyTimes()
	tc.WithGuestSession()

	tc.CallHandler(POSTNarrationToggleHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONString(t, "outcome", "speaking")
	_, hasMessage := tc.GetJSONResponse(t)["message"]
	assert.False(t, hasMessage, "remote narration plays audio instead of showing a message")
}

func TestGETNarrationAudioHandler(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/api/narration/audio").WithGuestSession()
	defer tc.Finish()

	wav := []byte("RIFF\x24\x00\x00\x00WAVEfmt ")
	tc.MockNarrator.EXPECT().Synthesize(gomock.Any(), tc.AppContext.Catalogue.NarrationText()).Return(wav, nil)

	tc.CallHandler(GETNarrationAudioHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertContentType(t, "audio/wav")
	assert.Equal(t, "no-store", tc.Response.Header().Get("Cache-Control"))
	assert.Equal(t, wav, tc.Response.Body.Bytes())
}

func TestGETNarrationAudioHandler_Failure(t *testing.T) {
	s := navigation.New()
	s.StartNarration()

	tc := testutil.NewTestContextWithURL(t, "GET", "/api/narration/audio").WithSession(s)
	defer tc.Finish()

	tc.MockNarrator.EXPECT().Synthesize(gomock.Any(), gomock.Any()).
		Return(nil, &backoff.StatusError{StatusCode: http.StatusForbidden, Status: "403 Forbidden", Detail: "API key invalid"})

	tc.CallHandler(GETNarrationAudioHandler)

	tc.AssertStatus(t, http.StatusBadGateway)
	tc.AssertJSONField(t, "error", "Narration failed")
	assert.False(t, s.Speaking())
	require.NotNil(t, s.Message())
	assert.Equal(t, "Narration failed: API error: API key invalid", s.Message().Text)
}

func TestNarrationFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "StatusError",
			err:      fmt.Errorf("synthesize: %w", &backoff.StatusError{Status: "500 Internal Server Error"}),
			expected: "API error: 500 Internal Server Error",
		},
		{
			name:     "RetriesExceeded",
			err:      fmt.Errorf("synthesize: %w", backoff.ErrRetriesExceeded),
			expected: "the speech service is unavailable, please try again later.",
		},
		{
			name:     "NoAudio",
			err:      narration.ErrNoAudio,
			expected: "no audio was returned.",
		},
		{
			name:     "Unknown",
			err:      errors.New("boom"),
			expected: "something went wrong, please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, narrationFailure(tt.err))
		})
	}
}
