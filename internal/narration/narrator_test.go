package narration

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"techrobotics-site/internal/audio"
	"techrobotics-site/internal/backoff"
	"techrobotics-site/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_SelectsMode(t *testing.T) {
	simulated := New(config.DefaultNarrationConfig, testLogger())
	assert.Equal(t, ModeSimulated, simulated.Mode())
	assert.Equal(t, 3*time.Second, simulated.Duration())

	cfg := config.DefaultNarrationConfig
	cfg.Mode = ModeRemote
	remote := New(cfg, testLogger())
	assert.Equal(t, ModeRemote, remote.Mode())
}

func TestSimulatedNarrator_Synthesize(t *testing.T) {
	narrator := &SimulatedNarrator{duration: 100 * time.Millisecond, sampleRate: 8000}

	wav, err := narrator.Synthesize(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, wav, audio.HeaderSize+800*2)
}

func speechServer(t *testing.T, status *atomic.Int32, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != nil {
			status.Add(1)
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func remoteNarrator(endpoint string) *RemoteNarrator {
	cfg := config.DefaultNarrationConfig
	cfg.Mode = ModeRemote
	cfg.Endpoint = endpoint
	cfg.APIKey = "test-key"
	cfg.MaxRetries = 3
	cfg.InitialDelay = time.Millisecond
	return New(cfg, testLogger()).(*RemoteNarrator)
}

func TestRemoteNarrator_Synthesize(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xff, 0xff}

	server := speechServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req speechRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Content of Ramesh Sir #ROBOTICIAN", req.Contents[0].Parts[0].Text)
		assert.Equal(t, []string{"AUDIO"}, req.GenerationConfig.ResponseModalities)
		assert.Equal(t, "Kore", req.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{
						"inlineData": map[string]any{
							"mimeType": "audio/L16;rate=16000",
							"data":     base64.StdEncoding.EncodeToString(pcm),
						},
					}},
				},
			}},
		})
	})

	wav, err := remoteNarrator(server.URL).Synthesize(context.Background(), "Content of Ramesh Sir #ROBOTICIAN")
	require.NoError(t, err)
	require.Len(t, wav, audio.HeaderSize+len(pcm))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, pcm, wav[audio.HeaderSize:])
}

func TestRemoteNarrator_NoAudio(t *testing.T) {
	server := speechServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := remoteNarrator(server.URL).Synthesize(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoAudio)
}

func TestRemoteNarrator_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := speechServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := remoteNarrator(server.URL).Synthesize(context.Background(), "text")
	assert.ErrorIs(t, err, backoff.ErrRetriesExceeded)
	assert.Equal(t, int32(3), calls.Load())
}
