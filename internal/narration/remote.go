package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"techrobotics-site/internal/audio"
	"techrobotics-site/internal/backoff"
	"techrobotics-site/internal/config"
	"techrobotics-site/internal/metrics"
)

// RemoteNarrator calls a generateContent style speech endpoint.
type RemoteNarrator struct {
	cfg    config.NarrationConfig
	client *http.Client
	logger *slog.Logger
}

type speechRequest struct {
	Contents         []speechContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type speechContent struct {
	Parts []speechPart `json:"parts"`
}

type speechPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	SpeechConfig       speechConfig `json:"speechConfig"`
}

type speechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type speechResponse struct {
	Candidates []struct {
		Content speechContent `json:"content"`
	} `json:"candidates"`
}

func (r *RemoteNarrator) Mode() string            { return ModeRemote }
func (r *RemoteNarrator) Duration() time.Duration { return 0 }

func (r *RemoteNarrator) Synthesize(ctx context.Context, text string) ([]byte, error) {
	wav, err := r.synthesize(ctx, text)
	if err != nil {
		metrics.NarrationRequests.WithLabelValues(ModeRemote, "error").Inc()
		return nil, err
	}
	metrics.NarrationRequests.WithLabelValues(ModeRemote, "success").Inc()
	return wav, nil
}

func (r *RemoteNarrator) synthesize(ctx context.Context, text string) ([]byte, error) {
	payload := speechRequest{
		Contents:         []speechContent{{Parts: []speechPart{{Text: text}}}},
		GenerationConfig: generationConfig{ResponseModalities: []string{"AUDIO"}},
	}
	payload.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = r.cfg.Voice

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode speech request: %w", err)
	}

	endpoint, err := url.Parse(r.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid speech endpoint: %w", err)
	}
	if r.cfg.APIKey != "" {
		query := endpoint.Query()
		query.Set("key", r.cfg.APIKey)
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := backoff.Fetch(ctx, r.client, req, backoff.Options{
		MaxRetries:   r.cfg.MaxRetries,
		InitialDelay: r.cfg.InitialDelay,
		Logger:       r.logger,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result speechResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode speech response: %w", err)
	}

	data := firstInlineData(result)
	if data == nil || data.Data == "" {
		return nil, ErrNoAudio
	}

	sampleRate, err := audio.ParseSampleRate(data.MimeType)
	if err != nil {
		r.logger.Debug("speech response has no sample rate, using configured rate", "mime_type", data.MimeType)
		sampleRate = r.cfg.SampleRate
	}

	samples, err := audio.DecodeBase64PCM(data.Data)
	if err != nil {
		return nil, err
	}

	return audio.EncodeWAV(samples, sampleRate)
}

func firstInlineData(resp speechResponse) *inlineData {
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil {
				return part.InlineData
			}
		}
	}
	return nil
}
