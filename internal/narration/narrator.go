package narration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"techrobotics-site/internal/audio"
	"techrobotics-site/internal/config"
	"techrobotics-site/internal/metrics"
)

const (
	ModeSimulated = "simulated"
	ModeRemote    = "remote"

	CompletedMessage = "Narration completed!"
	StartedMessage   = "Simulating TTS narration now..."
)

var ErrNoAudio = errors.New("speech response contained no audio")

//go:generate mockgen -source=narrator.go -destination=../mocks/narrator.go -package=mocks

// Narrator turns page text into WAV audio.
type Narrator interface {
	Mode() string
	// Duration is how long a narration runs before it completes on its own.
	Duration() time.Duration
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

func New(cfg config.NarrationConfig, logger *slog.Logger) Narrator {
	if cfg.Mode == ModeRemote {
		return &RemoteNarrator{
			cfg:    cfg,
			client: &http.Client{Timeout: cfg.Timeout},
			logger: logger,
		}
	}
	return &SimulatedNarrator{
		duration:   cfg.SimulatedDuration,
		sampleRate: cfg.SampleRate,
	}
}

// SimulatedNarrator produces silence for the configured duration.
type SimulatedNarrator struct {
	duration   time.Duration
	sampleRate int
}

func (s *SimulatedNarrator) Mode() string            { return ModeSimulated }
func (s *SimulatedNarrator) Duration() time.Duration { return s.duration }

func (s *SimulatedNarrator) Synthesize(ctx context.Context, text string) ([]byte, error) {
	samples := make([]int16, int(s.duration.Seconds()*float64(s.sampleRate)))
	wav, err := audio.EncodeWAV(samples, s.sampleRate)
	if err != nil {
		metrics.NarrationRequests.WithLabelValues(ModeSimulated, "error").Inc()
		return nil, err
	}
	metrics.NarrationRequests.WithLabelValues(ModeSimulated, "success").Inc()
	return wav, nil
}
