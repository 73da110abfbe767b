package handlers

import (
	"errors"
	"net/http"

	"techrobotics-site/internal/backoff"
	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/narration"
	"techrobotics-site/internal/navigation"
)

// POSTNarrationToggleHandler stops a running narration or starts a new one.
func POSTNarrationToggleHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)
	mode := ctx.Narrator.Mode()

	if s.StopNarration() {
		metrics.NarrationRequests.WithLabelValues(mode, "stopped").Inc()
		respond(ctx, http.StatusOK, "stopped", nil)
		return
	}

	s.StartNarration()
	metrics.NarrationRequests.WithLabelValues(mode, "started").Inc()

	var msg *navigation.Message
	if mode == narration.ModeSimulated {
		msg = navigation.Info(narration.StartedMessage)
		s.ShowMessage(msg)
	}
	respond(ctx, http.StatusOK, "speaking", msg)
}

// GETNarrationAudioHandler synthesizes the details page text as WAV audio.
func GETNarrationAudioHandler(ctx *middlewares.AppContext) {
	mode := ctx.Narrator.Mode()

	wav, err := ctx.Narrator.Synthesize(ctx, ctx.Catalogue.NarrationText())
	if err != nil {
		metrics.NarrationRequests.WithLabelValues(mode, "failed").Inc()
		ctx.Logger.Error("narration synthesis failed", "mode", mode, "error", err)

		s := loadSession(ctx)
		s.StopNarration()
		s.ShowMessage(navigation.Error("Narration failed: " + narrationFailure(err)))
		ctx.SaveSession()

		ctx.SetJSONError(http.StatusBadGateway, "Narration failed")
		return
	}

	metrics.NarrationRequests.WithLabelValues(mode, "synthesized").Inc()
	ctx.Response.Header().Set("Cache-Control", "no-store")
	ctx.WriteBytes(http.StatusOK, "audio/wav", wav)
}

func narrationFailure(err error) string {
	var statusErr *backoff.StatusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Error()
	case errors.Is(err, backoff.ErrRetriesExceeded):
		return "the speech service is unavailable, please try again later."
	case errors.Is(err, narration.ErrNoAudio):
		return "no audio was returned."
	default:
		return "something went wrong, please try again."
	}
}
