package handlers

import (
	"net/http"

	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/navigation"
)

func POSTNavigateHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)

	var req NavigateRequest
	if err := decodeRequest(ctx, &req); err != nil {
		rejectRequest(ctx, err, "Navigation failed.")
		return
	}

	result := navigation.Navigate(s, navigation.Request{
		Page:      req.Page,
		Protected: req.Protected,
		DataID:    req.DataID,
	})
	metrics.PageNavigations.WithLabelValues(string(result.Page), string(result.Outcome)).Inc()

	var msg *navigation.Message
	if result.Outcome == navigation.OutcomeDiverted || result.Outcome == navigation.OutcomeDenied {
		msg = s.Message()
		ctx.Logger.Debug("navigation refused", "requested", req.Page, "outcome", result.Outcome)
	}

	respond(ctx, http.StatusOK, string(result.Outcome), msg)
}
