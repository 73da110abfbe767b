package handlers

import (
	"net/http"

	"techrobotics-site/internal/middlewares"
)

func POSTAuthModalHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)

	var req AuthModalRequest
	if err := decodeRequest(ctx, &req); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "Invalid request body")
		return
	}

	s.ShowAuthModal(req.IsLogin, req.IsAdmin)
	respond(ctx, http.StatusOK, string(s.AuthMode()), nil)
}

func POSTAuthModalToggleHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)

	if !s.ToggleAuthMode() {
		ctx.Logger.Debug("auth mode toggle ignored", "mode", s.AuthMode())
		ctx.SetJSONError(http.StatusConflict, "Auth mode cannot be toggled")
		return
	}
	respond(ctx, http.StatusOK, string(s.AuthMode()), nil)
}

// DELETEAuthModalHandler cancels the auth attempt.
func DELETEAuthModalHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)
	s.CloseAuthModal()
	respond(ctx, http.StatusOK, string(s.AuthMode()), nil)
}
