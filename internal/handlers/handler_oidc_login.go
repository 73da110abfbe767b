package handlers

import (
	"net/http"

	"techrobotics-site/internal/middlewares"
)

func GETLoginHandler(ctx *middlewares.AppContext) {
	if ctx.OIDCProvider == nil {
		ctx.SetJSONError(http.StatusNotFound, "External login is not enabled")
		return
	}

	if _, ok := ctx.SessionManager.GetUser(ctx); ok {
		ctx.Logger.Debug("User already authenticated")
		ctx.SetJSONStatus(http.StatusOK, "ok")
		return
	}

	authURL, err := ctx.OIDCProvider.StartLogin(ctx)
	if err != nil {
		ctx.Logger.Error("Failed to start login", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.Logger.Debug("Redirecting to OIDC Provider", "url", authURL)

	ctx.WriteJSON(http.StatusOK, map[string]string{
		"status":       "redirect_required",
		"redirect_url": authURL,
	})
}
