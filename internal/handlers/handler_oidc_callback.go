package handlers

import (
	"errors"
	"net/http"

	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/oidc"
	"techrobotics-site/internal/utils"
)

const callbackFailedRedirect = "/?auth_error=server_error"

func GETCallbackHandler(ctx *middlewares.AppContext) {
	if ctx.OIDCProvider == nil {
		ctx.SetJSONError(http.StatusNotFound, "External login is not enabled")
		return
	}

	_, claimed, err := ctx.OIDCProvider.HandleCallback(ctx)
	if err != nil {
		var callbackErr *oidc.CallbackError
		if errors.As(err, &callbackErr) {
			ctx.Logger.Warn("OIDC callback error", "error", callbackErr.Message)
			ctx.Redirect(callbackErr.RedirectURL, http.StatusFound)
			return
		}
		ctx.Logger.Error("Failed to handle OIDC callback", "error", err)
		ctx.Redirect(callbackFailedRedirect, http.StatusFound)
		return
	}

	user, err := ctx.Storage.UpsertExternalAccount(ctx, claimed.Provider, claimed.ID, claimed.Email, claimed.Username)
	if err != nil {
		ctx.Logger.Error("Failed to store external account", "email", utils.RedactEmail(claimed.Email), "error", err)
		ctx.Redirect(callbackFailedRedirect, http.StatusFound)
		return
	}

	s := loadSession(ctx)
	result, err := ctx.Gate.CompleteExternalLogin(ctx, s, user)
	if err != nil {
		ctx.Logger.Error("Failed to complete external login", "error", err)
		ctx.SaveSession()
		ctx.Redirect(callbackFailedRedirect, http.StatusFound)
		return
	}

	if err := ctx.SessionManager.RenewToken(ctx); err != nil {
		ctx.Logger.Error("failed to renew session token", "error", err)
	}
	ctx.SaveSession()

	ctx.Logger.Info("User successfully authenticated",
		"user_id", user.ID,
		"username", user.Username,
		"page", result.Page,
	)
	ctx.Redirect("/", http.StatusFound)
}
