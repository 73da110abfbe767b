package handlers

import (
	"errors"
	"net/http"

	"techrobotics-site/internal/auth"
	"techrobotics-site/internal/middlewares"
)

func POSTAuthSubmitHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)

	var req AuthSubmitRequest
	if err := decodeRequest(ctx, &req); err != nil {
		rejectRequest(ctx, err, "Login Failed:")
		return
	}

	result, err := ctx.Gate.Submit(ctx, s, auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		respond(ctx, submitStatus(err), string(result.Outcome), result.Message)
		return
	}

	if result.Outcome == auth.OutcomeLoggedIn {
		if err := ctx.SessionManager.RenewToken(ctx); err != nil {
			ctx.Logger.Error("failed to renew session token", "error", err)
		}
	}

	respond(ctx, http.StatusOK, string(result.Outcome), result.Message)
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNotAdmin):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailInUse), errors.Is(err, auth.ErrAuthModalClosed):
		return http.StatusConflict
	case auth.IsRejection(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
