package handlers

import (
	"net/http"

	"techrobotics-site/internal/middlewares"
)

func POSTLogoutHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)

	user, ok := s.User()
	msg := ctx.Gate.Logout(ctx, s)

	if err := ctx.SessionManager.RenewToken(ctx); err != nil {
		ctx.Logger.Error("failed to renew session token", "error", err)
	}

	if ok {
		ctx.Logger.Info("User logged out", "username", user.Username)
	}

	respond(ctx, http.StatusOK, "logged_out", msg)
}
