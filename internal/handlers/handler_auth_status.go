package handlers

import (
	"net/http"

	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/models"
)

func AuthStatusHandler(ctx *middlewares.AppContext) {
	response := AuthStatusResponse{
		Authenticated: false,
		Role:          models.RoleGuest,
	}

	user, ok := ctx.SessionManager.GetUser(ctx)
	if !ok {
		ctx.WriteJSON(http.StatusUnauthorized, response)
		return
	}

	response.Authenticated = true
	response.Role = user.Role
	response.User = user
	ctx.WriteJSON(http.StatusOK, response)
}
