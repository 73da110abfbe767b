package handlers

import (
	"net/http"

	"techrobotics-site/internal/middlewares"
)

func HandlerHealth(ctx *middlewares.AppContext) {
	if ctx.Storage != nil {
		if err := ctx.Storage.Ping(ctx); err != nil {
			ctx.Logger.Error("storage health check failed", "error", err)
			ctx.SetJSONStatus(http.StatusServiceUnavailable, "UNAVAILABLE")
			return
		}
	}
	ctx.SetJSONStatus(http.StatusOK, "OK")
}
