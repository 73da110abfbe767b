package handlers

import (
	"net/http"

	"techrobotics-site/internal/middlewares"
)

func GETViewHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)
	ctx.SaveSession()
	ctx.WriteJSON(http.StatusOK, buildView(ctx, s))
}

// GETSessionHandler returns the raw session state.
func GETSessionHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)
	ctx.SaveSession()
	ctx.WriteJSON(http.StatusOK, s.Snapshot())
}
