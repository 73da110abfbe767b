package handlers

import (
	"errors"
	"net/http"

	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/modal"
	"techrobotics-site/internal/navigation"

	"github.com/go-chi/chi/v5"
)

func modalFromRequest(ctx *middlewares.AppContext) (modal.Name, bool) {
	name, err := modal.ParseName(chi.URLParam(ctx.Request, "name"))
	if err != nil {
		ctx.SetJSONError(http.StatusNotFound, "Unknown modal")
		return "", false
	}
	return name, true
}

func POSTModalOpenHandler(ctx *middlewares.AppContext) {
	name, ok := modalFromRequest(ctx)
	if !ok {
		return
	}

	s := loadSession(ctx)
	if name == modal.Subscribe && !s.IsAuthenticated() {
		reject(ctx, http.StatusUnauthorized, "You must be logged in to subscribe.")
		return
	}

	if err := s.OpenModal(name); err != nil {
		modalError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, outcomeShown, nil)
}

func POSTModalCloseHandler(ctx *middlewares.AppContext) {
	name, ok := modalFromRequest(ctx)
	if !ok {
		return
	}

	s := loadSession(ctx)
	if err := s.CloseModal(name); err != nil {
		modalError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, outcomeShown, nil)
}

func modalError(ctx *middlewares.AppContext, err error) {
	if errors.Is(err, navigation.ErrManagedModal) {
		ctx.SetJSONError(http.StatusConflict, "The auth modal is opened through /api/auth/modal")
		return
	}
	ctx.Logger.Error("modal transition failed", "error", err)
	ctx.SetJSONError(http.StatusInternalServerError, "Internal Server Error")
}
