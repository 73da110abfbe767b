package handlers

import (
	"net/http"

	"techrobotics-site/internal/middlewares"
)

func POSTCarouselNextHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)
	s.NextSlide(ctx.Catalogue.SlideCount())
	respond(ctx, http.StatusOK, outcomeShown, nil)
}

func POSTCarouselPrevHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)
	s.PrevSlide(ctx.Catalogue.SlideCount())
	respond(ctx, http.StatusOK, outcomeShown, nil)
}

func POSTCarouselSelectHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)

	var req CarouselSelectRequest
	if err := decodeRequest(ctx, &req); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "Invalid slide index")
		return
	}

	if err := s.SelectSlide(req.Index, ctx.Catalogue.SlideCount()); err != nil {
		ctx.SetJSONError(http.StatusBadRequest, "Invalid slide index")
		return
	}
	respond(ctx, http.StatusOK, outcomeShown, nil)
}
