package middlewares

import (
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/navigation"
)

func (ctx *AppContext) SetPrincipal(p navigation.Principal) {
	ctx.principal = p
}

// GetPrincipal returns the caller's principal, Guest when none was set.
func (ctx *AppContext) GetPrincipal() navigation.Principal {
	if ctx.principal == nil {
		return navigation.Guest{}
	}
	return ctx.principal
}

func (ctx *AppContext) GetUser() (*models.User, bool) {
	return navigation.UserOf(ctx.GetPrincipal())
}
