package middlewares

import (
	"net/http"

	"techrobotics-site/internal/models"
	"techrobotics-site/internal/navigation"
)

//go:generate mockgen -source=session_provider.go -destination=../mocks/session.go -package=mocks

type SessionProvider interface {
	Load(ctx *AppContext) *navigation.Session
	Save(ctx *AppContext, session *navigation.Session)
	GetUser(ctx *AppContext) (user *models.User, ok bool)
	RenewToken(ctx *AppContext) error
	SetOauthState(ctx *AppContext, state string)
	GetOauthState(ctx *AppContext) string
	ClearOauthState(ctx *AppContext)
	SetOauthNonce(ctx *AppContext, nonce string)
	GetOauthNonce(ctx *AppContext) string
	ClearOauthNonce(ctx *AppContext)
	SetOauthCodeVerifier(ctx *AppContext, verifier string)
	GetOauthCodeVerifier(ctx *AppContext) string
	ClearOauthCodeVerifier(ctx *AppContext)

	LoadAndSave(next http.Handler) http.Handler
}
