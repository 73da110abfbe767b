package middlewares

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"techrobotics-site/internal/auth"
	"techrobotics-site/internal/config"
	"techrobotics-site/internal/content"
	"techrobotics-site/internal/narration"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/presence"
	"techrobotics-site/internal/storage"
)

type AppContext struct {
	context.Context
	Config         *config.Config
	Logger         *slog.Logger
	SessionManager SessionProvider
	OIDCProvider   OIDCProvider
	Storage        storage.StorageProvider
	Presence       presence.Tracker
	Gate           *auth.Gate
	Catalogue      *content.Catalogue
	Narrator       narration.Narrator

	Request  *http.Request
	Response http.ResponseWriter

	session   *navigation.Session
	principal navigation.Principal
}

type contextKey string

const appContextKey contextKey = "appContext"

func AppContextMiddleware(baseCtx *AppContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestCtx := &AppContext{
				Context:        r.Context(),
				Config:         baseCtx.Config,
				Logger:         baseCtx.Logger,
				SessionManager: baseCtx.SessionManager,
				OIDCProvider:   baseCtx.OIDCProvider,
				Storage:        baseCtx.Storage,
				Presence:       baseCtx.Presence,
				Gate:           baseCtx.Gate,
				Catalogue:      baseCtx.Catalogue,
				Narrator:       baseCtx.Narrator,
				Request:        r,
				Response:       w,
			}

			ctx := context.WithValue(r.Context(), appContextKey, requestCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type AppHandler func(*AppContext)

// Handler converts an AppHandler to an http.Handler
func (ctx *AppContext) Handler(h AppHandler) http.Handler {
	return ctx.HandlerFunc(h)
}

// HandlerFunc converts AppHandler to a http.HandlerFunc
func (ctx *AppContext) HandlerFunc(h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		h(appCtx)
	}
}

func (ctx *AppContext) Redirect(url string, status int) {
	http.Redirect(ctx.Response, ctx.Request, url, status)
}

// Session returns the navigation session of the current browser, loading it on first use.
func (ctx *AppContext) Session() *navigation.Session {
	if ctx.session == nil {
		ctx.session = ctx.SessionManager.Load(ctx)
	}
	return ctx.session
}

// SaveSession persists the session loaded by Session. It is a no-op when nothing was loaded.
func (ctx *AppContext) SaveSession() {
	if ctx.session == nil {
		return
	}
	ctx.SessionManager.Save(ctx, ctx.session)
}

type Dependencies struct {
	SessionManager SessionProvider
	OIDCProvider   OIDCProvider
	Storage        storage.StorageProvider
	Presence       presence.Tracker
	Gate           *auth.Gate
	Catalogue      *content.Catalogue
	Narrator       narration.Narrator
}

func NewAppContext(ctx context.Context, cfg *config.Config, logger *slog.Logger, deps Dependencies) *AppContext {
	return &AppContext{
		Context:        ctx,
		Config:         cfg,
		Logger:         logger,
		SessionManager: deps.SessionManager,
		OIDCProvider:   deps.OIDCProvider,
		Storage:        deps.Storage,
		Presence:       deps.Presence,
		Gate:           deps.Gate,
		Catalogue:      deps.Catalogue,
		Narrator:       deps.Narrator,
	}
}

func GetAppContext(r *http.Request) *AppContext {
	if ctx, ok := r.Context().Value(appContextKey).(*AppContext); ok {
		return ctx
	}

	return nil
}

func GetLogger(r *http.Request) *slog.Logger {
	if appCtx := GetAppContext(r); appCtx != nil {
		return appCtx.Logger
	}

	return nil
}

func (ctx *AppContext) WriteJSON(status int, data interface{}) {
	ctx.Response.Header().Set("Content-Type", "application/json")
	ctx.Response.WriteHeader(status)
	if err := json.NewEncoder(ctx.Response).Encode(data); err != nil {
		ctx.Logger.Error("failed to marshal json", "error", err)
	}
}

func (ctx *AppContext) WriteBytes(status int, contentType string, data []byte) {
	ctx.Response.Header().Set("Content-Type", contentType)
	ctx.Response.WriteHeader(status)
	if _, err := ctx.Response.Write(data); err != nil {
		ctx.Logger.Error("failed to write response", "error", err)
	}
}

func (ctx *AppContext) SetJSONError(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"error": message,
	})
}

func (ctx *AppContext) SetJSONStatus(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"status": message,
	})
}
