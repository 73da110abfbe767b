package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"techrobotics-site/internal/handlers"
	"techrobotics-site/internal/middlewares"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupRouter(ctx *middlewares.AppContext) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middlewares.ClientIPMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.MetricsMiddleware)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(ctx.SessionManager.LoadAndSave)

	r.Use(middlewares.AppContextMiddleware(ctx))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ctx.Config.CORS.AllowedOrigins,
		AllowedMethods:   ctx.Config.CORS.AllowedMethods,
		AllowedHeaders:   ctx.Config.CORS.AllowedHeaders,
		ExposedHeaders:   ctx.Config.CORS.ExposedHeaders,
		AllowCredentials: ctx.Config.CORS.AllowCredentials,
		MaxAge:           ctx.Config.CORS.MaxAgeSeconds,
	}))

	r.Use(middleware.Compress(5))

	mountStatic(r, ctx.Config.Server.StaticDir)

	rl := ctx.Config.Auth.RateLimit
	authLimiter := middlewares.NewRateLimiter("auth_submit", rl.RequestsPerSecond, rl.Burst)
	contactLimiter := middlewares.NewRateLimiter("contact", rl.RequestsPerSecond, rl.Burst)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewares.OptionalAuth)
		r.Use(middlewares.TrackPresence)

		r.Get("/view", ctx.HandlerFunc(handlers.GETViewHandler))
		r.Get("/session", ctx.HandlerFunc(handlers.GETSessionHandler))
		r.Post("/navigate", ctx.HandlerFunc(handlers.POSTNavigateHandler))

		r.Route("/carousel", func(r chi.Router) {
			r.Post("/next", ctx.HandlerFunc(handlers.POSTCarouselNextHandler))
			r.Post("/prev", ctx.HandlerFunc(handlers.POSTCarouselPrevHandler))
			r.Post("/select", ctx.HandlerFunc(handlers.POSTCarouselSelectHandler))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/status", ctx.HandlerFunc(handlers.AuthStatusHandler))
			r.Post("/modal", ctx.HandlerFunc(handlers.POSTAuthModalHandler))
			r.Post("/modal/toggle", ctx.HandlerFunc(handlers.POSTAuthModalToggleHandler))
			r.Delete("/modal", ctx.HandlerFunc(handlers.DELETEAuthModalHandler))
			r.With(authLimiter.Middleware).Post("/submit", ctx.HandlerFunc(handlers.POSTAuthSubmitHandler))
			r.Post("/logout", ctx.HandlerFunc(handlers.POSTLogoutHandler))
			r.Get("/oidc/login", ctx.HandlerFunc(handlers.GETLoginHandler))
			r.Get("/oidc/callback", ctx.HandlerFunc(handlers.GETCallbackHandler))
		})

		r.Route("/modals/{name}", func(r chi.Router) {
			r.Post("/open", ctx.HandlerFunc(handlers.POSTModalOpenHandler))
			r.Post("/close", ctx.HandlerFunc(handlers.POSTModalCloseHandler))
		})

		r.Post("/subscriptions", ctx.HandlerFunc(handlers.POSTSubscriptionHandler))
		r.With(contactLimiter.Middleware).Post("/contact", ctx.HandlerFunc(handlers.POSTContactHandler))

		r.Route("/narration", func(r chi.Router) {
			r.Post("/toggle", ctx.HandlerFunc(handlers.POSTNarrationToggleHandler))
			r.Get("/audio", ctx.HandlerFunc(handlers.GETNarrationAudioHandler))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewares.RequireAdmin)
			r.Get("/dashboard", ctx.HandlerFunc(handlers.GETAdminDashboardHandler))
			r.Get("/active-users", ctx.HandlerFunc(handlers.GETActiveUsersHandler))
			r.Get("/subscriptions", ctx.HandlerFunc(handlers.GETSubscriptionsHandler))
			r.Delete("/subscriptions/{id}", ctx.HandlerFunc(handlers.DELETESubscriptionHandler))
			r.Get("/contacts", ctx.HandlerFunc(handlers.GETContactsHandler))
			r.Delete("/contacts/{id}", ctx.HandlerFunc(handlers.DELETEContactHandler))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Get("/health", ctx.HandlerFunc(handlers.HandlerHealth))
		})
	})

	return r
}

// mountStatic serves the single page app bundle. Unknown non-API paths get
// index.html so client-side routes survive a reload.
func mountStatic(r chi.Router, dir string) {
	if dir == "" {
		return
	}

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(filepath.Join(dir, "assets")))))
	r.Handle("/favicon.ico", http.FileServer(http.Dir(dir)))

	index := filepath.Join(dir, "index.html")
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}

func setupDebugRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/debug", middleware.Profiler())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
