package middlewares

import (
	"net/http"

	"techrobotics-site/internal/navigation"
)

// OptionalAuth sets the principal from the session when one is signed in.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if user, ok := appCtx.SessionManager.GetUser(appCtx); ok {
			appCtx.SetPrincipal(navigation.PrincipalFor(user))
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin only lets the Admin principal through.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if user, ok := appCtx.SessionManager.GetUser(appCtx); ok {
			appCtx.SetPrincipal(navigation.PrincipalFor(user))
		}

		switch appCtx.GetPrincipal().(type) {
		case navigation.Admin:
			next.ServeHTTP(w, r)
		case navigation.Guest:
			appCtx.SetJSONError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		default:
			appCtx.SetJSONError(http.StatusForbidden, http.StatusText(http.StatusForbidden))
		}
	})
}
