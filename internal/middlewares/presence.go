package middlewares

import "net/http"

// TrackPresence refreshes the signed-in caller's presence entry on every
// request, so the sweep only drops users whose sessions have gone quiet.
// It runs after OptionalAuth has resolved the principal.
func TrackPresence(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx != nil && appCtx.Presence != nil {
			if user, ok := appCtx.GetUser(); ok {
				if err := appCtx.Presence.MarkActive(appCtx, *user); err != nil {
					appCtx.Logger.Warn("failed to refresh presence", "user_id", user.ID, "error", err)
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}
