package middleware

import (
	"net/http"

	"hostpanel/internal/notify"
	"hostpanel/internal/session"
)

// Session gives every request its own notification collector and a session
// store over the request's cookie, already initialised.
func Session(factory *session.Factory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := notify.WithCollector(r.Context(), notify.NewCollector())

			store := factory.ForRequest(w, r)
			store.Initialize(ctx)

			next.ServeHTTP(w, r.WithContext(session.WithStore(ctx, store)))
		})
	}
}
