package guard

import (
	"encoding/json"
	"net/http"
	"strings"

	"hostpanel/internal/model"
	"hostpanel/internal/session"
)

type Observer interface {
	ObserveDecision(outcome Outcome)
}

type Middleware struct {
	observer Observer
}

func NewMiddleware(observer Observer) *Middleware {
	return &Middleware{observer: observer}
}

// RequireSession gates next on the request's session store. Page routes are
// redirected to the login path; API routes get a 401 carrying the login URL.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, _ := session.FromContext(r.Context())
		decision := DecideStore(store, r.URL.RequestURI())

		if m.observer != nil {
			m.observer.ObserveDecision(decision.Outcome)
		}

		switch decision.Outcome {
		case OutcomePlaceholder:
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusServiceUnavailable, "SESSION_LOADING", "session is still loading", "")
		case OutcomeRedirect:
			if isAPIRequest(r) {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", decision.Location)
				return
			}
			http.Redirect(w, r, decision.Location, http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (m *Middleware) RequireRoles(allowed ...session.Role) func(http.Handler) http.Handler {
	roleSet := make(map[session.Role]struct{}, len(allowed))
	for _, role := range allowed {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := session.UserFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", LoginURL(r.URL.RequestURI()))
				return
			}

			if _, exists := roleSet[user.Role]; !exists {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions", string(user.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isAPIRequest reports whether a redirect would be useless to the caller.
// Websocket handshakes count as API calls.
func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func writeJSONError(w http.ResponseWriter, status int, code string, message string, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
