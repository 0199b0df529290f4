// Package guard decides whether a protected view may be rendered for the
// current session, and wraps that decision as HTTP middleware.
package guard

import "hostpanel/internal/session"

type Outcome string

const (
	OutcomePlaceholder Outcome = "placeholder"
	OutcomeRedirect    Outcome = "redirect"
	OutcomeRender      Outcome = "render"
)

type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide is a pure function of the session state. It never redirects while the
// session is still loading.
func Decide(loading bool, user *session.User, requested string) Decision {
	switch {
	case loading:
		return Decision{Outcome: OutcomePlaceholder}
	case user == nil:
		return Decision{Outcome: OutcomeRedirect, Location: LoginURL(requested)}
	default:
		return Decision{Outcome: OutcomeRender}
	}
}

// DecideStore evaluates Decide against a store snapshot.
func DecideStore(store *session.Store, requested string) Decision {
	if store == nil {
		return Decide(true, nil, requested)
	}
	snap := store.Snapshot()
	return Decide(snap.Loading, snap.User, requested)
}
