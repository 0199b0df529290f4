package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"hostpanel/internal/notify"
)

type contextKey struct{}

func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(contextKey{}).(*Store)
	return s, ok
}

// UserFromContext returns the authenticated user of the request's store.
func UserFromContext(ctx context.Context) (User, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return User{}, false
	}
	return s.User()
}

// Factory builds one cookie-backed store per HTTP request. The cookie jar of
// each browser is its own durable slot.
type Factory struct {
	Credentials CredentialFinder
	Cookie      CookieConfig
	Notifier    notify.Notifier
	LoginDelay  time.Duration
	Logger      *slog.Logger
}

func (f *Factory) ForRequest(w http.ResponseWriter, r *http.Request) *Store {
	storage := NewCookieStorage(w, r, f.Cookie)

	return NewStore(storage, f.Credentials,
		WithNotifier(f.Notifier),
		WithLoginDelay(f.LoginDelay),
		WithLogger(f.Logger),
	)
}
