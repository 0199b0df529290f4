// Package session holds the logged-in identity of a dashboard client and
// persists it to a durable storage slot so it survives restarts.
//
// A Store starts out Initializing. Initialize reads the slot and moves it to
// Authenticated or Anonymous; Login and Logout move it between those two. Corrupt
// persisted data is discarded and treated as no session.
//
// Overlapping Login calls on stores sharing one Storage are not serialised: each
// writes a complete record and the last write wins.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hostpanel/internal/notify"
)

const DefaultLoginDelay = 800 * time.Millisecond

type State string

const (
	StateInitializing  State = "initializing"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

type Snapshot struct {
	State   State `json:"state"`
	Loading bool  `json:"loading"`
	User    *User `json:"user,omitempty"`
}

type Option func(*Store)

func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLoginDelay sets the simulated round-trip before credentials are checked.
func WithLoginDelay(d time.Duration) Option {
	return func(s *Store) {
		if d < 0 {
			d = 0
		}
		s.delay = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

type Store struct {
	storage  Storage
	creds    CredentialFinder
	notifier notify.Notifier
	logger   *slog.Logger
	delay    time.Duration
	key      string

	mu      sync.RWMutex
	loading bool
	user    *User
}

func NewStore(storage Storage, creds CredentialFinder, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		creds:    creds,
		notifier: notify.Discard,
		logger:   slog.Default(),
		delay:    DefaultLoginDelay,
		key:      StorageKey,
		loading:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize adopts the persisted record, if any. It never fails: unreadable or
// invalid records are removed and the store ends up Anonymous.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	user := s.readPersisted(ctx)

	s.mu.Lock()
	s.user = user
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) readPersisted(ctx context.Context) *User {
	raw, ok, err := s.storage.Get(s.key)
	if err != nil {
		s.discard(ctx, "unreadable session record", err)
		return nil
	}
	if !ok {
		return nil
	}

	user, err := DecodeRecord(raw)
	if err != nil {
		s.discard(ctx, "corrupt session record", err)
		return nil
	}
	return &user
}

func (s *Store) discard(ctx context.Context, msg string, cause error) {
	s.logger.WarnContext(ctx, msg, "key", s.key, "error", cause.Error())
	if err := s.storage.Remove(s.key); err != nil {
		s.logger.WarnContext(ctx, "failed to remove session record", "key", s.key, "error", err.Error())
	}
}

// Login waits the simulated delay, then checks the credentials. It reports
// failure through the return value and a notification, never an error. A
// cancelled context returns false without touching state.
func (s *Store) Login(ctx context.Context, username string, password string) bool {
	if err := wait(ctx, s.delay); err != nil {
		return false
	}

	cred, found := s.creds.FindCredential(username)
	if !found || !cred.Verify(password) {
		s.notifier.Notify(ctx, notify.Failure("Login failed", "Invalid username or password"))
		return false
	}

	user := cred.User()
	record, err := EncodeRecord(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "credential produced invalid session user", "username", username, "error", err.Error())
		s.notifier.Notify(ctx, notify.Failure("Login failed", "Invalid username or password"))
		return false
	}

	s.mu.Lock()
	s.user = &user
	s.loading = false
	s.mu.Unlock()

	if err := s.storage.Set(s.key, record); err != nil {
		s.logger.WarnContext(ctx, "failed to persist session record", "key", s.key, "error", err.Error())
	}

	s.notifier.Notify(ctx, notify.Info("Login successful", fmt.Sprintf("Welcome back, %s!", user.Username)))
	return true
}

// Logout clears the session in memory and in storage. Calling it without an
// active session only emits the notification.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.mu.Unlock()

	if err := s.storage.Remove(s.key); err != nil {
		s.logger.WarnContext(ctx, "failed to remove session record", "key", s.key, "error", err.Error())
	}

	s.notifier.Notify(ctx, notify.Info("Logged out", "You have been successfully logged out"))
}

func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) State() State {
	return s.Snapshot().State
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Loading: s.loading}
	switch {
	case s.loading:
		snap.State = StateInitializing
	case s.user != nil:
		u := *s.user
		snap.State = StateAuthenticated
		snap.User = &u
	default:
		snap.State = StateAnonymous
	}
	return snap
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
