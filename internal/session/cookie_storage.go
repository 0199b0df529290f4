package session

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type CookieConfig struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
	Path   string
}

// CookieStorage stores values in HS256-signed cookies on one request/response
// pair. Writes are also kept locally so later reads within the same request
// observe them.
type CookieStorage struct {
	cfg CookieConfig
	w   http.ResponseWriter
	r   *http.Request
	now func() time.Time

	mu      sync.Mutex
	pending map[string]*string
}

func NewCookieStorage(w http.ResponseWriter, r *http.Request, cfg CookieConfig) *CookieStorage {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}

	return &CookieStorage{
		cfg:     cfg,
		w:       w,
		r:       r,
		now:     time.Now,
		pending: map[string]*string{},
	}
}

func (c *CookieStorage) Get(key string) (string, bool, error) {
	c.mu.Lock()
	if value, ok := c.pending[key]; ok {
		c.mu.Unlock()
		if value == nil {
			return "", false, nil
		}
		return *value, true, nil
	}
	c.mu.Unlock()

	cookie, err := c.r.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	value, err := c.verify(cookie.Value)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}

func (c *CookieStorage) Set(key string, value string) error {
	now := c.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"val": value,
		"iat": now.Unix(),
		"exp": now.Add(c.cfg.TTL).Unix(),
	})

	signed, err := token.SignedString(c.cfg.Secret)
	if err != nil {
		return err
	}

	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    signed,
		Path:     c.cfg.Path,
		MaxAge:   int(c.cfg.TTL.Seconds()),
		Expires:  now.Add(c.cfg.TTL),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	c.mu.Lock()
	c.pending[key] = &value
	c.mu.Unlock()
	return nil
}

func (c *CookieStorage) Remove(key string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     c.cfg.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	c.mu.Lock()
	c.pending[key] = nil
	c.mu.Unlock()
	return nil
}

func (c *CookieStorage) verify(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return c.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", errors.New("invalid session cookie")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid session cookie claims")
	}

	value, ok := claims["val"].(string)
	if !ok {
		return "", fmt.Errorf("session cookie has no value claim")
	}
	return value, nil
}
