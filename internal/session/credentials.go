package session

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Credential is static reference data used to authenticate a login attempt.
// Demo records compare Password in constant time; file-backed records carry a
// bcrypt PasswordHash instead.
type Credential struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Password     string `json:"-"`
	PasswordHash string `json:"password_hash,omitempty"`
	Role         Role   `json:"role"`
}

func (c Credential) Verify(password string) bool {
	if c.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	}
	if c.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
}

func (c Credential) User() User {
	return User{ID: c.ID, Username: c.Username, Role: c.Role}
}

type CredentialFinder interface {
	FindCredential(username string) (Credential, bool)
}

// StaticCredentials is an in-memory credential list with exact username matching.
type StaticCredentials []Credential

func (s StaticCredentials) FindCredential(username string) (Credential, bool) {
	for _, c := range s {
		if c.Username == username {
			return c, true
		}
	}
	return Credential{}, false
}

// DemoCredentials returns the two built-in accounts.
func DemoCredentials() StaticCredentials {
	return StaticCredentials{
		{ID: "1", Username: "admin", Password: "admin123", Role: RoleAdmin},
		{ID: "2", Username: "user", Password: "user123", Role: RoleUser},
	}
}

// FileCredentials reads bcrypt-hashed accounts from a JSON users file. A missing
// or empty file is seeded with the demo accounts.
type FileCredentials struct {
	path string

	mu         sync.RWMutex
	byUsername map[string]Credential
}

func NewFileCredentials(path string) (*FileCredentials, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("credentials file path is required")
	}

	fc := &FileCredentials{path: path, byUsername: map[string]Credential{}}
	if err := fc.load(); err != nil {
		return nil, err
	}
	return fc, nil
}

func (f *FileCredentials) FindCredential(username string) (Credential, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	c, ok := f.byUsername[username]
	return c, ok
}

// Put adds or replaces an account and rewrites the users file.
func (f *FileCredentials) Put(username string, password string, role Role) (Credential, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Credential{}, errors.New("username and password are required")
	}
	if !role.Valid() {
		return Credential{}, fmt.Errorf("invalid role %q", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Credential{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.NewString()
	if existing, ok := f.byUsername[username]; ok {
		id = existing.ID
	}

	c := Credential{ID: id, Username: username, PasswordHash: hash, Role: role}
	f.byUsername[username] = c

	if err := f.saveLocked(); err != nil {
		return Credential{}, err
	}
	return c, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (f *FileCredentials) load() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	data, err := os.ReadFile(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return f.seed()
	}

	var records []Credential
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse credentials file: %w", err)
	}

	byUsername := make(map[string]Credential, len(records))
	for _, c := range records {
		if c.Username == "" || c.PasswordHash == "" || !c.Role.Valid() {
			return fmt.Errorf("credentials file: invalid record for %q", c.Username)
		}
		byUsername[c.Username] = c
	}

	f.mu.Lock()
	f.byUsername = byUsername
	f.mu.Unlock()
	return nil
}

func (f *FileCredentials) seed() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, demo := range DemoCredentials() {
		hash, err := HashPassword(demo.Password)
		if err != nil {
			return err
		}
		f.byUsername[demo.Username] = Credential{ID: demo.ID, Username: demo.Username, PasswordHash: hash, Role: demo.Role}
	}

	return f.saveLocked()
}

func (f *FileCredentials) saveLocked() error {
	records := make([]Credential, 0, len(f.byUsername))
	for _, c := range f.byUsername {
		records = append(records, c)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Username < records[j].Username })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	return writeFileAtomic(f.path, data, 0o600)
}
