package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the session identity. It never carries a password.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

var ErrInvalidRecord = errors.New("invalid session record")

// EncodeRecord serialises u into the persisted shape {id, username, role}.
func EncodeRecord(u User) (string, error) {
	if err := u.validate(); err != nil {
		return "", err
	}

	data, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeRecord parses a persisted record. Unknown fields, trailing data, empty
// identifiers and unknown roles are all rejected.
func DecodeRecord(raw string) (User, error) {
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()

	var user User
	if err := decoder.Decode(&user); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return User{}, fmt.Errorf("%w: trailing data", ErrInvalidRecord)
	}

	if err := user.validate(); err != nil {
		return User{}, err
	}

	return user, nil
}

func (u User) validate() error {
	switch {
	case strings.TrimSpace(u.ID) == "":
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	case strings.TrimSpace(u.Username) == "":
		return fmt.Errorf("%w: empty username", ErrInvalidRecord)
	case !u.Role.Valid():
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRecord, u.Role)
	}
	return nil
}
