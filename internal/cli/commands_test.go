package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	t.Parallel()

	sessionFile := filepath.Join(t.TempDir(), "session.json")

	out, err := run(t, "", "whoami", "--session-file", sessionFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	out, err = run(t, "admin123\n", "login", "-u", "admin", "--password-stdin", "--session-file", sessionFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Login successful")

	out, err = run(t, "", "whoami", "--session-file", sessionFile)
	require.NoError(t, err)
	assert.Equal(t, "admin (admin)\n", out)

	out, err = run(t, "", "logout", "--session-file", sessionFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	out, err = run(t, "", "whoami", "--session-file", sessionFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Parallel()

	sessionFile := filepath.Join(t.TempDir(), "session.json")

	out, err := run(t, "", "login", "-u", "admin", "-p", "wrong", "--session-file", sessionFile)
	require.ErrorIs(t, err, errLoginFailed)
	assert.Contains(t, out, "Invalid username or password")
	assert.NoFileExists(t, sessionFile)
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	out, err := run(t, "", "hash-password", "s3cret")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err = run(t, "\n", "hash-password")
	require.Error(t, err)
}

func TestAddUserThenLogin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	users := filepath.Join(dir, "users.json")
	sessionFile := filepath.Join(dir, "session.json")

	out, err := run(t, "hunter22\n", "add-user", "ops", "--role", "user", "--credentials", users)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved ops (user)")

	_, err = run(t, "hunter22\n", "login", "-u", "ops", "--password-stdin", "--credentials", users, "--session-file", sessionFile)
	require.NoError(t, err)

	out, err = run(t, "", "whoami", "--credentials", users, "--session-file", sessionFile)
	require.NoError(t, err)
	assert.Equal(t, "ops (user)\n", out)

	_, err = run(t, "pw\n", "add-user", "ops")
	require.Error(t, err)
}
