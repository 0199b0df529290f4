package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostpanel/internal/model"
	"hostpanel/pkg/apierror"
)

func containsFold(s string, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func TestMySQLService_Plugins(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	svc := NewMySQLService(p.Panel, testSeed(t).MySQL)

	assert.Len(t, svc.Plugins(""), 12)
	found := svc.Plugins("replication")
	require.Len(t, found, 2)

	plugin, err := svc.TogglePlugin(context.Background(), "thread_pool")
	require.NoError(t, err)
	assert.True(t, plugin.Enabled)
	items := p.collector.Drain()
	require.Len(t, items, 1)
	assert.Equal(t, "thread_pool plugin has been enabled.", items[0].Description)

	_, err = svc.TogglePlugin(context.Background(), "missing")
	require.ErrorIs(t, err, model.ErrPluginNotFound)
}

func TestMySQLService_CreateDatabase(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	svc := NewMySQLService(p.Panel, testSeed(t).MySQL)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	db, err := svc.CreateDatabase(ctx, CreateDatabaseInput{Name: "shop_v2"})
	require.NoError(t, err)
	assert.Equal(t, model.Database{
		Name:      "shop_v2",
		Tables:    0,
		Size:      "0 MB",
		Created:   "2026-03-04",
		Charset:   "utf8mb4",
		Collation: "utf8mb4_general_ci",
	}, db)
	assert.Len(t, svc.Databases(), 5)
	assert.Equal(t, []string{"Database Created"}, p.titles())

	_, err = svc.CreateDatabase(ctx, CreateDatabaseInput{Name: "WordPress"})
	require.ErrorIs(t, err, model.ErrDatabaseExists)
}

func TestMySQLService_CreateDatabaseValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "too short", input: "ab"},
		{name: "too long", input: strings.Repeat("a", 65)},
		{name: "bad characters", input: "shop-db"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newTestPanel(t)
			svc := NewMySQLService(p.Panel, testSeed(t).MySQL)

			_, err := svc.CreateDatabase(context.Background(), CreateDatabaseInput{Name: tt.input})
			var apiErr *apierror.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "BAD_REQUEST", apiErr.Code)
			assert.Len(t, svc.Databases(), 4)
		})
	}
}

func TestMySQLService_CreateUser(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	svc := NewMySQLService(p.Panel, testSeed(t).MySQL)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Username: "reporter"})
	require.NoError(t, err)
	assert.Equal(t, model.DBUser{
		Username:       "reporter",
		Host:           "localhost",
		Privileges:     "SELECT",
		Authentication: "Native",
		Database:       "None",
	}, user)

	items := p.collector.Drain()
	require.Len(t, items, 1)
	assert.Equal(t, "New user reporter has been created and assigned to database None.", items[0].Description)

	_, err = svc.CreateUser(ctx, CreateUserInput{Username: "reporter"})
	require.ErrorIs(t, err, model.ErrDBUserExists)

	user, err = svc.CreateUser(ctx, CreateUserInput{Username: "reporter", Host: "%", Database: "wordpress"})
	require.NoError(t, err)
	assert.Equal(t, "wordpress", user.Database)

	_, err = svc.CreateUser(ctx, CreateUserInput{Username: "ghost", Database: "nope"})
	require.Error(t, err)

	_, err = svc.CreateUser(ctx, CreateUserInput{})
	require.Error(t, err)
	assert.Contains(t, p.titles(), "Error")
	assert.Len(t, svc.Users(), 6)
}

func TestMySQLService_Config(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	svc := NewMySQLService(p.Panel, testSeed(t).MySQL)

	assert.Contains(t, svc.Config(), "[mysqld]")
	require.NoError(t, svc.SaveConfig(context.Background(), "[mysqld]\nport = 3307\n"))
	assert.Equal(t, "[mysqld]\nport = 3307\n", svc.Config())

	acts := p.activities(t)
	require.Len(t, acts, 1)
	assert.Equal(t, "MySQL configuration updated", acts[0].Activity)
}
