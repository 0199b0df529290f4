package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hostpanel/internal/fixtures"
	"hostpanel/internal/model"
	"hostpanel/internal/validate"
	"hostpanel/pkg/apierror"
)

const (
	defaultCharset   = "utf8mb4"
	defaultCollation = "utf8mb4_general_ci"
)

type CreateDatabaseInput struct {
	Name      string `json:"name" validate:"required,min=3,max=64,dbident"`
	Charset   string `json:"charset" validate:"omitempty,max=32,dbident"`
	Collation string `json:"collation" validate:"omitempty,max=64,dbident"`
}

type CreateUserInput struct {
	Username   string `json:"username" validate:"required,max=32"`
	Password   string `json:"password"`
	Host       string `json:"host" validate:"omitempty,max=255"`
	Privileges string `json:"privileges"`
	Database   string `json:"database"`
}

type MySQLService struct {
	Panel

	plugins *toggleSet
	config  textDoc

	mu        sync.RWMutex
	databases []model.Database
	users     []model.DBUser
	now       func() time.Time
}

func NewMySQLService(panel Panel, seed fixtures.MySQL) *MySQLService {
	s := &MySQLService{
		Panel:     panel,
		plugins:   newToggleSet(seed.Plugins),
		databases: append([]model.Database(nil), seed.Databases...),
		users:     append([]model.DBUser(nil), seed.Users...),
		now:       time.Now,
	}
	s.config.Set(seed.Config)
	return s
}

func (s *MySQLService) Plugins(query string) []model.Toggle {
	return s.plugins.Search(query)
}

func (s *MySQLService) TogglePlugin(ctx context.Context, name string) (model.Toggle, error) {
	plugin, ok := s.plugins.Flip(strings.TrimSpace(name))
	if !ok {
		return model.Toggle{}, model.ErrPluginNotFound
	}

	state := enabledWord(plugin.Enabled)
	s.info(ctx, "Plugin "+plugin.Name, fmt.Sprintf("%s plugin has been %s.", plugin.Name, state))
	s.record(ctx, model.ActivityInfo, "mysql", "toggle_plugin", fmt.Sprintf("MySQL plugin %s: %s", state, plugin.Name), plugin.Description)
	return plugin, nil
}

func (s *MySQLService) Databases() []model.Database {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Database(nil), s.databases...)
}

func (s *MySQLService) CreateDatabase(ctx context.Context, in CreateDatabaseInput) (model.Database, error) {
	in.Name = strings.TrimSpace(in.Name)
	if fields := validate.Struct(in); fields != nil {
		msg := validate.Summary(fields)
		s.failure(ctx, "Error", msg)
		return model.Database{}, apierror.BadRequest(msg, in.Name)
	}

	db := model.Database{
		Name:      in.Name,
		Tables:    0,
		Size:      "0 MB",
		Created:   s.now().Format(time.DateOnly),
		Charset:   orDefault(in.Charset, defaultCharset),
		Collation: orDefault(in.Collation, defaultCollation),
	}

	s.mu.Lock()
	for _, existing := range s.databases {
		if strings.EqualFold(existing.Name, db.Name) {
			s.mu.Unlock()
			return model.Database{}, model.ErrDatabaseExists
		}
	}
	s.databases = append(s.databases, db)
	s.mu.Unlock()

	s.info(ctx, "Database Created", fmt.Sprintf("New database %s has been created.", db.Name))
	s.record(ctx, model.ActivitySuccess, "mysql", "create_database", "Database created: "+db.Name, db.Charset+" / "+db.Collation)
	return db, nil
}

func (s *MySQLService) Users() []model.DBUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DBUser(nil), s.users...)
}

func (s *MySQLService) CreateUser(ctx context.Context, in CreateUserInput) (model.DBUser, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		s.failure(ctx, "Error", "Username is required.")
		return model.DBUser{}, apierror.BadRequest("Username is required.", "username")
	}
	if fields := validate.Struct(in); fields != nil {
		msg := validate.Summary(fields)
		s.failure(ctx, "Error", msg)
		return model.DBUser{}, apierror.BadRequest(msg, in.Username)
	}

	user := model.DBUser{
		Username:       in.Username,
		Host:           orDefault(in.Host, "localhost"),
		Privileges:     orDefault(in.Privileges, "SELECT"),
		Authentication: "Native",
		Database:       orDefault(in.Database, "None"),
	}

	s.mu.Lock()
	if user.Database != "None" && !s.hasDatabaseLocked(user.Database) {
		s.mu.Unlock()
		return model.DBUser{}, apierror.NotFound("database not found", user.Database)
	}
	for _, existing := range s.users {
		if existing.Username == user.Username && existing.Host == user.Host {
			s.mu.Unlock()
			return model.DBUser{}, model.ErrDBUserExists
		}
	}
	s.users = append(s.users, user)
	s.mu.Unlock()

	s.info(ctx, "User Created", fmt.Sprintf("New user %s has been created and assigned to database %s.", user.Username, user.Database))
	s.record(ctx, model.ActivitySuccess, "mysql", "create_user", "Database user created: "+user.Username, user.Username+"@"+user.Host)
	return user, nil
}

func (s *MySQLService) Config() string {
	return s.config.Get()
}

func (s *MySQLService) SaveConfig(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return apierror.BadRequest("configuration cannot be empty", "content")
	}

	s.config.Set(content)
	s.info(ctx, "Configuration Saved", "MySQL configuration has been saved successfully.")
	s.record(ctx, model.ActivitySuccess, "mysql", "save_config", "MySQL configuration updated", fmt.Sprintf("%d bytes", len(content)))
	return nil
}

func (s *MySQLService) hasDatabaseLocked(name string) bool {
	for _, db := range s.databases {
		if db.Name == name {
			return true
		}
	}
	return false
}

func orDefault(value string, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
