package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"hostpanel/internal/logger"
	"hostpanel/internal/model"
	"hostpanel/internal/validate"
	"hostpanel/pkg/apierror"
)

// BackupScheduler applies a backup frequency and reports the schedule it
// installed.
type BackupScheduler interface {
	Reschedule(frequency string) (string, error)
}

type ProfileInput struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
}

type PreferencesInput struct {
	Theme                string `json:"theme" validate:"required,oneof=light dark system"`
	Language             string `json:"language" validate:"required,oneof=en es fr de"`
	EmailNotifications   bool   `json:"email_notifications"`
	BrowserNotifications bool   `json:"browser_notifications"`
	MaintenanceAlerts    bool   `json:"maintenance_alerts"`
}

type SystemInput struct {
	BackupFrequency string `json:"backup_frequency" validate:"omitempty,oneof=hourly daily weekly monthly"`
	LogLevel        string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

type SettingsService struct {
	Panel

	scheduler BackupScheduler
	defaults  model.Settings

	mu      sync.RWMutex
	current model.Settings
}

func NewSettingsService(panel Panel, defaults model.Settings, scheduler BackupScheduler) *SettingsService {
	return &SettingsService{Panel: panel, scheduler: scheduler, defaults: defaults, current: defaults}
}

// Apply pushes the current backup frequency and log level into the scheduler
// and logger. Called once at start-up.
func (s *SettingsService) Apply() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(s.current.BackupFrequency, s.current.LogLevel)
}

func (s *SettingsService) Get() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsService) UpdateProfile(ctx context.Context, in ProfileInput) (model.Settings, error) {
	if err := s.check(in); err != nil {
		return model.Settings{}, err
	}

	s.mu.Lock()
	s.current.Profile = model.Profile{FullName: strings.TrimSpace(in.FullName), Email: strings.TrimSpace(in.Email)}
	out := s.current
	s.mu.Unlock()

	s.saved(ctx, "profile")
	return out, nil
}

func (s *SettingsService) UpdatePreferences(ctx context.Context, in PreferencesInput) (model.Settings, error) {
	if err := s.check(in); err != nil {
		return model.Settings{}, err
	}

	s.mu.Lock()
	s.current.Preferences = model.Preferences(in)
	out := s.current
	s.mu.Unlock()

	s.saved(ctx, "preferences")
	return out, nil
}

func (s *SettingsService) UpdateSystem(ctx context.Context, in SystemInput) (model.Settings, error) {
	if err := s.check(in); err != nil {
		return model.Settings{}, err
	}

	s.mu.Lock()
	frequency := orDefault(in.BackupFrequency, s.current.BackupFrequency)
	level := orDefault(in.LogLevel, s.current.LogLevel)
	if err := s.applyLocked(frequency, level); err != nil {
		s.mu.Unlock()
		return model.Settings{}, err
	}
	out := s.current
	s.mu.Unlock()

	s.saved(ctx, "system")
	return out, nil
}

// RestartSystem only announces the restart.
func (s *SettingsService) RestartSystem(ctx context.Context) {
	s.info(ctx, "System Restart Initiated", "The system is restarting. This may take a few minutes.")
	s.record(ctx, model.ActivityWarning, "system", "restart", "System restart initiated", "")
}

func (s *SettingsService) Reset(ctx context.Context) (model.Settings, error) {
	s.mu.Lock()
	s.current = s.defaults
	if err := s.applyLocked(s.defaults.BackupFrequency, s.defaults.LogLevel); err != nil {
		s.mu.Unlock()
		return model.Settings{}, err
	}
	out := s.current
	s.mu.Unlock()

	s.info(ctx, "Settings Reset", "All settings have been restored to their defaults.")
	s.record(ctx, model.ActivityInfo, "system", "reset_settings", "Settings restored to defaults", "")
	return out, nil
}

func (s *SettingsService) applyLocked(frequency string, level string) error {
	if err := logger.SetLevel(level); err != nil {
		return apierror.BadRequest("invalid log level", level)
	}
	s.current.LogLevel = level

	if s.scheduler != nil {
		schedule, err := s.scheduler.Reschedule(frequency)
		if err != nil {
			return apierror.BadRequest("invalid backup frequency", err.Error())
		}
		s.current.BackupSchedule = schedule
	}
	s.current.BackupFrequency = frequency
	return nil
}

func (s *SettingsService) check(in any) error {
	if fields := validate.Struct(in); fields != nil {
		return apierror.BadRequest(validate.Summary(fields), "")
	}
	return nil
}

func (s *SettingsService) saved(ctx context.Context, section string) {
	s.info(ctx, "Settings Saved", fmt.Sprintf("Your %s settings have been saved successfully.", section))
	s.record(ctx, model.ActivitySuccess, "system", "save_settings", "Settings updated", section)
}
