package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hostpanel/internal/event"
	"hostpanel/internal/fixtures"
	"hostpanel/internal/model"
	"hostpanel/internal/validate"
	"hostpanel/pkg/apierror"
)

const (
	nginxDeleteDelay  = time.Second
	moduleInstallStep = 500 * time.Millisecond
	moduleInstallRuns = 10
	nginxVersion      = "1.22.1"
)

type NginxService struct {
	Panel

	mu      sync.RWMutex
	hosts   []model.VirtualHost
	modules []model.NginxModule
	config  string

	// IDs are never reused, even after the highest entry is deleted.
	lastHostID   int
	lastModuleID int
}

func NewNginxService(panel Panel, seed fixtures.Nginx) *NginxService {
	return &NginxService{
		Panel:        panel,
		hosts:        append([]model.VirtualHost(nil), seed.VirtualHosts...),
		modules:      append([]model.NginxModule(nil), seed.Modules...),
		config:       seed.Config,
		lastHostID:   maxHostID(seed.VirtualHosts),
		lastModuleID: maxModuleID(seed.Modules),
	}
}

func (s *NginxService) ListHosts() []model.VirtualHost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.VirtualHost(nil), s.hosts...)
}

func (s *NginxService) AddHost(ctx context.Context, domain string, root string) (model.VirtualHost, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	root = strings.TrimSpace(root)

	if domain == "" {
		s.failure(ctx, "Error", "Domain name is required.")
		return model.VirtualHost{}, apierror.BadRequest("Domain name is required.", "domain")
	}
	if root == "" {
		s.failure(ctx, "Error", "Document root path is required.")
		return model.VirtualHost{}, apierror.BadRequest("Document root path is required.", "root")
	}
	if msg := validate.Var("domain", domain, "fqdn"); msg != "" {
		s.failure(ctx, "Error", msg)
		return model.VirtualHost{}, apierror.BadRequest(msg, domain)
	}

	s.mu.Lock()
	for _, h := range s.hosts {
		if h.Domain == domain {
			s.mu.Unlock()
			return model.VirtualHost{}, apierror.Conflict("virtual host already exists", domain)
		}
	}

	s.lastHostID++
	host := model.VirtualHost{
		ID:     s.lastHostID,
		Domain: domain,
		Root:   root,
		Status: model.StatusInactive,
	}
	s.hosts = append(s.hosts, host)
	s.mu.Unlock()

	s.info(ctx, "Virtual Host Added", fmt.Sprintf("Virtual host for %s has been added successfully.", domain))
	s.record(ctx, model.ActivitySuccess, "nginx", "add_host", "Virtual host added: "+domain, "Document root "+root)
	return host, nil
}

func (s *NginxService) ToggleHost(ctx context.Context, id int) (model.VirtualHost, error) {
	s.mu.Lock()
	idx := indexOfHost(s.hosts, id)
	if idx < 0 {
		s.mu.Unlock()
		return model.VirtualHost{}, model.ErrVirtualHostNotFound
	}
	host := &s.hosts[idx]
	wasActive := host.Status == model.StatusActive
	host.Status = flip(host.Status)
	updated := *host
	s.mu.Unlock()

	if wasActive {
		s.info(ctx, "Disabling Site", updated.Domain+" is being disabled...")
	} else {
		s.info(ctx, "Enabling Site", updated.Domain+" is being enabled...")
	}
	s.record(ctx, model.ActivityInfo, "nginx", "toggle_host", fmt.Sprintf("Site %s %s", updated.Domain, updated.Status), "")
	return updated, nil
}

func (s *NginxService) DeleteHost(ctx context.Context, id int) error {
	s.mu.RLock()
	idx := indexOfHost(s.hosts, id)
	if idx < 0 {
		s.mu.RUnlock()
		return model.ErrVirtualHostNotFound
	}
	domain := s.hosts[idx].Domain
	s.mu.RUnlock()

	s.info(ctx, "Deleting Virtual Host", fmt.Sprintf("Virtual host for %s is being deleted...", domain))
	if err := s.wait(ctx, nginxDeleteDelay); err != nil {
		return err
	}

	s.mu.Lock()
	idx = indexOfHost(s.hosts, id)
	if idx < 0 {
		s.mu.Unlock()
		return model.ErrVirtualHostNotFound
	}
	s.hosts = append(s.hosts[:idx], s.hosts[idx+1:]...)
	s.mu.Unlock()

	s.info(ctx, "Virtual Host Deleted", fmt.Sprintf("Virtual host for %s has been deleted successfully.", domain))
	s.record(ctx, model.ActivityWarning, "nginx", "delete_host", "Virtual host deleted: "+domain, "")
	return nil
}

func (s *NginxService) ListModules() []model.NginxModule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.NginxModule(nil), s.modules...)
}

// InstallModule runs the simulated ten-step installation, publishing progress
// after each step. The module is added inactive.
func (s *NginxService) InstallModule(ctx context.Context, name string) (model.NginxModule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.failure(ctx, "Error", "Module name is required.")
		return model.NginxModule{}, apierror.BadRequest("Module name is required.", "name")
	}
	if s.hasModule(name) {
		return model.NginxModule{}, apierror.Conflict("module already installed", name)
	}

	for step := 1; step <= moduleInstallRuns; step++ {
		if err := s.wait(ctx, moduleInstallStep); err != nil {
			return model.NginxModule{}, err
		}
		progress := step * 100 / moduleInstallRuns
		s.publish(event.TypeModuleProgress, model.InstallProgress{Module: name, Progress: progress, Done: progress == 100})
	}

	s.mu.Lock()
	for _, m := range s.modules {
		if m.Name == name {
			s.mu.Unlock()
			return model.NginxModule{}, apierror.Conflict("module already installed", name)
		}
	}
	s.lastModuleID++
	module := model.NginxModule{
		ID:          s.lastModuleID,
		Name:        name,
		Description: "Custom Nginx module",
		Status:      model.StatusInactive,
		Version:     nginxVersion,
	}
	s.modules = append(s.modules, module)
	s.mu.Unlock()

	s.info(ctx, "Module Installed", fmt.Sprintf("Module %s has been installed successfully.", name))
	s.record(ctx, model.ActivitySuccess, "nginx", "install_module", "Nginx module installed: "+name, "")
	s.publish(event.TypeModuleInstalled, module)
	return module, nil
}

func (s *NginxService) ToggleModule(ctx context.Context, id int) (model.NginxModule, error) {
	s.mu.Lock()
	idx := indexOfModule(s.modules, id)
	if idx < 0 {
		s.mu.Unlock()
		return model.NginxModule{}, model.ErrModuleNotFound
	}
	m := &s.modules[idx]
	wasActive := m.Status == model.StatusActive
	m.Status = flip(m.Status)
	updated := *m
	s.mu.Unlock()

	if wasActive {
		s.info(ctx, "Disabling Module", updated.Name+" is being disabled...")
	} else {
		s.info(ctx, "Enabling Module", updated.Name+" is being enabled...")
	}
	s.record(ctx, model.ActivityInfo, "nginx", "toggle_module", fmt.Sprintf("Nginx module %s %s", updated.Name, updated.Status), "")
	return updated, nil
}

func (s *NginxService) DeleteModule(ctx context.Context, id int) error {
	s.mu.RLock()
	idx := indexOfModule(s.modules, id)
	if idx < 0 {
		s.mu.RUnlock()
		return model.ErrModuleNotFound
	}
	name := s.modules[idx].Name
	s.mu.RUnlock()

	s.info(ctx, "Deleting Module", fmt.Sprintf("Module %s is being deleted...", name))
	if err := s.wait(ctx, nginxDeleteDelay); err != nil {
		return err
	}

	s.mu.Lock()
	idx = indexOfModule(s.modules, id)
	if idx < 0 {
		s.mu.Unlock()
		return model.ErrModuleNotFound
	}
	s.modules = append(s.modules[:idx], s.modules[idx+1:]...)
	s.mu.Unlock()

	s.info(ctx, "Module Deleted", fmt.Sprintf("Module %s has been deleted successfully.", name))
	s.record(ctx, model.ActivityWarning, "nginx", "delete_module", "Nginx module deleted: "+name, "")
	return nil
}

func (s *NginxService) Config() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *NginxService) SaveConfig(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return apierror.BadRequest("configuration cannot be empty", "content")
	}

	s.mu.Lock()
	s.config = content
	s.mu.Unlock()

	s.info(ctx, "Configuration Saved", "Nginx configuration has been saved successfully.")
	s.record(ctx, model.ActivitySuccess, "nginx", "save_config", "Nginx configuration updated", fmt.Sprintf("%d bytes", len(content)))
	return nil
}

func (s *NginxService) hasModule(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.modules {
		if m.Name == name {
			return true
		}
	}
	return false
}

func flip(status model.ServiceStatus) model.ServiceStatus {
	if status == model.StatusActive {
		return model.StatusInactive
	}
	return model.StatusActive
}

func indexOfHost(hosts []model.VirtualHost, id int) int {
	for i, h := range hosts {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func indexOfModule(modules []model.NginxModule, id int) int {
	for i, m := range modules {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func maxHostID(hosts []model.VirtualHost) int {
	maxID := 0
	for _, h := range hosts {
		maxID = max(maxID, h.ID)
	}
	return maxID
}

func maxModuleID(modules []model.NginxModule) int {
	maxID := 0
	for _, m := range modules {
		maxID = max(maxID, m.ID)
	}
	return maxID
}
