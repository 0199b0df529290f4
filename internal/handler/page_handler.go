package handler

import (
	"net/http"

	"hostpanel/internal/model"
	"hostpanel/internal/service"
	"hostpanel/internal/session"
)

type Services struct {
	System     *service.SystemService
	Daemons    *service.DaemonService
	Nginx      *service.NginxService
	PHP        *service.PHPService
	MySQL      *service.MySQLService
	Activities *service.ActivityService
	Logs       *service.LogsService
	Stats      *service.StatsService
	Settings   *service.SettingsService
	Files      *service.FileService
}

// PageHandler renders the protected views as JSON view models. Each view
// carries the signed-in user so the dashboard can draw its header.
type PageHandler struct {
	svc Services
}

func NewPageHandler(svc Services) *PageHandler {
	return &PageHandler{svc: svc}
}

type pageView struct {
	Page string       `json:"page"`
	User session.User `json:"user"`
	View any          `json:"view"`
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page string, view any) {
	user, _ := session.UserFromContext(r.Context())
	writeSuccess(w, r, http.StatusOK, pageView{Page: page, User: user, View: view}, nil)
}

func (h *PageHandler) daemon(key string) *model.ServiceInfo {
	info, err := h.svc.Daemons.Status(key)
	if err != nil {
		return nil
	}
	return &info
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	recent, _, err := h.svc.Activities.List(r.Context(), model.ActivityFilter{Limit: 5})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.render(w, r, "dashboard", map[string]any{
		"status":            h.svc.System.Snapshot(),
		"recent_activities": recent,
	})
}

func (h *PageHandler) Nginx(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "nginx", map[string]any{
		"service": h.daemon("nginx"),
		"hosts":   h.svc.Nginx.ListHosts(),
		"modules": h.svc.Nginx.ListModules(),
		"config":  h.svc.Nginx.Config(),
	})
}

func (h *PageHandler) PHP(w http.ResponseWriter, r *http.Request) {
	pool, _ := h.svc.PHP.Config(service.PHPPool)
	ini, _ := h.svc.PHP.Config(service.PHPIni)
	h.render(w, r, "php", map[string]any{
		"service":    h.daemon("php"),
		"extensions": h.svc.PHP.Extensions(""),
		"pool":       pool,
		"ini":        ini,
	})
}

func (h *PageHandler) MySQL(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "mysql", map[string]any{
		"service":   h.daemon("mysql"),
		"plugins":   h.svc.MySQL.Plugins(""),
		"databases": h.svc.MySQL.Databases(),
		"users":     h.svc.MySQL.Users(),
		"config":    h.svc.MySQL.Config(),
	})
}

func (h *PageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	rng, err := service.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render(w, r, "stats", h.svc.Stats.Get(rng))
}

func (h *PageHandler) Settings(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "settings", h.svc.Settings.Get())
}

func (h *PageHandler) Files(w http.ResponseWriter, r *http.Request) {
	listing, meta, err := h.svc.Files.List(r.Context(), model.ListQuery{Path: r.URL.Query().Get("path")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render(w, r, "files", map[string]any{"listing": listing, "meta": meta})
}

func (h *PageHandler) Activities(w http.ResponseWriter, r *http.Request) {
	items, meta, err := h.svc.Activities.List(r.Context(), model.ActivityFilter{
		Type:    r.URL.Query().Get("type"),
		Service: r.URL.Query().Get("service"),
		Page:    parseIntOrDefault(r.URL.Query().Get("page"), 1),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.render(w, r, "activities", map[string]any{
		"items": items,
		"meta":  meta,
		"logs":  h.svc.Logs.List(""),
	})
}
