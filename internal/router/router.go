package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hostpanel/internal/config"
	"hostpanel/internal/guard"
	"hostpanel/internal/handler"
	"hostpanel/internal/metrics"
	"hostpanel/internal/middleware"
	"hostpanel/internal/model"
	"hostpanel/internal/session"
	"hostpanel/internal/websocket"
)

const (
	transferMaxDuration = 2 * time.Hour
	transferIdleTimeout = 2 * time.Minute
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Pages      *handler.PageHandler
	System     *handler.SystemHandler
	Nginx      *handler.NginxHandler
	PHP        *handler.PHPHandler
	MySQL      *handler.MySQLHandler
	Activity   *handler.ActivityHandler
	Logs       *handler.LogsHandler
	Stats      *handler.StatsHandler
	Settings   *handler.SettingsHandler
	Directory  *handler.DirectoryHandler
	File       *handler.FileHandler
	Operations *handler.OperationsHandler
	Docs       *handler.DocsHandler
}

// New wires every route. JSON routes run under the request timeout; file
// transfers use the streaming timeout so responses are not buffered.
func New(cfg *config.Config, sessions *session.Factory, h Handlers, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()
	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	gate := guard.NewMiddleware(metrics.GuardObserver{})
	admin := gate.RequireRoles(session.RoleAdmin)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimit.Handler)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/openapi.json", h.Docs.OpenAPIJSON)

	sessionLoader := middleware.Session(sessions)

	r.Group(func(pages chi.Router) {
		pages.Use(middleware.Timeout(cfg.RequestTimeout))
		pages.Use(sessionLoader)

		pages.Get(guard.LoginPath, h.Auth.LoginPage)
		pages.Post(guard.LoginPath, h.Auth.Login)
		pages.Post("/logout", h.Auth.Logout)

		pages.Group(func(protected chi.Router) {
			protected.Use(gate.RequireSession)
			protected.Get("/", h.Pages.Dashboard)
			protected.Get("/nginx", h.Pages.Nginx)
			protected.Get("/php", h.Pages.PHP)
			protected.Get("/mysql", h.Pages.MySQL)
			protected.Get("/stats", h.Pages.Stats)
			protected.Get("/settings", h.Pages.Settings)
			protected.Get("/files", h.Pages.Files)
			protected.Get("/activities", h.Pages.Activities)
		})
	})

	r.With(sessionLoader, gate.RequireSession).Get("/ws", websocket.Handler(hub, cfg.CORSOrigins))

	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(buffered chi.Router) {
			buffered.Use(middleware.Timeout(cfg.RequestTimeout))
			buffered.Use(sessionLoader)

			buffered.Route("/auth", func(auth chi.Router) {
				auth.Post("/login", h.Auth.Login)
				auth.Get("/me", h.Auth.Me)
				auth.Post("/logout", h.Auth.Logout)
			})

			buffered.Group(func(p chi.Router) {
				p.Use(gate.RequireSession)

				p.Get("/system/status", h.System.Status)
				p.Get("/services", h.System.ListServices)
				p.Get("/services/{name}", h.System.GetService)
				p.Get("/services/{name}/check", h.System.CheckService)
				p.With(admin).Post("/services/{name}/{action}", h.System.Control)

				p.Route("/nginx", func(n chi.Router) {
					n.Get("/hosts", h.Nginx.ListHosts)
					n.With(admin).Post("/hosts", h.Nginx.AddHost)
					n.With(admin).Post("/hosts/{id}/toggle", h.Nginx.ToggleHost)
					n.With(admin).Delete("/hosts/{id}", h.Nginx.DeleteHost)
					n.Get("/modules", h.Nginx.ListModules)
					n.With(admin).Post("/modules", h.Nginx.InstallModule)
					n.With(admin).Post("/modules/{id}/toggle", h.Nginx.ToggleModule)
					n.With(admin).Delete("/modules/{id}", h.Nginx.DeleteModule)
					n.Get("/config", h.Nginx.GetConfig)
					n.With(admin).Put("/config", h.Nginx.SaveConfig)
				})

				p.Route("/php", func(php chi.Router) {
					php.Get("/extensions", h.PHP.ListExtensions)
					php.With(admin).Post("/extensions/{name}/toggle", h.PHP.ToggleExtension)
					php.Get("/config/{kind}", h.PHP.GetConfig)
					php.With(admin).Put("/config/{kind}", h.PHP.SaveConfig)
				})

				p.Route("/mysql", func(m chi.Router) {
					m.Get("/plugins", h.MySQL.ListPlugins)
					m.With(admin).Post("/plugins/{name}/toggle", h.MySQL.TogglePlugin)
					m.Get("/databases", h.MySQL.ListDatabases)
					m.With(admin).Post("/databases", h.MySQL.CreateDatabase)
					m.Get("/users", h.MySQL.ListUsers)
					m.With(admin).Post("/users", h.MySQL.CreateUser)
					m.Get("/config", h.MySQL.GetConfig)
					m.With(admin).Put("/config", h.MySQL.SaveConfig)
				})

				p.Get("/activities", h.Activity.List)
				p.Get("/logs", h.Logs.List)
				p.Post("/logs/refresh", h.Logs.Refresh)
				p.Get("/stats", h.Stats.Get)
				p.Post("/stats/refresh", h.Stats.Refresh)

				p.Get("/settings", h.Settings.Get)
				p.With(admin).Put("/settings/profile", h.Settings.UpdateProfile)
				p.With(admin).Put("/settings/preferences", h.Settings.UpdatePreferences)
				p.With(admin).Put("/settings/system", h.Settings.UpdateSystem)
				p.With(admin).Post("/settings/restart", h.Settings.Restart)
				p.With(admin).Post("/settings/reset", h.Settings.Reset)

				p.Get("/files", h.Directory.List)
				p.Get("/files/info", h.Directory.Info)
				p.With(admin).Post("/directories", h.Directory.Create)
				p.Get("/files/text", h.File.ReadText)
				p.With(admin).Put("/files/text", h.File.SaveText)
				p.With(admin).Put("/files/rename", h.Operations.Rename)
				p.With(admin).Delete("/files", h.Operations.Delete)
			})
		})

		api.Group(func(transfers chi.Router) {
			transfers.Use(middleware.StreamingTimeout(transferMaxDuration, transferIdleTimeout))
			transfers.Use(sessionLoader)
			transfers.Use(gate.RequireSession)

			transfers.With(admin).Post("/files/upload", h.File.Upload)
			transfers.Get("/files/download", h.File.Download)
			transfers.Get("/files/thumbnail", h.File.Thumbnail)
			transfers.Get("/logs/download", h.Logs.Download)
			transfers.Get("/stats/report", h.Stats.Report)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	})
}
