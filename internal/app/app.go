package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hostpanel/internal/config"
	"hostpanel/internal/database"
	"hostpanel/internal/event"
	"hostpanel/internal/fixtures"
	"hostpanel/internal/handler"
	"hostpanel/internal/notify"
	"hostpanel/internal/repository"
	"hostpanel/internal/router"
	"hostpanel/internal/scheduler"
	"hostpanel/internal/service"
	"hostpanel/internal/session"
	"hostpanel/internal/storage"
	"hostpanel/internal/websocket"
)

type App struct {
	cfg       *config.Config
	server    *http.Server
	db        *database.DB
	hub       *websocket.Hub
	system    *service.SystemService
	scheduler *scheduler.BackupScheduler

	cancel  context.CancelFunc
	workers sync.WaitGroup
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig builds the whole object graph without starting anything.
func NewWithConfig(cfg *config.Config) (*App, error) {
	seed, err := fixtures.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load seed data: %w", err)
	}

	files, err := storage.New(cfg.FilesRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	a := &App{cfg: cfg}

	var activityStore service.ActivityStore = repository.NewMemoryActivityRepository()
	if cfg.DatabaseURL != "" {
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		a.db = db
		activityStore = repository.NewActivityRepository(db.Pool)
		slog.Info("database ready")
	} else {
		slog.Info("DATABASE_URL not set, keeping activity history in memory")
	}

	bus := event.NewBus()
	bus.OnDrop(func(e event.Event) {
		slog.Debug("event dropped for slow subscriber", "type", string(e.Type))
	})
	a.hub = websocket.NewHub(bus)

	activities := service.NewActivityService(activityStore, bus)
	if err := activities.Seed(context.Background(), seed.Activities); err != nil {
		a.closeDB()
		return nil, fmt.Errorf("failed to seed activity history: %w", err)
	}

	panel := service.Panel{
		Sim:        service.NewSimulator(cfg.SimulatedDelayScale),
		Notifier:   notify.Multi{notify.Contextual{}, notify.NewBusNotifier(bus), notify.LogNotifier{}},
		Activities: activities,
		Bus:        bus,
	}

	daemons := service.NewDaemonService(panel, service.DefaultDaemons(service.RandomUptimes(nil, "nginx", "php", "mysql")))
	a.system = service.NewSystemService(daemons, bus, nil)
	a.scheduler = scheduler.NewBackupScheduler(activities, slog.Default())

	defaults := seed.Settings
	defaults.BackupFrequency = cfg.BackupFrequency
	defaults.LogLevel = cfg.LogLevel
	settings := service.NewSettingsService(panel, defaults, a.scheduler)
	if err := settings.Apply(); err != nil {
		a.closeDB()
		return nil, fmt.Errorf("failed to apply settings: %w", err)
	}

	fileService := service.NewFileService(panel, files, cfg.ThumbnailRoot, service.FileLimits{
		MaxUpload: cfg.MaxUploadSize,
		MaxEdit:   cfg.MaxEditSize,
	})

	svc := handler.Services{
		System:     a.system,
		Daemons:    daemons,
		Nginx:      service.NewNginxService(panel, seed.Nginx),
		PHP:        service.NewPHPService(panel, seed.PHP),
		MySQL:      service.NewMySQLService(panel, seed.MySQL),
		Activities: activities,
		Logs:       service.NewLogsService(panel, seed.Logs),
		Stats:      service.NewStatsService(panel, seed.Stats),
		Settings:   settings,
		Files:      fileService,
	}

	creds, demo, err := credentials(cfg)
	if err != nil {
		a.closeDB()
		return nil, err
	}

	sessions := &session.Factory{
		Credentials: creds,
		Cookie: session.CookieConfig{
			Secret: []byte(cfg.SessionSecret),
			TTL:    cfg.SessionTTL,
			Secure: cfg.SessionCookieSecure,
		},
		Notifier:   notify.Multi{notify.Contextual{}, notify.LogNotifier{}},
		LoginDelay: cfg.LoginDelay,
		Logger:     slog.Default(),
	}

	appRouter := router.New(cfg, sessions, router.Handlers{
		Auth:       handler.NewAuthHandler(demo),
		Pages:      handler.NewPageHandler(svc),
		System:     handler.NewSystemHandler(svc.System, svc.Daemons),
		Nginx:      handler.NewNginxHandler(svc.Nginx),
		PHP:        handler.NewPHPHandler(svc.PHP),
		MySQL:      handler.NewMySQLHandler(svc.MySQL),
		Activity:   handler.NewActivityHandler(svc.Activities),
		Logs:       handler.NewLogsHandler(svc.Logs),
		Stats:      handler.NewStatsHandler(svc.Stats),
		Settings:   handler.NewSettingsHandler(svc.Settings),
		Directory:  handler.NewDirectoryHandler(fileService),
		File:       handler.NewFileHandler(fileService, cfg.MaxUploadSize),
		Operations: handler.NewOperationsHandler(fileService),
		Docs:       handler.NewDocsHandler(),
	}, a.hub)

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

// credentials picks the bcrypt users file when configured and the demo
// accounts otherwise. Demo accounts are advertised on the login view.
func credentials(cfg *config.Config) (session.CredentialFinder, []handler.DemoAccount, error) {
	if cfg.CredentialsFile == "" {
		demo := session.DemoCredentials()
		return demo, handler.DemoAccounts(demo), nil
	}

	fc, err := session.NewFileCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load credentials file: %w", err)
	}
	return fc, nil, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Start launches the websocket hub, the status poller and the backup
// scheduler. Stop undoes it.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)

	a.workers.Add(2)
	go func() {
		defer a.workers.Done()
		a.hub.Run(ctx)
	}()
	go func() {
		defer a.workers.Done()
		a.system.Run(ctx, a.cfg.StatusInterval)
	}()

	a.scheduler.Start()
	slog.Info("background workers started", "status_interval", a.cfg.StatusInterval, "backup_next", a.scheduler.Next())
}

func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	a.scheduler.Stop(ctx)
	a.workers.Wait()
	a.closeDB()
}

func (a *App) closeDB() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

func (a *App) Run() error {
	a.Start(context.Background())

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	case runErr = <-serveErr:
		slog.Error("server failed", "error", runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.Stop(ctx)

	slog.Info("server stopped")
	return runErr
}
