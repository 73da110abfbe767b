package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techrobotics-site/internal/auth"
	"techrobotics-site/internal/config"
	"techrobotics-site/internal/content"
	"techrobotics-site/internal/distributed"
	"techrobotics-site/internal/jobs"
	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/narration"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/oidc"
	"techrobotics-site/internal/presence"
	"techrobotics-site/internal/session"
	"techrobotics-site/internal/storage"
	"techrobotics-site/internal/version"

	"github.com/prometheus/client_golang/prometheus"
)

type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	appCtx      *middlewares.AppContext
	httpServer  *http.Server
	debugServer *http.Server
	election    *distributed.Election
	jobManager  *jobs.JobManager
	cancel      context.CancelFunc
}

func New(cfg *config.Config) (*Server, error) {
	logger := setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())

	appCtx, err := newAppContext(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, err
	}

	election, err := distributed.NewElectionFromConfig(cfg, logger)
	if err != nil {
		closeProviders(appCtx)
		cancel()
		return nil, err
	}

	var jobManager *jobs.JobManager
	if election != nil {
		jobManager = jobs.NewJobManager(election, logger)
	} else {
		jobManager = jobs.NewJobManager(nil, logger)
	}
	registerJobs(jobManager, cfg, appCtx.Presence, logger)

	if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
		if err := version.Register(prometheus.DefaultRegisterer); err != nil {
			logger.Debug("failed to register build info collector: already registered", "error", err)
		}
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           setupRouter(appCtx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var debugServer *http.Server
	if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
		debugServer = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Debug.Host, cfg.Server.Debug.Port),
			Handler:           setupDebugRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return &Server{
		cfg:         cfg,
		logger:      logger,
		appCtx:      appCtx,
		httpServer:  server,
		debugServer: debugServer,
		election:    election,
		jobManager:  jobManager,
		cancel:      cancel,
	}, nil
}

// newAppContext builds every provider the handlers depend on.
func newAppContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*middlewares.AppContext, error) {
	bus := navigation.NewBus()
	bus.Subscribe(func(c navigation.Change) {
		metrics.SessionTransitions.WithLabelValues(string(c.Kind), c.To).Inc()
	})

	sessionManager, err := session.NewSessionManager(logger, cfg, bus)
	if err != nil {
		return nil, err
	}

	catalogue, err := content.Load(cfg.Server.ContentFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load site content: %w", err)
	}

	store, err := storage.NewStorageProvider(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage provider", "error", err)
		return nil, err
	}

	if err := storage.SeedAccounts(ctx, store, cfg.Auth.SeedUsers, logger); err != nil {
		store.Close()
		return nil, err
	}

	tracker, err := presence.NewTracker(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	deps := middlewares.Dependencies{
		SessionManager: sessionManager,
		Storage:        store,
		Presence:       tracker,
		Gate:           auth.NewGate(store, auth.NewAdminList(cfg.Auth.Admins), tracker, cfg.Auth.MinPasswordLength, logger),
		Catalogue:      catalogue,
		Narrator:       narration.New(cfg.Narration, logger),
	}

	if cfg.OIDC != nil && cfg.OIDC.Enabled {
		provider, err := oidc.NewProvider(ctx, cfg.OIDC)
		if err != nil {
			store.Close()
			tracker.Close()
			return nil, fmt.Errorf("failed to initialize oidc provider: %w", err)
		}
		deps.OIDCProvider = provider
	}

	logger.Info("providers ready",
		"storage", cfg.Storage.Type,
		"presence", cfg.Presence.Store,
		"sessions", cfg.Sessions.Store,
		"narration", deps.Narrator.Mode(),
		"oidc", deps.OIDCProvider != nil,
	)

	return middlewares.NewAppContext(ctx, cfg, logger, deps), nil
}

func closeProviders(appCtx *middlewares.AppContext) {
	if err := appCtx.Presence.Close(); err != nil {
		appCtx.Logger.Warn("failed to close presence tracker", "error", err)
	}
	if err := appCtx.Storage.Close(); err != nil {
		appCtx.Logger.Warn("failed to close storage", "error", err)
	}
}

func (s *Server) Start() error {
	if s.election != nil {
		go s.election.Start(s.appCtx)
	}

	s.jobManager.Start(s.appCtx)

	go func() {
		if s.election != nil {
			s.logger.Info("Server Started", "port", s.cfg.Server.Port, "version", version.GetVersion(), "instance", s.election.InstanceID)
		} else {
			s.logger.Info("Server Started", "port", s.cfg.Server.Port, "version", version.GetVersion())
		}
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed to start", "error", err)
			s.cancel()
		}
	}()

	if s.debugServer != nil {
		go func() {
			s.logger.Info("Metrics server starting", "address", s.debugServer.Addr)
			if err := s.debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed to start", "error", err)
				s.cancel()
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		s.logger.Info("Shutdown signal received")
	case <-s.appCtx.Done():
		s.logger.Info("Context canceled")
	}

	return s.Shutdown()
}

// Shutdown stops accepting requests, stops background jobs, and releases
// the providers.
func (s *Server) Shutdown() error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info("Shutting Down Server")

	s.cancel()
	s.jobManager.Shutdown(shutdownCtx)

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	if s.debugServer != nil {
		if err := s.debugServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Debug server forced to shutdown", "error", err)
		}
	}

	closeProviders(s.appCtx)

	s.logger.Info("Server Exited")
	return nil
}
