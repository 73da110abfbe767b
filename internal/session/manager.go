package session

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"net/http"

	"techrobotics-site/internal/config"
	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/utils"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisprometheus/v9"
)

// SessionManager keeps one navigation session per browser cookie.
type SessionManager struct {
	*scs.SessionManager
	options []navigation.Option
}

func NewSessionManager(logger *slog.Logger, cfg *config.Config, bus *navigation.Bus) (*SessionManager, error) {
	gob.Register(navigation.Snapshot{})
	sessionManager := scs.New()

	switch cfg.Sessions.Store {
	case "memory":
		sessionManager.Store = memstore.New()
	case "redis":
		if cfg.Redis == nil {
			return nil, fmt.Errorf("session store redis requires a redis configuration")
		}
		if cfg.Redis.Sentinel != nil {
			logger.Info("connecting to redis via sentinel",
				"master", cfg.Redis.Sentinel.MasterName,
				"sentinels", cfg.Redis.Sentinel.SentinelAddresses)
		}
		client := utils.NewRedisClient(cfg.Redis, cfg.Redis.SessionIndex)

		ctx := context.Background()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}

		if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
			collector := redisprometheus.NewCollector(metrics.Namespace, "sessions", client)
			if err := prometheus.Register(collector); err != nil {
				logger.Debug("failed to register redis session collector: already registered", "error", err)
			}
		}

		sessionManager.Store = goredisstore.New(client)
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Sessions.Store)
	}

	sessionManager.Lifetime = cfg.Sessions.Lifetime

	sessionManager.Cookie.Name = cfg.Sessions.Name
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Sessions.Secure
	sessionManager.Cookie.Path = "/"

	options := []navigation.Option{navigation.WithCloseDelay(cfg.Modals.CloseDelay)}
	if bus != nil {
		options = append(options, navigation.WithBus(bus))
	}

	return &SessionManager{SessionManager: sessionManager, options: options}, nil
}

func (s *SessionManager) LoadAndSave(next http.Handler) http.Handler {
	return s.SessionManager.LoadAndSave(next)
}

// Load restores the browser's navigation session, or starts a fresh one.
func (s *SessionManager) Load(ctx *middlewares.AppContext) *navigation.Session {
	snap, ok := s.Get(ctx, string(KeyNavigation)).(navigation.Snapshot)
	if !ok {
		return navigation.New(s.options...)
	}
	return navigation.Restore(snap, s.options...)
}

func (s *SessionManager) Save(ctx *middlewares.AppContext, session *navigation.Session) {
	s.Put(ctx, string(KeyNavigation), session.Snapshot())
}

func (s *SessionManager) GetUser(ctx *middlewares.AppContext) (*models.User, bool) {
	snap, ok := s.Get(ctx, string(KeyNavigation)).(navigation.Snapshot)
	if !ok || snap.User == nil {
		return nil, false
	}
	return snap.User, true
}

// RenewToken rotates the session id, keeping its data.
func (s *SessionManager) RenewToken(ctx *middlewares.AppContext) error {
	return s.SessionManager.RenewToken(ctx)
}

func (s *SessionManager) SetOauthState(ctx *middlewares.AppContext, state string) {
	s.Put(ctx, string(KeyOauthState), state)
}

func (s *SessionManager) GetOauthState(ctx *middlewares.AppContext) string {
	return s.GetString(ctx, string(KeyOauthState))
}

func (s *SessionManager) ClearOauthState(ctx *middlewares.AppContext) {
	s.Remove(ctx, string(KeyOauthState))
}

func (s *SessionManager) SetOauthNonce(ctx *middlewares.AppContext, nonce string) {
	s.Put(ctx, string(KeyOauthNonce), nonce)
}

func (s *SessionManager) GetOauthNonce(ctx *middlewares.AppContext) string {
	return s.GetString(ctx, string(KeyOauthNonce))
}

func (s *SessionManager) ClearOauthNonce(ctx *middlewares.AppContext) {
	s.Remove(ctx, string(KeyOauthNonce))
}

func (s *SessionManager) SetOauthCodeVerifier(ctx *middlewares.AppContext, verifier string) {
	s.Put(ctx, string(KeyOauthCodeVerifier), verifier)
}

func (s *SessionManager) GetOauthCodeVerifier(ctx *middlewares.AppContext) string {
	return s.GetString(ctx, string(KeyOauthCodeVerifier))
}

func (s *SessionManager) ClearOauthCodeVerifier(ctx *middlewares.AppContext) {
	s.Remove(ctx, string(KeyOauthCodeVerifier))
}
