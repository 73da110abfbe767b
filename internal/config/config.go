package config

import (
	"fmt"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required (use -config or -c)")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes YAML, applies environment overrides and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvironmentOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

var (
	EnvOIDCClientID          = "SITE_OIDC_CLIENT_ID"
	EnvOIDCClientSecret      = "SITE_OIDC_CLIENT_SECRET"
	EnvOIDCIssuerURL         = "SITE_OIDC_ISSUER_URL"
	EnvOIDCRedirectURL       = "SITE_OIDC_REDIRECT_URL"
	EnvRedisPassword         = "SITE_REDIS_PASSWORD"
	EnvRedisUsername         = "SITE_REDIS_USERNAME"
	EnvRedisSentinelUsername = "SITE_REDIS_SENTINEL_USERNAME"
	EnvRedisSentinelPassword = "SITE_REDIS_SENTINEL_PASSWORD"
	EnvStoragePath           = "SITE_STORAGE_PATH"
	EnvNarrationAPIKey       = "SITE_NARRATION_API_KEY"
	EnvNarrationEndpoint     = "SITE_NARRATION_ENDPOINT"
)

func applyEnvironmentOverrides(config *Config) {
	if clientID := os.Getenv(EnvOIDCClientID); clientID != "" {
		ensureOIDC(config).ClientID = clientID
	}

	if clientSecret := os.Getenv(EnvOIDCClientSecret); clientSecret != "" {
		ensureOIDC(config).ClientSecret = clientSecret
	}

	if issuerURL := os.Getenv(EnvOIDCIssuerURL); issuerURL != "" {
		ensureOIDC(config).IssuerURL = issuerURL
	}

	if redirectURL := os.Getenv(EnvOIDCRedirectURL); redirectURL != "" {
		ensureOIDC(config).RedirectURI = redirectURL
	}

	if redisPassword := os.Getenv(EnvRedisPassword); redisPassword != "" {
		ensureRedis(config).Password = redisPassword
	}

	if redisUsername := os.Getenv(EnvRedisUsername); redisUsername != "" {
		ensureRedis(config).Username = redisUsername
	}

	if sentinelUsername := os.Getenv(EnvRedisSentinelUsername); sentinelUsername != "" {
		ensureSentinel(config).SentinelUsername = sentinelUsername
	}

	if sentinelPassword := os.Getenv(EnvRedisSentinelPassword); sentinelPassword != "" {
		ensureSentinel(config).SentinelPassword = sentinelPassword
	}

	if path := os.Getenv(EnvStoragePath); path != "" {
		config.Storage.Path = path
	}

	if apiKey := os.Getenv(EnvNarrationAPIKey); apiKey != "" {
		config.Narration.APIKey = apiKey
	}

	if endpoint := os.Getenv(EnvNarrationEndpoint); endpoint != "" {
		config.Narration.Endpoint = endpoint
	}
}

func ensureOIDC(config *Config) *OIDCConfig {
	if config.OIDC == nil {
		config.OIDC = &OIDCConfig{}
	}
	return config.OIDC
}

func ensureRedis(config *Config) *RedisConfig {
	if config.Redis == nil {
		config.Redis = &RedisConfig{}
	}
	return config.Redis
}

func ensureSentinel(config *Config) *RedisSentinelConfig {
	redis := ensureRedis(config)
	if redis.Sentinel == nil {
		redis.Sentinel = &RedisSentinelConfig{}
	}
	return redis.Sentinel
}

func validateConfig(config *Config) error {
	err := config.validateServerConfig()
	if err != nil {
		return err
	}

	err = config.validateLogConfig()
	if err != nil {
		return err
	}

	err = config.validateCORSConfig()
	if err != nil {
		return err
	}

	err = config.validateSessionConfig()
	if err != nil {
		return err
	}

	err = config.validatePresenceConfig()
	if err != nil {
		return err
	}

	if config.Presence.Store == "redis" || config.Sessions.Store == "redis" || (config.Distributed != nil && config.Distributed.Enabled) {
		err = config.validateRedisConfig()
		if err != nil {
			return err
		}
	}

	err = config.validateDistributedConfig()
	if err != nil {
		return err
	}

	err = config.validateStorageConfig()
	if err != nil {
		return err
	}

	err = config.validateAuthConfig()
	if err != nil {
		return err
	}

	err = config.validateOIDCConfig()
	if err != nil {
		return err
	}

	err = config.validateNarrationConfig()
	if err != nil {
		return err
	}

	return config.validateModalConfig()
}

func (c *Config) validateServerConfig() error {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerConfig.Port
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ExternalURL != "" {
		if err := validateURL(c.Server.ExternalURL, "server.external_url"); err != nil {
			return err
		}
	}

	if c.Server.StaticDir == "" {
		c.Server.StaticDir = DefaultServerConfig.StaticDir
	}

	if c.Server.Debug != nil && c.Server.Debug.Enabled {
		if c.Server.Debug.Host == "" {
			c.Server.Debug.Host = DefaultDebugConfig.Host
		}
		if c.Server.Debug.Port <= 0 || c.Server.Debug.Port >= 65535 {
			c.Server.Debug.Port = DefaultDebugConfig.Port
		}
	}

	return nil
}

func (c *Config) validateLogConfig() error {
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig.Format
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s, options are text or json", c.Log.Format)
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig.Level
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s, options are debug, info, warn, error", c.Log.Level)
	}

	return nil
}

func (c *Config) validateCORSConfig() error {
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = DefaultCORSConfig.AllowedOrigins
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = DefaultCORSConfig.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = DefaultCORSConfig.AllowedHeaders
	}
	if c.CORS.MaxAgeSeconds == 0 {
		c.CORS.MaxAgeSeconds = DefaultCORSConfig.MaxAgeSeconds
	}

	return nil
}

func (c *Config) validateSessionConfig() error {
	if c.Sessions.Store == "" {
		c.Sessions.Store = DefaultSessionConfig.Store
	}

	switch c.Sessions.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid session store: %s, options are 'memory' or 'redis'", c.Sessions.Store)
	}

	if c.Sessions.Name == "" {
		c.Sessions.Name = DefaultSessionConfig.Name
	}

	if c.Sessions.Lifetime == 0 {
		c.Sessions.Lifetime = DefaultSessionConfig.Lifetime
	} else if c.Sessions.Lifetime < time.Minute {
		return fmt.Errorf("sessions.lifetime cannot be less than 1 minute")
	}

	return nil
}

func (c *Config) validatePresenceConfig() error {
	if c.Presence.Store == "" {
		c.Presence.Store = DefaultPresenceConfig.Store
	}

	switch c.Presence.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid presence store: %s, must be 'memory' or 'redis'", c.Presence.Store)
	}

	if c.Presence.TTL <= 0 {
		c.Presence.TTL = DefaultPresenceConfig.TTL
	}

	if c.Presence.SweepInterval <= 0 {
		c.Presence.SweepInterval = DefaultPresenceConfig.SweepInterval
	} else if c.Presence.SweepInterval < 10*time.Second {
		return fmt.Errorf("presence.sweep_interval cannot be less than 10 seconds")
	}

	return nil
}

func (c *Config) validateRedisConfig() error {
	if c.Redis == nil {
		return fmt.Errorf("redis config is nil")
	}

	if c.Redis.Sentinel == nil {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis address is required")
		}

		if _, _, err := net.SplitHostPort(c.Redis.Address); err != nil {
			return fmt.Errorf("invalid redis address format (expected host:port): %w", err)
		}
	}

	if c.Redis.SessionIndex == 0 && c.Redis.PresenceIndex == 0 && c.Redis.LeaderIndex == 0 {
		c.Redis.SessionIndex = DefaultRedisConfig.SessionIndex
		c.Redis.PresenceIndex = DefaultRedisConfig.PresenceIndex
		c.Redis.LeaderIndex = DefaultRedisConfig.LeaderIndex
	}

	indices := map[string]int{
		"session_index":  c.Redis.SessionIndex,
		"presence_index": c.Redis.PresenceIndex,
		"leader_index":   c.Redis.LeaderIndex,
	}

	const maxRedisDB = 15
	seen := make(map[int]string, len(indices))
	for _, name := range []string{"session_index", "presence_index", "leader_index"} {
		index := indices[name]
		if index < 0 {
			return fmt.Errorf("redis %s must be non-negative, got %d", name, index)
		}
		if index > maxRedisDB {
			return fmt.Errorf("redis %s %d exceeds typical maximum of %d", name, index, maxRedisDB)
		}
		if other, ok := seen[index]; ok {
			return fmt.Errorf("redis %s and %s should be different to avoid data collision (both are %d)", other, name, index)
		}
		seen[index] = name
	}

	if c.Redis.Sentinel != nil {
		if c.Redis.Sentinel.MasterName == "" {
			return fmt.Errorf("sentinel master_name is required")
		}
		if len(c.Redis.Sentinel.SentinelAddresses) == 0 {
			return fmt.Errorf("at least one sentinel address is required")
		}
	}
	return nil
}

func (c *Config) validateDistributedConfig() error {
	if c.Distributed == nil || !c.Distributed.Enabled {
		return nil
	}

	if c.Distributed.TTL.Seconds() <= 0 {
		c.Distributed.TTL = DefaultDistributedConfig.TTL
	} else if c.Distributed.TTL > time.Minute {
		return fmt.Errorf("distributed ttl cannot be more than 1 minute")
	}

	return nil
}

func (c *Config) validateStorageConfig() error {
	if c.Storage.Type == "" {
		c.Storage.Type = DefaultStorageConfig.Type
	}

	switch c.Storage.Type {
	case "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			c.Storage.Path = DefaultStorageConfig.Path
		}
	default:
		return fmt.Errorf("invalid storage type: %s, must be 'memory' or 'sqlite'", c.Storage.Type)
	}

	return nil
}

func (c *Config) validateAuthConfig() error {
	if c.Auth.MinPasswordLength <= 0 {
		c.Auth.MinPasswordLength = DefaultAuthConfig.MinPasswordLength
	}

	if c.Auth.RateLimit.RequestsPerSecond <= 0 {
		c.Auth.RateLimit.RequestsPerSecond = DefaultAuthConfig.RateLimit.RequestsPerSecond
	}

	if c.Auth.RateLimit.Burst <= 0 {
		c.Auth.RateLimit.Burst = DefaultAuthConfig.RateLimit.Burst
	}

	emails := make(map[string]bool, len(c.Auth.Admins))
	for i, admin := range c.Auth.Admins {
		if _, err := mail.ParseAddress(admin.Email); err != nil {
			return fmt.Errorf("auth.admins[%d].email is not a valid address: %w", i, err)
		}
		key := strings.ToLower(admin.Email)
		if emails[key] {
			return fmt.Errorf("auth.admins[%d].email %s is listed twice", i, admin.Email)
		}
		emails[key] = true

		if !strings.HasPrefix(admin.PasswordHash, "$argon2id$") {
			return fmt.Errorf("auth.admins[%d].password_hash must be an encoded argon2id hash", i)
		}
		if admin.Name == "" {
			c.Auth.Admins[i].Name = "Admin"
		}
	}

	for i, user := range c.Auth.SeedUsers {
		if _, err := mail.ParseAddress(user.Email); err != nil {
			return fmt.Errorf("auth.seed_users[%d].email is not a valid address: %w", i, err)
		}
		if strings.TrimSpace(user.Username) == "" {
			return fmt.Errorf("auth.seed_users[%d].username is required", i)
		}
		if len(user.Password) < c.Auth.MinPasswordLength {
			return fmt.Errorf("auth.seed_users[%d].password must be at least %d characters", i, c.Auth.MinPasswordLength)
		}
	}

	return nil
}

func (c *Config) validateOIDCConfig() error {
	if c.OIDC == nil || !c.OIDC.Enabled {
		return nil
	}

	if c.OIDC.ClientID == "" {
		return fmt.Errorf("oidc client id is required")
	}

	if c.OIDC.ClientSecret == "" {
		return fmt.Errorf("oidc client secret is required")
	}

	if err := validateURL(c.OIDC.IssuerURL, "oidc.issuer_url"); err != nil {
		return err
	}

	if err := validateURL(c.OIDC.RedirectURI, "oidc.redirect_url"); err != nil {
		return err
	}

	if len(c.OIDC.Scopes) == 0 {
		c.OIDC.Scopes = DefaultOIDCConfig.Scopes
	}

	return nil
}

func (c *Config) validateNarrationConfig() error {
	n := &c.Narration
	if n.Mode == "" {
		n.Mode = DefaultNarrationConfig.Mode
	}

	if n.SimulatedDuration <= 0 {
		n.SimulatedDuration = DefaultNarrationConfig.SimulatedDuration
	}
	if n.MaxRetries <= 0 {
		n.MaxRetries = DefaultNarrationConfig.MaxRetries
	}
	if n.InitialDelay <= 0 {
		n.InitialDelay = DefaultNarrationConfig.InitialDelay
	}
	if n.Timeout <= 0 {
		n.Timeout = DefaultNarrationConfig.Timeout
	}
	if n.SampleRate <= 0 {
		n.SampleRate = DefaultNarrationConfig.SampleRate
	}
	if n.Voice == "" {
		n.Voice = DefaultNarrationConfig.Voice
	}

	switch n.Mode {
	case "simulated":
	case "remote":
		if n.Endpoint == "" {
			n.Endpoint = DefaultNarrationConfig.Endpoint
		}
		if err := validateURL(n.Endpoint, "narration.endpoint"); err != nil {
			return err
		}
		if n.APIKey == "" {
			return fmt.Errorf("narration.api_key is required in remote mode")
		}
	default:
		return fmt.Errorf("invalid narration mode: %s, must be 'simulated' or 'remote'", n.Mode)
	}

	return nil
}

func (c *Config) validateModalConfig() error {
	if c.Modals.CloseDelay <= 0 {
		c.Modals.CloseDelay = DefaultModalConfig.CloseDelay
	}
	return nil
}
