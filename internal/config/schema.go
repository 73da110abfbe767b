package config

import (
	"time"
)

type Config struct {
	Server      ServerConfig       `yaml:"server"`
	Log         LogConfig          `yaml:"log"`
	CORS        CORSConfig         `yaml:"cors"`
	Sessions    SessionConfig      `yaml:"sessions"`
	Redis       *RedisConfig       `yaml:"redis"`
	Storage     StorageConfig      `yaml:"storage"`
	Auth        AuthConfig         `yaml:"auth"`
	OIDC        *OIDCConfig        `yaml:"oidc"`
	Presence    PresenceConfig     `yaml:"presence"`
	Narration   NarrationConfig    `yaml:"narration"`
	Modals      ModalConfig        `yaml:"modals"`
	Distributed *DistributedConfig `yaml:"distributed"`
}

type ServerConfig struct {
	Port        int                `yaml:"port"`
	ExternalURL string             `yaml:"external_url"`
	StaticDir   string             `yaml:"static_dir"`
	ContentFile string             `yaml:"content_file"`
	Debug       *ServerDebugConfig `yaml:"debug"`
}

var DefaultServerConfig = ServerConfig{
	Port:      8080,
	StaticDir: "web/dist",
}

type ServerDebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

var DefaultDebugConfig = ServerDebugConfig{
	Enabled: false,
	Host:    "localhost",
	Port:    5123,
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var DefaultLogConfig = LogConfig{
	Level:  "info",
	Format: "text",
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeSeconds    int      `yaml:"max_age_seconds"`
}

var DefaultCORSConfig = CORSConfig{
	AllowedOrigins: []string{"http://localhost:5173"},
	AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders: []string{"*"},
	MaxAgeSeconds:  300,
}

type SessionConfig struct {
	Store    string        `yaml:"store"`
	Lifetime time.Duration `yaml:"lifetime"`
	Name     string        `yaml:"name"`
	Secure   bool          `yaml:"secure"`
}

var DefaultSessionConfig = SessionConfig{
	Store:    "memory",
	Lifetime: 24 * time.Hour,
	Name:     "session_id",
	Secure:   true,
}

type RedisConfig struct {
	Address       string               `yaml:"address"`
	Username      string               `yaml:"username"`
	Password      string               `yaml:"password"`
	Sentinel      *RedisSentinelConfig `yaml:"sentinel"`
	SessionIndex  int                  `yaml:"session_index"`
	PresenceIndex int                  `yaml:"presence_index"`
	LeaderIndex   int                  `yaml:"leader_index"`
}

var DefaultRedisConfig = RedisConfig{
	SessionIndex:  0,
	PresenceIndex: 1,
	LeaderIndex:   2,
}

type RedisSentinelConfig struct {
	MasterName        string   `yaml:"master_name"`
	SentinelAddresses []string `yaml:"addresses"`
	SentinelPassword  string   `yaml:"password"`
	SentinelUsername  string   `yaml:"username"`
}

type StorageConfig struct {
	Type string `yaml:"type"` // "memory" or "sqlite"
	Path string `yaml:"path"`
}

var DefaultStorageConfig = StorageConfig{
	Type: "memory",
	Path: "data/techrobotics.db",
}

type AuthConfig struct {
	Admins            []AdminAccount  `yaml:"admins"`
	MinPasswordLength int             `yaml:"min_password_length"`
	SeedUsers         []SeedUser      `yaml:"seed_users"`
	RateLimit         RateLimitConfig `yaml:"rate_limit"`
}

// AdminAccount is an allow-listed administrator. PasswordHash is an encoded
// argon2id hash.
type AdminAccount struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
}

type SeedUser struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Username string `yaml:"username"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

var DefaultAuthConfig = AuthConfig{
	MinPasswordLength: 6,
	RateLimit: RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             5,
	},
}

type OIDCConfig struct {
	Enabled      bool     `yaml:"enabled"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	IssuerURL    string   `yaml:"issuer_url"`
	RedirectURI  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

var DefaultOIDCConfig = OIDCConfig{
	Scopes: []string{"openid", "profile", "email"},
}

type PresenceConfig struct {
	Store         string        `yaml:"store"` // "memory" or "redis"
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

var DefaultPresenceConfig = PresenceConfig{
	Store:         "memory",
	TTL:           24 * time.Hour,
	SweepInterval: 5 * time.Minute,
}

type NarrationConfig struct {
	Mode              string        `yaml:"mode"` // "simulated" or "remote"
	Endpoint          string        `yaml:"endpoint"`
	APIKey            string        `yaml:"api_key"`
	Voice             string        `yaml:"voice"`
	SampleRate        int           `yaml:"sample_rate"`
	SimulatedDuration time.Duration `yaml:"simulated_duration"`
	MaxRetries        int           `yaml:"max_retries"`
	InitialDelay      time.Duration `yaml:"initial_delay"`
	Timeout           time.Duration `yaml:"timeout"`
}

var DefaultNarrationConfig = NarrationConfig{
	Mode:              "simulated",
	Endpoint:          "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-preview-tts:generateContent",
	Voice:             "Kore",
	SampleRate:        24000,
	SimulatedDuration: 3 * time.Second,
	MaxRetries:        5,
	InitialDelay:      time.Second,
	Timeout:           30 * time.Second,
}

type ModalConfig struct {
	CloseDelay time.Duration `yaml:"close_delay"`
}

var DefaultModalConfig = ModalConfig{
	CloseDelay: 300 * time.Millisecond,
}

type DistributedConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

var DefaultDistributedConfig = DistributedConfig{
	Enabled: false,
	TTL:     30 * time.Second,
}
