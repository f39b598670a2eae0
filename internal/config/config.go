package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

var (
	ErrMissingPasskey  = errors.New("passkey or passkey hash must be set")
	ErrInvalidAliasLen = errors.New("invalid alias length bounds")
)

type Config struct {
	Env        string `yaml:"env"`
	BaseURL    string `yaml:"base_url"`
	HomePath   string `yaml:"home_path"`
	Log        `yaml:"log"`
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Alias      `yaml:"alias"`
	Auth       `yaml:"auth"`
}

type Log struct {
	Level string `yaml:"level"`
}

// SlogLevel converts the configured level name into a slog.Level, falling back to info.
func (l *Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type HTTPServer struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes"`
	CertFile        string        `yaml:"cert_file"`
	KeyFile         string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:            8080,
	ReadTimeout:     5 * time.Second,
	WriteTimeout:    10 * time.Second,
	IdleTimeout:     time.Minute,
	ShutdownTimeout: 10 * time.Second,
	MaxHeaderBytes:  1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	URL             string        `yaml:"url"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	QueryTimeout:    3 * time.Second,
	AutoMigrate:     true,
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

// DSN returns the connection string. An explicit URL wins over the individual fields.
func (p *Postgres) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Alias struct {
	MinLength    int      `yaml:"min_length"`
	MaxLength    int      `yaml:"max_length"`
	AllowNumeric bool     `yaml:"allow_numeric"`
	Reserved     []string `yaml:"reserved"`
}

var defaultAlias = Alias{
	MinLength:    3,
	MaxLength:    30,
	AllowNumeric: false,
	Reserved: []string{
		"api", "about", "admin", "database", "login", "register", "settings",
		"docs", "swagger",
	},
}

type Auth struct {
	Passkey     string        `yaml:"passkey"`
	PasskeyHash string        `yaml:"passkey_hash"`
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	Issuer      string        `yaml:"issuer"`
}

var defaultAuth = Auth{
	TokenTTL: 24 * time.Hour,
	Issuer:   "shortlink",
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to apply environment: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

// Validate checks the invariants the application relies on at startup.
func (c *Config) Validate() error {
	if c.Auth.Passkey == "" && c.Auth.PasskeyHash == "" {
		return ErrMissingPasskey
	}

	if c.Alias.MinLength < 1 || c.Alias.MaxLength < c.Alias.MinLength {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidAliasLen, c.Alias.MinLength, c.Alias.MaxLength)
	}

	return nil
}

// TokenKey returns the key used to sign session tokens, falling back to the
// passkey material when no dedicated secret is configured.
func (a *Auth) TokenKey() string {
	if a.TokenSecret != "" {
		return a.TokenSecret
	}
	if a.PasskeyHash != "" {
		return a.PasskeyHash
	}
	return a.Passkey
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("DEFAULT_PASSKEY"); v != "" {
		cfg.Auth.Passkey = v
	}
	if v := os.Getenv("PASSKEY_HASH"); v != "" {
		cfg.Auth.PasskeyHash = v
	}
	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_PORT %q: %w", v, err)
		}
		cfg.HTTPServer.Port = port
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.BaseURL = "http://localhost:8080"
	cfg.HomePath = "/"
	cfg.Log = Log{Level: "info"}
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Alias = defaultAlias
	cfg.Alias.Reserved = append([]string(nil), defaultAlias.Reserved...)
	cfg.Auth = defaultAuth
}
