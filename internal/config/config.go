package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Auth     AuthConfig     `yaml:"auth"`
	LDAP     LDAPConfig     `yaml:"ldap"`
	Tickets  TicketConfig   `yaml:"tickets"`
	Uploads  UploadConfig   `yaml:"uploads"`
	Teams    TeamsConfig    `yaml:"teams"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

// AuthConfig controls who may use the tracker. AllowedEmails is the
// allow-list of authorized principal emails; an empty list allows everyone.
type AuthConfig struct {
	AllowedEmails []string `yaml:"allowed_emails"`
}

type LDAPConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	BaseDN       string `yaml:"base_dn"`
	BindDN       string `yaml:"bind_dn"`
	BindPassword string `yaml:"bind_password"`
	UserFilter   string `yaml:"user_filter"`
	UseSSL       bool   `yaml:"use_ssl"`
}

// TicketConfig controls the human-facing ticket number format.
// Numbers render as PREFIX-NNNN with Width zero-padded digits.
type TicketConfig struct {
	Prefix string `yaml:"prefix"`
	Width  int    `yaml:"width"`
}

type UploadConfig struct {
	Dir          string `yaml:"dir"`
	MaxSizeMB    int    `yaml:"max_size_mb"`
	MaxPerReport int    `yaml:"max_per_report"`
}

// TeamsConfig configures the chat-bot ingestion adapter. The bot files a
// ticket when a message mentions TargetEmail.
type TeamsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	TargetEmail string `yaml:"target_email"`
	AppID       string `yaml:"app_id"`
	AppPassword string `yaml:"app_password"`
}

// RedisConfig for optional async ingestion queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.applyDefaults()
	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "bugtracker.db",
		},
		JWT: JWTConfig{
			Secret:     "bugtracker-secret-key-change-in-production",
			ExpireHour: 24,
		},
		LDAP: LDAPConfig{
			Enabled:    false,
			Port:       389,
			UserFilter: "(uid=%s)",
		},
		Tickets: TicketConfig{
			Prefix: "ITWO-QA",
			Width:  4,
		},
		Uploads: UploadConfig{
			Dir:          "uploads",
			MaxSizeMB:    10,
			MaxPerReport: 5,
		},
		Teams: TeamsConfig{
			Enabled: false,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
	}
}

// applyDefaults fills in zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Server.Mode == "" {
		c.Server.Mode = def.Server.Mode
	}
	if c.Database.Driver == "" {
		c.Database.Driver = def.Database.Driver
	}
	if c.Database.DSN == "" {
		c.Database.DSN = def.Database.DSN
	}
	if c.JWT.Secret == "" {
		c.JWT.Secret = def.JWT.Secret
	}
	if c.JWT.ExpireHour == 0 {
		c.JWT.ExpireHour = def.JWT.ExpireHour
	}
	if c.Tickets.Prefix == "" {
		c.Tickets.Prefix = def.Tickets.Prefix
	}
	if c.Tickets.Width == 0 {
		c.Tickets.Width = def.Tickets.Width
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = def.Uploads.Dir
	}
	if c.Uploads.MaxSizeMB == 0 {
		c.Uploads.MaxSizeMB = def.Uploads.MaxSizeMB
	}
	if c.Uploads.MaxPerReport == 0 {
		c.Uploads.MaxPerReport = def.Uploads.MaxPerReport
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if emails := os.Getenv("ALLOWED_EMAILS"); emails != "" {
		c.Auth.AllowedEmails = splitAndTrim(emails, ",")
	}
	if prefix := os.Getenv("TICKET_PREFIX"); prefix != "" {
		c.Tickets.Prefix = prefix
	}
	if dir := os.Getenv("UPLOADS_DIR"); dir != "" {
		c.Uploads.Dir = dir
	}
	if appID := os.Getenv("TEAMS_APP_ID"); appID != "" {
		c.Teams.Enabled = true
		c.Teams.AppID = appID
	}
	if appPassword := os.Getenv("TEAMS_APP_PASSWORD"); appPassword != "" {
		c.Teams.AppPassword = appPassword
	}
	if target := os.Getenv("TEAMS_TARGET_EMAIL"); target != "" {
		c.Teams.TargetEmail = target
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	// Remove redis:// prefix
	url := strings.TrimPrefix(redisURL, "redis://")

	// Extract password if present
	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	// Extract db number if present
	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	// Remaining is host:port
	c.Redis.Addr = url
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
