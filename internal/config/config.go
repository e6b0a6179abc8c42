package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"

	"github.com/hemantwpdev/post-sync-translate/internal/pkg/urlutil"
)

const (
	RoleHost   = "host"
	RoleTarget = "target"
)

// SupportedLanguages is the closed set of translation targets, keyed by
// language code with the name the oracle prompt uses.
var SupportedLanguages = map[string]string{
	"fr": "French",
	"es": "Spanish",
	"hi": "Hindi",
}

type Config struct {
	Role        string           `json:"role"`
	SiteURL     string           `json:"site_url"`
	Port        int              `json:"port"`
	DBPath      string           `json:"db_path"`
	JWTSecret   string           `json:"jwt_secret"`
	JWTTTLHours int              `json:"jwt_ttl_hours"`
	Admin       AdminConfig      `json:"admin"`
	Host        HostConfig       `json:"host"`
	Target      TargetConfig     `json:"target"`
	FileStore   FileStoreConfig  `json:"file_store"`
	LogConfig   logger.LogConfig `json:"log_config"`
	CORSOrigins []string         `json:"cors_origins"`
}

type AdminConfig struct {
	User         string `json:"user"`
	PasswordHash string `json:"password_hash"`
}

type HostConfig struct {
	PushTimeoutSec int `json:"push_timeout_sec"`
}

type TargetConfig struct {
	SharedKey     string       `json:"shared_key"`
	Language      string       `json:"language"`
	Oracle        OracleConfig `json:"oracle"`
	QueueSize     int          `json:"queue_size"`
	AuditKeepDays int          `json:"audit_keep_days"`
}

type OracleConfig struct {
	Provider    string      `json:"provider"`
	Model       string      `json:"model"`
	Temperature float64     `json:"temperature"`
	TimeoutSec  int         `json:"timeout_sec"`
	ChunkSize   int         `json:"chunk_size"`
	Data        interface{} `json:"data"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Role != RoleHost && cfg.Role != RoleTarget {
		return nil, fmt.Errorf("role must be host or target")
	}
	if cfg.SiteURL == "" {
		return nil, fmt.Errorf("site_url is required")
	}
	cfg.SiteURL = urlutil.Canonicalize(cfg.SiteURL)
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Host.PushTimeoutSec == 0 {
		cfg.Host.PushTimeoutSec = 30
	}
	if cfg.Target.QueueSize == 0 {
		cfg.Target.QueueSize = 64
	}
	if lang := cfg.Target.Language; lang != "" {
		if _, ok := SupportedLanguages[lang]; !ok {
			return nil, fmt.Errorf("unsupported target language: %s", lang)
		}
	}
	if cfg.Target.Oracle.Model == "" {
		cfg.Target.Oracle.Model = "gpt-4o-mini"
	}
	if cfg.Target.Oracle.Temperature == 0 {
		cfg.Target.Oracle.Temperature = 0.2
	}
	if cfg.Target.Oracle.TimeoutSec == 0 {
		cfg.Target.Oracle.TimeoutSec = 60
	}
	if cfg.Target.Oracle.ChunkSize == 0 {
		cfg.Target.Oracle.ChunkSize = 200
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.FileStore.Type == "local" && cfg.FileStore.Data == nil {
		cfg.FileStore.Data = map[string]interface{}{"dir": "data/files"}
	}
	return &cfg, nil
}

// TranslationConfigured reports whether this node can run the translation
// pipeline: an oracle credential section and a supported language.
func (c *Config) TranslationConfigured() bool {
	_, ok := SupportedLanguages[c.Target.Language]
	return c.Role == RoleTarget && ok && c.Target.Oracle.Provider != ""
}
