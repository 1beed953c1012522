package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverAuto   = "auto"
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Driver        string `json:"driver" yaml:"driver"`
	Path          string `json:"path" yaml:"path"` // JSON file
	DSN           string `json:"dsn" yaml:"dsn"`   // SQLite file or libsql:// URL
	RedisAddr     string `json:"redisAddr" yaml:"redisAddr"`
	RedisUsername string `json:"redisUsername" yaml:"redisUsername"`
	RedisPassword string `json:"redisPassword" yaml:"redisPassword"`
	RedisDB       int    `json:"redisDb" yaml:"redisDb"`
	RedisPrefix   string `json:"redisPrefix" yaml:"redisPrefix"`
}

// Config holds application configuration.
type Config struct {
	Storage            StorageConfig `json:"storage" yaml:"storage"`
	ExportDir          string        `json:"exportDir" yaml:"exportDir"`
	QuickAddFolder     string        `json:"quickAddFolder" yaml:"quickAddFolder"` // "" = no folder
	CullExcludeDomains []string      `json:"cullExcludeDomains" yaml:"cullExcludeDomains"`
	ImportKeepDates    bool          `json:"importKeepDates" yaml:"importKeepDates"`
	LogLevel           string        `json:"logLevel" yaml:"logLevel"`   // debug | info | warn | error
	LogFormat          string        `json:"logFormat" yaml:"logFormat"` // console | json
	ListenAddr         string        `json:"listenAddr" yaml:"listenAddr"`
	// AllowedHosts restricts the Host header the HTTP API answers to.
	// Empty allows any host.
	AllowedHosts []string `json:"allowedHosts,omitempty" yaml:"allowedHosts,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	dir := configDir()
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return Config{
		Storage: StorageConfig{
			Driver:      DriverAuto,
			Path:        filepath.Join(dir, "bookmarks.json"),
			DSN:         filepath.Join(dir, "bookmarks.db"),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "marks:",
		},
		ExportDir:          filepath.Join(home, "Downloads"),
		CullExcludeDomains: []string{"github.com", "gitlab.com"},
		LogLevel:           "warn",
		LogFormat:          "console",
		ListenAddr:         "127.0.0.1:7420",
	}
}

// PrettyLog reports whether the console encoder was requested.
func (c *Config) PrettyLog() bool {
	return c.LogFormat != "json"
}

// Load reads config from a JSON or YAML file, picked by extension, then
// applies MARKS_* environment overrides. A .env file in the working
// directory is loaded first when present. The config file is created with
// defaults if it doesn't exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	config, err := readFile(path)
	if err != nil {
		return nil, err
	}

	applyDefaults(config)
	applyEnv(config)

	return config, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: defaults still apply if the file can't be written
			_ = Save(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &config, nil
}

// applyDefaults fills fields left empty by the config file.
func applyDefaults(config *Config) {
	defaults := DefaultConfig()
	if config.Storage.Driver == "" {
		config.Storage.Driver = defaults.Storage.Driver
	}
	if config.Storage.Path == "" {
		config.Storage.Path = defaults.Storage.Path
	}
	if config.Storage.DSN == "" {
		config.Storage.DSN = defaults.Storage.DSN
	}
	if config.Storage.RedisAddr == "" {
		config.Storage.RedisAddr = defaults.Storage.RedisAddr
	}
	if config.Storage.RedisPrefix == "" {
		config.Storage.RedisPrefix = defaults.Storage.RedisPrefix
	}
	if config.ExportDir == "" {
		config.ExportDir = defaults.ExportDir
	}
	if config.CullExcludeDomains == nil {
		config.CullExcludeDomains = defaults.CullExcludeDomains
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFormat == "" {
		config.LogFormat = defaults.LogFormat
	}
	if config.ListenAddr == "" {
		config.ListenAddr = defaults.ListenAddr
	}
}

func applyEnv(config *Config) {
	s := &config.Storage
	s.Driver = getenv("MARKS_STORAGE_DRIVER", s.Driver)
	s.Path = getenv("MARKS_STORAGE_PATH", s.Path)
	s.DSN = getenv("MARKS_SQLITE_DSN", s.DSN)
	s.RedisAddr = getenv("MARKS_REDIS_ADDR", s.RedisAddr)
	s.RedisUsername = getenv("MARKS_REDIS_USERNAME", s.RedisUsername)
	s.RedisPassword = getenv("MARKS_REDIS_PASSWORD", s.RedisPassword)
	s.RedisDB = getenvInt("MARKS_REDIS_DB", s.RedisDB)
	s.RedisPrefix = getenv("MARKS_REDIS_PREFIX", s.RedisPrefix)

	config.ExportDir = getenv("MARKS_EXPORT_DIR", config.ExportDir)
	config.QuickAddFolder = getenv("MARKS_QUICKADD_FOLDER", config.QuickAddFolder)
	if v := os.Getenv("MARKS_CULL_EXCLUDE"); v != "" {
		config.CullExcludeDomains = splitAndTrim(v)
	}
	config.ImportKeepDates = mustBool("MARKS_IMPORT_KEEP_DATES", config.ImportKeepDates)
	config.LogLevel = getenv("MARKS_LOG_LEVEL", config.LogLevel)
	config.LogFormat = getenv("MARKS_LOG_FORMAT", config.LogFormat)
	config.ListenAddr = getenv("MARKS_LISTEN_ADDR", config.ListenAddr)
	if v := os.Getenv("MARKS_ALLOWED_HOSTS"); v != "" {
		config.AllowedHosts = splitAndTrim(v)
	}
}

// Save writes config to path, as YAML or JSON depending on the extension.
// Creates the directory if it doesn't exist.
func Save(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns $MARKS_CONFIG or ~/.config/marks/config.json.
func DefaultConfigFilePath() string {
	if p := os.Getenv("MARKS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "config.json")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".marks"
	}
	return filepath.Join(home, ".config", "marks")
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
