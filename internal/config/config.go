package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Identifier schemes.
const (
	IDSchemeUUID      = "uuid"
	IDSchemeTimestamp = "timestamp"
)

// Config defines notebook configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Storage   StorageConfig   `yaml:"storage"`
	IDs       IDConfig        `yaml:"ids"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Assistant AssistantConfig `yaml:"assistant"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Key    string `yaml:"key"`
}

type IDConfig struct {
	Scheme string `yaml:"scheme"`
}

type WorkspaceConfig struct {
	ResetOnProjectSwitch bool `yaml:"reset_on_project_switch"`
}

type AssistantConfig struct {
	ReplyDelay time.Duration `yaml:"reply_delay"`
	Visible    bool          `yaml:"visible"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the built-in configuration. Storage.Path is left empty
// and resolved per driver by Load.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Transport: TransportConfig{Mode: TransportStdio},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Key:    "mycoder-projects",
		},
		IDs:       IDConfig{Scheme: IDSchemeUUID},
		Workspace: WorkspaceConfig{ResetOnProjectSwitch: true},
		Assistant: AssistantConfig{
			ReplyDelay: 600 * time.Millisecond,
			Visible:    true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CODEPAD_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath(cfg.Storage.Driver)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("unknown transport.mode %q", c.Transport.Mode))
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverFile:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, errors.New("storage.key must not be empty"))
	}
	switch c.IDs.Scheme {
	case IDSchemeUUID, IDSchemeTimestamp:
	default:
		errs = append(errs, fmt.Errorf("unknown ids.scheme %q", c.IDs.Scheme))
	}
	if c.Assistant.ReplyDelay < 0 {
		errs = append(errs, fmt.Errorf("assistant.reply_delay must not be negative: %s", c.Assistant.ReplyDelay))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// DefaultStoragePath places the store under the user config directory.
func DefaultStoragePath(driver string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	name := "codepad.db"
	if driver == DriverFile {
		name = "state.json"
	}
	return filepath.Join(dir, "codepad", name)
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("CODEPAD_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CODEPAD_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid CODEPAD_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("CODEPAD_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if driver := os.Getenv("CODEPAD_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if path := os.Getenv("CODEPAD_STORAGE_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if key := os.Getenv("CODEPAD_STORAGE_KEY"); key != "" {
		cfg.Storage.Key = key
	}
	if scheme := os.Getenv("CODEPAD_ID_SCHEME"); scheme != "" {
		cfg.IDs.Scheme = scheme
	}
	if resetStr := os.Getenv("CODEPAD_RESET_ON_SWITCH"); resetStr != "" {
		reset, err := strconv.ParseBool(resetStr)
		if err != nil {
			return fmt.Errorf("invalid CODEPAD_RESET_ON_SWITCH: %w", err)
		}
		cfg.Workspace.ResetOnProjectSwitch = reset
	}
	if delayStr := os.Getenv("CODEPAD_ASSISTANT_DELAY"); delayStr != "" {
		delay, err := time.ParseDuration(delayStr)
		if err != nil {
			return fmt.Errorf("invalid CODEPAD_ASSISTANT_DELAY: %w", err)
		}
		cfg.Assistant.ReplyDelay = delay
	}
	if level := os.Getenv("CODEPAD_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("CODEPAD_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
