// Package config loads mudra settings from an optional YAML file and
// MUDRA_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
)

// EnvPrefix prefixes environment overrides, e.g. MUDRA_SERVER_ADDR.
const EnvPrefix = "MUDRA"

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	DataDir    string           `mapstructure:"data_dir"`
	Camera     CameraConfig     `mapstructure:"camera"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	ONNX       ONNXConfig       `mapstructure:"onnx"`
	Log        LogConfig        `mapstructure:"log"`
	Tray       TrayConfig       `mapstructure:"tray"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
}

type CameraConfig struct {
	DeviceID        int     `mapstructure:"device_id"`
	FPS             int     `mapstructure:"fps"`
	MotionThreshold float64 `mapstructure:"motion_threshold"`
}

type ClassifierConfig struct {
	Strategy        string   `mapstructure:"strategy"`
	ModelName       string   `mapstructure:"model_name"`
	ModelDirs       []string `mapstructure:"model_dirs"`
	OutputSize      int      `mapstructure:"output_size"`
	InputName       string   `mapstructure:"input_name"`
	OutputName      string   `mapstructure:"output_name"`
	ConfidenceFloor float64  `mapstructure:"confidence_floor"`
}

// Learned returns the learned classifier settings.
func (c ClassifierConfig) Learned() gesture.LearnedConfig {
	return gesture.LearnedConfig{
		ModelName:       c.ModelName,
		OutputSize:      c.OutputSize,
		ConfidenceFloor: c.ConfidenceFloor,
	}
}

type ONNXConfig struct {
	LibraryPath string `mapstructure:"library_path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TrayConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("data_dir", "~/.mudra")
	v.SetDefault("camera.device_id", 0)
	v.SetDefault("camera.fps", 15)
	v.SetDefault("camera.motion_threshold", 1.0)
	v.SetDefault("classifier.strategy", string(gesture.StrategyLearned))
	v.SetDefault("classifier.model_name", gesture.DefaultModelName)
	v.SetDefault("classifier.model_dirs", []string{})
	v.SetDefault("classifier.output_size", gesture.DefaultOutputSize)
	v.SetDefault("classifier.input_name", "input")
	v.SetDefault("classifier.output_name", "output")
	v.SetDefault("classifier.confidence_floor", gesture.DefaultConfidenceFloor)
	v.SetDefault("onnx.library_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("tray.enabled", false)
}

// Loader reads configuration and optionally watches the file for changes.
type Loader struct {
	v *viper.Viper

	mu      sync.Mutex
	current *Config
}

// NewLoader reads configuration. An empty path searches for mudra.yaml in
// the working directory and $HOME/.mudra; a missing file is not an error in
// that case. An explicit path must exist.
func NewLoader(path string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mudra")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".mudra"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	l := &Loader{v: v}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Load is a shorthand for NewLoader(path).Config().
func Load(path string) (*Config, error) {
	l, err := NewLoader(path)
	if err != nil {
		return nil, err
	}
	return l.Config(), nil
}

// File returns the config file in use, or "" when running on defaults.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Config returns the most recently loaded configuration.
func (l *Loader) Config() *Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Watch reloads the file on change and passes each valid configuration to
// fn. Invalid edits are logged and ignored. It is a no-op without a file.
func (l *Loader) Watch(fn func(*Config)) {
	if l.File() == "" {
		return
	}

	l.v.OnConfigChange(func(evt fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			logger.Error("config reload failed", "file", evt.Name, "err", err)
			return
		}

		l.mu.Lock()
		l.current = cfg
		l.mu.Unlock()

		logger.Info("config reloaded", "file", evt.Name)
		if fn != nil {
			fn(cfg)
		}
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	dir, err := ExpandHome(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("camera.fps must be > 0")
	}
	if c.Camera.MotionThreshold < 0 {
		return fmt.Errorf("camera.motion_threshold must be >= 0")
	}
	if _, err := gesture.ParseStrategy(c.Classifier.Strategy); err != nil {
		return fmt.Errorf("classifier.strategy: %w", err)
	}
	if err := c.Classifier.Learned().Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
