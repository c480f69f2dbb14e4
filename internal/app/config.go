package app

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	neterrors "github.com/victorvcruz/netclip/internal/errors"
	"github.com/victorvcruz/netclip/internal/logger"
	syncTypes "github.com/victorvcruz/netclip/internal/sync"
)

const envPrefix = "NETCLIP"

// Config is the effective node configuration after defaults, the config
// file, NETCLIP_* environment variables and flags have been merged.
type Config struct {
	Port               int           `mapstructure:"port" yaml:"port"`
	ListenAddress      string        `mapstructure:"listen_address" yaml:"listen_address"`
	LocalAddress       string        `mapstructure:"local_address" yaml:"local_address"`
	BroadcastAddress   string        `mapstructure:"broadcast_address" yaml:"broadcast_address"`
	MaxPayload         int           `mapstructure:"max_payload" yaml:"max_payload"`
	PollInterval       time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	PeerReportInterval time.Duration `mapstructure:"peer_report_interval" yaml:"peer_report_interval"`
	Partners           []string      `mapstructure:"partners" yaml:"partners"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat          string        `mapstructure:"log_format" yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		Port:               syncTypes.DefaultPort,
		MaxPayload:         syncTypes.DefaultMaxPayload,
		PollInterval:       time.Second,
		PeerReportInterval: 30 * time.Second,
		Partners:           []string{},
		LogLevel:           "info",
		LogFormat:          logger.FormatConsole,
	}
}

// SetDefaults registers every key with its default so env variables are
// picked up even when no config file sets them.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("port", defaults.Port)
	v.SetDefault("listen_address", defaults.ListenAddress)
	v.SetDefault("local_address", defaults.LocalAddress)
	v.SetDefault("broadcast_address", defaults.BroadcastAddress)
	v.SetDefault("max_payload", defaults.MaxPayload)
	v.SetDefault("poll_interval", defaults.PollInterval)
	v.SetDefault("peer_report_interval", defaults.PeerReportInterval)
	v.SetDefault("partners", defaults.Partners)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
}

// NewViper returns a viper instance with defaults and env binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadConfigFile loads path, or the default location when path is empty. A
// missing default file is not an error; a missing explicit file is.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return neterrors.NewWithError(neterrors.KindConfig, "cannot read config file", err)
	}
	return nil
}

// Load reads the merged configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, neterrors.NewWithError(neterrors.KindConfig, "cannot decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return neterrors.ConfigError(fmt.Sprintf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.MaxPayload < 1 {
		return neterrors.ConfigError(fmt.Sprintf("max_payload must be positive, got %d", c.MaxPayload))
	}
	if c.PollInterval <= 0 {
		return neterrors.ConfigError("poll_interval must be positive")
	}
	if c.PeerReportInterval < 0 {
		return neterrors.ConfigError("peer_report_interval cannot be negative")
	}
	if c.LogFormat != logger.FormatConsole && c.LogFormat != logger.FormatJSON {
		return neterrors.ConfigError(fmt.Sprintf("log_format must be %q or %q, got %q",
			logger.FormatConsole, logger.FormatJSON, c.LogFormat))
	}
	for _, field := range []struct{ key, value string }{
		{"listen_address", c.ListenAddress},
		{"local_address", c.LocalAddress},
		{"broadcast_address", c.BroadcastAddress},
	} {
		if field.value != "" && net.ParseIP(field.value).To4() == nil {
			return neterrors.ConfigError(fmt.Sprintf("%s must be an IPv4 address, got %q", field.key, field.value))
		}
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WatchLogLevel re-applies log_level whenever the config file in use changes.
// Other keys only take effect on restart.
func WatchLogLevel(v *viper.Viper) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := v.GetString("log_level")
		logger.SetLevel(level)
		logger.Info().Str("file", e.Name).Str("log_level", level).Msg("Config reloaded")
	})
	v.WatchConfig()
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "netclip")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".netclip"
	}
	return filepath.Join(home, ".config", "netclip")
}

func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
