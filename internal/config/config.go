package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	LLM      LLMConfig
	Identity IdentityConfig
	Camera   CameraConfig
	Location LocationConfig
	Journal  JournalConfig
	Log      LogConfig
}

// LLMConfig holds provider settings.
type LLMConfig struct {
	Provider  string
	Model     string
	APIKeyEnv string `mapstructure:"api_key_env"`
	APIKey    string `mapstructure:"api_key"`
	Timeout   time.Duration
}

// IdentityConfig switches the identity-verification flow.
type IdentityConfig struct {
	RequirePhoto bool `mapstructure:"require_photo"`
}

// CameraConfig describes the external frame grabber.
type CameraConfig struct {
	Command string
	Args    []string
	Device  string
}

// LocationConfig selects how coordinates are read.
type LocationConfig struct {
	Provider  string
	Endpoint  string
	Latitude  float64
	Longitude float64
	Timeout   time.Duration
}

// JournalConfig controls the optional clearance audit trail.
type JournalConfig struct {
	Enabled bool
	Path    string
}

// LogConfig holds logger settings. The UI owns the terminal, so logs go to a file.
type LogConfig struct {
	Level string
	Path  string
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderRules  = "rules"

	LocationIP     = "ip"
	LocationStatic = "static"
	LocationNone   = "none"
)

// DefaultModel returns the model used when llm.model is unset for provider.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderRules:
		return "rules-v1"
	default:
		return "gemini-3-flash-preview"
	}
}

// DefaultAPIKeyEnv returns the environment variable consulted for provider.
func DefaultAPIKeyEnv(provider string) string {
	if provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

// New returns a viper instance with defaults, env binding and the config file
// location applied. Callers may bind flags before calling Load.
func New() *viper.Viper {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key_env", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("identity.require_photo", true)
	v.SetDefault("camera.command", "ffmpeg")
	v.SetDefault("camera.device", "/dev/video0")
	v.SetDefault("camera.args", []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "v4l2", "-i", "{device}",
		"-frames:v", "1", "-f", "image2pipe", "-vcodec", "mjpeg", "-",
	})
	v.SetDefault("location.provider", LocationIP)
	v.SetDefault("location.endpoint", "http://ip-api.com/json")
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("location.timeout", 10*time.Second)
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", filepath.Join(home, ".local", "share", "surakshapath", "clearances.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "surakshapath", "surakshapath.log"))

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("SURAKSHA_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "surakshapath"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SURAKSHA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from file and env. Env var overrides use prefix SURAKSHA_.
func Load() (Config, error) {
	return LoadFrom(New())
}

// LoadFrom reads the config file (if any) into v and decodes it.
func LoadFrom(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel(c.LLM.Provider)
	}
	c.LLM.APIKeyEnv = strings.TrimSpace(c.LLM.APIKeyEnv)
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = DefaultAPIKeyEnv(c.LLM.Provider)
	}
	c.Location.Provider = strings.ToLower(strings.TrimSpace(c.Location.Provider))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

// Validate rejects values no component can act on.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderRules:
	default:
		return fmt.Errorf("config: llm.provider %q must be one of gemini, openai, rules", c.LLM.Provider)
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("config: llm.timeout must not be negative")
	}
	switch c.Location.Provider {
	case LocationIP, LocationStatic, LocationNone:
	default:
		return fmt.Errorf("config: location.provider %q must be one of ip, static, none", c.Location.Provider)
	}
	if c.Location.Provider == LocationStatic {
		if c.Location.Latitude < -90 || c.Location.Latitude > 90 || c.Location.Longitude < -180 || c.Location.Longitude > 180 {
			return fmt.Errorf("config: static location out of range")
		}
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return fmt.Errorf("config: journal.path required when journal is enabled")
	}
	return nil
}
