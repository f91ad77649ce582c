package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Models   ModelsConfig   `koanf:"models"`
	Resolver ResolverConfig `koanf:"resolver"`
	Store    StoreConfig    `koanf:"store"`
	Adapters AdaptersConfig `koanf:"adapters"`
}

type ServerConfig struct {
	Port            int    `koanf:"port"`
	LogLevel        string `koanf:"log_level"`
	ReadTimeout     string `koanf:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
}

type ModelsConfig struct {
	Default  string          `koanf:"default"`
	Registry []ModelRegistry `koanf:"registry"`
}

type ModelRegistry struct {
	Name     string `koanf:"name"`
	Provider string `koanf:"provider"`
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
}

// ResolverConfig governs the intent extraction loop: which model to call, how
// many repair retries to allow past the first attempt, and the per-attempt
// wall-clock bound.
type ResolverConfig struct {
	Model          string `koanf:"model"`
	MaxRetries     int    `koanf:"max_retries"`
	AttemptTimeout string `koanf:"attempt_timeout"`
}

type StoreConfig struct {
	DataDir string `koanf:"data_dir"`
}

type AdaptersConfig struct {
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	Enabled       bool              `koanf:"enabled"`
	BotToken      string            `koanf:"bot_token"`
	UpdateTimeout int               `koanf:"update_timeout"`
	Operators     map[string]string `koanf:"operators"`
	DefaultRole   string            `koanf:"default_role"`
}

// Load layers defaults, an optional YAML file, MAJORDOMO_* env vars, and
// cobra flags, in that order of increasing precedence.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":              DefaultServerPort,
		"server.log_level":         DefaultServerLogLevel,
		"server.read_timeout":      DefaultServerReadTimeout,
		"server.write_timeout":     DefaultServerWriteTimeout,
		"server.idle_timeout":      DefaultServerIdleTimeout,
		"server.shutdown_timeout":  DefaultServerShutdownTimeout,
		"models.default":           DefaultModel,
		"models.registry": []ModelRegistry{
			{Name: DefaultModel, Provider: "openai"},
		},
		"resolver.model":            DefaultModel,
		"resolver.max_retries":      DefaultResolverMaxRetries,
		"resolver.attempt_timeout":  DefaultResolverAttemptTimeout,
		"store.data_dir":            filepath.Join(os.Getenv("HOME"), ".majordomo"),
		"adapters.telegram.update_timeout": DefaultTelegramUpdateTimeout,
		"adapters.telegram.default_role":   DefaultTelegramRole,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}
	if configPath == "" {
		candidate := filepath.Join(os.Getenv("HOME"), ".majordomo", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
		slog.Debug("Loaded config file", "path", configPath)
	}

	if err := k.Load(env.Provider("MAJORDOMO_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "MAJORDOMO_")), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
