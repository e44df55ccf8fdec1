package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"coffeebot/internal/timeparse"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "COFFEEBOT"

// Config holds application configuration loaded from configs/config.yml,
// the environment and an optional .env file.
type Config struct {
	HTTP struct {
		Port      string `mapstructure:"port"`
		Prefix    string `mapstructure:"prefix"`
		AssetsDir string `mapstructure:"assets_dir"`
	} `mapstructure:"http"`
	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`
	Brew struct {
		Delay           string `mapstructure:"delay"`
		AnnounceOnStart bool   `mapstructure:"announce_on_start"`
	} `mapstructure:"brew"`
	Chat struct {
		Enabled       bool   `mapstructure:"enabled"`
		Token         string `mapstructure:"token"`
		RoomID        string `mapstructure:"room_id"`
		RatePerSecond int    `mapstructure:"rate_per_second"`
	} `mapstructure:"chat"`
	MQTT struct {
		Broker   string `mapstructure:"broker"`
		Topic    string `mapstructure:"topic"`
		ClientID string `mapstructure:"client_id"`
	} `mapstructure:"mqtt"`
	Admin struct {
		Secret   string        `mapstructure:"secret"`
		TokenTTL time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"admin"`
	Log struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.prefix", "")
	v.SetDefault("http.assets_dir", "dist")
	v.SetDefault("db.path", "coffeebot.db")
	v.SetDefault("brew.delay", "4 minutes")
	v.SetDefault("brew.announce_on_start", true)
	v.SetDefault("chat.enabled", false)
	v.SetDefault("chat.token", "")
	v.SetDefault("chat.room_id", "")
	v.SetDefault("chat.rate_per_second", 1)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "coffee/status")
	v.SetDefault("mqtt.client_id", "coffeebot")
	v.SetDefault("admin.secret", "")
	v.SetDefault("admin.token_ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads envFile (when present) into the process environment, then the
// YAML config from configDir (when present), then COFFEEBOT_* variables.
func Load(configDir, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.HTTP.Prefix = NormalizePrefix(cfg.HTTP.Prefix)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c Config) Validate() error {
	missing := []string{}
	if c.Chat.Enabled && strings.TrimSpace(c.Chat.Token) == "" {
		missing = append(missing, "chat.token")
	}
	if c.Chat.Enabled && strings.TrimSpace(c.Chat.RoomID) == "" {
		missing = append(missing, "chat.room_id")
	}
	if strings.TrimSpace(c.DB.Path) == "" {
		missing = append(missing, "db.path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configurations: %v", missing)
	}
	if strings.TrimSpace(c.Brew.Delay) == "" {
		return errors.New("brew.delay must not be empty")
	}
	if _, err := timeparse.ParseDelay(c.Brew.Delay, timeparse.New(), time.Now()); err != nil {
		return fmt.Errorf("brew.delay: %w", err)
	}
	return nil
}

// NormalizePrefix returns "" or a path starting with "/" and without a trailing slash.
func NormalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
