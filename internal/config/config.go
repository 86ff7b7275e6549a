// Package config loads server and game settings with viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
	Judge   JudgeConfig   `mapstructure:"judge"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig holds match rules.
type GameConfig struct {
	MaxScore    int    `mapstructure:"max_score"`
	InitialHand int    `mapstructure:"initial_hand"`
	Shuffle     bool   `mapstructure:"shuffle"`
	CardsPath   string `mapstructure:"cards_path"`
}

// JudgeConfig selects the judgment mode.
type JudgeConfig struct {
	Mode      string  `mapstructure:"mode"`
	Threshold float64 `mapstructure:"threshold"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.max_score", 10)
	v.SetDefault("game.initial_hand", 5)
	v.SetDefault("game.shuffle", true)
	v.SetDefault("game.cards_path", "data/cards.yaml")

	v.SetDefault("judge.mode", "auto")
	v.SetDefault("judge.threshold", 0.6)
}

// Load reads path (YAML) over the defaults and applies IDIOM_* environment
// overrides, e.g. IDIOM_JUDGE_MODE. A missing file leaves the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("IDIOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would make a match unplayable.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address is required")
	}
	if c.Game.MaxScore <= 0 {
		return fmt.Errorf("game.max_score must be positive, got %d", c.Game.MaxScore)
	}
	if c.Game.InitialHand < 0 {
		return fmt.Errorf("game.initial_hand must not be negative, got %d", c.Game.InitialHand)
	}
	// zero would accept any answer
	if c.Judge.Threshold <= 0 || c.Judge.Threshold > 1 {
		return fmt.Errorf("judge.threshold must be within (0,1], got %.2f", c.Judge.Threshold)
	}
	return nil
}
