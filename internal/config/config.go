// internal/config/config.go
//
// Process configuration.
//
// Values come from (highest priority first) environment variables, an optional
// config.yaml in the working directory, and the defaults below. A .env file is
// loaded into the environment first so local development needs no exports.

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	StoreDriver string `mapstructure:"store_driver"` // memory | sqlite | postgres
	DBPath      string `mapstructure:"db_path"`
	DatabaseURL string `mapstructure:"database_url"`

	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiresDays int    `mapstructure:"jwt_expires_days"`
	CookieName     string `mapstructure:"cookie_name"`
	ClientOrigin   string `mapstructure:"client_origin"`
	Production     bool   `mapstructure:"production"`

	DiscordClientID     string `mapstructure:"discord_client_id"`
	DiscordClientSecret string `mapstructure:"discord_client_secret"`
	DiscordAPIBase      string `mapstructure:"discord_api_base"`

	HintMinGuesses   int    `mapstructure:"hint_min_guesses"`
	LeaderboardLimit int    `mapstructure:"leaderboard_limit"`
	StreakTimezone   string `mapstructure:"streak_tz"`

	WordsAnswersFile string `mapstructure:"words_answers_file"`
	WordsAllowedFile string `mapstructure:"words_allowed_file"`
}

// devJWTSecret is the local-development default; production refuses it.
const devJWTSecret = "dev_secret_change_me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5175")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("store_driver", "sqlite")
	v.SetDefault("db_path", "./data/activity.db")
	v.SetDefault("database_url", "")
	v.SetDefault("jwt_secret", devJWTSecret)
	v.SetDefault("jwt_expires_days", 14)
	v.SetDefault("cookie_name", "wordle_token")
	v.SetDefault("client_origin", "http://localhost:5173")
	v.SetDefault("production", false)
	v.SetDefault("discord_client_id", "")
	v.SetDefault("discord_client_secret", "")
	v.SetDefault("discord_api_base", "https://discord.com/api")
	v.SetDefault("hint_min_guesses", 3)
	v.SetDefault("leaderboard_limit", 100)
	v.SetDefault("streak_tz", "UTC")
	v.SetDefault("words_answers_file", "")
	v.SetDefault("words_allowed_file", "")
}

// Load reads .env, config.yaml (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("config: postgres store requires DATABASE_URL")
		}
	default:
		return errors.New("config: STORE_DRIVER must be memory, sqlite or postgres")
	}
	if c.Production && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		return errors.New("config: JWT_SECRET must be set in production")
	}
	if _, err := time.LoadLocation(c.StreakTimezone); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone used for day streaks.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StreakTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// JWTTTL is the lifetime of issued session tokens.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
