package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type MediaConfig struct {
	Root      string `mapstructure:"root"`
	URLPrefix string `mapstructure:"url_prefix"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	ScoreTTL time.Duration `mapstructure:"score_ttl"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Media    MediaConfig    `mapstructure:"media"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

func setDefaults(vp *viper.Viper) {
	vp.SetDefault("server.port", "8080")
	vp.SetDefault("server.mode", "debug")
	vp.SetDefault("server.cors_origins", []string{"*"})
	vp.SetDefault("log.level", "info")
	vp.SetDefault("database.driver", "sqlite")
	vp.SetDefault("database.dsn", "mazzeh.db")
	vp.SetDefault("database.max_open_conns", 0)
	vp.SetDefault("jwt.secret", "mazzeh_super_secret_change_me")
	vp.SetDefault("jwt.access_ttl", 5*time.Minute)
	vp.SetDefault("jwt.refresh_ttl", 24*time.Hour)
	vp.SetDefault("media.root", "media")
	vp.SetDefault("media.url_prefix", "/media")
	vp.SetDefault("redis.url", "")
	vp.SetDefault("redis.score_ttl", 10*time.Minute)
}

// LoadConfig reads settings from an optional JSON file, a .env file and MAZZEH_* environment
// variables, later sources winning. An explicit path must exist; without one config/config.json
// is used when present.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	vp := viper.New()
	setDefaults(vp)

	vp.SetEnvPrefix("mazzeh")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	if path != "" {
		vp.SetConfigFile(path)
		if err := vp.ReadInConfig(); err != nil {
			return Config{}, err
		}
	} else {
		vp.SetConfigName("config")
		vp.SetConfigType("json")
		vp.AddConfigPath("config")
		if err := vp.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
