package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. Every key can be overridden by
// an environment variable named after it, e.g. database.driver -> DATABASE_DRIVER.
type Config struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Database struct {
		Driver          string        `mapstructure:"driver"`
		Host            string        `mapstructure:"host"`
		Port            string        `mapstructure:"port"`
		User            string        `mapstructure:"user"`
		Password        string        `mapstructure:"password"`
		Name            string        `mapstructure:"name"`
		SQLitePath      string        `mapstructure:"sqlite_path"`
		MaxOpenConns    int           `mapstructure:"max_open_conns"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
		TxTimeout       time.Duration `mapstructure:"tx_timeout"`
	} `mapstructure:"database"`

	JWT struct {
		Secret     string        `mapstructure:"secret"`
		AccessTTL  time.Duration `mapstructure:"access_ttl"`
		RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	} `mapstructure:"jwt"`

	RateLimit struct {
		Anonymous     int           `mapstructure:"anonymous"`
		Authenticated int           `mapstructure:"authenticated"`
		Window        time.Duration `mapstructure:"window"`
		LoginEvery    time.Duration `mapstructure:"login_every"`
		LoginBurst    int           `mapstructure:"login_burst"`
	} `mapstructure:"rate_limit"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "billing")
	v.SetDefault("database.sqlite_path", "billing.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.tx_timeout", "5s")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", "24h")
	v.SetDefault("jwt.refresh_ttl", "168h")

	v.SetDefault("rate_limit.anonymous", 100)
	v.SetDefault("rate_limit.authenticated", 1000)
	v.SetDefault("rate_limit.window", "1h")
	v.SetDefault("rate_limit.login_every", "12s")
	v.SetDefault("rate_limit.login_burst", 5)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cors.allowed_origins", []string{"http://127.0.0.1:5500"})
}

// Load reads .env (if any), an optional config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret (JWT_SECRET) must be set")
	}
	if c.RateLimit.Anonymous <= 0 || c.RateLimit.Authenticated <= 0 || c.RateLimit.Window <= 0 ||
		c.RateLimit.LoginEvery <= 0 || c.RateLimit.LoginBurst <= 0 {
		return fmt.Errorf("rate_limit values must be positive")
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	return nil
}
