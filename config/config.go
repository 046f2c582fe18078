package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	Mail  MailConfig
	AMQP  AMQPConfig
}

type AppConfig struct {
	Port       string
	Env        string
	LogLevel   string
	CORSOrigin string
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path is the database file used by the sqlite driver.
	Path string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type MailConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	From     string
	// FailSilently drops dispatch errors instead of returning them.
	FailSilently bool
}

type AMQPConfig struct {
	URL   string
	Queue string
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_LOG_LEVEL", "info")
	viper.SetDefault("APP_CORS_ORIGIN", "*")

	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_PATH", "catalog.db")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")

	viper.SetDefault("MAIL_DRIVER", "smtp")
	viper.SetDefault("MAIL_PORT", "587")
	viper.SetDefault("MAIL_FROM", "noreply@catalog.local")
	viper.SetDefault("MAIL_FAIL_SILENTLY", true)

	viper.SetDefault("AMQP_QUEUE", "catalog.mail")
}

// LoadConfig reads .env when present and lets environment variables
// override every key.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Port:       viper.GetString("APP_PORT"),
			Env:        viper.GetString("APP_ENV"),
			LogLevel:   viper.GetString("APP_LOG_LEVEL"),
			CORSOrigin: viper.GetString("APP_CORS_ORIGIN"),
		},
		DB: DBConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			Path:     viper.GetString("DB_PATH"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Mail: MailConfig{
			Driver:       viper.GetString("MAIL_DRIVER"),
			Host:         viper.GetString("MAIL_HOST"),
			Port:         viper.GetString("MAIL_PORT"),
			Username:     viper.GetString("MAIL_USERNAME"),
			Password:     viper.GetString("MAIL_PASSWORD"),
			From:         viper.GetString("MAIL_FROM"),
			FailSilently: viper.GetBool("MAIL_FAIL_SILENTLY"),
		},
		AMQP: AMQPConfig{
			URL:   viper.GetString("AMQP_URL"),
			Queue: viper.GetString("AMQP_QUEUE"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}
