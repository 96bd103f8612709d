package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	RedisNotesHost string `env:"REDIS_NOTES_HOST" envDefault:"localhost"`
	RedisNotesPort uint16 `env:"REDIS_NOTES_PORT" envDefault:"6379"   validate:"min=1000,max=65535"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"presence_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"presence_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"presence_db"`

	CableURL       string `env:"CABLE_URL"        validate:"required"`
	CableOrigin    string `env:"CABLE_ORIGIN"     validate:"required"`
	CableAppID     string `env:"CABLE_APP_ID"     validate:"required"`
	CableAppSecret string `env:"CABLE_APP_SECRET" validate:"required"`

	OAuthClientID     string `env:"OAUTH_CLIENT_ID"     validate:"required"`
	OAuthClientSecret string `env:"OAUTH_CLIENT_SECRET" validate:"required"`
	OAuthAuthURL      string `env:"OAUTH_AUTH_URL"      envDefault:"https://www.recurse.com/oauth/authorize"`
	OAuthTokenURL     string `env:"OAUTH_TOKEN_URL"     envDefault:"https://www.recurse.com/oauth/token"`

	DirectoryBaseURL string `env:"DIRECTORY_BASE_URL" envDefault:"https://www.recurse.com"`
	BaseURL          string `env:"BASE_URL"           envDefault:"http://localhost:8085"`
	SecureHost       string `env:"SECURE_HOST"`

	// Grants an authenticated identity to requests carrying it, for
	// uptime probes that cannot complete an OAuth dance.
	SecretAuthToken string `env:"SECRET_AUTH_TOKEN"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
