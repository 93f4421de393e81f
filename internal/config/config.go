package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings. It is built once in main and passed by
// reference to the components that need it; there is no package-level
// singleton.
type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`

	// Frontend origin allowed by CORS.
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
