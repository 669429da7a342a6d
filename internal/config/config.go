// Package config loads application configuration from environment variables.
//
// WHY A LIBRARY INSTEAD OF os.Getenv?
// With caarlos0/env the whole configuration is one declarative struct: the
// env var name, the default, and the Go type live next to each other, and
// parsing/conversion errors surface at startup instead of as silent bad
// defaults scattered through main.go.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DevJWTSecret is the signing key used when JWT_SECRET is unset in a
// development environment. It is deliberately public and therefore
// worthless as a secret — any token signed with it can be forged.
//
// Load refuses to fall back to this value when APP_ENV=production; the
// server must not silently run with a known key in a production posture.
const DevJWTSecret = "insecure-dev-secret-do-not-deploy"

// Config holds all runtime configuration, parsed once at startup and
// treated as read-only afterwards.
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	DBPath    string `env:"DB_PATH" envDefault:"data/tasklist.db"`
	JWTSecret string `env:"JWT_SECRET"`
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
}

// Production reports whether the server is running in a production posture.
func (c Config) Production() bool {
	return c.AppEnv == "production"
}

// UsingDevSecret reports whether the insecure development signing key is in
// effect. main.go logs a loud warning when this is true.
func (c Config) UsingDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}

// Load parses configuration from the environment.
//
// SIGNING KEY POLICY:
//   - production + no JWT_SECRET  → error, server refuses to start
//   - development + no JWT_SECRET → fall back to DevJWTSecret (caller warns)
//
// A missing secret in production would otherwise mean every deployment
// signs tokens with a string anyone can read in the source.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.Production() {
			return Config{}, errors.New("config: JWT_SECRET must be set when APP_ENV=production")
		}
		cfg.JWTSecret = DevJWTSecret
	}

	return cfg, nil
}
